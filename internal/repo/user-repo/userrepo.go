package userrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/parkmins/designhub/internal/domain"
	"github.com/parkmins/designhub/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (repo *Repository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx, "SELECT id, login, password_hash, role, points FROM users WHERE login = $1", login).
		Scan(&user.ID, &user.Login, &user.PasswordHash, &user.Role, &user.Points)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) FindByID(ctx context.Context, userID int) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx, "SELECT id, login, password_hash, role, points FROM users WHERE id = $1", userID).
		Scan(&user.ID, &user.Login, &user.PasswordHash, &user.Role, &user.Points)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (login, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := repo.db.QueryRow(ctx, query, user.Login, user.PasswordHash, user.Role).Scan(&user.ID)
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// GetPointsForUpdate locks the user row for the rest of the enclosing
// transactional unit. Every balance read that precedes a write goes through
// here so concurrent mutations of the same user serialize.
func (repo *Repository) GetPointsForUpdate(ctx context.Context, userID int) (int64, error) {
	query := `
        SELECT points
        FROM users
        WHERE id = $1
        FOR UPDATE
    `
	var points int64
	err := repo.db.QueryRow(ctx, query, userID).Scan(&points)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, pgx.ErrNoRows
		}
		zap.L().Error("can't lock user points", zap.Error(err))
		return 0, err
	}
	return points, nil
}

func (repo *Repository) UpdatePoints(ctx context.Context, userID int, points int64) error {
	query := `
        UPDATE users
        SET points = $1
        WHERE id = $2
    `
	_, err := repo.db.Exec(ctx, query, points, userID)
	if err != nil {
		zap.L().Error("can't update user points", zap.Error(err))
		return err
	}
	return nil
}
