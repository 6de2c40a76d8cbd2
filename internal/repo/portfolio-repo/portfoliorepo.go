package portfoliorepo

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

func (r *Repository) Create(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error) {
	query := `
		INSERT INTO portfolios (designer_id, title, description, price, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, p.DesignerID, p.Title, p.Description, p.Price, p.Status).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		zap.L().Error("can't save portfolio", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Portfolio, error) {
	query := `
        SELECT id, designer_id, title, description, price, status, created_at
        FROM portfolios
        WHERE id = $1
    `
	var p domain.Portfolio
	err := r.db.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.DesignerID, &p.Title, &p.Description, &p.Price, &p.Status, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find portfolio", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindApproved(ctx context.Context, limit, offset int) ([]domain.Portfolio, error) {
	query := `
        SELECT id, designer_id, title, description, price, status, created_at
        FROM portfolios
        WHERE status = 'approved'
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2
    `
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		zap.L().Error("can't get approved portfolios", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var portfolios []domain.Portfolio
	for rows.Next() {
		var p domain.Portfolio
		err := rows.Scan(&p.ID, &p.DesignerID, &p.Title, &p.Description, &p.Price, &p.Status, &p.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan portfolio row", zap.Error(err))
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	return portfolios, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int, status domain.PortfolioStatus) error {
	query := `
        UPDATE portfolios
        SET status = $1
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		zap.L().Error("failed to update portfolio status", zap.Error(err))
		return err
	}
	return nil
}
