package ledgerrepo

import (
	"context"

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

// Create appends a ledger row. Rows are never updated or deleted.
func (r *Repository) Create(ctx context.Context, entry *domain.PointTransaction) (*domain.PointTransaction, error) {
	query := `
		INSERT INTO point_transactions (user_id, type, amount, fee, balance_after, description, transaction_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		entry.UserID, entry.Type, entry.Amount, entry.Fee, entry.BalanceAfter,
		entry.Description, entry.TransactionID, entry.Status).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		zap.L().Error("can't save ledger entry", zap.Error(err))
		return nil, err
	}
	return entry, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID, limit, offset int) ([]domain.PointTransaction, error) {
	query := `
        SELECT id, user_id, type, amount, fee, balance_after, description, transaction_id, status, created_at
        FROM point_transactions
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		zap.L().Error("failed to fetch ledger entries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PointTransaction
	for rows.Next() {
		var e domain.PointTransaction
		err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Amount, &e.Fee, &e.BalanceAfter,
			&e.Description, &e.TransactionID, &e.Status, &e.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan ledger row", zap.Error(err))
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}
