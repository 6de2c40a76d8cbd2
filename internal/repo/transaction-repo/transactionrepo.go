package transactionrepo

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

func (r *Repository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO transactions (portfolio_id, buyer_id, designer_id, amount, status, payment_method, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		tx.PortfolioID, tx.BuyerID, tx.DesignerID, tx.Amount, tx.Status, tx.PaymentMethod, tx.PaymentStatus).
		Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Transaction, error) {
	query := `
        SELECT id, portfolio_id, buyer_id, designer_id, amount, status, payment_method, payment_status, created_at, updated_at
        FROM transactions
        WHERE id = $1
    `
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// FindByIDForUpdate locks the transaction row so concurrent transitions on
// the same transaction serialize; the second caller observes the status the
// first one committed.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.Transaction, error) {
	query := `
        SELECT id, portfolio_id, buyer_id, designer_id, amount, status, payment_method, payment_status, created_at, updated_at
        FROM transactions
        WHERE id = $1
        FOR UPDATE
    `
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) scanOne(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(&tx.ID, &tx.PortfolioID, &tx.BuyerID, &tx.DesignerID, &tx.Amount,
		&tx.Status, &tx.PaymentMethod, &tx.PaymentStatus, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find transaction", zap.Error(err))
		return nil, err
	}
	return &tx, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int, status domain.TransactionStatus) error {
	query := `
        UPDATE transactions
        SET status = $1, updated_at = now()
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		zap.L().Error("failed to update transaction status", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.Transaction, error) {
	query := `
        SELECT id, portfolio_id, buyer_id, designer_id, amount, status, payment_method, payment_status, created_at, updated_at
        FROM transactions
        WHERE buyer_id = $1 OR designer_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		err := rows.Scan(&tx.ID, &tx.PortfolioID, &tx.BuyerID, &tx.DesignerID, &tx.Amount,
			&tx.Status, &tx.PaymentMethod, &tx.PaymentStatus, &tx.CreatedAt, &tx.UpdatedAt)
		if err != nil {
			zap.L().Error("can't scan transaction row", zap.Error(err))
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}
