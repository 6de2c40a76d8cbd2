package notificationrepo

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

func (r *Repository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, transaction_id, event, status)
		VALUES ($1, $2, $3, 'new')
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, n.UserID, n.TransactionID, n.Event).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		zap.L().Error("can't save notification", zap.Error(err))
		return nil, err
	}
	return n, nil
}

func (r *Repository) FindForDispatch(ctx context.Context, limit uint32) ([]domain.Notification, error) {
	query := `
        SELECT id, user_id, transaction_id, event, status, created_at
        FROM notifications
        WHERE status = 'new'
        ORDER BY created_at ASC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, int(limit))
	if err != nil {
		zap.L().Error("can't get notifications for dispatch", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.TransactionID, &n.Event, &n.Status, &n.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan notification row", zap.Error(err))
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (r *Repository) MarkStatus(ctx context.Context, id int, status string) error {
	query := `
        UPDATE notifications
        SET status = $1
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		zap.L().Error("failed to update notification status", zap.Error(err))
		return err
	}
	return nil
}
