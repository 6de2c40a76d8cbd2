package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parkmins/designhub/internal/config"
	"github.com/parkmins/designhub/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parkmins/designhub/pkg/clients"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
)

var dispatching sync.Map

type Repo interface {
	FindForDispatch(ctx context.Context, limit uint32) ([]domain.Notification, error)
	MarkStatus(ctx context.Context, id int, status string) error
}

// Event is the payload posted to the chat system for every outbox row.
type Event struct {
	UserID        int    `json:"user_id"`
	TransactionID int    `json:"transaction_id"`
	Event         string `json:"event"`
	OccurredAt    string `json:"occurred_at"`
}

// Service drains the notifications outbox and delivers events to the chat
// system. Delivery is at-least-once; the chat side dedupes by notification.
type Service struct {
	url              string
	notificationRepo Repo
	client           clients.HTTPClientI
	limit            uint32
	workerPool       WorkerPoolI
	updateInterval   time.Duration
}

func New(cfg *config.Config, notificationRepo Repo, client clients.HTTPClientI) *Service {
	return &Service{
		url:              cfg.ChatAddress,
		notificationRepo: notificationRepo,
		client:           client,
		limit:            1000,
		workerPool:       NewWorkerPool(10),
		updateInterval:   time.Second * 5,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Notification dispatcher started")
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping dispatcher")
			return
		case <-ticker.C:
			s.processNotifications(ctx)
		}
	}
}

func (s *Service) processNotifications(ctx context.Context) {
	notifications, err := s.notificationRepo.FindForDispatch(ctx, atomic.LoadUint32(&s.limit))
	if err != nil {
		zap.L().Error("Failed to fetch notifications for dispatch", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, n := range notifications {
		n := n

		if _, loaded := dispatching.LoadOrStore(n.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer dispatching.Delete(n.ID)
				return s.dispatch(ctx, n)
			})
			if err != nil {
				dispatching.Delete(n.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error dispatching notifications", zap.Error(err))
	}
}

func (s *Service) dispatch(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(Event{
		UserID:        n.UserID,
		TransactionID: n.TransactionID,
		Event:         n.Event,
		OccurredAt:    n.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification %d: %w", n.ID, err)
	}

	url := s.url + "/api/notify"
	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			statusCode, _, err := s.client.Post(url, nil, body)
			if err != nil || statusCode >= http.StatusInternalServerError {
				if attempt < maxRetries {
					time.Sleep(retryInterval * time.Duration(attempt))
					continue
				}
				if markErr := s.notificationRepo.MarkStatus(ctx, n.ID, "failed"); markErr != nil {
					zap.L().Error("failed to mark notification failed", zap.Error(markErr))
				}
				return fmt.Errorf("failed to deliver notification %d after %d retries: %w", n.ID, maxRetries, err)
			}

			if statusCode != http.StatusOK && statusCode != http.StatusAccepted {
				zap.L().Error("Unexpected status code from chat system",
					zap.Int("status", statusCode), zap.Int("notificationID", n.ID))
				if markErr := s.notificationRepo.MarkStatus(ctx, n.ID, "failed"); markErr != nil {
					zap.L().Error("failed to mark notification failed", zap.Error(markErr))
				}
				return fmt.Errorf("unexpected status code %d for notification %d", statusCode, n.ID)
			}

			return s.notificationRepo.MarkStatus(ctx, n.ID, "sent")
		}
	}
	return nil
}
