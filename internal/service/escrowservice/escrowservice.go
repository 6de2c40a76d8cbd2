package escrowservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/parkmins/designhub/internal/domain"
	"github.com/parkmins/designhub/internal/pg"
	"go.uber.org/zap"
)

//go:generate mockgen -source=escrowservice.go -destination=escrowservice_mock.go -package=escrowservice

type UserRepo interface {
	FindByID(ctx context.Context, userID int) (*domain.User, error)
	GetPointsForUpdate(ctx context.Context, userID int) (int64, error)
	UpdatePoints(ctx context.Context, userID int, points int64) error
}

type PortfolioRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Portfolio, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	FindByID(ctx context.Context, id int) (*domain.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id int, status domain.TransactionStatus) error
	FindByUserID(ctx context.Context, userID int) ([]domain.Transaction, error)
}

type LedgerRepo interface {
	Create(ctx context.Context, entry *domain.PointTransaction) (*domain.PointTransaction, error)
}

type NotificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
}

var (
	ErrInsufficientPoints    = errors.New("insufficient points")
	ErrSelfPurchaseForbidden = errors.New("designer cannot purchase own portfolio")
	ErrPortfolioUnavailable  = errors.New("portfolio is not available for purchase")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrForbidden             = errors.New("operation forbidden for this user")
	ErrAlreadyCompleted      = errors.New("transaction already completed")
	ErrNotFound              = errors.New("transaction not found")
	ErrInvalidAmount         = errors.New("amount must be positive")
)

type actor int

const (
	actorBuyer actor = iota
	actorDesigner
	actorAdmin
)

type transition struct {
	from domain.TransactionStatus
	to   domain.TransactionStatus
}

// transitionTable is the single source of truth for legal status changes and
// the parties allowed to trigger them. Anything absent is rejected.
var transitionTable = map[transition][]actor{
	{domain.StatusPending, domain.StatusInProgress}:               {actorDesigner, actorAdmin},
	{domain.StatusPending, domain.StatusCancelled}:                {actorBuyer, actorDesigner, actorAdmin},
	{domain.StatusInProgress, domain.StatusAwaitingConfirmation}:  {actorDesigner, actorAdmin},
	{domain.StatusInProgress, domain.StatusCancelled}:             {actorBuyer, actorDesigner, actorAdmin},
	{domain.StatusAwaitingConfirmation, domain.StatusCompleted}:   {actorBuyer, actorAdmin},
	{domain.StatusAwaitingConfirmation, domain.StatusInProgress}:  {actorBuyer, actorAdmin},
}

type Service struct {
	userRepo         UserRepo
	portfolioRepo    PortfolioRepo
	transactionRepo  TransactionRepo
	ledgerRepo       LedgerRepo
	notificationRepo NotificationRepo
	txManager        pg.TXManager
}

func New(userRepo UserRepo, portfolioRepo PortfolioRepo, transactionRepo TransactionRepo, ledgerRepo LedgerRepo, notificationRepo NotificationRepo, txManager pg.TXManager) *Service {
	return &Service{
		userRepo:         userRepo,
		portfolioRepo:    portfolioRepo,
		transactionRepo:  transactionRepo,
		ledgerRepo:       ledgerRepo,
		notificationRepo: notificationRepo,
		txManager:        txManager,
	}
}

// CreateTransaction escrows amount from the buyer and opens a pending
// transaction. Debit, ledger entry and transaction row commit as one unit;
// a failed precondition leaves the balance untouched.
func (s *Service) CreateTransaction(ctx context.Context, buyerID, portfolioID int, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var created *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		portfolio, err := s.portfolioRepo.FindByID(ctx, portfolioID)
		if err != nil {
			return err
		}
		if portfolio == nil {
			return ErrNotFound
		}
		if portfolio.Status != domain.PortfolioApproved {
			return ErrPortfolioUnavailable
		}
		if portfolio.DesignerID == buyerID {
			return ErrSelfPurchaseForbidden
		}

		points, err := s.userRepo.GetPointsForUpdate(ctx, buyerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if points < amount {
			return ErrInsufficientPoints
		}

		tx := &domain.Transaction{
			PortfolioID:   portfolio.ID,
			BuyerID:       buyerID,
			DesignerID:    portfolio.DesignerID,
			Amount:        amount,
			Status:        domain.StatusPending,
			PaymentMethod: "points",
			PaymentStatus: "paid",
		}
		created, err = s.transactionRepo.Create(ctx, tx)
		if err != nil {
			return err
		}

		newBalance := points - amount
		if err := s.userRepo.UpdatePoints(ctx, buyerID, newBalance); err != nil {
			return err
		}

		_, err = s.ledgerRepo.Create(ctx, &domain.PointTransaction{
			UserID:        buyerID,
			Type:          domain.LedgerUse,
			Amount:        amount,
			BalanceAfter:  newBalance,
			Description:   fmt.Sprintf("escrow hold for portfolio %d", portfolio.ID),
			TransactionID: &created.ID,
			Status:        "done",
		})
		if err != nil {
			return err
		}

		_, err = s.notificationRepo.Create(ctx, &domain.Notification{
			UserID:        portfolio.DesignerID,
			TransactionID: created.ID,
			Event:         domain.EventStatusChanged,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("transaction created",
		zap.Int("transactionID", created.ID),
		zap.Int("buyerID", buyerID),
		zap.Int64("amount", amount),
	)
	return created, nil
}

// TransitionStatus applies one legal status change on behalf of actorID.
// The transaction row is locked for the whole unit, so a concurrent second
// completion observes the committed state and fails with ErrAlreadyCompleted
// instead of double-crediting the designer.
func (s *Service) TransitionStatus(ctx context.Context, transactionID, actorID int, newStatus domain.TransactionStatus) (*domain.Transaction, error) {
	actingUser, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actingUser == nil {
		return nil, ErrForbidden
	}

	var updated *domain.Transaction
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		tx, err := s.transactionRepo.FindByIDForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return ErrNotFound
		}

		role, err := resolveActor(tx, actingUser)
		if err != nil {
			return err
		}

		if tx.Status == domain.StatusCompleted && newStatus == domain.StatusCompleted {
			return ErrAlreadyCompleted
		}
		allowed, ok := transitionTable[transition{from: tx.Status, to: newStatus}]
		if !ok {
			return ErrInvalidTransition
		}
		if !containsActor(allowed, role) {
			return ErrForbidden
		}

		if err := s.transactionRepo.UpdateStatus(ctx, tx.ID, newStatus); err != nil {
			return err
		}

		switch newStatus {
		case domain.StatusCompleted:
			if err := s.releaseToDesigner(ctx, tx); err != nil {
				return err
			}
		case domain.StatusCancelled:
			if err := s.refundBuyer(ctx, tx); err != nil {
				return err
			}
		}

		if err := s.emitStatusEvents(ctx, tx, newStatus); err != nil {
			return err
		}

		tx.Status = newStatus
		updated = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("transaction status changed",
		zap.Int("transactionID", updated.ID),
		zap.Int("actorID", actorID),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func (s *Service) GetTransaction(ctx context.Context, transactionID, actorID int) (*domain.Transaction, error) {
	actingUser, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actingUser == nil {
		return nil, ErrForbidden
	}

	tx, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrNotFound
	}
	if _, err := resolveActor(tx, actingUser); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) GetTransactions(ctx context.Context, userID int) ([]domain.Transaction, error) {
	transactions, err := s.transactionRepo.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get transactions", zap.Error(err))
		return nil, err
	}
	return transactions, nil
}

// releaseToDesigner credits the escrowed amount to the designer once, with a
// matching earn ledger entry.
func (s *Service) releaseToDesigner(ctx context.Context, tx *domain.Transaction) error {
	points, err := s.userRepo.GetPointsForUpdate(ctx, tx.DesignerID)
	if err != nil {
		return err
	}
	newBalance := points + tx.Amount
	if err := s.userRepo.UpdatePoints(ctx, tx.DesignerID, newBalance); err != nil {
		return err
	}
	_, err = s.ledgerRepo.Create(ctx, &domain.PointTransaction{
		UserID:        tx.DesignerID,
		Type:          domain.LedgerEarn,
		Amount:        tx.Amount,
		BalanceAfter:  newBalance,
		Description:   fmt.Sprintf("escrow release for transaction %d", tx.ID),
		TransactionID: &tx.ID,
		Status:        "done",
	})
	return err
}

// refundBuyer returns the escrowed amount to the buyer on cancellation.
func (s *Service) refundBuyer(ctx context.Context, tx *domain.Transaction) error {
	points, err := s.userRepo.GetPointsForUpdate(ctx, tx.BuyerID)
	if err != nil {
		return err
	}
	newBalance := points + tx.Amount
	if err := s.userRepo.UpdatePoints(ctx, tx.BuyerID, newBalance); err != nil {
		return err
	}
	_, err = s.ledgerRepo.Create(ctx, &domain.PointTransaction{
		UserID:        tx.BuyerID,
		Type:          domain.LedgerRefund,
		Amount:        tx.Amount,
		BalanceAfter:  newBalance,
		Description:   fmt.Sprintf("escrow refund for transaction %d", tx.ID),
		TransactionID: &tx.ID,
		Status:        "done",
	})
	return err
}

func (s *Service) emitStatusEvents(ctx context.Context, tx *domain.Transaction, newStatus domain.TransactionStatus) error {
	for _, userID := range []int{tx.BuyerID, tx.DesignerID} {
		_, err := s.notificationRepo.Create(ctx, &domain.Notification{
			UserID:        userID,
			TransactionID: tx.ID,
			Event:         domain.EventStatusChanged,
		})
		if err != nil {
			return err
		}
	}
	if newStatus == domain.StatusCompleted {
		_, err := s.notificationRepo.Create(ctx, &domain.Notification{
			UserID:        tx.DesignerID,
			TransactionID: tx.ID,
			Event:         domain.EventPurchaseCompleted,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func resolveActor(tx *domain.Transaction, user *domain.User) (actor, error) {
	switch {
	case user.Role == domain.RoleAdmin:
		return actorAdmin, nil
	case user.ID == tx.BuyerID:
		return actorBuyer, nil
	case user.ID == tx.DesignerID:
		return actorDesigner, nil
	default:
		return 0, ErrForbidden
	}
}

func containsActor(allowed []actor, a actor) bool {
	for _, candidate := range allowed {
		if candidate == a {
			return true
		}
	}
	return false
}
