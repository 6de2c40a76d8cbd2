package pointsservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/parkmins/designhub/internal/domain"
	"github.com/parkmins/designhub/internal/pg"
	"go.uber.org/zap"
)

//go:generate mockgen -source=pointsservice.go -destination=pointsservice_mock.go -package=pointsservice

type UserRepo interface {
	FindByID(ctx context.Context, userID int) (*domain.User, error)
	GetPointsForUpdate(ctx context.Context, userID int) (int64, error)
	UpdatePoints(ctx context.Context, userID int, points int64) error
}

type LedgerRepo interface {
	Create(ctx context.Context, entry *domain.PointTransaction) (*domain.PointTransaction, error)
	FindByUserID(ctx context.Context, userID, limit, offset int) ([]domain.PointTransaction, error)
}

var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

type Service struct {
	userRepo      UserRepo
	ledgerRepo    LedgerRepo
	txManager     pg.TXManager
	withdrawalFee int64
}

func New(userRepo UserRepo, ledgerRepo LedgerRepo, txManager pg.TXManager, withdrawalFee int64) *Service {
	return &Service{
		userRepo:      userRepo,
		ledgerRepo:    ledgerRepo,
		txManager:     txManager,
		withdrawalFee: withdrawalFee,
	}
}

func (s *Service) GetBalance(ctx context.Context, userID int) (int64, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	return user.Points, nil
}

// Charge credits amount to the user and appends a charge ledger entry in a
// single unit.
func (s *Service) Charge(ctx context.Context, userID int, amount int64, method string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var newBalance int64
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		points, err := s.userRepo.GetPointsForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}

		newBalance = points + amount
		if err := s.userRepo.UpdatePoints(ctx, userID, newBalance); err != nil {
			return err
		}

		_, err = s.ledgerRepo.Create(ctx, &domain.PointTransaction{
			UserID:       userID,
			Type:         domain.LedgerCharge,
			Amount:       amount,
			BalanceAfter: newBalance,
			Description:  fmt.Sprintf("charge via %s", method),
			Status:       "done",
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	zap.L().Info("points charged", zap.Int("userID", userID), zap.Int64("amount", amount))
	return newBalance, nil
}

// Withdraw debits amount plus the fixed fee and appends a withdraw entry in
// status pending; settlement to the bank account happens out of band.
func (s *Service) Withdraw(ctx context.Context, userID int, amount int64, bankName, bankAccount string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var newBalance int64
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		points, err := s.userRepo.GetPointsForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		if points < amount+s.withdrawalFee {
			return ErrInsufficientPoints
		}

		newBalance = points - amount - s.withdrawalFee
		if err := s.userRepo.UpdatePoints(ctx, userID, newBalance); err != nil {
			return err
		}

		_, err = s.ledgerRepo.Create(ctx, &domain.PointTransaction{
			UserID:       userID,
			Type:         domain.LedgerWithdraw,
			Amount:       amount,
			Fee:          s.withdrawalFee,
			BalanceAfter: newBalance,
			Description:  fmt.Sprintf("withdrawal to %s %s", bankName, bankAccount),
			Status:       "pending",
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	zap.L().Info("withdrawal requested", zap.Int("userID", userID), zap.Int64("amount", amount))
	return newBalance, nil
}

func (s *Service) GetLedger(ctx context.Context, userID, page, limit int) ([]domain.PointTransaction, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	entries, err := s.ledgerRepo.FindByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		zap.L().Error("failed to fetch ledger", zap.Error(err))
		return nil, err
	}
	return entries, nil
}
