package pointsservice

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/parkmins/designhub/internal/domain"
	"github.com/parkmins/designhub/internal/pg"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

const testWithdrawalFee = 1000

func NewMock(t *testing.T) (*Service, *MockUserRepo, *MockLedgerRepo) {
	ctrl := gomock.NewController(t)
	userRepo := NewMockUserRepo(ctrl)
	ledgerRepo := NewMockLedgerRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()
	service := New(userRepo, ledgerRepo, txManager, testWithdrawalFee)
	defer ctrl.Finish()
	return service, userRepo, ledgerRepo
}

func TestGetBalance(t *testing.T) {
	service, userRepo, _ := NewMock(t)

	tests := []struct {
		name            string
		userID          int
		prepareMock     func()
		expectedBalance int64
		expectedError   error
	}{
		{
			name:   "Retrieve balance successfully",
			userID: 1,
			prepareMock: func() {
				userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Points: 1500}, nil)
			},
			expectedBalance: 1500,
		},
		{
			name:   "User not found",
			userID: 99,
			prepareMock: func() {
				userRepo.EXPECT().FindByID(gomock.Any(), 99).Return(nil, nil)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name:   "Error retrieving balance",
			userID: 1,
			prepareMock: func() {
				userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			balance, err := service.GetBalance(context.Background(), tt.userID)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, balance)
			}
		})
	}
}

func TestCharge(t *testing.T) {
	service, userRepo, ledgerRepo := NewMock(t)

	tests := []struct {
		name            string
		userID          int
		amount          int64
		prepareMock     func()
		expectedBalance int64
		expectedError   error
	}{
		{
			name:   "Successful charge",
			userID: 1,
			amount: 500,
			prepareMock: func() {
				userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 1).Return(int64(100), nil)
				userRepo.EXPECT().UpdatePoints(gomock.Any(), 1, int64(600)).Return(nil)
				ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, entry *domain.PointTransaction) (*domain.PointTransaction, error) {
						assert.Equal(t, domain.LedgerCharge, entry.Type)
						assert.Equal(t, int64(600), entry.BalanceAfter)
						assert.Equal(t, "charge via card", entry.Description)
						return entry, nil
					})
			},
			expectedBalance: 600,
		},
		{
			name:          "Non-positive amount",
			userID:        1,
			amount:        -5,
			expectedError: ErrInvalidAmount,
		},
		{
			name:   "User not found",
			userID: 99,
			amount: 500,
			prepareMock: func() {
				userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 99).Return(int64(0), pgx.ErrNoRows)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name:   "Error writing ledger entry",
			userID: 1,
			amount: 500,
			prepareMock: func() {
				userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 1).Return(int64(100), nil)
				userRepo.EXPECT().UpdatePoints(gomock.Any(), 1, int64(600)).Return(nil)
				ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}

			balance, err := service.Charge(context.Background(), tt.userID, tt.amount, "card")
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, balance)
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	service, userRepo, ledgerRepo := NewMock(t)

	tests := []struct {
		name            string
		userID          int
		amount          int64
		prepareMock     func()
		expectedBalance int64
		expectedError   error
	}{
		{
			name:   "Successful withdrawal with fee",
			userID: 1,
			amount: 5000,
			prepareMock: func() {
				userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 1).Return(int64(10000), nil)
				userRepo.EXPECT().UpdatePoints(gomock.Any(), 1, int64(4000)).Return(nil)
				ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, entry *domain.PointTransaction) (*domain.PointTransaction, error) {
						assert.Equal(t, domain.LedgerWithdraw, entry.Type)
						assert.Equal(t, int64(testWithdrawalFee), entry.Fee)
						assert.Equal(t, int64(4000), entry.BalanceAfter)
						assert.Equal(t, "pending", entry.Status)
						return entry, nil
					})
			},
			expectedBalance: 4000,
		},
		{
			name:   "Balance covers amount but not the fee",
			userID: 1,
			amount: 5000,
			prepareMock: func() {
				userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 1).Return(int64(5500), nil)
			},
			expectedError: ErrInsufficientPoints,
		},
		{
			name:          "Non-positive amount",
			userID:        1,
			amount:        0,
			expectedError: ErrInvalidAmount,
		},
		{
			name:   "User not found",
			userID: 99,
			amount: 5000,
			prepareMock: func() {
				userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 99).Return(int64(0), pgx.ErrNoRows)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name:   "Error updating balance",
			userID: 1,
			amount: 5000,
			prepareMock: func() {
				userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 1).Return(int64(10000), nil)
				userRepo.EXPECT().UpdatePoints(gomock.Any(), 1, int64(4000)).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}

			balance, err := service.Withdraw(context.Background(), tt.userID, tt.amount, "kookmin", "110-123-456789")
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, balance)
			}
		})
	}
}

func TestGetLedger(t *testing.T) {
	service, _, ledgerRepo := NewMock(t)

	entries := []domain.PointTransaction{
		{ID: 1, UserID: 1, Type: domain.LedgerCharge, Amount: 500, BalanceAfter: 500},
		{ID: 2, UserID: 1, Type: domain.LedgerUse, Amount: 300, BalanceAfter: 200},
	}

	tests := []struct {
		name          string
		page          int
		limit         int
		prepareMock   func()
		expected      []domain.PointTransaction
		expectedError error
	}{
		{
			name:  "Defaults applied for zero page and limit",
			page:  0,
			limit: 0,
			prepareMock: func() {
				ledgerRepo.EXPECT().FindByUserID(gomock.Any(), 1, 20, 0).Return(entries, nil)
			},
			expected: entries,
		},
		{
			name:  "Offset computed from page",
			page:  3,
			limit: 10,
			prepareMock: func() {
				ledgerRepo.EXPECT().FindByUserID(gomock.Any(), 1, 10, 20).Return(nil, nil)
			},
		},
		{
			name:  "Error fetching ledger",
			page:  1,
			limit: 20,
			prepareMock: func() {
				ledgerRepo.EXPECT().FindByUserID(gomock.Any(), 1, 20, 0).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			got, err := service.GetLedger(context.Background(), 1, tt.page, tt.limit)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
