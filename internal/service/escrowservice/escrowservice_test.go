package escrowservice

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

type mocks struct {
	userRepo         *MockUserRepo
	portfolioRepo    *MockPortfolioRepo
	transactionRepo  *MockTransactionRepo
	ledgerRepo       *MockLedgerRepo
	notificationRepo *MockNotificationRepo
	txManager        *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		userRepo:         NewMockUserRepo(ctrl),
		portfolioRepo:    NewMockPortfolioRepo(ctrl),
		transactionRepo:  NewMockTransactionRepo(ctrl),
		ledgerRepo:       NewMockLedgerRepo(ctrl),
		notificationRepo: NewMockNotificationRepo(ctrl),
		txManager:        pg.NewMockTXManager(ctrl),
	}
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()
	service := New(m.userRepo, m.portfolioRepo, m.transactionRepo, m.ledgerRepo, m.notificationRepo, m.txManager)
	defer ctrl.Finish()
	return service, m
}

func TestCreateTransaction(t *testing.T) {
	service, m := NewMock(t)

	approved := &domain.Portfolio{ID: 10, DesignerID: 2, Title: "logo pack", Price: 500, Status: domain.PortfolioApproved}

	tests := []struct {
		name          string
		buyerID       int
		portfolioID   int
		amount        int64
		prepareMock   func()
		expectedError error
	}{
		{
			name:        "Successful purchase",
			buyerID:     1,
			portfolioID: 10,
			amount:      500,
			prepareMock: func() {
				m.portfolioRepo.EXPECT().FindByID(gomock.Any(), 10).Return(approved, nil)
				m.userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 1).Return(int64(800), nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
						assert.Equal(t, domain.StatusPending, tx.Status)
						assert.Equal(t, 2, tx.DesignerID)
						assert.Equal(t, "points", tx.PaymentMethod)
						tx.ID = 7
						return tx, nil
					})
				m.userRepo.EXPECT().UpdatePoints(gomock.Any(), 1, int64(300)).Return(nil)
				m.ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, entry *domain.PointTransaction) (*domain.PointTransaction, error) {
						assert.Equal(t, domain.LedgerUse, entry.Type)
						assert.Equal(t, int64(300), entry.BalanceAfter)
						assert.Equal(t, 7, *entry.TransactionID)
						return entry, nil
					})
				m.notificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Notification{}, nil)
			},
			expectedError: nil,
		},
		{
			name:          "Non-positive amount",
			buyerID:       1,
			portfolioID:   10,
			amount:        0,
			expectedError: ErrInvalidAmount,
		},
		{
			name:        "Portfolio not found",
			buyerID:     1,
			portfolioID: 99,
			amount:      500,
			prepareMock: func() {
				m.portfolioRepo.EXPECT().FindByID(gomock.Any(), 99).Return(nil, nil)
			},
			expectedError: ErrNotFound,
		},
		{
			name:        "Portfolio not approved",
			buyerID:     1,
			portfolioID: 10,
			amount:      500,
			prepareMock: func() {
				m.portfolioRepo.EXPECT().FindByID(gomock.Any(), 10).Return(&domain.Portfolio{ID: 10, DesignerID: 2, Status: domain.PortfolioPending}, nil)
			},
			expectedError: ErrPortfolioUnavailable,
		},
		{
			name:        "Self purchase",
			buyerID:     2,
			portfolioID: 10,
			amount:      500,
			prepareMock: func() {
				m.portfolioRepo.EXPECT().FindByID(gomock.Any(), 10).Return(approved, nil)
			},
			expectedError: ErrSelfPurchaseForbidden,
		},
		{
			name:        "Insufficient points",
			buyerID:     1,
			portfolioID: 10,
			amount:      500,
			prepareMock: func() {
				m.portfolioRepo.EXPECT().FindByID(gomock.Any(), 10).Return(approved, nil)
				m.userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 1).Return(int64(499), nil)
			},
			expectedError: ErrInsufficientPoints,
		},
		{
			name:        "Buyer not found",
			buyerID:     5,
			portfolioID: 10,
			amount:      500,
			prepareMock: func() {
				m.portfolioRepo.EXPECT().FindByID(gomock.Any(), 10).Return(approved, nil)
				m.userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 5).Return(int64(0), pgx.ErrNoRows)
			},
			expectedError: ErrNotFound,
		},
		{
			name:        "Error creating transaction",
			buyerID:     1,
			portfolioID: 10,
			amount:      500,
			prepareMock: func() {
				m.portfolioRepo.EXPECT().FindByID(gomock.Any(), 10).Return(approved, nil)
				m.userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 1).Return(int64(800), nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}

			created, err := service.CreateTransaction(context.Background(), tt.buyerID, tt.portfolioID, tt.amount)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Nil(t, created)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.StatusPending, created.Status)
				assert.Equal(t, tt.amount, created.Amount)
			}
		})
	}
}

func TestTransitionStatus(t *testing.T) {
	service, m := NewMock(t)

	buyer := &domain.User{ID: 1, Role: domain.RoleBuyer}
	designer := &domain.User{ID: 2, Role: domain.RoleDesigner}
	admin := &domain.User{ID: 3, Role: domain.RoleAdmin}
	stranger := &domain.User{ID: 9, Role: domain.RoleBuyer}

	txAt := func(status domain.TransactionStatus) *domain.Transaction {
		return &domain.Transaction{ID: 7, PortfolioID: 10, BuyerID: 1, DesignerID: 2, Amount: 500, Status: status}
	}

	tests := []struct {
		name          string
		actorID       int
		newStatus     domain.TransactionStatus
		prepareMock   func()
		expectedError error
	}{
		{
			name:      "Designer accepts pending transaction",
			actorID:   2,
			newStatus: domain.StatusInProgress,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(designer, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(txAt(domain.StatusPending), nil)
				m.transactionRepo.EXPECT().UpdateStatus(gomock.Any(), 7, domain.StatusInProgress).Return(nil)
				m.notificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Notification{}, nil).Times(2)
			},
		},
		{
			name:      "Buyer cannot start work",
			actorID:   1,
			newStatus: domain.StatusInProgress,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(buyer, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(txAt(domain.StatusPending), nil)
			},
			expectedError: ErrForbidden,
		},
		{
			name:      "Pending cannot jump to completed",
			actorID:   3,
			newStatus: domain.StatusCompleted,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 3).Return(admin, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(txAt(domain.StatusPending), nil)
			},
			expectedError: ErrInvalidTransition,
		},
		{
			name:      "Buyer confirms and designer is credited",
			actorID:   1,
			newStatus: domain.StatusCompleted,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(buyer, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(txAt(domain.StatusAwaitingConfirmation), nil)
				m.transactionRepo.EXPECT().UpdateStatus(gomock.Any(), 7, domain.StatusCompleted).Return(nil)
				m.userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 2).Return(int64(100), nil)
				m.userRepo.EXPECT().UpdatePoints(gomock.Any(), 2, int64(600)).Return(nil)
				m.ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, entry *domain.PointTransaction) (*domain.PointTransaction, error) {
						assert.Equal(t, domain.LedgerEarn, entry.Type)
						assert.Equal(t, 2, entry.UserID)
						assert.Equal(t, int64(600), entry.BalanceAfter)
						return entry, nil
					})
				m.notificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Notification{}, nil).Times(3)
			},
		},
		{
			name:      "Designer cannot confirm completion",
			actorID:   2,
			newStatus: domain.StatusCompleted,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(designer, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(txAt(domain.StatusAwaitingConfirmation), nil)
			},
			expectedError: ErrForbidden,
		},
		{
			name:      "Buyer cancels and is refunded",
			actorID:   1,
			newStatus: domain.StatusCancelled,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(buyer, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(txAt(domain.StatusInProgress), nil)
				m.transactionRepo.EXPECT().UpdateStatus(gomock.Any(), 7, domain.StatusCancelled).Return(nil)
				m.userRepo.EXPECT().GetPointsForUpdate(gomock.Any(), 1).Return(int64(300), nil)
				m.userRepo.EXPECT().UpdatePoints(gomock.Any(), 1, int64(800)).Return(nil)
				m.ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, entry *domain.PointTransaction) (*domain.PointTransaction, error) {
						assert.Equal(t, domain.LedgerRefund, entry.Type)
						assert.Equal(t, 1, entry.UserID)
						assert.Equal(t, int64(800), entry.BalanceAfter)
						return entry, nil
					})
				m.notificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Notification{}, nil).Times(2)
			},
		},
		{
			name:      "Repeat completion is rejected",
			actorID:   3,
			newStatus: domain.StatusCompleted,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 3).Return(admin, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(txAt(domain.StatusCompleted), nil)
			},
			expectedError: ErrAlreadyCompleted,
		},
		{
			name:      "Completed transaction cannot be cancelled",
			actorID:   3,
			newStatus: domain.StatusCancelled,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 3).Return(admin, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(txAt(domain.StatusCompleted), nil)
			},
			expectedError: ErrInvalidTransition,
		},
		{
			name:      "Buyer rejects delivered work back to in progress",
			actorID:   1,
			newStatus: domain.StatusInProgress,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(buyer, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(txAt(domain.StatusAwaitingConfirmation), nil)
				m.transactionRepo.EXPECT().UpdateStatus(gomock.Any(), 7, domain.StatusInProgress).Return(nil)
				m.notificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Notification{}, nil).Times(2)
			},
		},
		{
			name:      "Stranger is not a party",
			actorID:   9,
			newStatus: domain.StatusCancelled,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 9).Return(stranger, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(txAt(domain.StatusPending), nil)
			},
			expectedError: ErrForbidden,
		},
		{
			name:      "Unknown acting user",
			actorID:   99,
			newStatus: domain.StatusCancelled,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 99).Return(nil, nil)
			},
			expectedError: ErrForbidden,
		},
		{
			name:      "Transaction not found",
			actorID:   1,
			newStatus: domain.StatusCancelled,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(buyer, nil)
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 7).Return(nil, nil)
			},
			expectedError: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}

			updated, err := service.TransitionStatus(context.Background(), 7, tt.actorID, tt.newStatus)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, updated)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.newStatus, updated.Status)
			}
		})
	}
}

func TestGetTransaction(t *testing.T) {
	service, m := NewMock(t)

	tx := &domain.Transaction{ID: 7, BuyerID: 1, DesignerID: 2, Amount: 500, Status: domain.StatusPending}

	tests := []struct {
		name          string
		actorID       int
		prepareMock   func()
		expectedError error
	}{
		{
			name:    "Visible to buyer",
			actorID: 1,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Role: domain.RoleBuyer}, nil)
				m.transactionRepo.EXPECT().FindByID(gomock.Any(), 7).Return(tx, nil)
			},
		},
		{
			name:    "Visible to admin",
			actorID: 3,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Role: domain.RoleAdmin}, nil)
				m.transactionRepo.EXPECT().FindByID(gomock.Any(), 7).Return(tx, nil)
			},
		},
		{
			name:    "Hidden from third parties",
			actorID: 9,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 9).Return(&domain.User{ID: 9, Role: domain.RoleBuyer}, nil)
				m.transactionRepo.EXPECT().FindByID(gomock.Any(), 7).Return(tx, nil)
			},
			expectedError: ErrForbidden,
		},
		{
			name:    "Transaction not found",
			actorID: 1,
			prepareMock: func() {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Role: domain.RoleBuyer}, nil)
				m.transactionRepo.EXPECT().FindByID(gomock.Any(), 7).Return(nil, nil)
			},
			expectedError: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			got, err := service.GetTransaction(context.Background(), 7, tt.actorID)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tx, got)
			}
		})
	}
}

func TestGetTransactions(t *testing.T) {
	service, m := NewMock(t)

	tests := []struct {
		name          string
		prepareMock   func()
		expectedLen   int
		expectedError error
	}{
		{
			name: "Retrieve transactions successfully",
			prepareMock: func() {
				m.transactionRepo.EXPECT().FindByUserID(gomock.Any(), 1).Return([]domain.Transaction{
					{ID: 7, BuyerID: 1, DesignerID: 2, Amount: 500, Status: domain.StatusPending},
					{ID: 8, BuyerID: 4, DesignerID: 1, Amount: 900, Status: domain.StatusCompleted},
				}, nil)
			},
			expectedLen: 2,
		},
		{
			name: "Error retrieving transactions",
			prepareMock: func() {
				m.transactionRepo.EXPECT().FindByUserID(gomock.Any(), 1).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			transactions, err := service.GetTransactions(context.Background(), 1)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Len(t, transactions, tt.expectedLen)
			}
		})
	}
}
