package transactions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/parkmins/designhub/internal/domain"
	"github.com/parkmins/designhub/internal/dto"
	"github.com/parkmins/designhub/internal/service/escrowservice"
	"github.com/parkmins/designhub/pkg/auth"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*TransactionHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func requestWithUser(r *http.Request, userID int) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.UserIDKey, userID))
}

func requestWithURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateHandler(t *testing.T) {
	handler, service := NewMock(t)
	now := time.Now()

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful purchase",
			body: `{"portfolio_id":10,"amount":500}`,
			prepareMock: func() {
				service.EXPECT().
					CreateTransaction(gomock.Any(), 1, 10, int64(500)).
					Return(&domain.Transaction{
						ID: 7, PortfolioID: 10, BuyerID: 1, DesignerID: 2, Amount: 500,
						Status: domain.StatusPending, PaymentMethod: "points", PaymentStatus: "paid",
						CreatedAt: now, UpdatedAt: now,
					}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:          "Invalid request body",
			body:          `{"portfolio_id":invalid}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
		{
			name:          "Non-positive amount",
			body:          `{"portfolio_id":10,"amount":0}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "portfolio_id and amount must be positive",
		},
		{
			name: "Insufficient points",
			body: `{"portfolio_id":10,"amount":500}`,
			prepareMock: func() {
				service.EXPECT().
					CreateTransaction(gomock.Any(), 1, 10, int64(500)).
					Return(nil, escrowservice.ErrInsufficientPoints)
			},
			expectedCode:  http.StatusPaymentRequired,
			expectedError: "insufficient points",
		},
		{
			name: "Self purchase",
			body: `{"portfolio_id":10,"amount":500}`,
			prepareMock: func() {
				service.EXPECT().
					CreateTransaction(gomock.Any(), 1, 10, int64(500)).
					Return(nil, escrowservice.ErrSelfPurchaseForbidden)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "designer cannot purchase own portfolio",
		},
		{
			name: "Portfolio not available",
			body: `{"portfolio_id":10,"amount":500}`,
			prepareMock: func() {
				service.EXPECT().
					CreateTransaction(gomock.Any(), 1, 10, int64(500)).
					Return(nil, escrowservice.ErrPortfolioUnavailable)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "portfolio is not available",
		},
		{
			name: "Portfolio not found",
			body: `{"portfolio_id":99,"amount":500}`,
			prepareMock: func() {
				service.EXPECT().
					CreateTransaction(gomock.Any(), 1, 99, int64(500)).
					Return(nil, escrowservice.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Internal server error",
			body: `{"portfolio_id":10,"amount":500}`,
			prepareMock: func() {
				service.EXPECT().
					CreateTransaction(gomock.Any(), 1, 10, int64(500)).
					Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(tt.body))
			r = requestWithUser(r, 1)
			w := httptest.NewRecorder()

			handler.Create(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
			if tt.expectedCode == http.StatusCreated {
				var body dto.TransactionResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, 7, body.ID)
				assert.Equal(t, "pending", body.Status)
			}
		})
	}
}

func TestTransitionHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		id            string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful transition",
			id:   "7",
			body: `{"status":"in_progress"}`,
			prepareMock: func() {
				service.EXPECT().
					TransitionStatus(gomock.Any(), 7, 1, domain.StatusInProgress).
					Return(&domain.Transaction{ID: 7, Status: domain.StatusInProgress}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid transaction id",
			id:            "abc",
			body:          `{"status":"in_progress"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid transaction id",
		},
		{
			name:          "Unknown status",
			id:            "7",
			body:          `{"status":"shipped"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "unknown status",
		},
		{
			name: "Illegal transition",
			id:   "7",
			body: `{"status":"completed"}`,
			prepareMock: func() {
				service.EXPECT().
					TransitionStatus(gomock.Any(), 7, 1, domain.StatusCompleted).
					Return(nil, escrowservice.ErrInvalidTransition)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "invalid status transition",
		},
		{
			name: "Already completed",
			id:   "7",
			body: `{"status":"completed"}`,
			prepareMock: func() {
				service.EXPECT().
					TransitionStatus(gomock.Any(), 7, 1, domain.StatusCompleted).
					Return(nil, escrowservice.ErrAlreadyCompleted)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "transaction already completed",
		},
		{
			name: "Actor not allowed",
			id:   "7",
			body: `{"status":"completed"}`,
			prepareMock: func() {
				service.EXPECT().
					TransitionStatus(gomock.Any(), 7, 1, domain.StatusCompleted).
					Return(nil, escrowservice.ErrForbidden)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "operation forbidden",
		},
		{
			name: "Transaction not found",
			id:   "99",
			body: `{"status":"cancelled"}`,
			prepareMock: func() {
				service.EXPECT().
					TransitionStatus(gomock.Any(), 99, 1, domain.StatusCancelled).
					Return(nil, escrowservice.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPost, "/transactions/"+tt.id+"/status", bytes.NewBufferString(tt.body))
			r = requestWithUser(r, 1)
			r = requestWithURLParam(r, "id", tt.id)
			w := httptest.NewRecorder()

			handler.Transition(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
		})
	}
}

func TestGetHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		id           string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Transaction returned",
			id:   "7",
			prepareMock: func() {
				service.EXPECT().
					GetTransaction(gomock.Any(), 7, 1).
					Return(&domain.Transaction{ID: 7, BuyerID: 1, DesignerID: 2, Status: domain.StatusPending}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid transaction id",
			id:           "0",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Not a party",
			id:   "7",
			prepareMock: func() {
				service.EXPECT().
					GetTransaction(gomock.Any(), 7, 1).
					Return(nil, escrowservice.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "Transaction not found",
			id:   "99",
			prepareMock: func() {
				service.EXPECT().
					GetTransaction(gomock.Any(), 99, 1).
					Return(nil, escrowservice.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodGet, "/transactions/"+tt.id, nil)
			r = requestWithUser(r, 1)
			r = requestWithURLParam(r, "id", tt.id)
			w := httptest.NewRecorder()

			handler.Get(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestListHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
		expectedLen  int
	}{
		{
			name: "Transactions returned",
			prepareMock: func() {
				service.EXPECT().
					GetTransactions(gomock.Any(), 1).
					Return([]domain.Transaction{
						{ID: 7, BuyerID: 1, DesignerID: 2, Status: domain.StatusPending},
						{ID: 8, BuyerID: 4, DesignerID: 1, Status: domain.StatusCompleted},
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedLen:  2,
		},
		{
			name: "No transactions",
			prepareMock: func() {
				service.EXPECT().
					GetTransactions(gomock.Any(), 1).
					Return([]domain.Transaction{}, nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name: "Internal server error",
			prepareMock: func() {
				service.EXPECT().
					GetTransactions(gomock.Any(), 1).
					Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodGet, "/transactions", nil)
			r = requestWithUser(r, 1)
			w := httptest.NewRecorder()

			handler.List(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body []dto.TransactionResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Len(t, body, tt.expectedLen)
			}
		})
	}
}
