package portfolios

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/parkmins/designhub/internal/domain"
	"github.com/parkmins/designhub/internal/dto"
	"github.com/parkmins/designhub/internal/service/portfolioservice"
	"github.com/parkmins/designhub/pkg/auth"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*PortfolioHandler, *MockService) {
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

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful creation",
			body: `{"title":"logo pack","description":"ten vector logos","price":500}`,
			prepareMock: func() {
				service.EXPECT().
					CreatePortfolio(gomock.Any(), 2, "logo pack", "ten vector logos", int64(500)).
					Return(&domain.Portfolio{
						ID: 10, DesignerID: 2, Title: "logo pack", Description: "ten vector logos",
						Price: 500, Status: domain.PortfolioPending,
					}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:          "Invalid request body",
			body:          `{"title":invalid}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
		{
			name:          "Missing title",
			body:          `{"title":"","price":500}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "title and positive price are required",
		},
		{
			name: "Caller is not a designer",
			body: `{"title":"logo pack","price":500}`,
			prepareMock: func() {
				service.EXPECT().
					CreatePortfolio(gomock.Any(), 2, "logo pack", "", int64(500)).
					Return(nil, portfolioservice.ErrForbidden)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "operation forbidden",
		},
		{
			name: "Internal server error",
			body: `{"title":"logo pack","price":500}`,
			prepareMock: func() {
				service.EXPECT().
					CreatePortfolio(gomock.Any(), 2, "logo pack", "", int64(500)).
					Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPost, "/portfolios", bytes.NewBufferString(tt.body))
			r = requestWithUser(r, 2)
			w := httptest.NewRecorder()

			handler.Create(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
			if tt.expectedCode == http.StatusCreated {
				var body dto.PortfolioResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, 10, body.ID)
				assert.Equal(t, "pending", body.Status)
			}
		})
	}
}

func TestListHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		target       string
		prepareMock  func()
		expectedCode int
		expectedLen  int
	}{
		{
			name:   "Portfolios returned",
			target: "/portfolios?page=2&limit=5",
			prepareMock: func() {
				service.EXPECT().
					ListApproved(gomock.Any(), 2, 5).
					Return([]domain.Portfolio{
						{ID: 10, Status: domain.PortfolioApproved},
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedLen:  1,
		},
		{
			name:   "No portfolios",
			target: "/portfolios",
			prepareMock: func() {
				service.EXPECT().
					ListApproved(gomock.Any(), 0, 0).
					Return([]domain.Portfolio{}, nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name:   "Internal server error",
			target: "/portfolios",
			prepareMock: func() {
				service.EXPECT().
					ListApproved(gomock.Any(), 0, 0).
					Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			r = requestWithUser(r, 1)
			w := httptest.NewRecorder()

			handler.List(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body []dto.PortfolioResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Len(t, body, tt.expectedLen)
			}
		})
	}
}

func TestReviewHandler(t *testing.T) {
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
			name: "Approved",
			id:   "10",
			body: `{"approve":true}`,
			prepareMock: func() {
				service.EXPECT().
					Review(gomock.Any(), 3, 10, true).
					Return(&domain.Portfolio{ID: 10, Status: domain.PortfolioApproved}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Rejected",
			id:   "10",
			body: `{"approve":false}`,
			prepareMock: func() {
				service.EXPECT().
					Review(gomock.Any(), 3, 10, false).
					Return(&domain.Portfolio{ID: 10, Status: domain.PortfolioRejected}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid portfolio id",
			id:            "abc",
			body:          `{"approve":true}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid portfolio id",
		},
		{
			name: "Caller is not an admin",
			id:   "10",
			body: `{"approve":true}`,
			prepareMock: func() {
				service.EXPECT().
					Review(gomock.Any(), 3, 10, true).
					Return(nil, portfolioservice.ErrForbidden)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "operation forbidden",
		},
		{
			name: "Portfolio not found",
			id:   "99",
			body: `{"approve":true}`,
			prepareMock: func() {
				service.EXPECT().
					Review(gomock.Any(), 3, 99, true).
					Return(nil, portfolioservice.ErrNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "portfolio not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPost, "/portfolios/"+tt.id+"/review", bytes.NewBufferString(tt.body))
			r = requestWithUser(r, 3)
			r = requestWithURLParam(r, "id", tt.id)
			w := httptest.NewRecorder()

			handler.Review(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
		})
	}
}
