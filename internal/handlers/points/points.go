package points

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/parkmins/designhub/internal/domain"
	"github.com/parkmins/designhub/internal/dto"
	"github.com/parkmins/designhub/internal/service/pointsservice"
	"github.com/parkmins/designhub/pkg/auth"
	"github.com/parkmins/designhub/pkg/utils"
	"github.com/parkmins/designhub/pkg/validate"
)

type Service interface {
	GetBalance(ctx context.Context, userID int) (int64, error)
	Charge(ctx context.Context, userID int, amount int64, method string) (int64, error)
	Withdraw(ctx context.Context, userID int, amount int64, bankName, bankAccount string) (int64, error)
	GetLedger(ctx context.Context, userID, page, limit int) ([]domain.PointTransaction, error)
}

type PointsHandler struct {
	pointsService Service
}

func New(pointsService Service) *PointsHandler {
	return &PointsHandler{
		pointsService: pointsService,
	}
}

// GetBalance godoc
//
//	@Summary		Get current point balance
//	@Description	Retrieve the current point balance of the authenticated user.
//	@Tags			Points
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO	"Current point balance"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/user/points [get]
func (h *PointsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	points, err := h.pointsService.GetBalance(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{
		Points: points,
	})
}

// Charge godoc
//
//	@Summary		Charge points
//	@Description	Credit points to the user balance after an external payment.
//	@Tags			Points
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ChargeRequestDTO	true	"Charge request payload"
//	@Success		200		{object}	dto.BalanceResponseDTO	"New balance"
//	@Failure		400		{object}	utils.Response			"Invalid request"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		422		{object}	utils.Response			"Invalid card number"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/user/points/charge [post]
func (h *PointsHandler) Charge(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.ChargeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.Method == "card" && !validate.IsLuhn(req.CardNumber) {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Invalid card number")
		return
	}

	newBalance, err := h.pointsService.Charge(r.Context(), userID, req.Amount, req.Method)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{Points: newBalance})
}

// Withdraw godoc
//
//	@Summary		Request points withdrawal
//	@Description	Debit points plus the fixed fee; settlement to the bank account is manual.
//	@Tags			Points
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.WithdrawRequestDTO	true	"Withdrawal request payload"
//	@Success		200		{object}	dto.BalanceResponseDTO	"New balance"
//	@Failure		400		{object}	utils.Response			"Invalid request"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		402		{object}	utils.Response			"Insufficient points"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/user/points/withdraw [post]
func (h *PointsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.WithdrawRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.BankName == "" || req.BankAccount == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "bank details are required")
		return
	}

	newBalance, err := h.pointsService.Withdraw(r.Context(), userID, req.Amount, req.BankName, req.BankAccount)
	if err != nil {
		switch {
		case errors.Is(err, pointsservice.ErrInsufficientPoints):
			utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{Points: newBalance})
}

// GetLedger godoc
//
//	@Summary		Get point transaction history
//	@Description	Paged append-only ledger for the authenticated user, newest first.
//	@Tags			Points
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Page size"
//	@Success		200		{array}		dto.LedgerEntryResponseDTO	"Ledger entries"
//	@Success		204		{object}	utils.Response				"No entries"
//	@Failure		401		{object}	utils.Response				"User not authorized"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/user/points/history [get]
func (h *PointsHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.pointsService.GetLedger(r.Context(), userID, page, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch ledger")
		return
	}

	if len(entries) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No entries found")
		return
	}

	response := make([]dto.LedgerEntryResponseDTO, len(entries))
	for i, e := range entries {
		response[i] = dto.LedgerEntryResponseDTO{
			Type:          string(e.Type),
			Amount:        e.Amount,
			Fee:           e.Fee,
			BalanceAfter:  e.BalanceAfter,
			Description:   e.Description,
			TransactionID: e.TransactionID,
			Status:        e.Status,
			CreatedAt:     e.CreatedAt,
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}
