package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/parkmins/designhub/internal/domain"
	"github.com/parkmins/designhub/internal/dto"
	"github.com/parkmins/designhub/internal/service/escrowservice"
	"github.com/parkmins/designhub/pkg/auth"
	"github.com/parkmins/designhub/pkg/utils"
)

type Service interface {
	CreateTransaction(ctx context.Context, buyerID, portfolioID int, amount int64) (*domain.Transaction, error)
	TransitionStatus(ctx context.Context, transactionID, actorID int, newStatus domain.TransactionStatus) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID, actorID int) (*domain.Transaction, error)
	GetTransactions(ctx context.Context, userID int) ([]domain.Transaction, error)
}

type TransactionHandler struct {
	escrowService Service
}

func New(escrowService Service) *TransactionHandler {
	return &TransactionHandler{
		escrowService: escrowService,
	}
}

var validStatuses = map[domain.TransactionStatus]struct{}{
	domain.StatusPending:              {},
	domain.StatusInProgress:           {},
	domain.StatusAwaitingConfirmation: {},
	domain.StatusCompleted:            {},
	domain.StatusCancelled:            {},
}

// Create godoc
//
//	@Summary		Purchase a portfolio
//	@Description	Escrow the amount from the buyer's points and open a pending transaction.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateTransactionRequestDTO	true	"Purchase payload"
//	@Success		201		{object}	dto.TransactionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request or self purchase"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		402		{object}	utils.Response	"Insufficient points"
//	@Failure		404		{object}	utils.Response	"Portfolio not found"
//	@Failure		409		{object}	utils.Response	"Portfolio not available"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions [post]
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.CreateTransactionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PortfolioID <= 0 || req.Amount <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "portfolio_id and amount must be positive")
		return
	}

	tx, err := h.escrowService.CreateTransaction(r.Context(), userID, req.PortfolioID, req.Amount)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toResponseDTO(tx))
}

// Transition godoc
//
//	@Summary		Change transaction status
//	@Description	Apply one legal transition of the escrow state machine on behalf of the caller.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Transaction id"
//	@Param			request	body		dto.TransitionRequestDTO	true	"Target status"
//	@Success		200		{object}	dto.TransactionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Actor not allowed"
//	@Failure		404		{object}	utils.Response	"Transaction not found"
//	@Failure		409		{object}	utils.Response	"Illegal transition"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions/{id}/status [post]
func (h *TransactionHandler) Transition(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	transactionID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || transactionID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req dto.TransitionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	newStatus := domain.TransactionStatus(req.Status)
	if _, ok := validStatuses[newStatus]; !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "unknown status")
		return
	}

	tx, err := h.escrowService.TransitionStatus(r.Context(), transactionID, userID, newStatus)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponseDTO(tx))
}

// Get godoc
//
//	@Summary		Get a transaction
//	@Description	Fetch one transaction; visible to its buyer, its designer and admins.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Transaction id"
//	@Success		200	{object}	dto.TransactionResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Not a party to the transaction"
//	@Failure		404	{object}	utils.Response	"Transaction not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions/{id} [get]
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	transactionID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || transactionID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := h.escrowService.GetTransaction(r.Context(), transactionID, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponseDTO(tx))
}

// List godoc
//
//	@Summary		List own transactions
//	@Description	Transactions where the caller is buyer or designer, newest first.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.TransactionResponseDTO
//	@Success		204	{object}	utils.Response	"No transactions"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions [get]
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	transactions, err := h.escrowService.GetTransactions(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(transactions) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No transactions found")
		return
	}

	response := make([]dto.TransactionResponseDTO, len(transactions))
	for i, tx := range transactions {
		response[i] = toResponseDTO(&tx)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, escrowservice.ErrInsufficientPoints):
		utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, escrowservice.ErrSelfPurchaseForbidden):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, escrowservice.ErrPortfolioUnavailable):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, escrowservice.ErrInvalidTransition):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, escrowservice.ErrAlreadyCompleted):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, escrowservice.ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, escrowservice.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, escrowservice.ErrInvalidAmount):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func toResponseDTO(tx *domain.Transaction) dto.TransactionResponseDTO {
	return dto.TransactionResponseDTO{
		ID:            tx.ID,
		PortfolioID:   tx.PortfolioID,
		BuyerID:       tx.BuyerID,
		DesignerID:    tx.DesignerID,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		PaymentMethod: tx.PaymentMethod,
		PaymentStatus: tx.PaymentStatus,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
}
