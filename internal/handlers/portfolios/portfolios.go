package portfolios

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/parkmins/designhub/internal/domain"
	"github.com/parkmins/designhub/internal/dto"
	"github.com/parkmins/designhub/internal/service/portfolioservice"
	"github.com/parkmins/designhub/pkg/auth"
	"github.com/parkmins/designhub/pkg/utils"
)

type Service interface {
	CreatePortfolio(ctx context.Context, designerID int, title, description string, price int64) (*domain.Portfolio, error)
	ListApproved(ctx context.Context, page, limit int) ([]domain.Portfolio, error)
	Review(ctx context.Context, actorID, portfolioID int, approve bool) (*domain.Portfolio, error)
}

type PortfolioHandler struct {
	portfolioService Service
}

func New(portfolioService Service) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Create godoc
//
//	@Summary		Create a portfolio listing
//	@Description	Designers submit a listing; it stays pending until an admin approves it.
//	@Tags			Portfolios
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreatePortfolioRequestDTO	true	"Listing payload"
//	@Success		201		{object}	dto.PortfolioResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Caller is not a designer"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/portfolios [post]
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.CreatePortfolioRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Price <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "title and positive price are required")
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), userID, req.Title, req.Description, req.Price)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toResponseDTO(portfolio))
}

// List godoc
//
//	@Summary		List approved portfolios
//	@Tags			Portfolios
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Page size"
//	@Success		200		{array}		dto.PortfolioResponseDTO
//	@Success		204		{object}	utils.Response	"No portfolios"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/portfolios [get]
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	portfolios, err := h.portfolioService.ListApproved(r.Context(), page, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(portfolios) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No portfolios found")
		return
	}

	response := make([]dto.PortfolioResponseDTO, len(portfolios))
	for i, p := range portfolios {
		response[i] = toResponseDTO(&p)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// Review godoc
//
//	@Summary		Approve or reject a listing
//	@Description	Admin moderation of pending portfolios.
//	@Tags			Portfolios
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Portfolio id"
//	@Param			request	body		dto.ReviewPortfolioRequestDTO	true	"Review decision"
//	@Success		200		{object}	dto.PortfolioResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Caller is not an admin"
//	@Failure		404		{object}	utils.Response	"Portfolio not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/portfolios/{id}/review [post]
func (h *PortfolioHandler) Review(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	portfolioID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || portfolioID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	var req dto.ReviewPortfolioRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	portfolio, err := h.portfolioService.Review(r.Context(), userID, portfolioID, req.Approve)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponseDTO(portfolio))
}

func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, portfolioservice.ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, portfolioservice.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, portfolioservice.ErrInvalidPrice):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func toResponseDTO(p *domain.Portfolio) dto.PortfolioResponseDTO {
	return dto.PortfolioResponseDTO{
		ID:          p.ID,
		DesignerID:  p.DesignerID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
	}
}
