package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/parkmins/designhub/docs"
	authhandlers "github.com/parkmins/designhub/internal/handlers/auth"
	pointshandlers "github.com/parkmins/designhub/internal/handlers/points"
	portfoliohandlers "github.com/parkmins/designhub/internal/handlers/portfolios"
	transactionhandlers "github.com/parkmins/designhub/internal/handlers/transactions"
	"github.com/parkmins/designhub/internal/service"
	"github.com/parkmins/designhub/pkg/auth"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type PointsHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	Charge(w http.ResponseWriter, r *http.Request)
	Withdraw(w http.ResponseWriter, r *http.Request)
	GetLedger(w http.ResponseWriter, r *http.Request)
}

type TransactionHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Transition(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type PortfolioHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler        AuthHandler
	PointsHandler      PointsHandler
	TransactionHandler TransactionHandler
	PortfolioHandler   PortfolioHandler
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		AuthHandler:        authhandlers.New(s.AuthService),
		PointsHandler:      pointshandlers.New(s.PointsService),
		TransactionHandler: transactionhandlers.New(s.EscrowService),
		PortfolioHandler:   portfoliohandlers.New(s.PortfolioService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Post("/user/register", h.AuthHandler.Register)
		r.Post("/user/login", h.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware)
			r.Route("/user/points", func(r chi.Router) {
				r.Get("/", h.PointsHandler.GetBalance)
				r.Post("/charge", h.PointsHandler.Charge)
				r.Post("/withdraw", h.PointsHandler.Withdraw)
				r.Get("/history", h.PointsHandler.GetLedger)
			})
			r.Route("/portfolios", func(r chi.Router) {
				r.Get("/", h.PortfolioHandler.List)
				r.Post("/", h.PortfolioHandler.Create)
				r.Post("/{id}/review", h.PortfolioHandler.Review)
			})
			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", h.TransactionHandler.Create)
				r.Get("/", h.TransactionHandler.List)
				r.Get("/{id}", h.TransactionHandler.Get)
				r.Post("/{id}/status", h.TransactionHandler.Transition)
			})
		})
	})

	return r
}
