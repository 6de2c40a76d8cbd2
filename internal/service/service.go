package service

import (
	"github.com/parkmins/designhub/internal/config"
	"github.com/parkmins/designhub/internal/handlers/auth"
	"github.com/parkmins/designhub/internal/handlers/points"
	"github.com/parkmins/designhub/internal/handlers/portfolios"
	"github.com/parkmins/designhub/internal/handlers/transactions"
	"github.com/parkmins/designhub/internal/pg"
	"github.com/parkmins/designhub/internal/repo"
	"github.com/parkmins/designhub/internal/service/authservice"
	"github.com/parkmins/designhub/internal/service/escrowservice"
	"github.com/parkmins/designhub/internal/service/pointsservice"
	"github.com/parkmins/designhub/internal/service/portfolioservice"

	pkgauth "github.com/parkmins/designhub/pkg/auth"
)

type Services struct {
	AuthService      auth.Service
	PointsService    points.Service
	EscrowService    transactions.Service
	PortfolioService portfolios.Service
}

func New(repo *repo.Repositories, txManager pg.TXManager, cfg *config.Config) *Services {
	authService := authservice.New(repo.UserRepo, &pkgauth.HashService{}, &pkgauth.JWTService{})
	pointsService := pointsservice.New(repo.UserRepo, repo.LedgerRepo, txManager, cfg.WithdrawalFee)
	escrowService := escrowservice.New(repo.UserRepo, repo.PortfolioRepo, repo.TransactionRepo, repo.LedgerRepo, repo.NotificationRepo, txManager)
	portfolioService := portfolioservice.New(repo.PortfolioRepo, repo.UserRepo)

	return &Services{
		AuthService:      authService,
		PointsService:    pointsService,
		EscrowService:    escrowService,
		PortfolioService: portfolioService,
	}
}
