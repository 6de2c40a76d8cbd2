package portfolioservice

import (
	"context"
	"errors"

	"github.com/parkmins/designhub/internal/domain"
	"go.uber.org/zap"
)

//go:generate mockgen -source=portfolioservice.go -destination=portfolioservice_mock.go -package=portfolioservice

type Repo interface {
	Create(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error)
	FindByID(ctx context.Context, id int) (*domain.Portfolio, error)
	FindApproved(ctx context.Context, limit, offset int) ([]domain.Portfolio, error)
	UpdateStatus(ctx context.Context, id int, status domain.PortfolioStatus) error
}

type UserRepo interface {
	FindByID(ctx context.Context, userID int) (*domain.User, error)
}

var (
	ErrForbidden    = errors.New("operation forbidden for this user")
	ErrNotFound     = errors.New("portfolio not found")
	ErrInvalidPrice = errors.New("price must be positive")
)

type Service struct {
	repo     Repo
	userRepo UserRepo
}

func New(repo Repo, userRepo UserRepo) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
	}
}

// CreatePortfolio registers a new listing in moderation state pending.
func (s *Service) CreatePortfolio(ctx context.Context, designerID int, title, description string, price int64) (*domain.Portfolio, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	user, err := s.userRepo.FindByID(ctx, designerID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Role != domain.RoleDesigner {
		return nil, ErrForbidden
	}

	portfolio, err := s.repo.Create(ctx, &domain.Portfolio{
		DesignerID:  designerID,
		Title:       title,
		Description: description,
		Price:       price,
		Status:      domain.PortfolioPending,
	})
	if err != nil {
		zap.L().Error("can't create portfolio", zap.Error(err))
		return nil, err
	}
	return portfolio, nil
}

func (s *Service) ListApproved(ctx context.Context, page, limit int) ([]domain.Portfolio, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	portfolios, err := s.repo.FindApproved(ctx, limit, (page-1)*limit)
	if err != nil {
		zap.L().Error("failed to list portfolios", zap.Error(err))
		return nil, err
	}
	return portfolios, nil
}

// Review approves or rejects a pending listing. Admin only.
func (s *Service) Review(ctx context.Context, actorID, portfolioID int, approve bool) (*domain.Portfolio, error) {
	actingUser, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actingUser == nil || actingUser.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	portfolio, err := s.repo.FindByID(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if portfolio == nil {
		return nil, ErrNotFound
	}

	status := domain.PortfolioRejected
	if approve {
		status = domain.PortfolioApproved
	}
	if err := s.repo.UpdateStatus(ctx, portfolioID, status); err != nil {
		return nil, err
	}
	portfolio.Status = status

	zap.L().Info("portfolio reviewed",
		zap.Int("portfolioID", portfolioID),
		zap.String("status", string(status)),
	)
	return portfolio, nil
}
