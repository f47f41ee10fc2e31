package services

import (
	"context"
	"strings"

	"github.com/tropicaldog17/keble/internal/models"
	"github.com/tropicaldog17/keble/internal/repositories"
)

type portfolioService struct {
	store repositories.Store
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(store repositories.Store) PortfolioService {
	return &portfolioService{store: store}
}

func (s *portfolioService) CreatePortfolio(ctx context.Context, userID, name, planCategory, planOccurrence string) (*models.Portfolio, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = planCategory + " plan"
	}
	portfolio := &models.Portfolio{
		UserID:         userID,
		Name:           name,
		PlanCategory:   strings.ToLower(planCategory),
		PlanOccurrence: strings.ToLower(planOccurrence),
	}
	if err := s.store.Portfolios().Create(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

func (s *portfolioService) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	return s.store.Portfolios().GetByID(ctx, id)
}

func (s *portfolioService) ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Portfolios().ListByUser(ctx, userID)
}
