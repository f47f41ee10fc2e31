package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tropicaldog17/keble/internal/models"
	"github.com/tropicaldog17/keble/internal/repositories"
	"github.com/tropicaldog17/keble/internal/valuation"
)

type valuationService struct {
	store repositories.Store
}

// NewValuationService creates a new valuation service
func NewValuationService(store repositories.Store) ValuationService {
	return &valuationService{store: store}
}

func (s *valuationService) GetUserValuation(ctx context.Context, userID string, now time.Time) (*valuation.Summary, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.summarize(ctx, &models.InvestmentFilter{UserID: userID}, now)
}

func (s *valuationService) GetPortfolioValuation(ctx context.Context, portfolioID string, now time.Time) (*PortfolioValuation, error) {
	portfolio, err := s.store.Portfolios().GetByID(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, &models.InvestmentFilter{PortfolioID: portfolioID}, now)
	if err != nil {
		return nil, err
	}
	return &PortfolioValuation{Portfolio: portfolio, Summary: summary}, nil
}

func (s *valuationService) GetInvestmentValuation(ctx context.Context, investmentID string, now time.Time) (*valuation.Valuation, error) {
	inv, err := s.store.Investments().GetByID(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	listing, err := s.store.Listings().GetByID(ctx, inv.ListingID)
	if err != nil {
		return nil, err
	}
	v, err := valuation.ComputeValuation(inv, listing, now)
	if err != nil {
		return nil, fmt.Errorf("failed to value investment %s: %w", investmentID, err)
	}
	rounded := v.Round(valuation.DisplayPlaces)
	return &rounded, nil
}

// summarize loads the matching investments with their listings and aggregates
// them in one pass
func (s *valuationService) summarize(ctx context.Context, filter *models.InvestmentFilter, now time.Time) (*valuation.Summary, error) {
	investments, err := s.store.Investments().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(investments))
	ids := make([]string, 0, len(investments))
	for _, inv := range investments {
		if _, ok := seen[inv.ListingID]; ok {
			continue
		}
		seen[inv.ListingID] = struct{}{}
		ids = append(ids, inv.ListingID)
	}

	listings, err := s.store.Listings().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	summary, err := valuation.AggregateValuation(investments, listings, now)
	if err != nil {
		return nil, err
	}
	return summary.Round(valuation.DisplayPlaces), nil
}
