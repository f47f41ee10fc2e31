package services

import (
	"context"
	"time"

	"github.com/tropicaldog17/keble/internal/models"
	"github.com/tropicaldog17/keble/internal/valuation"
)

// FundingService defines the interface for creating and topping up investments
type FundingService interface {
	// Fund debits the wallet and creates or tops up an investment as one atomic unit
	Fund(ctx context.Context, req *models.FundingRequest) (*models.FundingResult, error)
	// DisburseDividend pays a flexible investment's accrual since its last checkpoint
	DisburseDividend(ctx context.Context, investmentID string, now time.Time) (*models.DividendResult, error)
}

// ValuationService defines the interface for valuation queries. Results are
// rounded for display.
type ValuationService interface {
	GetUserValuation(ctx context.Context, userID string, now time.Time) (*valuation.Summary, error)
	GetPortfolioValuation(ctx context.Context, portfolioID string, now time.Time) (*PortfolioValuation, error)
	GetInvestmentValuation(ctx context.Context, investmentID string, now time.Time) (*valuation.Valuation, error)
}

// PortfolioService defines the interface for portfolio operations
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, userID, name, planCategory, planOccurrence string) (*models.Portfolio, error)
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error)
}

// TransactionService defines the interface for payment record queries
type TransactionService interface {
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	// ListInvestmentTransactions returns the investment's records oldest first
	ListInvestmentTransactions(ctx context.Context, investmentID string) ([]*models.Transaction, error)
}

// PortfolioValuation is a portfolio with its derived totals
type PortfolioValuation struct {
	Portfolio *models.Portfolio  `json:"portfolio"`
	Summary   *valuation.Summary `json:"summary"`
}
