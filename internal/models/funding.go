package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingLimits are the business constants of the funding flow
type FundingLimits struct {
	MinimumInvestment decimal.Decimal
	TokenValue        decimal.Decimal
	// Timeout bounds the transactional part; zero means no extra deadline
	Timeout time.Duration
}

// FundingState is a step of the funding flow
type FundingState string

const (
	FundingStateValidating        FundingState = "VALIDATING"
	FundingStateDebiting          FundingState = "DEBITING"
	FundingStateWritingInvestment FundingState = "WRITING_INVESTMENT"
	FundingStateAdjustingListing  FundingState = "ADJUSTING_LISTING"
	FundingStateCommitted         FundingState = "COMMITTED"
	FundingStateAborted           FundingState = "ABORTED"
)

// IsTerminal reports whether no further transition is possible
func (s FundingState) IsTerminal() bool {
	return s == FundingStateCommitted || s == FundingStateAborted
}

// FundingRequest is the validated, typed input of a create or top-up.
// A non-nil InvestmentID makes it a top-up.
type FundingRequest struct {
	RequestID      string             `json:"request_id,omitempty"`
	UserID         string             `json:"user_id"`
	ListingID      string             `json:"listing_id"`
	InvestmentID   *string            `json:"investment_id,omitempty"`
	PortfolioID    *string            `json:"portfolio_id,omitempty"`
	Category       InvestmentCategory `json:"investment_category"`
	Amount         decimal.Decimal    `json:"amount"`
	DurationMonths int                `json:"duration"`
}

// IsTopUp reports whether the request increments an existing investment
func (r *FundingRequest) IsTopUp() bool {
	return r.InvestmentID != nil && *r.InvestmentID != ""
}

// FundingResult describes a committed funding request
type FundingResult struct {
	RequestID     string          `json:"request_id"`
	InvestmentID  string          `json:"investment_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Tokens        int64           `json:"tokens"`
	TopUp         bool            `json:"top_up"`
	State         FundingState    `json:"state"`
	CommittedAt   time.Time       `json:"committed_at"`
}

// DividendResult describes a disbursed dividend
type DividendResult struct {
	InvestmentID      string          `json:"investment_id"`
	TransactionID     string          `json:"transaction_id"`
	Amount            decimal.Decimal `json:"amount"`
	LastDividendsDate time.Time       `json:"last_dividends_date"`
	DividendsPaid     decimal.Decimal `json:"dividends_paid"`
}
