package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentCategory decides which listing rate applies and where accrual starts
type InvestmentCategory string

const (
	InvestmentCategoryFixed    InvestmentCategory = "FIXED"
	InvestmentCategoryFlexible InvestmentCategory = "FLEXIBLE"
)

// IsValid reports whether c is a known category
func (c InvestmentCategory) IsValid() bool {
	return c == InvestmentCategoryFixed || c == InvestmentCategoryFlexible
}

// InvestmentStatus represents the lifecycle state of an investment
type InvestmentStatus string

const (
	InvestmentStatusActive  InvestmentStatus = "ACTIVE"
	InvestmentStatusMatured InvestmentStatus = "MATURED"
)

// Investment is a user's committed principal against a single listing
type Investment struct {
	ID            string  `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID        string  `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	ListingID     string  `json:"listing_id" gorm:"column:listing_id;type:varchar(255);not null;index"`
	PortfolioID   *string `json:"portfolio_id,omitempty" gorm:"column:portfolio_id;type:varchar(255);index"`
	TransactionID *string `json:"transaction_id,omitempty" gorm:"column:transaction_id;type:varchar(255)"`

	Category InvestmentCategory `json:"investment_category" gorm:"column:investment_category;type:varchar(20);not null"`
	Status   InvestmentStatus   `json:"investment_status" gorm:"column:investment_status;type:varchar(20);not null;default:'ACTIVE';index"`

	// Economic attributes
	Amount   decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(30,8);not null"`
	NoTokens int64           `json:"no_tokens" gorm:"column:no_tokens;not null;default:0"`
	// Duration is the contractual length in months
	Duration  int       `json:"duration" gorm:"column:duration;not null"`
	StartDate time.Time `json:"start_date" gorm:"column:start_date;not null"`
	EndDate   time.Time `json:"end_date" gorm:"column:end_date;not null"`

	// Dividend checkpoint, flexible investments only
	LastDividendsDate *time.Time      `json:"last_dividends_date,omitempty" gorm:"column:last_dividends_date"`
	DividendsPaid     decimal.Decimal `json:"dividends_paid" gorm:"column:dividends_paid;type:decimal(30,8);not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for the Investment model
func (Investment) TableName() string {
	return "investments"
}

// Validate checks the invariants every stored investment must hold
func (i *Investment) Validate() error {
	if i.UserID == "" {
		return errors.New("user ID is required")
	}
	if i.ListingID == "" {
		return errors.New("listing ID is required")
	}
	if !i.Category.IsValid() {
		return errors.New("investment category must be FIXED or FLEXIBLE")
	}
	if i.Status != InvestmentStatusActive && i.Status != InvestmentStatusMatured {
		return errors.New("investment status must be ACTIVE or MATURED")
	}
	if !i.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if i.NoTokens < 0 {
		return errors.New("token count cannot be negative")
	}
	if !i.EndDate.After(i.StartDate) {
		return errors.New("end date must be after start date")
	}
	if i.LastDividendsDate != nil {
		if i.LastDividendsDate.Before(i.StartDate) || i.LastDividendsDate.After(i.EndDate) {
			return errors.New("last dividends date must fall within the investment term")
		}
	}
	return nil
}

// AccrualCheckpoint returns the instant from which the current accrual is measured:
// the last dividend date for flexible investments, the start date otherwise.
func (i *Investment) AccrualCheckpoint() time.Time {
	if i.Category == InvestmentCategoryFlexible && i.LastDividendsDate != nil {
		return *i.LastDividendsDate
	}
	return i.StartDate
}

// IsMatured reports whether the investment has realised its full return
func (i *Investment) IsMatured() bool {
	return i.Status == InvestmentStatusMatured
}

// InvestmentFilter represents filters for querying investments
type InvestmentFilter struct {
	UserID      string
	PortfolioID string
	ListingID   string
	Status      InvestmentStatus
	Limit       int
	Offset      int
}
