package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus represents whether a listing accepts new investments
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "ACTIVE"
	ListingStatusInactive ListingStatus = "INACTIVE"
	ListingStatusSoldOut  ListingStatus = "SOLD_OUT"
)

// Listing is the asset offer investments are made against. Its rate fields are the
// only source of truth for return calculations.
type Listing struct {
	ID     string        `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	Name   string        `json:"name" gorm:"column:name;type:varchar(255);not null"`
	Status ListingStatus `json:"status" gorm:"column:status;type:varchar(20);not null;default:'ACTIVE'"`

	// Rates in percent. FixedReturns and FlexibleReturns supersede Returns when set.
	Returns         *decimal.Decimal `json:"returns,omitempty" gorm:"column:returns;type:decimal(10,4)"`
	FixedReturns    *decimal.Decimal `json:"fixed_returns,omitempty" gorm:"column:fixed_returns;type:decimal(10,4)"`
	FlexibleReturns *decimal.Decimal `json:"flexible_returns,omitempty" gorm:"column:flexible_returns;type:decimal(10,4)"`

	// HoldingPeriod is in months
	HoldingPeriod int `json:"holding_period" gorm:"column:holding_period;not null"`

	// Supply and counters, only ever changed through atomic updates
	AvailableTokens       int64           `json:"available_tokens" gorm:"column:available_tokens;not null;default:0"`
	TotalInvestmentsMade  int64           `json:"total_investments_made" gorm:"column:total_investments_made;not null;default:0"`
	TotalInvestmentAmount decimal.Decimal `json:"total_investment_amount" gorm:"column:total_investment_amount;type:decimal(30,8);not null;default:0"`
	TotalTokensBought     int64           `json:"total_tokens_bought" gorm:"column:total_tokens_bought;not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for the Listing model
func (Listing) TableName() string {
	return "listings"
}

// Validate validates the listing data
func (l *Listing) Validate() error {
	if l.Name == "" {
		return errors.New("listing name is required")
	}
	if l.HoldingPeriod <= 0 {
		return errors.New("holding period must be positive")
	}
	if l.AvailableTokens < 0 {
		return errors.New("available tokens cannot be negative")
	}
	for _, r := range []*decimal.Decimal{l.Returns, l.FixedReturns, l.FlexibleReturns} {
		if r != nil && r.IsNegative() {
			return errors.New("returns cannot be negative")
		}
	}
	return nil
}

// IsActive reports whether the listing accepts new funds
func (l *Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}

// ListingInvestor is the investor set of a listing. The composite key makes
// adding a user idempotent.
type ListingInvestor struct {
	ListingID string    `json:"listing_id" gorm:"primaryKey;column:listing_id;type:varchar(255)"`
	UserID    string    `json:"user_id" gorm:"primaryKey;column:user_id;type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for the ListingInvestor model
func (ListingInvestor) TableName() string {
	return "listing_investors"
}
