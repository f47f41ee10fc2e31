package models

import (
	"errors"
	"time"
)

// Plan categories and occurrences for portfolios
const (
	PlanCategoryGrowth = "growth"
	PlanCategoryIncome = "income"

	PlanOccurrenceOneOff    = "one_off"
	PlanOccurrenceMonthly   = "monthly"
	PlanOccurrenceQuarterly = "quarterly"
)

// Portfolio groups a user's investments. Current value and amount invested are
// always derived from its investments and never stored.
type Portfolio struct {
	ID             string    `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID         string    `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	Name           string    `json:"name" gorm:"column:name;type:varchar(255);not null"`
	PlanCategory   string    `json:"plan_category" gorm:"column:plan_category;type:varchar(50);not null"`
	PlanOccurrence string    `json:"plan_occurrence" gorm:"column:plan_occurrence;type:varchar(50);not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for the Portfolio model
func (Portfolio) TableName() string {
	return "portfolios"
}

// Validate validates the portfolio data
func (p *Portfolio) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if p.Name == "" {
		return errors.New("portfolio name is required")
	}
	switch p.PlanCategory {
	case PlanCategoryGrowth, PlanCategoryIncome:
	default:
		return errors.New("plan category must be 'growth' or 'income'")
	}
	switch p.PlanOccurrence {
	case PlanOccurrenceOneOff, PlanOccurrenceMonthly, PlanOccurrenceQuarterly:
	default:
		return errors.New("plan occurrence must be 'one_off', 'monthly' or 'quarterly'")
	}
	return nil
}
