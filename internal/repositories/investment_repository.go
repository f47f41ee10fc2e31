package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tropicaldog17/keble/internal/db"
	apperrors "github.com/tropicaldog17/keble/internal/errors"
	"github.com/tropicaldog17/keble/internal/models"
)

type investmentRepository struct {
	db *db.DB
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(database *db.DB) InvestmentRepository {
	return &investmentRepository{db: database}
}

func (r *investmentRepository) Create(ctx context.Context, inv *models.Investment) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Status == "" {
		inv.Status = models.InvestmentStatusActive
	}
	if err := inv.Validate(); err != nil {
		return &apperrors.ErrValidation{Field: "investment", Message: err.Error()}
	}
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

func (r *investmentRepository) GetByID(ctx context.Context, id string) (*models.Investment, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *investmentRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Investment, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *investmentRepository) get(query *gorm.DB, id string) (*models.Investment, error) {
	var inv models.Investment
	if err := query.First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.MissingInvestment(id)
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return &inv, nil
}

func (r *investmentRepository) List(ctx context.Context, filter *models.InvestmentFilter) ([]*models.Investment, error) {
	query := r.db.WithContext(ctx)

	if filter != nil {
		if filter.UserID != "" {
			query = query.Where("user_id = ?", filter.UserID)
		}
		if filter.PortfolioID != "" {
			query = query.Where("portfolio_id = ?", filter.PortfolioID)
		}
		if filter.ListingID != "" {
			query = query.Where("listing_id = ?", filter.ListingID)
		}
		if filter.Status != "" {
			query = query.Where("investment_status = ?", filter.Status)
		}
	}

	query = query.Order("start_date ASC, id ASC")

	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
	}

	var investments []*models.Investment
	if err := query.Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return investments, nil
}

func (r *investmentRepository) IncrementTopUp(ctx context.Context, id string, amount decimal.Decimal, tokens int64) error {
	if !amount.IsPositive() {
		return &apperrors.ErrValidation{Field: "amount", Message: "top-up amount must be positive"}
	}

	result := r.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ? AND investment_status = ?", id, models.InvestmentStatusActive).
		Updates(map[string]interface{}{
			"amount":    gorm.Expr("amount + ?", amount),
			"no_tokens": gorm.Expr("no_tokens + ?", tokens),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to top up investment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.MissingInvestment(id)
	}
	return nil
}

func (r *investmentRepository) AdvanceDividend(ctx context.Context, id string, previous *time.Time, next time.Time, amount decimal.Decimal) error {
	query := r.db.WithContext(ctx).Model(&models.Investment{}).Where("id = ?", id)
	if previous == nil {
		query = query.Where("last_dividends_date IS NULL")
	} else {
		// never move the checkpoint backwards
		if next.Before(*previous) {
			return &apperrors.ErrValidation{Field: "last_dividends_date", Message: "checkpoint cannot move backwards"}
		}
		query = query.Where("last_dividends_date = ?", *previous)
	}

	result := query.Updates(map[string]interface{}{
		"last_dividends_date": next,
		"dividends_paid":      gorm.Expr("dividends_paid + ?", amount),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to advance dividend checkpoint: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleCheckpoint
	}
	return nil
}
