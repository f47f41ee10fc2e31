package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tropicaldog17/keble/internal/db"
	apperrors "github.com/tropicaldog17/keble/internal/errors"
	"github.com/tropicaldog17/keble/internal/models"
)

type listingRepository struct {
	db *db.DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(database *db.DB) ListingRepository {
	return &listingRepository{db: database}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if err := listing.Validate(); err != nil {
		return &apperrors.ErrValidation{Field: "listing", Message: err.Error()}
	}
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if listing.Status == "" {
		listing.Status = models.ListingStatusActive
	}
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.MissingListing(id)
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

func (r *listingRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Listing, error) {
	out := make(map[string]*models.Listing, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var listings []*models.Listing
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}
	for _, l := range listings {
		out[l.ID] = l
	}
	return out, nil
}

func (r *listingRepository) ReserveTokens(ctx context.Context, listingID string, tokens int64, amount decimal.Decimal, newInvestment bool) error {
	if tokens <= 0 {
		return &apperrors.ErrValidation{Field: "tokens", Message: "token count must be positive"}
	}

	updates := map[string]interface{}{
		"available_tokens":        gorm.Expr("available_tokens - ?", tokens),
		"total_investment_amount": gorm.Expr("total_investment_amount + ?", amount),
		"total_tokens_bought":     gorm.Expr("total_tokens_bought + ?", tokens),
	}
	if newInvestment {
		updates["total_investments_made"] = gorm.Expr("total_investments_made + ?", 1)
	}

	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND available_tokens >= ?", listingID, tokens).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to reserve listing tokens: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", listingID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check listing: %w", err)
		}
		if count == 0 {
			return apperrors.MissingListing(listingID)
		}
		return ErrInsufficientTokens
	}
	return nil
}

func (r *listingRepository) AddInvestor(ctx context.Context, listingID, userID string) error {
	investor := &models.ListingInvestor{ListingID: listingID, UserID: userID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(investor).Error; err != nil {
		return fmt.Errorf("failed to add listing investor: %w", err)
	}
	return nil
}

func (r *listingRepository) CountInvestors(ctx context.Context, listingID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ListingInvestor{}).Where("listing_id = ?", listingID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count listing investors: %w", err)
	}
	return count, nil
}
