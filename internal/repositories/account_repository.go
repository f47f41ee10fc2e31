package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tropicaldog17/keble/internal/db"
	apperrors "github.com/tropicaldog17/keble/internal/errors"
	"github.com/tropicaldog17/keble/internal/models"
)

type userRepository struct {
	db *db.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(database *db.DB) UserRepository {
	return &userRepository{db: database}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.MissingUser(id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

type walletRepository struct {
	db *db.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(database *db.DB) WalletRepository {
	return &walletRepository{db: database}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}
	if wallet.Currency == "" {
		wallet.Currency = "USD"
	}
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).First(&wallet, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.MissingWallet(userID)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Debit(ctx context.Context, walletID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &apperrors.ErrValidation{Field: "amount", Message: "debit amount must be positive"}
	}

	result := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", walletID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to debit wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.guardFailure(ctx, walletID, ErrInsufficientBalance)
	}
	return nil
}

func (r *walletRepository) Credit(ctx context.Context, walletID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &apperrors.ErrValidation{Field: "amount", Message: "credit amount must be positive"}
	}

	result := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to credit wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &apperrors.ErrNotFound{Entity: apperrors.EntityWallet, ID: walletID}
	}
	return nil
}

// guardFailure tells a missing wallet apart from a failed balance guard
func (r *walletRepository) guardFailure(ctx context.Context, walletID string, guardErr error) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Wallet{}).Where("id = ?", walletID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check wallet: %w", err)
	}
	if count == 0 {
		return &apperrors.ErrNotFound{Entity: apperrors.EntityWallet, ID: walletID}
	}
	return guardErr
}
