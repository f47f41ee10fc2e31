package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/keble/internal/models"
	"github.com/tropicaldog17/keble/internal/repositories"
)

type seedResult struct {
	UserID    string
	WalletID  string
	ListingID string
}

// seed inserts a KYC-complete user with a funded wallet and one active listing, in
// one transaction.
func seed(ctx context.Context, store repositories.Store) (*seedResult, error) {
	var result seedResult
	err := store.WithTransaction(ctx, func(tx repositories.Store) error {
		user := &models.User{
			Email:        "demo+" + uuid.NewString()[:8] + "@keble.test",
			FirstName:    "Demo",
			LastName:     "Investor",
			KYCCompleted: true,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		wallet := &models.Wallet{UserID: user.ID, Balance: decimal.NewFromInt(10000), Currency: "USD"}
		if err := tx.Wallets().Create(ctx, wallet); err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}

		returns := decimal.NewFromInt(10)
		fixed := decimal.NewFromInt(12)
		flexible := decimal.NewFromInt(8)
		listing := &models.Listing{
			Name:            "Demo Residences",
			Status:          models.ListingStatusActive,
			Returns:         &returns,
			FixedReturns:    &fixed,
			FlexibleReturns: &flexible,
			HoldingPeriod:   12,
			AvailableTokens: 10000,
		}
		if err := tx.Listings().Create(ctx, listing); err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}

		result = seedResult{UserID: user.ID, WalletID: wallet.ID, ListingID: listing.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
