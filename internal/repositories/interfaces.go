package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tropicaldog17/keble/internal/models"
)

// Guard failures of the conditional updates. A zero-row update means the guarded
// condition no longer held when the statement ran.
var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrInsufficientTokens  = errors.New("insufficient listing tokens")
	ErrStaleCheckpoint     = errors.New("dividend checkpoint changed concurrently")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// WalletRepository defines the interface for wallet data operations
type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*models.Wallet, error)
	// Debit subtracts amount only while the balance covers it
	Debit(ctx context.Context, walletID string, amount decimal.Decimal) error
	Credit(ctx context.Context, walletID string, amount decimal.Decimal) error
}

// ListingRepository defines the interface for listing data operations
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	// GetByIDs returns the listings found, keyed by id. Missing ids are absent.
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Listing, error)
	// ReserveTokens decrements the supply only while enough tokens remain and bumps
	// the investment counters. newInvestment counts a created investment.
	ReserveTokens(ctx context.Context, listingID string, tokens int64, amount decimal.Decimal, newInvestment bool) error
	// AddInvestor is an idempotent set-add of userID to the listing's investors
	AddInvestor(ctx context.Context, listingID, userID string) error
	CountInvestors(ctx context.Context, listingID string) (int64, error)
}

// InvestmentRepository defines the interface for investment data operations
type InvestmentRepository interface {
	Create(ctx context.Context, inv *models.Investment) error
	GetByID(ctx context.Context, id string) (*models.Investment, error)
	// GetByIDForUpdate row-locks the investment for the rest of the transaction
	GetByIDForUpdate(ctx context.Context, id string) (*models.Investment, error)
	List(ctx context.Context, filter *models.InvestmentFilter) ([]*models.Investment, error)
	IncrementTopUp(ctx context.Context, id string, amount decimal.Decimal, tokens int64) error
	// AdvanceDividend moves the checkpoint from previous to next and adds amount to
	// dividends_paid, failing with ErrStaleCheckpoint if previous is no longer current.
	AdvanceDividend(ctx context.Context, id string, previous *time.Time, next time.Time, amount decimal.Decimal) error
}

// PortfolioRepository defines the interface for portfolio data operations
type PortfolioRepository interface {
	Create(ctx context.Context, portfolio *models.Portfolio) error
	GetByID(ctx context.Context, id string) (*models.Portfolio, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Portfolio, error)
}

// TransactionRepository defines the interface for payment record operations
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	ListByInvestment(ctx context.Context, investmentID string) ([]*models.Transaction, error)
}

// Store groups the repositories so a unit of work can run against one database
// transaction.
type Store interface {
	Users() UserRepository
	Wallets() WalletRepository
	Listings() ListingRepository
	Investments() InvestmentRepository
	Portfolios() PortfolioRepository
	Transactions() TransactionRepository

	// WithTransaction runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise, including
	// on panic or context cancellation.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}
