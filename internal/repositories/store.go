package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tropicaldog17/keble/internal/db"
)

// RollbackError reports a rollback that itself failed. It is joined to the error
// that triggered the rollback.
type RollbackError struct {
	Err error
}

func (e *RollbackError) Error() string {
	return "rollback failed: " + e.Err.Error()
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}

type gormStore struct {
	db   *db.DB
	inTx bool
}

// NewStore creates a Store backed by database
func NewStore(database *db.DB) Store {
	return &gormStore{db: database}
}

func (s *gormStore) Users() UserRepository               { return NewUserRepository(s.db) }
func (s *gormStore) Wallets() WalletRepository           { return NewWalletRepository(s.db) }
func (s *gormStore) Listings() ListingRepository         { return NewListingRepository(s.db) }
func (s *gormStore) Investments() InvestmentRepository   { return NewInvestmentRepository(s.db) }
func (s *gormStore) Portfolios() PortfolioRepository     { return NewPortfolioRepository(s.db) }
func (s *gormStore) Transactions() TransactionRepository { return NewTransactionRepository(s.db) }

func (s *gormStore) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	// Already inside a transaction: join it
	if s.inTx {
		return fn(s)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&gormStore{db: &db.DB{DB: tx}, inTx: true}); err != nil {
		// a cancelled context has already rolled the transaction back
		if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, &RollbackError{Err: rbErr})
		}
		return err
	}

	if err := ctx.Err(); err != nil {
		tx.Rollback()
		return fmt.Errorf("transaction cancelled: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
