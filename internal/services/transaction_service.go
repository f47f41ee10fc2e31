package services

import (
	"context"

	"github.com/tropicaldog17/keble/internal/models"
	"github.com/tropicaldog17/keble/internal/repositories"
)

type transactionService struct {
	store repositories.Store
}

// NewTransactionService creates a new transaction service
func NewTransactionService(store repositories.Store) TransactionService {
	return &transactionService{store: store}
}

func (s *transactionService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.Transactions().GetByID(ctx, id)
}

func (s *transactionService) ListInvestmentTransactions(ctx context.Context, investmentID string) ([]*models.Transaction, error) {
	// an unknown investment is a 404, not an empty history
	if _, err := s.store.Investments().GetByID(ctx, investmentID); err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions().ListByInvestment(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*models.Transaction{}
	}
	return txs, nil
}
