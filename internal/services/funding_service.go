package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/keble/internal/errors"
	"github.com/tropicaldog17/keble/internal/models"
	"github.com/tropicaldog17/keble/internal/notify"
	"github.com/tropicaldog17/keble/internal/repositories"
	"github.com/tropicaldog17/keble/internal/valuation"
)

// storagePlaces is the scale of money columns
const storagePlaces int32 = 8

type fundingService struct {
	store     repositories.Store
	publisher notify.Publisher
	logger    *zap.Logger
	limits    models.FundingLimits
	now       func() time.Time
}

// FundingOption configures the funding service
type FundingOption func(*fundingService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) FundingOption {
	return func(s *fundingService) {
		s.now = now
	}
}

// NewFundingService creates a new funding service
func NewFundingService(store repositories.Store, publisher notify.Publisher, logger *zap.Logger, limits models.FundingLimits, opts ...FundingOption) FundingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &fundingService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		limits:    limits,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fundingPlan is everything validation resolved for the write phase
type fundingPlan struct {
	user       *models.User
	wallet     *models.Wallet
	listing    *models.Listing
	investment *models.Investment
	tokens     int64
}

// Tokens is floor(amount / tokenValue)
func Tokens(amount, tokenValue decimal.Decimal) int64 {
	if !tokenValue.IsPositive() {
		return 0
	}
	return amount.Div(tokenValue).Floor().IntPart()
}

func (s *fundingService) Fund(ctx context.Context, req *models.FundingRequest) (*models.FundingResult, error) {
	if req == nil {
		return nil, &apperrors.ErrValidation{Field: "request", Message: "funding request is required"}
	}
	// the caller's request is left as sent
	request := *req
	req = &request
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	log := s.logger.With(
		zap.String("request_id", req.RequestID),
		zap.String("user_id", req.UserID),
		zap.String("listing_id", req.ListingID),
		zap.Bool("top_up", req.IsTopUp()),
	)

	state := models.FundingStateValidating
	transition := func(next models.FundingState) {
		state = next
		log.Debug("funding state", zap.String("state", string(state)))
	}
	transition(models.FundingStateValidating)

	plan, err := s.validate(ctx, req)
	if err != nil {
		log.Info("funding rejected", zap.String("state", string(models.FundingStateAborted)), zap.Error(err))
		return nil, err
	}

	if s.limits.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.limits.Timeout)
		defer cancel()
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	topUp := req.IsTopUp()
	record := &models.Transaction{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		WalletID:  plan.wallet.ID,
		Flow:      models.TransactionFlowDebit,
		Purpose:   models.TransactionPurposeInvestment,
		Amount:    req.Amount,
		Status:    models.TransactionStatusSuccess,
		ListingID: &req.ListingID,
		Reference: "fund_" + req.RequestID,
	}
	if topUp {
		record.Purpose = models.TransactionPurposeTopUp
	}

	// the payment record and the investment reference each other
	investmentID := uuid.New().String()
	if topUp {
		investmentID = plan.investment.ID
	}
	record.InvestmentID = &investmentID

	var failures []apperrors.StepFailure
	fail := func(err error) error {
		failures = append(failures, apperrors.StepFailure{State: string(state), Err: err})
		return err
	}

	err = s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		transition(models.FundingStateDebiting)
		if err := tx.Wallets().Debit(ctx, plan.wallet.ID, req.Amount); err != nil {
			return fail(err)
		}
		if err := tx.Transactions().Create(ctx, record); err != nil {
			return fail(err)
		}

		transition(models.FundingStateWritingInvestment)
		if topUp {
			if err := tx.Investments().IncrementTopUp(ctx, investmentID, req.Amount, plan.tokens); err != nil {
				return fail(err)
			}
		} else {
			end := now.AddDate(0, req.DurationMonths, 0)
			inv := &models.Investment{
				ID:                investmentID,
				UserID:            req.UserID,
				ListingID:         req.ListingID,
				PortfolioID:       req.PortfolioID,
				TransactionID:     &record.ID,
				Category:          req.Category,
				Status:            models.InvestmentStatusActive,
				Amount:            req.Amount,
				NoTokens:          plan.tokens,
				Duration:          req.DurationMonths,
				StartDate:         now,
				EndDate:           end,
				LastDividendsDate: &now,
				DividendsPaid:     decimal.Zero,
			}
			if err := tx.Investments().Create(ctx, inv); err != nil {
				return fail(err)
			}
		}

		transition(models.FundingStateAdjustingListing)
		if err := tx.Listings().ReserveTokens(ctx, req.ListingID, plan.tokens, req.Amount, !topUp); err != nil {
			return fail(err)
		}
		if err := tx.Listings().AddInvestor(ctx, req.ListingID, req.UserID); err != nil {
			return fail(err)
		}
		return nil
	})
	if err != nil {
		var rb *repositories.RollbackError
		if errors.As(err, &rb) {
			failures = append(failures, apperrors.StepFailure{State: string(models.FundingStateAborted), Err: rb})
		}
		if len(failures) == 0 {
			// begin, commit or deadline failures happen outside any step
			failures = append(failures, apperrors.StepFailure{State: string(state), Err: err})
		}
		state = models.FundingStateAborted
		aborted := &apperrors.ErrFundingAborted{RequestID: req.RequestID, Failures: failures}
		log.Warn("funding aborted", zap.String("state", string(state)), zap.Error(aborted))
		return nil, aborted
	}

	transition(models.FundingStateCommitted)
	log.Info("funding committed",
		zap.String("investment_id", investmentID),
		zap.String("amount", req.Amount.String()),
		zap.Int64("tokens", plan.tokens))

	s.publish(notify.Event{
		Type:         notify.EventFundingCommitted,
		RequestID:    req.RequestID,
		UserID:       req.UserID,
		UserName:     plan.user.FullName(),
		InvestmentID: investmentID,
		ListingID:    req.ListingID,
		Amount:       req.Amount,
		TopUp:        topUp,
		OccurredAt:   now,
	})

	return &models.FundingResult{
		RequestID:     req.RequestID,
		InvestmentID:  investmentID,
		TransactionID: record.ID,
		Amount:        req.Amount,
		Tokens:        plan.tokens,
		TopUp:         topUp,
		State:         state,
		CommittedAt:   now,
	}, nil
}

// validate runs every precondition without writing anything
func (s *fundingService) validate(ctx context.Context, req *models.FundingRequest) (*fundingPlan, error) {
	if req.UserID == "" {
		return nil, &apperrors.ErrValidation{Field: "user_id", Message: "user ID is required"}
	}
	if req.ListingID == "" {
		return nil, &apperrors.ErrValidation{Field: "listing_id", Message: "listing ID is required"}
	}
	if !req.Amount.IsPositive() {
		return nil, &apperrors.ErrValidation{Field: "amount", Message: "amount must be positive"}
	}
	if req.Amount.LessThan(s.limits.MinimumInvestment) {
		return nil, &apperrors.ErrValidation{Field: "amount", Message: fmt.Sprintf("amount must be at least %s", s.limits.MinimumInvestment.String())}
	}

	user, err := s.store.Users().GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !user.KYCCompleted {
		return nil, &apperrors.ErrValidation{Field: "user_id", Message: "KYC must be completed before investing"}
	}

	wallet, err := s.store.Wallets().GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !wallet.Covers(req.Amount) {
		return nil, &apperrors.ErrValidation{Field: "amount", Message: "insufficient wallet balance"}
	}

	listing, err := s.store.Listings().GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive() {
		return nil, &apperrors.ErrValidation{Field: "listing_id", Message: "listing is not open for investment"}
	}

	plan := &fundingPlan{user: user, wallet: wallet, listing: listing}

	if req.IsTopUp() {
		if req.PortfolioID != nil && *req.PortfolioID != "" {
			return nil, &apperrors.ErrValidation{Field: "portfolio_id", Message: "a top-up stays in the investment's portfolio"}
		}
		inv, err := s.store.Investments().GetByID(ctx, *req.InvestmentID)
		if err != nil {
			return nil, err
		}
		if inv.UserID != req.UserID {
			return nil, &apperrors.ErrValidation{Field: "investment_id", Message: "investment belongs to another user"}
		}
		if inv.ListingID != req.ListingID {
			return nil, &apperrors.ErrValidation{Field: "investment_id", Message: "investment references a different listing"}
		}
		if inv.Status != models.InvestmentStatusActive {
			return nil, &apperrors.ErrValidation{Field: "investment_id", Message: "only active investments can be topped up"}
		}
		if req.Category != "" && req.Category != inv.Category {
			return nil, &apperrors.ErrValidation{Field: "investment_category", Message: "category does not match the investment"}
		}
		if req.DurationMonths != 0 && req.DurationMonths != inv.Duration {
			return nil, &apperrors.ErrValidation{Field: "duration", Message: "duration does not match the investment"}
		}
		plan.investment = inv
	} else {
		if !req.Category.IsValid() {
			return nil, &apperrors.ErrValidation{Field: "investment_category", Message: "investment category must be FIXED or FLEXIBLE"}
		}
		if req.DurationMonths != listing.HoldingPeriod {
			return nil, &apperrors.ErrValidation{Field: "duration", Message: fmt.Sprintf("duration must equal the listing holding period of %d months", listing.HoldingPeriod)}
		}
		if req.PortfolioID != nil && *req.PortfolioID != "" {
			portfolio, err := s.store.Portfolios().GetByID(ctx, *req.PortfolioID)
			if err != nil {
				return nil, err
			}
			if portfolio.UserID != req.UserID {
				return nil, &apperrors.ErrValidation{Field: "portfolio_id", Message: "portfolio belongs to another user"}
			}
		} else {
			req.PortfolioID = nil
		}
	}

	plan.tokens = Tokens(req.Amount, s.limits.TokenValue)
	if plan.tokens < 1 {
		return nil, &apperrors.ErrValidation{Field: "amount", Message: fmt.Sprintf("amount buys no tokens at a token value of %s", s.limits.TokenValue.String())}
	}
	if plan.tokens > listing.AvailableTokens {
		return nil, &apperrors.ErrValidation{Field: "amount", Message: fmt.Sprintf("only %d tokens are available", listing.AvailableTokens)}
	}

	return plan, nil
}

func (s *fundingService) DisburseDividend(ctx context.Context, investmentID string, now time.Time) (*models.DividendResult, error) {
	log := s.logger.With(zap.String("investment_id", investmentID))
	now = now.UTC().Truncate(time.Microsecond)

	inv, err := s.store.Investments().GetByID(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.Category != models.InvestmentCategoryFlexible {
		return nil, &apperrors.ErrValidation{Field: "investment_category", Message: "only flexible investments pay dividends"}
	}
	switch {
	case inv.IsMatured():
		return nil, &apperrors.ErrValidation{Field: "investment_status", Message: "investment has matured and settled its return"}
	case inv.Status != models.InvestmentStatusActive:
		return nil, &apperrors.ErrValidation{Field: "investment_status", Message: "only active investments pay dividends"}
	}

	listing, err := s.store.Listings().GetByID(ctx, inv.ListingID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, inv.UserID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.store.Wallets().GetByUserID(ctx, inv.UserID)
	if err != nil {
		return nil, err
	}

	payday := now
	if payday.After(inv.EndDate) {
		payday = inv.EndDate
	}

	var result *models.DividendResult
	err = s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		// re-read under lock so the checkpoint and accrual agree
		locked, err := tx.Investments().GetByIDForUpdate(ctx, investmentID)
		if err != nil {
			return err
		}
		checkpoint := locked.AccrualCheckpoint()
		if !payday.After(checkpoint) {
			return &apperrors.ErrValidation{Field: "last_dividends_date", Message: "no dividend has accrued since the last payout"}
		}

		v, err := valuation.ComputeValuation(locked, listing, payday)
		if err != nil {
			return err
		}
		amount := v.AccumulatedReturn.Round(storagePlaces)
		if !amount.IsPositive() {
			return &apperrors.ErrValidation{Field: "amount", Message: "accrued dividend is zero"}
		}

		if err := tx.Investments().AdvanceDividend(ctx, investmentID, locked.LastDividendsDate, payday, amount); err != nil {
			return err
		}
		if err := tx.Wallets().Credit(ctx, wallet.ID, amount); err != nil {
			return err
		}

		record := &models.Transaction{
			ID:           uuid.New().String(),
			UserID:       inv.UserID,
			WalletID:     wallet.ID,
			Flow:         models.TransactionFlowCredit,
			Purpose:      models.TransactionPurposeDividend,
			Amount:       amount,
			Status:       models.TransactionStatusSuccess,
			ListingID:    &inv.ListingID,
			InvestmentID: &inv.ID,
			Reference:    fmt.Sprintf("div_%s_%d", inv.ID, payday.Unix()),
		}
		if err := tx.Transactions().Create(ctx, record); err != nil {
			return err
		}

		result = &models.DividendResult{
			InvestmentID:      inv.ID,
			TransactionID:     record.ID,
			Amount:            amount,
			LastDividendsDate: payday,
			DividendsPaid:     locked.DividendsPaid.Add(amount),
		}
		return nil
	})
	if err != nil {
		log.Warn("dividend disbursement failed", zap.Error(err))
		return nil, err
	}

	log.Info("dividend disbursed", zap.String("amount", result.Amount.String()))
	s.publish(notify.Event{
		Type:         notify.EventDividendDisbursed,
		UserID:       inv.UserID,
		UserName:     user.FullName(),
		InvestmentID: inv.ID,
		ListingID:    inv.ListingID,
		Amount:       result.Amount,
		OccurredAt:   now,
	})
	return result, nil
}

// publish hands the event to the notifier after commit. It never fails the caller.
func (s *fundingService) publish(event notify.Event) {
	if s.publisher == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("notification publish panicked",
				zap.String("event", event.Type),
				zap.Any("panic", r))
		}
	}()
	s.publisher.Publish(event)
}
