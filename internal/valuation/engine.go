package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/tropicaldog17/keble/internal/errors"
	"github.com/tropicaldog17/keble/internal/models"
)

// DisplayPlaces is the precision used at output boundaries
const DisplayPlaces int32 = 2

// Valuation is the current value of one investment
type Valuation struct {
	InvestmentID      string                    `json:"investment_id"`
	ListingID         string                    `json:"listing_id"`
	Category          models.InvestmentCategory `json:"investment_category"`
	Status            models.InvestmentStatus   `json:"investment_status"`
	Amount            decimal.Decimal           `json:"amount"`
	Rate              decimal.Decimal           `json:"rate"`
	ElapsedFraction   decimal.Decimal           `json:"elapsed_fraction"`
	AccumulatedReturn decimal.Decimal           `json:"accumulated_return"`
	CurrentValue      decimal.Decimal           `json:"current_value"`
	ExpectedPayout    decimal.Decimal           `json:"expected_payout"`
	Tokens            int64                     `json:"no_tokens"`
}

// Round returns a copy with money fields rounded to places
func (v Valuation) Round(places int32) Valuation {
	v.Amount = v.Amount.Round(places)
	v.AccumulatedReturn = v.AccumulatedReturn.Round(places)
	v.CurrentValue = v.CurrentValue.Round(places)
	v.ExpectedPayout = v.ExpectedPayout.Round(places)
	return v
}

// Summary aggregates valuations of a user's or a portfolio's investments
type Summary struct {
	InvestmentCount        int             `json:"investment_count"`
	TotalAmountInvested    decimal.Decimal `json:"total_amount_invested"`
	TotalCurrentValue      decimal.Decimal `json:"total_current_value"`
	TotalAccumulatedReturn decimal.Decimal `json:"total_accumulated_return"`
	TotalExpectedPayout    decimal.Decimal `json:"total_expected_payout"`
	TotalTokens            int64           `json:"total_tokens"`
	UniqueAssetCount       int             `json:"unique_asset_count"`
	Investments            []Valuation     `json:"investments"`
}

// Round returns a copy with every money field rounded to places. Totals are summed
// unrounded first, so the rounded total may differ from the sum of rounded lines.
func (s *Summary) Round(places int32) *Summary {
	out := *s
	out.TotalAmountInvested = s.TotalAmountInvested.Round(places)
	out.TotalCurrentValue = s.TotalCurrentValue.Round(places)
	out.TotalAccumulatedReturn = s.TotalAccumulatedReturn.Round(places)
	out.TotalExpectedPayout = s.TotalExpectedPayout.Round(places)
	out.Investments = make([]Valuation, len(s.Investments))
	for i, v := range s.Investments {
		out.Investments[i] = v.Round(places)
	}
	return &out
}

// SelectRate picks the listing rate for a category. The category-specific rate
// wins unless it is unset or zero, in which case the legacy single rate applies.
func SelectRate(category models.InvestmentCategory, listing *models.Listing) decimal.Decimal {
	var specific *decimal.Decimal
	switch category {
	case models.InvestmentCategoryFixed:
		specific = listing.FixedReturns
	case models.InvestmentCategoryFlexible:
		specific = listing.FlexibleReturns
	}
	if specific != nil && !specific.IsZero() {
		return *specific
	}
	if listing.Returns != nil {
		return *listing.Returns
	}
	return decimal.Zero
}

// ComputeValuation values a single investment at now.
//
// Matured investments are worth their full expected payout. Active ones accrue
// SimpleReturn prorated by the time since their accrual checkpoint over the full
// term: the start date for FIXED, the last dividend date for FLEXIBLE.
func ComputeValuation(inv *models.Investment, listing *models.Listing, now time.Time) (Valuation, error) {
	if listing == nil {
		return Valuation{}, apperrors.MissingListing(inv.ListingID)
	}

	rate := SelectRate(inv.Category, listing)
	v := Valuation{
		InvestmentID:   inv.ID,
		ListingID:      inv.ListingID,
		Category:       inv.Category,
		Status:         inv.Status,
		Amount:         inv.Amount,
		Rate:           rate,
		ExpectedPayout: ExpectedPayout(inv.Amount, rate),
		Tokens:         inv.NoTokens,
	}

	if inv.IsMatured() {
		v.ElapsedFraction = one
		v.AccumulatedReturn = SimpleReturn(inv.Amount, rate)
		v.CurrentValue = v.ExpectedPayout
		return v, nil
	}
	if inv.Status != models.InvestmentStatusActive {
		return Valuation{}, &apperrors.ErrValidation{Field: "investment_status", Message: "unknown status " + string(inv.Status)}
	}

	total := durationSeconds(inv.StartDate, inv.EndDate)
	elapsed := durationSeconds(inv.AccrualCheckpoint(), now)
	fraction, err := ProrationRatio(elapsed, total)
	if err != nil {
		return Valuation{}, err
	}

	v.ElapsedFraction = fraction
	v.AccumulatedReturn = AccumulatedReturn(inv.Amount, rate, fraction)
	v.CurrentValue = inv.Amount.Add(v.AccumulatedReturn)
	return v, nil
}

// AggregateValuation values every investment and sums the results exactly.
// A missing listing fails the whole computation.
func AggregateValuation(investments []*models.Investment, listingsByID map[string]*models.Listing, now time.Time) (*Summary, error) {
	s := &Summary{
		TotalAmountInvested:    decimal.Zero,
		TotalCurrentValue:      decimal.Zero,
		TotalAccumulatedReturn: decimal.Zero,
		TotalExpectedPayout:    decimal.Zero,
		Investments:            make([]Valuation, 0, len(investments)),
	}
	assets := make(map[string]struct{})

	for _, inv := range investments {
		v, err := ComputeValuation(inv, listingsByID[inv.ListingID], now)
		if err != nil {
			return nil, err
		}
		s.Investments = append(s.Investments, v)
		s.TotalAmountInvested = s.TotalAmountInvested.Add(v.Amount)
		s.TotalCurrentValue = s.TotalCurrentValue.Add(v.CurrentValue)
		s.TotalAccumulatedReturn = s.TotalAccumulatedReturn.Add(v.AccumulatedReturn)
		s.TotalExpectedPayout = s.TotalExpectedPayout.Add(v.ExpectedPayout)
		s.TotalTokens += v.Tokens
		assets[inv.ListingID] = struct{}{}
	}

	s.InvestmentCount = len(s.Investments)
	s.UniqueAssetCount = len(assets)
	return s, nil
}

// NextDividend is the periodic dividend a flexible investment pays per quarter
func NextDividend(inv *models.Investment, listing *models.Listing) (decimal.Decimal, error) {
	if listing == nil {
		return decimal.Zero, apperrors.MissingListing(inv.ListingID)
	}
	rate := SelectRate(inv.Category, listing)
	return PeriodicDividend(inv.Amount, rate, decimal.NewFromInt(int64(inv.Duration)))
}
