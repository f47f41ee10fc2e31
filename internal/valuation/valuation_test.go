package valuation

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tropicaldog17/keble/internal/errors"
	"github.com/tropicaldog17/keble/internal/models"
)

var termStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return termStart.AddDate(0, 0, n)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

// 360-day terms keep the test fractions exact
func fixedInvestment(amount string) *models.Investment {
	return &models.Investment{
		ID:        "inv_fixed",
		UserID:    "usr_1",
		ListingID: "lst_1",
		Category:  models.InvestmentCategoryFixed,
		Status:    models.InvestmentStatusActive,
		Amount:    dec(amount),
		NoTokens:  10,
		Duration:  12,
		StartDate: termStart,
		EndDate:   day(360),
	}
}

func flexibleInvestment(amount string, checkpoint time.Time) *models.Investment {
	inv := fixedInvestment(amount)
	inv.ID = "inv_flex"
	inv.Category = models.InvestmentCategoryFlexible
	inv.LastDividendsDate = &checkpoint
	return inv
}

func TestDurationDifference(t *testing.T) {
	requireDecimal(t, "1", DurationDifference(termStart, day(365)))
	requireDecimal(t, "0", DurationDifference(termStart, termStart))

	a, b := termStart, day(100).Add(90*time.Minute)
	assert.True(t, DurationDifference(a, b).Equal(DurationDifference(b, a).Neg()))
	assert.True(t, DurationDifference(b, a).IsNegative())
}

func TestDurationDifference_SubSecond(t *testing.T) {
	end := termStart.Add(1500 * time.Millisecond)
	requireDecimal(t, "1.5", durationSeconds(termStart, end))
}

func TestProrationRatio(t *testing.T) {
	tests := []struct {
		name    string
		elapsed string
		total   string
		want    string
	}{
		{name: "half", elapsed: "1", total: "2", want: "0.5"},
		{name: "negative elapsed clamps to zero", elapsed: "-3", total: "2", want: "0"},
		{name: "overrun clamps to one", elapsed: "5", total: "2", want: "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProrationRatio(dec(tt.elapsed), dec(tt.total))
			require.NoError(t, err)
			requireDecimal(t, tt.want, got)
		})
	}

	_, err := ProrationRatio(dec("1"), decimal.Zero)
	require.ErrorIs(t, err, apperrors.ErrDivisionByZero)
	_, err = ProrationRatio(dec("1"), dec("-1"))
	require.ErrorIs(t, err, apperrors.ErrDivisionByZero)
}

func TestReturnFormulas(t *testing.T) {
	requireDecimal(t, "120", SimpleReturn(dec("1000"), dec("12")))
	requireDecimal(t, "1120", ExpectedPayout(dec("1000"), dec("12")))
	requireDecimal(t, "60", AccumulatedReturn(dec("1000"), dec("12"), dec("0.5")))

	dividend, err := PeriodicDividend(dec("500"), dec("8"), dec("12"))
	require.NoError(t, err)
	requireDecimal(t, "10", dividend)

	_, err = PeriodicDividend(dec("500"), dec("8"), decimal.Zero)
	require.ErrorIs(t, err, apperrors.ErrDivisionByZero)
	_, err = PeriodicDividend(dec("500"), dec("8"), dec("-6"))
	require.ErrorIs(t, err, apperrors.ErrDivisionByZero)
}

func TestSelectRate(t *testing.T) {
	tests := []struct {
		name     string
		category models.InvestmentCategory
		listing  *models.Listing
		want     string
	}{
		{
			name:     "fixed uses fixed_returns",
			category: models.InvestmentCategoryFixed,
			listing:  &models.Listing{Returns: decPtr("5"), FixedReturns: decPtr("12"), FlexibleReturns: decPtr("8")},
			want:     "12",
		},
		{
			name:     "flexible uses flexible_returns",
			category: models.InvestmentCategoryFlexible,
			listing:  &models.Listing{Returns: decPtr("5"), FixedReturns: decPtr("12"), FlexibleReturns: decPtr("8")},
			want:     "8",
		},
		{
			name:     "fixed falls back when unset",
			category: models.InvestmentCategoryFixed,
			listing:  &models.Listing{Returns: decPtr("5"), FlexibleReturns: decPtr("8")},
			want:     "5",
		},
		{
			name:     "flexible falls back when zero",
			category: models.InvestmentCategoryFlexible,
			listing:  &models.Listing{Returns: decPtr("5"), FlexibleReturns: decPtr("0")},
			want:     "5",
		},
		{
			name:     "no rate at all",
			category: models.InvestmentCategoryFixed,
			listing:  &models.Listing{},
			want:     "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireDecimal(t, tt.want, SelectRate(tt.category, tt.listing))
		})
	}
}

func TestComputeValuation_FixedActiveHalfTerm(t *testing.T) {
	listing := &models.Listing{ID: "lst_1", FixedReturns: decPtr("12")}
	v, err := ComputeValuation(fixedInvestment("1000"), listing, day(180))
	require.NoError(t, err)

	requireDecimal(t, "0.5", v.ElapsedFraction)
	requireDecimal(t, "60", v.AccumulatedReturn)
	requireDecimal(t, "1060", v.CurrentValue)
	requireDecimal(t, "1120", v.ExpectedPayout)
}

func TestComputeValuation_MaturedIgnoresElapsedTime(t *testing.T) {
	listing := &models.Listing{ID: "lst_1", FixedReturns: decPtr("12")}
	inv := fixedInvestment("1000")
	inv.Status = models.InvestmentStatusMatured

	for _, now := range []time.Time{day(-10), day(30), day(180), day(720)} {
		v, err := ComputeValuation(inv, listing, now)
		require.NoError(t, err)
		requireDecimal(t, "1120", v.CurrentValue)
		requireDecimal(t, "120", v.AccumulatedReturn)
		assert.True(t, v.CurrentValue.Equal(ExpectedPayout(inv.Amount, dec("12"))))
	}
}

func TestComputeValuation_FlexibleMeasuresFromLastDividend(t *testing.T) {
	listing := &models.Listing{ID: "lst_1", FlexibleReturns: decPtr("8")}
	inv := flexibleInvestment("500", day(90))

	v, err := ComputeValuation(inv, listing, day(180))
	require.NoError(t, err)
	requireDecimal(t, "0.25", v.ElapsedFraction)
	requireDecimal(t, "10", v.AccumulatedReturn)
	requireDecimal(t, "510", v.CurrentValue)
}

func TestComputeValuation_FlexibleWithoutCheckpointUsesStart(t *testing.T) {
	listing := &models.Listing{ID: "lst_1", FlexibleReturns: decPtr("8")}
	inv := flexibleInvestment("500", termStart)
	inv.LastDividendsDate = nil

	v, err := ComputeValuation(inv, listing, day(90))
	require.NoError(t, err)
	requireDecimal(t, "10", v.AccumulatedReturn)
}

func TestComputeValuation_ActiveBounds(t *testing.T) {
	listing := &models.Listing{ID: "lst_1", FixedReturns: decPtr("12"), FlexibleReturns: decPtr("8")}
	full := SimpleReturn(dec("1000"), dec("12"))

	for _, now := range []time.Time{day(-30), termStart, day(1), day(359), day(360), day(900)} {
		v, err := ComputeValuation(fixedInvestment("1000"), listing, now)
		require.NoError(t, err)
		assert.False(t, v.AccumulatedReturn.IsNegative(), "negative accrual at %s", now)
		assert.True(t, v.AccumulatedReturn.LessThanOrEqual(full), "accrual beyond full term at %s", now)
		assert.True(t, v.CurrentValue.LessThanOrEqual(v.ExpectedPayout))
	}
}

func TestComputeValuation_MonotonicInNow(t *testing.T) {
	listing := &models.Listing{ID: "lst_1", FixedReturns: decPtr("12"), FlexibleReturns: decPtr("8")}
	investments := []*models.Investment{
		fixedInvestment("1000"),
		flexibleInvestment("750", day(45)),
	}

	for _, inv := range investments {
		prev := decimal.NewFromInt(-1)
		for d := -20; d <= 400; d += 7 {
			v, err := ComputeValuation(inv, listing, day(d).Add(13*time.Hour))
			require.NoError(t, err)
			require.True(t, v.AccumulatedReturn.GreaterThanOrEqual(prev),
				"%s: accrual decreased at day %d: %s < %s", inv.ID, d, v.AccumulatedReturn, prev)
			prev = v.AccumulatedReturn
		}
	}
}

func TestComputeValuation_Idempotent(t *testing.T) {
	listing := &models.Listing{ID: "lst_1", FlexibleReturns: decPtr("8")}
	inv := flexibleInvestment("500", day(30))
	now := day(211).Add(37 * time.Minute)

	first, err := ComputeValuation(inv, listing, now)
	require.NoError(t, err)
	second, err := ComputeValuation(inv, listing, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeValuation_Errors(t *testing.T) {
	_, err := ComputeValuation(fixedInvestment("1000"), nil, day(10))
	require.True(t, apperrors.IsNotFound(err, apperrors.EntityListing))

	zeroTerm := fixedInvestment("1000")
	zeroTerm.EndDate = zeroTerm.StartDate
	_, err = ComputeValuation(zeroTerm, &models.Listing{FixedReturns: decPtr("12")}, day(10))
	require.ErrorIs(t, err, apperrors.ErrDivisionByZero)

	unknown := fixedInvestment("1000")
	unknown.Status = "PAUSED"
	_, err = ComputeValuation(unknown, &models.Listing{FixedReturns: decPtr("12")}, day(10))
	var verr *apperrors.ErrValidation
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "investment_status", verr.Field)
}

func TestAggregateValuation(t *testing.T) {
	listings := map[string]*models.Listing{
		"lst_1": {ID: "lst_1", FixedReturns: decPtr("12")},
		"lst_2": {ID: "lst_2", FlexibleReturns: decPtr("8")},
	}

	a := fixedInvestment("1000")
	b := flexibleInvestment("500", day(90))
	b.ListingID = "lst_2"
	b.NoTokens = 5
	c := fixedInvestment("1000")
	c.ID = "inv_matured"
	c.Status = models.InvestmentStatusMatured
	c.NoTokens = 3

	summary, err := AggregateValuation([]*models.Investment{a, b, c}, listings, day(180))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.InvestmentCount)
	assert.Equal(t, int64(18), summary.TotalTokens)
	assert.Equal(t, 2, summary.UniqueAssetCount)
	requireDecimal(t, "2500", summary.TotalAmountInvested)
	requireDecimal(t, "190", summary.TotalAccumulatedReturn) // 60 + 10 + 120
	requireDecimal(t, "2690", summary.TotalCurrentValue)
	require.Len(t, summary.Investments, 3)
}

func TestAggregateValuation_Empty(t *testing.T) {
	summary, err := AggregateValuation(nil, nil, day(1))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.InvestmentCount)
	assert.Equal(t, 0, summary.UniqueAssetCount)
	assert.True(t, summary.TotalCurrentValue.IsZero())
	assert.NotNil(t, summary.Investments)
}

func TestAggregateValuation_MissingListingFails(t *testing.T) {
	listings := map[string]*models.Listing{"lst_1": {ID: "lst_1", FixedReturns: decPtr("12")}}
	orphan := fixedInvestment("200")
	orphan.ListingID = "lst_gone"

	_, err := AggregateValuation([]*models.Investment{fixedInvestment("1000"), orphan}, listings, day(10))
	var nf *apperrors.ErrNotFound
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "lst_gone", nf.ID)
}

func TestSummaryRound_OnlyAtBoundary(t *testing.T) {
	// 100 at 1% for a third of a 300-day term accrues 0.333... each
	listings := map[string]*models.Listing{"lst_1": {ID: "lst_1", FixedReturns: decPtr("1")}}
	var investments []*models.Investment
	for i := 0; i < 3; i++ {
		inv := fixedInvestment("100")
		inv.EndDate = day(300)
		investments = append(investments, inv)
	}

	summary, err := AggregateValuation(investments, listings, day(100))
	require.NoError(t, err)

	rounded := summary.Round(DisplayPlaces)
	requireDecimal(t, "1", rounded.TotalAccumulatedReturn)
	requireDecimal(t, "0.33", rounded.Investments[0].AccumulatedReturn)

	// Summing already-rounded lines would lose a cent
	lineSum := decimal.Zero
	for _, v := range rounded.Investments {
		lineSum = lineSum.Add(v.AccumulatedReturn)
	}
	requireDecimal(t, "0.99", lineSum)

	// Round leaves the source untouched
	assert.False(t, summary.Investments[0].AccumulatedReturn.Equal(dec("0.33")))
}

func TestNextDividend(t *testing.T) {
	listing := &models.Listing{ID: "lst_1", FlexibleReturns: decPtr("8")}
	inv := flexibleInvestment("500", termStart)

	dividend, err := NextDividend(inv, listing)
	require.NoError(t, err)
	requireDecimal(t, "10", dividend)

	inv.Duration = 0
	_, err = NextDividend(inv, listing)
	require.ErrorIs(t, err, apperrors.ErrDivisionByZero)

	_, err = NextDividend(inv, nil)
	require.True(t, apperrors.IsNotFound(err, apperrors.EntityListing))
}
