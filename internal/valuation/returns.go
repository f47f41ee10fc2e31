package valuation

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/tropicaldog17/keble/internal/errors"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// dividendPeriodMonths turns a monthly share of the full-term return into a
	// quarterly payout
	dividendPeriodMonths = decimal.NewFromInt(3)
)

// SimpleReturn is the full-term return: amount * ratePercent / 100
func SimpleReturn(amount, ratePercent decimal.Decimal) decimal.Decimal {
	return amount.Mul(ratePercent).Div(hundred)
}

// ExpectedPayout is principal plus the full-term return
func ExpectedPayout(amount, ratePercent decimal.Decimal) decimal.Decimal {
	return amount.Add(SimpleReturn(amount, ratePercent))
}

// AccumulatedReturn is the part of the full-term return recognised after
// elapsedFraction of the term
func AccumulatedReturn(amount, ratePercent, elapsedFraction decimal.Decimal) decimal.Decimal {
	return SimpleReturn(amount, ratePercent).Mul(elapsedFraction)
}

// PeriodicDividend is the quarterly dividend of a term lasting duration months
func PeriodicDividend(amount, ratePercent, duration decimal.Decimal) (decimal.Decimal, error) {
	if !duration.IsPositive() {
		return decimal.Zero, apperrors.ErrDivisionByZero
	}
	// Multiply before dividing so exact quotients stay exact
	return SimpleReturn(amount, ratePercent).Mul(dividendPeriodMonths).Div(duration), nil
}
