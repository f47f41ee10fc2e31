// Package valuation computes investment returns and current values. Everything in
// it is pure: no I/O, no clock reads, identical inputs give identical outputs.
package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/tropicaldog17/keble/internal/errors"
)

// SecondsPerYear is the fixed 365-day year all durations are expressed in
const SecondsPerYear = 31_536_000

var secondsPerYear = decimal.NewFromInt(SecondsPerYear)

// DurationDifference returns end - start in fractional years. It is negative when
// end is before start.
func DurationDifference(start, end time.Time) decimal.Decimal {
	return durationSeconds(start, end).Div(secondsPerYear)
}

// durationSeconds is end - start in exact seconds. Ratios are taken between these
// rather than between year fractions so the year division never rounds them.
func durationSeconds(start, end time.Time) decimal.Decimal {
	// Unix seconds avoid the ~292 year range limit of time.Duration
	secs := decimal.NewFromInt(end.Unix() - start.Unix())
	nanos := decimal.New(int64(end.Nanosecond()-start.Nanosecond()), -9)
	return secs.Add(nanos)
}

// ProrationRatio returns elapsed / total clamped to [0, 1]. A non-positive total
// is a contract violation and yields ErrDivisionByZero.
func ProrationRatio(elapsed, total decimal.Decimal) (decimal.Decimal, error) {
	if !total.IsPositive() {
		return decimal.Zero, apperrors.ErrDivisionByZero
	}
	ratio := elapsed.Div(total)
	if ratio.IsNegative() {
		return decimal.Zero, nil
	}
	if ratio.GreaterThan(one) {
		return one, nil
	}
	return ratio, nil
}
