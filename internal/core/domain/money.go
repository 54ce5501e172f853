package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of decimal places of the base currency.
const MinorUnitExponent = 2

var (
	hundred = decimal.NewFromInt(100)

	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)

	// DefaultFeePercentage applies when a payment request names no fee.
	DefaultFeePercentage = decimal.NewFromInt(10)
)

// ValidFeePercentage reports whether pct lies in the closed interval [0, 100].
func ValidFeePercentage(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// SplitFee divides gross into the platform fee and the merchant payout.
// The fee is rounded half-up to a whole minor unit and the payout takes the
// remainder, so fee + payout == gross always holds.
func SplitFee(gross int64, pct decimal.Decimal) (fee, payout int64) {
	fee = decimal.NewFromInt(gross).Mul(pct).Div(hundred).Round(0).IntPart()
	return fee, gross - fee
}

// ToMinorUnits converts a major-unit amount (e.g. 12.34) into minor units
// (1234). Amounts with more precision than the currency allows, or too large
// to fit in int64 minor units, are rejected.
func ToMinorUnits(major decimal.Decimal) (int64, error) {
	minor := major.Shift(MinorUnitExponent)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", major.String(), MinorUnitExponent)
	}
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, fmt.Errorf("amount %s is out of range", major.String())
	}
	return minor.IntPart(), nil
}

// ToMajorUnits converts minor units back into a major-unit decimal.
func ToMajorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -MinorUnitExponent)
}
