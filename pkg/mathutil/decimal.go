// Package mathutil provides decimal helpers shared by the calculators.
package mathutil

import (
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/shopspring/decimal"
)

var (
	// Hundred is 100 as a decimal, used for percentage conversions.
	Hundred = decimal.NewFromInt(constants.PercentageMultiplier)

	one = decimal.NewFromInt(1)
)

// MustDecimal parses a literal decimal constant and panics on error. It is
// intended for package-level tables whose values are known to be valid.
func MustDecimal(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// Round rounds a value to pence, i.e. to represent real currency.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyPlaces)
}

// RoundRate rounds a reported percentage.
func RoundRate(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.RatePlaces)
}

// NonNegative floors a value at zero.
func NonNegative(val decimal.Decimal) decimal.Decimal {
	if val.IsNegative() {
		return decimal.Zero
	}
	return val
}

// Min returns the smaller of two values
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two values
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Pow raises base to a non-negative integer power by repeated multiplication,
// truncating intermediate results so long compounding loops stay bounded.
func Pow(base decimal.Decimal, exponent int) decimal.Decimal {
	result := one
	for i := 0; i < exponent; i++ {
		result = result.Mul(base).Truncate(constants.InternalPlaces)
	}
	return result
}

// Compound returns value × (1 + rate)^periods.
func Compound(value, rate decimal.Decimal, periods int) decimal.Decimal {
	if periods <= 0 {
		return value
	}
	return value.Mul(Pow(one.Add(rate), periods))
}

// FromPercent converts a percentage such as 5.25 to a fraction such as 0.0525.
func FromPercent(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(Hundred)
}

// Ratio divides value by total. The second return is false when total is
// zero and the ratio is therefore undefined.
func Ratio(value, total decimal.Decimal) (decimal.Decimal, bool) {
	if total.IsZero() {
		return decimal.Zero, false
	}
	return value.Div(total), true
}

// CalculatePercentage calculates what percentage value is of total, returning
// zero when total is zero.
func CalculatePercentage(value, total decimal.Decimal) decimal.Decimal {
	ratio, ok := Ratio(value, total)
	if !ok {
		return decimal.Zero
	}
	return ratio.Mul(Hundred)
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(FromPercent(percentage))
}
