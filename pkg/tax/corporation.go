package tax

import (
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	// SmallProfitsRate applies to profits up to the lower limit.
	SmallProfitsRate = decimal.RequireFromString("0.19")

	// MainRate applies to profits above the upper limit.
	MainRate = decimal.RequireFromString("0.25")

	// Marginal relief between £50,000 and £250,000 reduces the main-rate
	// charge by 3/200 of (upper limit - profits). That is the same as a 26.5%
	// marginal band sitting between the two limits.
	corporationTaxBands = []Band{
		UpTo("50000", "0.19"),
		UpTo("250000", "0.265"),
		Above("0.25"),
	}
)

// CorporationTaxBands returns a copy of the corporation tax bands.
func CorporationTaxBands() []Band {
	return append([]Band(nil), corporationTaxBands...)
}

// ComputeCorporationTax computes corporation tax on a year's profits.
func ComputeCorporationTax(profit decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAmount("tax.ComputeCorporationTax", profit); err != nil {
		return decimal.Zero, err
	}
	total, err := ComputeBandedTax(profit, corporationTaxBands)
	if err != nil {
		return decimal.Zero, err
	}
	return mathutil.Round(total), nil
}
