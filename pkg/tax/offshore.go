package tax

import (
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Non-resident landlords receive no personal allowance.
var offshoreTaxBands = []Band{
	UpTo("37000", "0.20"),
	UpTo("150000", "0.40"),
	Above("0.45"),
}

// OffshoreTaxResult is the outcome of an offshore tax computation.
type OffshoreTaxResult struct {
	Income        decimal.Decimal `json:"income"`
	TaxPayable    decimal.Decimal `json:"taxPayable"`
	EffectiveRate decimal.Decimal `json:"effectiveRate"`
	Breakdown     []BandCharge    `json:"breakdown"`
}

// OffshoreTaxBands returns a copy of the offshore bands.
func OffshoreTaxBands() []Band {
	return append([]Band(nil), offshoreTaxBands...)
}

// ComputeOffshoreTax computes tax for a landlord who is not UK resident.
func ComputeOffshoreTax(income decimal.Decimal) (OffshoreTaxResult, error) {
	if err := checkAmount("tax.ComputeOffshoreTax", income); err != nil {
		return OffshoreTaxResult{}, err
	}
	breakdown, err := ComputeBandedBreakdown(income, offshoreTaxBands)
	if err != nil {
		return OffshoreTaxResult{}, err
	}
	total := decimal.Zero
	for _, charge := range breakdown {
		total = total.Add(charge.Tax)
	}
	total = mathutil.Round(total)
	return OffshoreTaxResult{
		Income:        income,
		TaxPayable:    total,
		EffectiveRate: mathutil.RoundRate(mathutil.CalculatePercentage(total, income)),
		Breakdown:     breakdown,
	}, nil
}
