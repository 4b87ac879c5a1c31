package tax

import (
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	// PersonalAllowance is the full tax-free allowance before tapering.
	PersonalAllowance = decimal.NewFromInt(12570)

	// AllowanceTaperThreshold is the income above which the allowance is
	// reduced by £1 for every £2.
	AllowanceTaperThreshold = decimal.NewFromInt(100000)

	incomeTaxBands = []Band{
		UpTo("37700", "0.20"),
		UpTo("125140", "0.40"),
		Above("0.45"),
	}

	incomeTaxBandNames = []string{"Basic rate", "Higher rate", "Additional rate"}

	two = decimal.NewFromInt(2)
)

// IncomeTaxResult is the outcome of an income tax computation.
type IncomeTaxResult struct {
	Income            decimal.Decimal `json:"income"`
	PersonalAllowance decimal.Decimal `json:"personalAllowance"`
	TaxableIncome     decimal.Decimal `json:"taxableIncome"`
	TaxPayable        decimal.Decimal `json:"taxPayable"`
	NetIncome         decimal.Decimal `json:"netIncome"`
	EffectiveRate     decimal.Decimal `json:"effectiveRate"`
	Breakdown         []BandCharge    `json:"breakdown"`
}

// IncomeTaxBands returns a copy of the taxable-income bands.
func IncomeTaxBands() []Band {
	return append([]Band(nil), incomeTaxBands...)
}

// PersonalAllowanceFor returns the tapered personal allowance for income.
func PersonalAllowanceFor(income decimal.Decimal) decimal.Decimal {
	if !income.GreaterThan(AllowanceTaperThreshold) {
		return PersonalAllowance
	}
	reduction := income.Sub(AllowanceTaperThreshold).Div(two).Floor()
	return mathutil.NonNegative(PersonalAllowance.Sub(reduction))
}

// ComputeIncomeTax computes UK income tax on a year's income.
func ComputeIncomeTax(income decimal.Decimal) (IncomeTaxResult, error) {
	if err := checkAmount("tax.ComputeIncomeTax", income); err != nil {
		return IncomeTaxResult{}, err
	}

	allowance := PersonalAllowanceFor(income)
	taxable := mathutil.NonNegative(income.Sub(allowance))

	breakdown, err := ComputeBandedBreakdown(taxable, incomeTaxBands)
	if err != nil {
		return IncomeTaxResult{}, err
	}
	total := decimal.Zero
	for i := range breakdown {
		breakdown[i].Description = incomeTaxBandNames[i]
		total = total.Add(breakdown[i].Tax)
	}
	total = mathutil.Round(total)

	return IncomeTaxResult{
		Income:            income,
		PersonalAllowance: allowance,
		TaxableIncome:     taxable,
		TaxPayable:        total,
		NetIncome:         income.Sub(total),
		EffectiveRate:     mathutil.RoundRate(mathutil.CalculatePercentage(total, income)),
		Breakdown:         breakdown,
	}, nil
}
