package finance

import (
	"fmt"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Assumptions are the market and cost rates applied to every property.
// Rates are fractions, e.g. 0.028 for 2.8%.
type Assumptions struct {
	VacancyRate        decimal.Decimal
	MaintenanceRate    decimal.Decimal
	InflationRate      decimal.Decimal
	RentalGrowthRate   decimal.Decimal
	InterestReliefRate decimal.Decimal

	// GrowthRates are the capital growth scenarios, lowest first.
	GrowthRates []decimal.Decimal

	AgencyFeeRate   decimal.Decimal
	LegalFee        decimal.Decimal
	EPCUpgradeCosts map[EPCRating]decimal.Decimal

	// CGTExemptAmount overrides the individual's annual exemption when set.
	CGTExemptAmount *decimal.Decimal
}

// DefaultAssumptions returns the standard modelling assumptions.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		VacancyRate:        mathutil.MustDecimal(constants.VacancyRate),
		MaintenanceRate:    mathutil.MustDecimal(constants.MaintenanceRate),
		InflationRate:      mathutil.MustDecimal(constants.InflationRate),
		RentalGrowthRate:   mathutil.MustDecimal(constants.RentalGrowthRate),
		InterestReliefRate: mathutil.MustDecimal(constants.InterestReliefRate),
		GrowthRates: []decimal.Decimal{
			decimal.Zero,
			mathutil.MustDecimal("0.017"),
			mathutil.MustDecimal("0.034"),
		},
		AgencyFeeRate:   mathutil.MustDecimal(constants.AgencyFeeRate),
		LegalFee:        mathutil.MustDecimal(constants.LegalFee),
		EPCUpgradeCosts: DefaultEPCUpgradeCosts(),
	}
}

// DefaultEPCUpgradeCosts returns the cost of bringing each rating up to C
// before a sale.
func DefaultEPCUpgradeCosts() map[EPCRating]decimal.Decimal {
	return map[EPCRating]decimal.Decimal{
		EPCA: decimal.Zero,
		EPCB: decimal.Zero,
		EPCC: decimal.Zero,
		EPCD: decimal.NewFromInt(10000),
		EPCE: decimal.NewFromInt(20000),
		EPCF: decimal.NewFromInt(30000),
		EPCG: decimal.NewFromInt(50000),
	}
}

// EPCUpgradeCost returns the upgrade cost for a rating. Unknown ratings cost
// nothing.
func (a Assumptions) EPCUpgradeCost(rating EPCRating) decimal.Decimal {
	cost, ok := a.EPCUpgradeCosts[rating]
	if !ok {
		return decimal.Zero
	}
	return cost
}

// Validate rejects negative rates and costs.
func (a Assumptions) Validate() error {
	rates := map[string]decimal.Decimal{
		"vacancyRate":        a.VacancyRate,
		"maintenanceRate":    a.MaintenanceRate,
		"inflationRate":      a.InflationRate,
		"rentalGrowthRate":   a.RentalGrowthRate,
		"interestReliefRate": a.InterestReliefRate,
		"agencyFeeRate":      a.AgencyFeeRate,
		"legalFee":           a.LegalFee,
	}
	for name, rate := range rates {
		if rate.IsNegative() {
			return fmt.Errorf("assumption %s must be non-negative, got %s", name, rate)
		}
	}
	if a.VacancyRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("assumption vacancyRate must not exceed 1, got %s", a.VacancyRate)
	}
	if len(a.GrowthRates) == 0 {
		return fmt.Errorf("at least one capital growth rate is required")
	}
	for i := 1; i < len(a.GrowthRates); i++ {
		if a.GrowthRates[i].LessThanOrEqual(a.GrowthRates[i-1]) {
			return fmt.Errorf("capital growth rates must be strictly increasing, got %s after %s", a.GrowthRates[i], a.GrowthRates[i-1])
		}
	}
	for rating, cost := range a.EPCUpgradeCosts {
		if cost.IsNegative() {
			return fmt.Errorf("EPC upgrade cost for %s must be non-negative, got %s", rating, cost)
		}
	}
	if a.CGTExemptAmount != nil && a.CGTExemptAmount.IsNegative() {
		return fmt.Errorf("CGT exempt amount must be non-negative, got %s", a.CGTExemptAmount)
	}
	return nil
}
