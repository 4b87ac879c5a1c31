// Package adapters converts between the plain configuration types and the
// decimal domain types used by the calculators.
package adapters

import (
	"fmt"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/pkg/cgt"
	"github.com/iwvelando/property-forecast/pkg/datetime"
	"github.com/iwvelando/property-forecast/pkg/finance"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
)

// Decimal converts a configuration float to a decimal using the shortest
// representation, so 0.1 becomes exactly 0.1.
func Decimal(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

func override(target *decimal.Decimal, value *float64) {
	if value != nil {
		*target = Decimal(*value)
	}
}

// AssumptionsFromConfig applies configured overrides to the default
// assumptions.
func AssumptionsFromConfig(conf config.Assumptions) (finance.Assumptions, error) {
	assumptions := finance.DefaultAssumptions()

	override(&assumptions.VacancyRate, conf.VacancyRate)
	override(&assumptions.MaintenanceRate, conf.MaintenanceRate)
	override(&assumptions.InflationRate, conf.InflationRate)
	override(&assumptions.RentalGrowthRate, conf.RentalGrowthRate)
	override(&assumptions.InterestReliefRate, conf.InterestReliefRate)
	override(&assumptions.AgencyFeeRate, conf.AgencyFeeRate)
	override(&assumptions.LegalFee, conf.LegalFee)

	if len(conf.GrowthRates) > 0 {
		assumptions.GrowthRates = make([]decimal.Decimal, 0, len(conf.GrowthRates))
		for _, rate := range conf.GrowthRates {
			assumptions.GrowthRates = append(assumptions.GrowthRates, Decimal(rate))
		}
	}

	for rating, cost := range conf.EPCUpgradeCosts {
		parsed, err := finance.ParseEPCRating(rating)
		if err != nil || parsed == finance.EPCUnknown {
			return finance.Assumptions{}, fmt.Errorf("epcUpgradeCosts: invalid EPC rating %q", rating)
		}
		assumptions.EPCUpgradeCosts[parsed] = Decimal(cost)
	}

	if conf.CGTExemptAmount != nil {
		exempt := Decimal(*conf.CGTExemptAmount)
		assumptions.CGTExemptAmount = &exempt
	}

	if err := assumptions.Validate(); err != nil {
		return finance.Assumptions{}, err
	}
	return assumptions, nil
}

// PropertyToProfile converts a configured property into a finance profile.
func PropertyToProfile(p config.Property) (finance.Profile, error) {
	purchaseDate, err := datetime.ParseDate(p.PurchaseDate)
	if err != nil {
		return finance.Profile{}, fmt.Errorf("property %q purchase date: %w", p.Name, err)
	}
	ownership, err := tax.ParseOwnership(p.Ownership)
	if err != nil {
		return finance.Profile{}, fmt.Errorf("property %q: %w", p.Name, err)
	}
	epc, err := finance.ParseEPCRating(p.EPCRating)
	if err != nil {
		return finance.Profile{}, fmt.Errorf("property %q: %w", p.Name, err)
	}
	band, err := cgt.ParseRateBand(p.CGTRateBand)
	if err != nil {
		return finance.Profile{}, fmt.Errorf("property %q: %w", p.Name, err)
	}

	profile := finance.Profile{
		Name:                 p.Name,
		PurchasePrice:        Decimal(p.PurchasePrice),
		PurchaseDate:         purchaseDate,
		Deposit:              Decimal(p.Deposit),
		AcquisitionCosts:     Decimal(p.AcquisitionCosts),
		MarketValue:          Decimal(p.MarketValue),
		WeeklyRent:           Decimal(p.WeeklyRent),
		ManagementFeePercent: Decimal(p.ManagementFeePercent),
		ServiceCharge:        Decimal(p.ServiceCharge),
		GroundRent:           Decimal(p.GroundRent),
		OtherCosts:           Decimal(p.OtherCosts),
		EPCRating:            epc,
		Ownership:            ownership,
		UKResident:           p.UKResident,
		UKTaxFreeAllowance:   p.UKTaxFreeAllowance,
		PersonalIncome:       Decimal(p.PersonalIncome),
		CGTRateBand:          band,
	}

	if p.Mortgage != nil && p.Mortgage.Balance != 0 {
		mortgage, err := MortgageFromConfig(*p.Mortgage)
		if err != nil {
			return finance.Profile{}, fmt.Errorf("property %q: %w", p.Name, err)
		}
		profile.HasMortgage = true
		profile.Mortgage = mortgage
	}

	if err := profile.Validate(); err != nil {
		return finance.Profile{}, err
	}
	return profile, nil
}

// MortgageFromConfig converts a configured mortgage.
func MortgageFromConfig(m config.Mortgage) (loans.Mortgage, error) {
	mortgageType, err := loans.ParseMortgageType(m.Type)
	if err != nil {
		return loans.Mortgage{}, err
	}
	return loans.Mortgage{
		Type:           mortgageType,
		Balance:        Decimal(m.Balance),
		AnnualRate:     Decimal(m.InterestRate),
		YearsRemaining: m.YearsRemaining,
	}, nil
}
