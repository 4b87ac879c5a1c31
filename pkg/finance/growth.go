package finance

import (
	"fmt"

	"github.com/iwvelando/property-forecast/pkg/cgt"
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SellingCosts are the costs of selling at the end of the projection.
type SellingCosts struct {
	AgencyFee  decimal.Decimal `json:"agencyFee"`
	LegalFee   decimal.Decimal `json:"legalFee"`
	EPCUpgrade decimal.Decimal `json:"epcUpgrade"`
	Total      decimal.Decimal `json:"total"`
}

// ScenarioResult is a sale at the end of the projection under one capital
// growth rate.
type ScenarioResult struct {
	Label      string          `json:"label"`
	GrowthRate decimal.Decimal `json:"growthRate"`

	FutureValue      decimal.Decimal `json:"futureValue"`
	SellingCosts     SellingCosts    `json:"sellingCosts"`
	NetCapitalGrowth decimal.Decimal `json:"netCapitalGrowth"`
	CGT              cgt.Result      `json:"cgt"`
	NetGainAfterCGT  decimal.Decimal `json:"netGainAfterCgt"`

	TotalPrincipalPaid decimal.Decimal `json:"totalPrincipalPaid"`
	NotionalEquity     decimal.Decimal `json:"notionalEquity"`
	TenYearCashFlow    decimal.Decimal `json:"tenYearCashFlow"`
	TotalReturn        decimal.Decimal `json:"totalReturn"`

	// Rates are percentages and nil when notional equity is zero.
	TenYearReturnRate       *decimal.Decimal `json:"tenYearReturnRate"`
	AnnualCapitalReturnRate *decimal.Decimal `json:"annualCapitalReturnRate"`
	AnnualTotalReturnRate   *decimal.Decimal `json:"annualTotalReturnRate"`
}

// Scenarios holds one result per growth rate, lowest rate first.
type Scenarios []ScenarioResult

// Find returns the scenario with the given label.
func (s Scenarios) Find(label string) (ScenarioResult, bool) {
	for _, scenario := range s {
		if scenario.Label == label {
			return scenario, true
		}
	}
	return ScenarioResult{}, false
}

// ScenarioLabel names a growth scenario, e.g. "1.7%_growth".
func ScenarioLabel(rate decimal.Decimal) string {
	return fmt.Sprintf("%s%%_growth", rate.Mul(mathutil.Hundred).StringFixed(1))
}

// ProjectCapitalGrowth values a sale at the end of the projection under each
// growth rate. The final projected year's cash flow after tax is used as the
// income that sets an individual's CGT rate band.
func (p *Projector) ProjectCapitalGrowth(profile Profile, records []YearRecord) (Scenarios, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("property %q: capital growth needs at least one projected year", profile.Name)
	}
	a := p.assumptions
	final := records[len(records)-1]

	principalPaid := decimal.Zero
	cashFlow := decimal.Zero
	for _, record := range records {
		cashFlow = cashFlow.Add(record.NetCashFlowAfterTax)
		if profile.HasMortgage && profile.Mortgage.Type == loans.PrincipalAndInterest {
			principalPaid = principalPaid.Add(record.Principal)
		}
	}
	equity := profile.MarketValue.Sub(profile.OutstandingBalance()).Add(principalPaid)

	legalFee := mathutil.Round(mathutil.Compound(a.LegalFee, a.InflationRate, constants.ProjectionYears))
	epc := a.EPCUpgradeCost(profile.EPCRating)
	years := decimal.NewFromInt(constants.ProjectionYears)

	scenarios := make(Scenarios, 0, len(a.GrowthRates))
	for _, rate := range a.GrowthRates {
		future := mathutil.Round(mathutil.Compound(profile.MarketValue, rate, constants.ProjectionYears))
		costs := SellingCosts{
			AgencyFee:  mathutil.Round(future.Mul(a.AgencyFeeRate)),
			LegalFee:   legalFee,
			EPCUpgrade: epc,
		}
		costs.Total = costs.AgencyFee.Add(costs.LegalFee).Add(costs.EPCUpgrade)

		result, err := cgt.Compute(cgt.Disposal{
			SalePrice:     future,
			PurchasePrice: profile.MarketValue,
			SellingCosts:  costs.Total,
		}, cgt.Options{
			Ownership:          profile.Ownership,
			ReferenceIncome:    final.NetCashFlowAfterTax,
			RateBand:           profile.CGTRateBand,
			AnnualExemptAmount: a.CGTExemptAmount,
		})
		if err != nil {
			return nil, fmt.Errorf("property %q scenario %s: %w", profile.Name, ScenarioLabel(rate), err)
		}

		scenario := ScenarioResult{
			Label:              ScenarioLabel(rate),
			GrowthRate:         rate,
			FutureValue:        future,
			SellingCosts:       costs,
			NetCapitalGrowth:   result.GrossGain,
			CGT:                result,
			NetGainAfterCGT:    result.NetGainAfterTax,
			TotalPrincipalPaid: principalPaid,
			NotionalEquity:     equity,
			TenYearCashFlow:    cashFlow,
			TotalReturn:        cashFlow.Add(result.NetGainAfterTax),
		}
		if tenYear, ok := mathutil.Ratio(scenario.NetGainAfterCGT, equity); ok {
			scenario.TenYearReturnRate = percent(tenYear)
			scenario.AnnualCapitalReturnRate = percent(tenYear.Div(years))
			total, _ := mathutil.Ratio(scenario.TotalReturn, equity)
			scenario.AnnualTotalReturnRate = percent(total.Div(years))
		}
		scenarios = append(scenarios, scenario)
	}

	p.logger.Debug("projected capital growth",
		zap.String("op", "finance.ProjectCapitalGrowth"),
		zap.String("property", profile.Name),
		zap.Int("scenarios", len(scenarios)),
		zap.String("notionalEquity", equity.String()),
	)
	return scenarios, nil
}

func percent(fraction decimal.Decimal) *decimal.Decimal {
	value := mathutil.RoundRate(fraction.Mul(mathutil.Hundred))
	return &value
}
