package finance

import (
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Analysis is the complete result for one property.
type Analysis struct {
	Profile  Profile       `json:"-"`
	CashFlow []YearRecord  `json:"cashFlow"`
	Growth   Scenarios     `json:"growth"`
	Metrics  ReturnMetrics `json:"metrics"`
}

// PortfolioSummary aggregates analyses across properties.
type PortfolioSummary struct {
	Properties int `json:"properties"`

	TotalWeeklyRent          decimal.Decimal `json:"totalWeeklyRent"`
	TotalAnnualRent          decimal.Decimal `json:"totalAnnualRent"`
	TotalMarketValue         decimal.Decimal `json:"totalMarketValue"`
	TotalOutstandingMortgage decimal.Decimal `json:"totalOutstandingMortgage"`
	TotalEquity              decimal.Decimal `json:"totalEquity"`
	TotalCashFlowAfterTax    decimal.Decimal `json:"totalCashFlowAfterTax"`
	NetMonthlyIncome         decimal.Decimal `json:"netMonthlyIncome"`

	// Averages cover only properties where the metric is defined.
	AverageNRAT       *decimal.Decimal `json:"averageNrat"`
	AverageROE        *decimal.Decimal `json:"averageRoe"`
	AverageGrossYield *decimal.Decimal `json:"averageGrossYield"`
}

type average struct {
	total decimal.Decimal
	count int64
}

func (a *average) add(value *decimal.Decimal) {
	if value == nil {
		return
	}
	a.total = a.total.Add(*value)
	a.count++
}

func (a average) value() *decimal.Decimal {
	if a.count == 0 {
		return nil
	}
	result := mathutil.RoundRate(a.total.Div(decimal.NewFromInt(a.count)))
	return &result
}

// SummarizePortfolio totals the first projected year of every analysis.
func SummarizePortfolio(analyses []Analysis) PortfolioSummary {
	summary := PortfolioSummary{Properties: len(analyses)}
	var nrat, roe, grossYield average

	for _, analysis := range analyses {
		profile := analysis.Profile
		summary.TotalWeeklyRent = summary.TotalWeeklyRent.Add(profile.WeeklyRent)
		summary.TotalMarketValue = summary.TotalMarketValue.Add(profile.MarketValue)
		summary.TotalOutstandingMortgage = summary.TotalOutstandingMortgage.Add(profile.OutstandingBalance())
		summary.TotalEquity = summary.TotalEquity.Add(analysis.Metrics.Equity)
		summary.NetMonthlyIncome = summary.NetMonthlyIncome.Add(analysis.Metrics.NetMonthlyIncome)
		if len(analysis.CashFlow) > 0 {
			summary.TotalCashFlowAfterTax = summary.TotalCashFlowAfterTax.Add(analysis.CashFlow[0].NetCashFlowAfterTax)
		}

		nrat.add(analysis.Metrics.NRAT)
		roe.add(analysis.Metrics.ROE)
		grossYield.add(analysis.Metrics.GrossYield)
	}

	summary.TotalAnnualRent = summary.TotalWeeklyRent.Mul(decimal.NewFromInt(constants.WeeksPerYear))
	summary.AverageNRAT = nrat.value()
	summary.AverageROE = roe.value()
	summary.AverageGrossYield = grossYield.value()
	return summary
}
