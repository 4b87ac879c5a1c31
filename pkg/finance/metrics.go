package finance

import (
	"errors"
	"fmt"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// ErrDivisionUndefined is wrapped by every ratio whose denominator is zero.
var ErrDivisionUndefined = errors.New("ratio is undefined for a zero denominator")

// DivisionUndefinedError names the metric that could not be computed.
type DivisionUndefinedError struct {
	Metric string
}

func (e *DivisionUndefinedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Metric, ErrDivisionUndefined)
}

func (e *DivisionUndefinedError) Unwrap() error {
	return ErrDivisionUndefined
}

func percentOf(metric string, value, total decimal.Decimal) (decimal.Decimal, error) {
	ratio, ok := mathutil.Ratio(value, total)
	if !ok {
		return decimal.Zero, &DivisionUndefinedError{Metric: metric}
	}
	return mathutil.RoundRate(ratio.Mul(mathutil.Hundred)), nil
}

// GrossYield is annual gross rent as a percentage of market value.
func GrossYield(grossRent, marketValue decimal.Decimal) (decimal.Decimal, error) {
	return percentOf("gross yield", grossRent, marketValue)
}

// NetYield is net operating income as a percentage of market value.
func NetYield(operatingIncome, marketValue decimal.Decimal) (decimal.Decimal, error) {
	return percentOf("net yield", operatingIncome, marketValue)
}

// DSCR is the debt service coverage ratio: operating income over mortgage
// payments. It is undefined without mortgage payments.
func DSCR(operatingIncome, mortgagePayments decimal.Decimal) (decimal.Decimal, error) {
	ratio, ok := mathutil.Ratio(operatingIncome, mortgagePayments)
	if !ok {
		return decimal.Zero, &DivisionUndefinedError{Metric: "DSCR"}
	}
	return ratio.Round(2), nil
}

// OpexLoad is operating expenses as a percentage of gross rent.
func OpexLoad(expenses, grossRent decimal.Decimal) (decimal.Decimal, error) {
	return percentOf("opex load", expenses, grossRent)
}

// NRAT is the net return after tax on the cash deployed to buy the property.
func NRAT(cashFlowAfterTax, cashDeployed decimal.Decimal) (decimal.Decimal, error) {
	return percentOf("NRAT", cashFlowAfterTax, cashDeployed)
}

// ROE is cash flow after tax as a percentage of equity. It is undefined
// unless equity is positive.
func ROE(cashFlowAfterTax, equity decimal.Decimal) (decimal.Decimal, error) {
	if !equity.IsPositive() {
		return decimal.Zero, &DivisionUndefinedError{Metric: "ROE"}
	}
	return percentOf("ROE", cashFlowAfterTax, equity)
}

// RiskMetrics size the reserves a landlord should hold.
type RiskMetrics struct {
	MonthlyMortgagePayment decimal.Decimal `json:"monthlyMortgagePayment"`

	// TenantDisputeReserve covers mortgage payments through a dispute plus
	// legal costs.
	TenantDisputeReserve decimal.Decimal `json:"tenantDisputeReserve"`
	TenantDisputeMonthly decimal.Decimal `json:"tenantDisputeMonthly"`
	RentRecoveryCover    decimal.Decimal `json:"rentRecoveryCover"`
}

// ReturnMetrics are the headline ratios for a property. Undefined ratios
// are nil.
type ReturnMetrics struct {
	GrossYield *decimal.Decimal `json:"grossYield"`
	NetYield   *decimal.Decimal `json:"netYield"`
	DSCR       *decimal.Decimal `json:"dscr"`
	OpexLoad   *decimal.Decimal `json:"opexLoad"`
	NRAT       *decimal.Decimal `json:"nrat"`
	ROE        *decimal.Decimal `json:"roe"`

	CashDeployed        decimal.Decimal `json:"cashDeployed"`
	SDLT                decimal.Decimal `json:"sdlt"`
	NetMonthlyIncome    decimal.Decimal `json:"netMonthlyIncome"`
	CapitalAppreciation decimal.Decimal `json:"capitalAppreciation"`

	Equity           decimal.Decimal  `json:"equity"`
	EquityPercentage *decimal.Decimal `json:"equityPercentage"`
	LTVPercentage    *decimal.Decimal `json:"ltvPercentage"`

	Risk RiskMetrics `json:"risk"`
}

// ComputeReturnMetrics derives the headline ratios from the first projected
// year. Cash deployed is deposit plus SDLT, plus acquisition costs when
// includeAcquisitionCosts is set.
func ComputeReturnMetrics(profile Profile, year1 YearRecord, sdltAmount decimal.Decimal, includeAcquisitionCosts bool) ReturnMetrics {
	metrics := ReturnMetrics{
		SDLT:                sdltAmount,
		CashDeployed:        profile.Deposit.Add(sdltAmount),
		NetMonthlyIncome:    mathutil.Round(year1.NetCashFlow.Div(decimal.NewFromInt(constants.MonthsPerYear))),
		CapitalAppreciation: profile.MarketValue.Sub(profile.PurchasePrice),
		Equity:              profile.MarketValue.Sub(profile.OutstandingBalance()),
	}
	if includeAcquisitionCosts {
		metrics.CashDeployed = metrics.CashDeployed.Add(profile.AcquisitionCosts)
	}

	metrics.GrossYield = defined(GrossYield(year1.GrossRent, profile.MarketValue))
	metrics.NetYield = defined(NetYield(year1.NetOperatingIncome, profile.MarketValue))
	metrics.DSCR = defined(DSCR(year1.NetOperatingIncome, year1.TotalMortgagePayment))
	metrics.OpexLoad = defined(OpexLoad(year1.TotalExpenses, year1.GrossRent))
	metrics.NRAT = defined(NRAT(year1.NetCashFlowAfterTax, metrics.CashDeployed))
	metrics.ROE = defined(ROE(year1.NetCashFlowAfterTax, metrics.Equity))

	if ltv, err := percentOf("LTV", profile.OutstandingBalance(), profile.MarketValue); err == nil {
		equityPercentage := mathutil.Hundred.Sub(ltv)
		metrics.LTVPercentage = &ltv
		metrics.EquityPercentage = &equityPercentage
	}

	metrics.Risk = ComputeRiskMetrics(profile, year1)
	return metrics
}

// ComputeRiskMetrics sizes the tenant dispute reserve and rent recovery cover.
func ComputeRiskMetrics(profile Profile, year1 YearRecord) RiskMetrics {
	months := decimal.NewFromInt(constants.TenantDisputeMonths)
	monthly := mathutil.Round(year1.TotalMortgagePayment.Div(decimal.NewFromInt(constants.MonthsPerYear)))
	reserve := monthly.Mul(months).Add(mathutil.MustDecimal(constants.TenantDisputeLegalCost))
	return RiskMetrics{
		MonthlyMortgagePayment: monthly,
		TenantDisputeReserve:   reserve,
		TenantDisputeMonthly:   mathutil.Round(reserve.Div(months)),
		RentRecoveryCover:      profile.WeeklyRent.Mul(decimal.NewFromInt(constants.RentRecoveryWeeks)),
	}
}

func defined(value decimal.Decimal, err error) *decimal.Decimal {
	if err != nil {
		return nil
	}
	return &value
}
