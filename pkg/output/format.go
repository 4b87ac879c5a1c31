// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"
	"github.com/iwvelando/property-forecast/internal/forecast"
	"github.com/iwvelando/property-forecast/pkg/finance"
	"github.com/iwvelando/property-forecast/pkg/format"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	colorAccent = lipgloss.Color("#3AA99F")
	colorBorder = lipgloss.Color("#575653")
	colorWarn   = lipgloss.Color("#DA702C")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	noteStyle   = lipgloss.NewStyle().Foreground(colorWarn)
)

// Report is the machine-readable document for a forecast run.
type Report struct {
	Forecasts []forecast.Forecast      `json:"forecasts"`
	Summary   finance.PortfolioSummary `json:"summary"`
}

// NewReport bundles forecasts with their portfolio summary.
func NewReport(results []forecast.Forecast) Report {
	return Report{Forecasts: results, Summary: forecast.Summarize(results)}
}

// renderTable draws a bordered table; the first column is left aligned and
// the rest are right aligned.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		}).
		String()
}

// PrettyString renders a human-readable report.
func PrettyString(results []forecast.Forecast) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	for i, result := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		_, _ = p.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("--- Results for property %s ---", result.Name)))
		_, _ = p.Fprintf(&b, "Buyer type: %s | SDLT: %s (%s) | Cash deployed: %s\n",
			result.BuyerType, format.Currency(result.SDLT.SDLT), result.SDLT.RateTier,
			format.Currency(result.Metrics.CashDeployed))

		b.WriteString(renderTable(cashFlowHeaders, cashFlowRows(result.CashFlow)))
		b.WriteString("\n")
		b.WriteString(renderTable(growthHeaders, growthRows(result.Growth)))
		b.WriteString("\n")
		b.WriteString(renderTable([]string{"Metric", "Value"}, metricRows(result.Metrics.ReturnMetrics)))
		b.WriteString("\n")

		for _, summary := range result.Metrics.Optimizations {
			status := "converged"
			if !summary.Converged {
				status = "not converged"
			}
			_, _ = p.Fprintf(&b, "Optimizer %s: %s -> %s (cash flow %s, %s after %d iterations)\n",
				summary.Field, summary.OriginalDisplay, summary.ValueDisplay,
				format.Currency(summary.CashFlow), status, summary.Iterations)
			for _, note := range summary.Notes {
				_, _ = p.Fprintf(&b, "  %s\n", noteStyle.Render(note))
			}
		}
		for _, note := range result.Notes {
			_, _ = p.Fprintf(&b, "Note: %s\n", noteStyle.Render(note))
		}
	}

	if len(results) > 0 {
		summary := forecast.Summarize(results)
		b.WriteString("\n")
		_, _ = p.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("--- Portfolio summary (%d properties) ---", summary.Properties)))
		b.WriteString(renderTable([]string{"Measure", "Value"}, summaryRows(summary)))
		b.WriteString("\n")
	}

	return b.String()
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(results []forecast.Forecast) {
	fmt.Print(PrettyString(results))
}

var cashFlowHeaders = []string{
	"Year", "Rent", "Expenses", "NOI", "Interest", "Principal",
	"Cash flow", "Tax basis", "Tax", "Loss c/f", "After tax",
}

func cashFlowRows(records []finance.YearRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Year),
			format.Currency(r.GrossRent),
			format.Currency(r.TotalExpenses),
			format.Currency(r.NetOperatingIncome),
			format.Currency(r.Interest),
			format.Currency(r.Principal),
			format.Currency(r.NetCashFlow),
			string(r.ApplicableVariant),
			format.Currency(r.ApplicableTax),
			format.Currency(r.LossCarriedForward),
			format.Currency(r.NetCashFlowAfterTax),
		})
	}
	return rows
}

var growthHeaders = []string{
	"Scenario", "Future value", "Selling costs", "CGT", "Net gain",
	"Total return", "10y return", "Capital p.a.", "Total p.a.",
}

func growthRows(scenarios finance.Scenarios) [][]string {
	rows := make([][]string, 0, len(scenarios))
	for _, s := range scenarios {
		rows = append(rows, []string{
			s.Label,
			format.Currency(s.FutureValue),
			format.Currency(s.SellingCosts.Total),
			format.Currency(s.CGT.Liability),
			format.Currency(s.NetGainAfterCGT),
			format.Currency(s.TotalReturn),
			format.Percent(s.TenYearReturnRate),
			format.Percent(s.AnnualCapitalReturnRate),
			format.Percent(s.AnnualTotalReturnRate),
		})
	}
	return rows
}

func ratio(value *decimal.Decimal) string {
	if value == nil {
		return "n/a"
	}
	return value.StringFixed(2)
}

func metricRows(m finance.ReturnMetrics) [][]string {
	return [][]string{
		{"Gross yield", format.Percent(m.GrossYield)},
		{"Net yield", format.Percent(m.NetYield)},
		{"DSCR", ratio(m.DSCR)},
		{"Opex load", format.Percent(m.OpexLoad)},
		{"NRAT", format.Percent(m.NRAT)},
		{"ROE", format.Percent(m.ROE)},
		{"Net monthly income", format.Currency(m.NetMonthlyIncome)},
		{"Capital appreciation", format.Currency(m.CapitalAppreciation)},
		{"Equity", format.Currency(m.Equity)},
		{"Equity %", format.Percent(m.EquityPercentage)},
		{"LTV %", format.Percent(m.LTVPercentage)},
		{"Tenant dispute reserve", format.Currency(m.Risk.TenantDisputeReserve)},
		{"Reserve per month", format.Currency(m.Risk.TenantDisputeMonthly)},
		{"Rent recovery cover", format.Currency(m.Risk.RentRecoveryCover)},
	}
}

func summaryRows(s finance.PortfolioSummary) [][]string {
	return [][]string{
		{"Weekly rent", format.Currency(s.TotalWeeklyRent)},
		{"Annual rent", format.Currency(s.TotalAnnualRent)},
		{"Market value", format.Currency(s.TotalMarketValue)},
		{"Outstanding mortgages", format.Currency(s.TotalOutstandingMortgage)},
		{"Equity", format.Currency(s.TotalEquity)},
		{"Year 1 cash flow after tax", format.Currency(s.TotalCashFlowAfterTax)},
		{"Net monthly income", format.Currency(s.NetMonthlyIncome)},
		{"Average NRAT", format.Percent(s.AverageNRAT)},
		{"Average ROE", format.Percent(s.AverageROE)},
		{"Average gross yield", format.Percent(s.AverageGrossYield)},
	}
}

func csvHeaders() []string {
	headers := []string{
		"property", "year", "annual_rent", "vacancy_loss", "gross_rent", "management_fee",
		"service_charge", "ground_rent", "other_costs", "maintenance", "total_expenses",
		"net_operating_income", "interest", "principal", "remaining_balance", "net_cash_flow",
	}
	for _, variant := range finance.TaxVariants() {
		headers = append(headers, string(variant)+"_tax")
	}
	return append(headers,
		"applicable_variant",
		"loss_brought_forward", "loss_generated", "loss_utilized", "loss_carried_forward",
		"applicable_tax", "net_cash_flow_after_tax",
	)
}

// CsvString returns the yearly cash flow of every property in
// comma-separated value format, one row per property and year.
func CsvString(results []forecast.Forecast) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(csvHeaders())
	for _, result := range results {
		for _, r := range result.CashFlow {
			row := []string{
				result.Name,
				strconv.Itoa(r.Year),
				r.AnnualRent.StringFixed(2),
				r.VacancyLoss.StringFixed(2),
				r.GrossRent.StringFixed(2),
				r.ManagementFee.StringFixed(2),
				r.ServiceCharge.StringFixed(2),
				r.GroundRent.StringFixed(2),
				r.OtherCosts.StringFixed(2),
				r.Maintenance.StringFixed(2),
				r.TotalExpenses.StringFixed(2),
				r.NetOperatingIncome.StringFixed(2),
				r.Interest.StringFixed(2),
				r.Principal.StringFixed(2),
				r.RemainingBalance.StringFixed(2),
				r.NetCashFlow.StringFixed(2),
			}
			for _, variant := range finance.TaxVariants() {
				row = append(row, r.VariantTax(variant).StringFixed(2))
			}
			_ = w.Write(append(row,
				string(r.ApplicableVariant),
				r.LossBroughtForward.StringFixed(2),
				r.LossGenerated.StringFixed(2),
				r.LossUtilized.StringFixed(2),
				r.LossCarriedForward.StringFixed(2),
				r.ApplicableTax.StringFixed(2),
				r.NetCashFlowAfterTax.StringFixed(2),
			))
		}
	}
	w.Flush()
	return buf.String()
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []forecast.Forecast) {
	fmt.Print(CsvString(results))
}

// JSONString returns the indented JSON report.
func JSONString(results []forecast.Forecast) (string, error) {
	data, err := json.MarshalIndent(NewReport(results), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(data) + "\n", nil
}

// JSONFormat outputs the report as JSON.
func JSONFormat(results []forecast.Forecast) error {
	data, err := JSONString(results)
	if err != nil {
		return err
	}
	fmt.Print(data)
	return nil
}
