package output

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/iwvelando/property-forecast/pkg/cgt"
	"github.com/iwvelando/property-forecast/pkg/format"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/iwvelando/property-forecast/pkg/sdlt"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
)

func percentOf(rate decimal.Decimal) string {
	return format.Percent(&rate)
}

func fractionPercent(rate decimal.Decimal) string {
	return percentOf(rate.Mul(mathutil.Hundred))
}

func bandRows(breakdown []tax.BandCharge) [][]string {
	rows := make([][]string, 0, len(breakdown))
	for _, band := range breakdown {
		upper := format.Currency(band.To)
		if band.Open {
			upper = "and above"
		}
		rows = append(rows, []string{
			band.Description,
			format.Currency(band.From),
			upper,
			format.Currency(band.Taxable),
			fractionPercent(band.Rate),
			format.Currency(band.Tax),
		})
	}
	return rows
}

var bandHeaders = []string{"Band", "From", "To", "Taxable", "Rate", "Tax"}

func calculation(title string, rows [][]string, breakdown []tax.BandCharge) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("--- %s ---", title)))
	b.WriteString("\n")
	b.WriteString(renderTable([]string{"Measure", "Value"}, rows))
	b.WriteString("\n")
	if len(breakdown) > 0 {
		b.WriteString(renderTable(bandHeaders, bandRows(breakdown)))
		b.WriteString("\n")
	}
	return b.String()
}

// SDLTString renders a stamp duty calculation with its band breakdown.
func SDLTString(r sdlt.Result) string {
	method := "banded"
	if r.FlatRateApplied {
		method = "flat rate"
	}
	return calculation("Stamp Duty Land Tax", [][]string{
		{"Buyer type", string(r.BuyerType)},
		{"Rate tier", r.RateTier},
		{"Method", method},
		{"Surcharge rate", fractionPercent(r.SurchargeRate)},
		{"Surcharge", format.Currency(r.SurchargeAmount)},
		{"SDLT", format.Currency(r.SDLT)},
		{"Effective rate", percentOf(r.EffectiveRate)},
	}, r.Breakdown)
}

// IncomeTaxString renders an income tax calculation.
func IncomeTaxString(r tax.IncomeTaxResult) string {
	return calculation("Income Tax", [][]string{
		{"Income", format.Currency(r.Income)},
		{"Personal allowance", format.Currency(r.PersonalAllowance)},
		{"Taxable income", format.Currency(r.TaxableIncome)},
		{"Tax payable", format.Currency(r.TaxPayable)},
		{"Net income", format.Currency(r.NetIncome)},
		{"Effective rate", percentOf(r.EffectiveRate)},
	}, r.Breakdown)
}

// CGTString renders the tax on a single disposal.
func CGTString(r cgt.Result) string {
	title := r.TaxType
	if title == "" {
		title = "No taxable gain"
	}
	return calculation(title, [][]string{
		{"Total costs", format.Currency(r.TotalCosts)},
		{"Gross gain", format.Currency(r.GrossGain)},
		{"Exempt amount", format.Currency(r.ExemptAmount)},
		{"Taxable gain", format.Currency(r.TaxableGain)},
		{"Rate", fractionPercent(r.Rate)},
		{"Liability", format.Currency(r.Liability)},
		{"Net proceeds", format.Currency(r.NetProceeds)},
		{"Net gain after tax", format.Currency(r.NetGainAfterTax)},
	}, nil)
}

// ValueJSONString returns any calculation result as indented JSON.
func ValueJSONString(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data) + "\n", nil
}
