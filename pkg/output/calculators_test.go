package output

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/iwvelando/property-forecast/pkg/cgt"
	"github.com/iwvelando/property-forecast/pkg/datetime"
	"github.com/iwvelando/property-forecast/pkg/sdlt"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
)

func TestCalculatorStrings(t *testing.T) {
	sdltResult, err := sdlt.NewCalculator().Compute(datetime.MustParseDate("2025-06-01"),
		decimal.NewFromInt(300000), tax.UKIndividual, true)
	if err != nil {
		t.Fatalf("Compute() unexpected error: %v", err)
	}
	incomeResult, err := tax.ComputeIncomeTax(decimal.NewFromInt(30000))
	if err != nil {
		t.Fatalf("ComputeIncomeTax() unexpected error: %v", err)
	}
	cgtResult, err := cgt.Compute(
		cgt.Disposal{SalePrice: decimal.NewFromInt(300000), PurchasePrice: decimal.NewFromInt(200000)},
		cgt.Options{Ownership: tax.OwnershipIndividual, RateBand: cgt.RateBandHigher},
	)
	if err != nil {
		t.Fatalf("cgt.Compute() unexpected error: %v", err)
	}
	loss, err := cgt.Compute(
		cgt.Disposal{SalePrice: decimal.NewFromInt(100000), PurchasePrice: decimal.NewFromInt(200000)},
		cgt.Options{Ownership: tax.OwnershipIndividual},
	)
	if err != nil {
		t.Fatalf("cgt.Compute() unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{"SDLT", SDLTString(sdltResult), []string{"Stamp Duty Land Tax", "£20,000.00", "5.00%", "and above"}},
		{"Income tax", IncomeTaxString(incomeResult), []string{"Income Tax", "£3,486.00", "£12,570.00", "20.00%"}},
		{"CGT", CGTString(cgtResult), []string{"Capital Gains Tax (24% rate)", "£23,280.00", "£97,000.00"}},
		{"CGT loss", CGTString(loss), []string{"No taxable gain", "-£100,000.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.want {
				if !strings.Contains(tt.output, want) {
					t.Errorf("output missing %q:\n%s", want, tt.output)
				}
			}
		})
	}
}

func TestValueJSONString(t *testing.T) {
	result, err := tax.ComputeIncomeTax(decimal.NewFromInt(30000))
	if err != nil {
		t.Fatalf("ComputeIncomeTax() unexpected error: %v", err)
	}

	output, err := ValueJSONString(result)
	if err != nil {
		t.Fatalf("ValueJSONString() unexpected error: %v", err)
	}

	var decoded struct {
		TaxPayable decimal.Decimal `json:"taxPayable"`
	}
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("ValueJSONString() produced invalid JSON: %v", err)
	}
	if !decoded.TaxPayable.Equal(decimal.NewFromInt(3486)) {
		t.Errorf("taxPayable = %s, expected 3486", decoded.TaxPayable)
	}
}
