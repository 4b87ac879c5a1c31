package tax

import (
	"errors"
	"testing"
)

func TestComputeIncomeTax(t *testing.T) {
	tests := []struct {
		name              string
		income            string
		personalAllowance string
		taxable           string
		taxPayable        string
	}{
		{"Zero income", "0", "12570", "0", "0"},
		{"Within allowance", "12570", "12570", "0", "0"},
		{"Basic rate", "30000", "12570", "17430", "3486"},
		{"Taper threshold", "100000", "12570", "87430", "27432"},
		{"Taper ignores half pounds", "100001", "12570", "87431", "27432.40"},
		{"Taper floors odd pounds", "100003", "12569", "87434", "27433.60"},
		{"Partially tapered", "110000", "7570", "102430", "33432"},
		{"Fully tapered", "125140", "0", "125140", "42516"},
		{"Additional rate", "150000", "0", "150000", "53703"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeIncomeTax(d(tt.income))
			if err != nil {
				t.Fatalf("ComputeIncomeTax() unexpected error: %v", err)
			}
			if !result.PersonalAllowance.Equal(d(tt.personalAllowance)) {
				t.Errorf("PersonalAllowance = %s, expected %s", result.PersonalAllowance, tt.personalAllowance)
			}
			if !result.TaxableIncome.Equal(d(tt.taxable)) {
				t.Errorf("TaxableIncome = %s, expected %s", result.TaxableIncome, tt.taxable)
			}
			if !result.TaxPayable.Equal(d(tt.taxPayable)) {
				t.Errorf("TaxPayable = %s, expected %s", result.TaxPayable, tt.taxPayable)
			}
			if !result.NetIncome.Equal(result.Income.Sub(result.TaxPayable)) {
				t.Errorf("NetIncome = %s, expected income less tax", result.NetIncome)
			}
		})
	}
}

func TestComputeIncomeTaxBreakdown(t *testing.T) {
	result, err := ComputeIncomeTax(d("60000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Breakdown) != 2 {
		t.Fatalf("expected 2 bands in breakdown, got %d", len(result.Breakdown))
	}
	if result.Breakdown[0].Description != "Basic rate" || result.Breakdown[1].Description != "Higher rate" {
		t.Errorf("unexpected band names %q, %q", result.Breakdown[0].Description, result.Breakdown[1].Description)
	}
	// 37,700 at 20% plus 9,730 at 40%.
	if !result.TaxPayable.Equal(d("11432")) {
		t.Errorf("TaxPayable = %s, expected 11432", result.TaxPayable)
	}
	if !result.EffectiveRate.Equal(d("19.05")) {
		t.Errorf("EffectiveRate = %s, expected 19.05", result.EffectiveRate)
	}
}

func TestComputeIncomeTaxRejectsNegative(t *testing.T) {
	_, err := ComputeIncomeTax(d("-100"))
	var amountErr *InvalidAmountError
	if !errors.As(err, &amountErr) {
		t.Fatalf("expected InvalidAmountError, got %v", err)
	}
}

func TestComputeCorporationTax(t *testing.T) {
	tests := []struct {
		name     string
		profit   string
		expected string
	}{
		{"Zero", "0", "0"},
		{"Small profits", "40000", "7600"},
		{"Lower limit", "50000", "9500"},
		{"Marginal relief", "100000", "22750"},
		{"Upper limit", "250000", "62500"},
		{"Main rate", "300000", "75000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeCorporationTax(d(tt.profit))
			if err != nil {
				t.Fatalf("ComputeCorporationTax() unexpected error: %v", err)
			}
			if !result.Equal(d(tt.expected)) {
				t.Errorf("ComputeCorporationTax(%s) = %s, expected %s", tt.profit, result, tt.expected)
			}
		})
	}
}

func TestCorporationTaxMatchesMarginalReliefFormula(t *testing.T) {
	for _, profit := range []string{"50001", "75000", "123456.78", "199999", "249999.99"} {
		p := d(profit)
		expected := p.Mul(MainRate).Sub(d("250000").Sub(p).Mul(d("0.015"))).Round(2)
		result, err := ComputeCorporationTax(p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Equal(expected) {
			t.Errorf("ComputeCorporationTax(%s) = %s, expected %s", profit, result, expected)
		}
	}
}

func TestComputeOffshoreTax(t *testing.T) {
	tests := []struct {
		name     string
		income   string
		expected string
	}{
		{"Zero", "0", "0"},
		{"Basic band only", "10000", "2000"},
		{"Basic limit", "37000", "7400"},
		{"Higher band", "100000", "32600"},
		{"Additional band", "200000", "75100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeOffshoreTax(d(tt.income))
			if err != nil {
				t.Fatalf("ComputeOffshoreTax() unexpected error: %v", err)
			}
			if !result.TaxPayable.Equal(d(tt.expected)) {
				t.Errorf("ComputeOffshoreTax(%s) = %s, expected %s", tt.income, result.TaxPayable, tt.expected)
			}
		})
	}
}
