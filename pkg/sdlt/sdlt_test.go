package sdlt

import (
	"errors"
	"testing"

	"github.com/iwvelando/property-forecast/pkg/datetime"
	"github.com/iwvelando/property-forecast/pkg/ratetable"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name      string
		date      string
		price     string
		buyer     tax.BuyerType
		isBTL     bool
		expected  string
		tier      string
		flatRate  bool
		surcharge string
	}{
		{
			name: "UK individual buy-to-let after April 2025", date: "2025-04-01", price: "300000",
			buyer: tax.UKIndividual, isBTL: true, expected: "20000", tier: "Tier 27", surcharge: "0.05",
		},
		{
			name: "UK individual main residence after April 2025", date: "2025-06-15", price: "300000",
			buyer: tax.UKIndividual, expected: "5000", tier: "Tier 27", surcharge: "0",
		},
		{
			name: "Company buy-to-let above threshold", date: "2025-06-15", price: "600000",
			buyer: tax.UKCompany, isBTL: true, expected: "102000", tier: "Tier 27", flatRate: true, surcharge: "0.05",
		},
		{
			name: "Company buy-to-let below threshold is banded", date: "2025-06-15", price: "300000",
			buyer: tax.UKCompany, isBTL: true, expected: "20000", tier: "Tier 27", surcharge: "0.05",
		},
		{
			name: "Non-UK individual buy-to-let", date: "2025-06-15", price: "300000",
			buyer: tax.NonUKIndividual, isBTL: true, expected: "26000", tier: "Tier 27", surcharge: "0.07",
		},
		{
			name: "Stamp duty holiday buy-to-let", date: "2020-12-01", price: "300000",
			buyer: tax.UKIndividual, isBTL: true, expected: "9000", tier: "Tier 23", surcharge: "0.03",
		},
		{
			name: "2021 transitional band", date: "2021-08-01", price: "300000",
			buyer: tax.UKIndividual, expected: "2500", tier: "Tier 24", surcharge: "0",
		},
		{
			name: "Before surcharge existed", date: "2015-06-01", price: "300000",
			buyer: tax.UKIndividual, isBTL: true, expected: "5000", tier: "Tier 22", surcharge: "0",
		},
		{
			name: "Slab-era rate tier", date: "1995-01-01", price: "80000",
			buyer: tax.UKIndividual, expected: "200", tier: "Tier 11", surcharge: "0",
		},
		{
			name: "Zero price", date: "2025-06-15", price: "0",
			buyer: tax.UKIndividual, isBTL: true, expected: "0", tier: "Tier 27", surcharge: "0.05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Compute(datetime.MustParseDate(tt.date), d(tt.price), tt.buyer, tt.isBTL)
			if err != nil {
				t.Fatalf("Compute() unexpected error: %v", err)
			}
			if !result.SDLT.Equal(d(tt.expected)) {
				t.Errorf("Compute() SDLT = %s, expected %s", result.SDLT, tt.expected)
			}
			if result.RateTier != tt.tier {
				t.Errorf("Compute() RateTier = %s, expected %s", result.RateTier, tt.tier)
			}
			if result.FlatRateApplied != tt.flatRate {
				t.Errorf("Compute() FlatRateApplied = %v, expected %v", result.FlatRateApplied, tt.flatRate)
			}
			if !result.SurchargeRate.Equal(d(tt.surcharge)) {
				t.Errorf("Compute() SurchargeRate = %s, expected %s", result.SurchargeRate, tt.surcharge)
			}
		})
	}
}

func TestComputeFlatRateCliff(t *testing.T) {
	calc := NewCalculator()
	date := datetime.MustParseDate("2025-06-15")

	tests := []struct {
		name     string
		price    string
		expected string
		flat     bool
	}{
		{"One below threshold", "499999", "39999.90", false},
		{"At threshold", "500000", "40000", false},
		{"One above threshold", "500001", "85000.17", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Compute(date, d(tt.price), tax.UKCompany, true)
			if err != nil {
				t.Fatalf("Compute() unexpected error: %v", err)
			}
			if !result.SDLT.Equal(d(tt.expected)) {
				t.Errorf("Compute(%s) = %s, expected %s", tt.price, result.SDLT, tt.expected)
			}
			if result.FlatRateApplied != tt.flat {
				t.Errorf("Compute(%s) FlatRateApplied = %v, expected %v", tt.price, result.FlatRateApplied, tt.flat)
			}
		})
	}
}

func TestComputeBreakdown(t *testing.T) {
	result, err := NewCalculator().Compute(datetime.MustParseDate("2025-04-01"), d("300000"), tax.UKIndividual, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []struct {
		rate string
		tax  string
	}{
		{"0.05", "6250"},
		{"0.07", "8750"},
		{"0.10", "5000"},
	}
	if len(result.Breakdown) != len(expected) {
		t.Fatalf("expected %d bands, got %d", len(expected), len(result.Breakdown))
	}
	for i, want := range expected {
		if !result.Breakdown[i].Rate.Equal(d(want.rate)) || !result.Breakdown[i].Tax.Equal(d(want.tax)) {
			t.Errorf("band %d = %s at %s, expected %s at %s",
				i, result.Breakdown[i].Tax, result.Breakdown[i].Rate, want.tax, want.rate)
		}
	}
	if !result.EffectiveRate.Equal(d("6.667")) {
		t.Errorf("EffectiveRate = %s, expected 6.667", result.EffectiveRate)
	}
	if !result.SurchargeAmount.Equal(d("15000")) {
		t.Errorf("SurchargeAmount = %s, expected 15000", result.SurchargeAmount)
	}
}

func TestComputeErrors(t *testing.T) {
	calc := NewCalculator()

	t.Run("Negative price", func(t *testing.T) {
		_, err := calc.Compute(datetime.MustParseDate("2025-04-01"), d("-1"), tax.UKIndividual, false)
		var amountErr *tax.InvalidAmountError
		if !errors.As(err, &amountErr) {
			t.Errorf("expected InvalidAmountError, got %v", err)
		}
	})

	t.Run("Unknown buyer", func(t *testing.T) {
		_, err := calc.Compute(datetime.MustParseDate("2025-04-01"), d("1"), tax.BuyerType("uk_compnay"), false)
		var buyerErr *tax.InvalidBuyerTypeError
		if !errors.As(err, &buyerErr) {
			t.Fatalf("expected InvalidBuyerTypeError, got %v", err)
		}
		if buyerErr.Suggestion != tax.UKCompany {
			t.Errorf("Suggestion = %s, expected %s", buyerErr.Suggestion, tax.UKCompany)
		}
	})

	t.Run("Date outside tables", func(t *testing.T) {
		_, err := calc.Compute(datetime.MustParseDate("2051-01-01"), d("1"), tax.UKIndividual, false)
		var rateErr *ratetable.NoApplicableRateError
		if !errors.As(err, &rateErr) {
			t.Errorf("expected NoApplicableRateError, got %v", err)
		}
	})
}
