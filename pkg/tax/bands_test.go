package tax

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeBandedTax(t *testing.T) {
	bands := []Band{
		UpTo("125000", "0"),
		UpTo("250000", "0.02"),
		UpTo("925000", "0.05"),
		Above("0.10"),
	}

	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{"Zero amount", "0", "0"},
		{"Inside nil-rate band", "100000", "0"},
		{"Exactly at first limit", "125000", "0"},
		{"One pound over first limit", "125001", "0.02"},
		{"Exactly at second limit", "250000", "2500"},
		{"Middle band", "300000", "5000"},
		{"Open band", "1000000", "43750"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeBandedTax(d(tt.amount), bands)
			if err != nil {
				t.Fatalf("ComputeBandedTax() unexpected error: %v", err)
			}
			if !result.Equal(d(tt.expected)) {
				t.Errorf("ComputeBandedTax(%s) = %s, expected %s", tt.amount, result, tt.expected)
			}
		})
	}
}

func TestComputeBandedTaxRejectsNegative(t *testing.T) {
	_, err := ComputeBandedTax(d("-1"), IncomeTaxBands())
	var amountErr *InvalidAmountError
	if !errors.As(err, &amountErr) {
		t.Fatalf("expected InvalidAmountError, got %v", err)
	}
	if !amountErr.Amount.Equal(d("-1")) {
		t.Errorf("InvalidAmountError.Amount = %s, expected -1", amountErr.Amount)
	}
}

func TestComputeBandedTaxMonotonic(t *testing.T) {
	bandSets := map[string][]Band{
		"income":      IncomeTaxBands(),
		"corporation": CorporationTaxBands(),
		"offshore":    OffshoreTaxBands(),
	}

	for name, bands := range bandSets {
		t.Run(name, func(t *testing.T) {
			previous := decimal.Zero
			step := d("2500.5")
			for amount := decimal.Zero; amount.LessThan(d("400000")); amount = amount.Add(step) {
				result, err := ComputeBandedTax(amount, bands)
				if err != nil {
					t.Fatalf("ComputeBandedTax(%s) unexpected error: %v", amount, err)
				}
				if result.LessThan(previous) {
					t.Fatalf("tax decreased at %s: %s < %s", amount, result, previous)
				}
				previous = result
			}
		})
	}
}

func TestComputeBandedTaxContinuousAtLimits(t *testing.T) {
	bands := OffshoreTaxBands()
	epsilon := d("0.01")

	for _, band := range bands {
		if band.Open {
			continue
		}
		below, err := ComputeBandedTax(band.Limit.Sub(epsilon), bands)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		at, err := ComputeBandedTax(band.Limit, bands)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := at.Sub(below); !diff.Equal(band.Rate.Mul(epsilon)) {
			t.Errorf("tax(%s) - tax(%s - ε) = %s, expected %s", band.Limit, band.Limit, diff, band.Rate.Mul(epsilon))
		}
	}
}

func TestComputeBandedBreakdown(t *testing.T) {
	charges, err := ComputeBandedBreakdown(d("300000"), []Band{
		UpTo("125000", "0.05"),
		UpTo("250000", "0.07"),
		UpTo("925000", "0.10"),
		Above("0.15"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(charges) != 3 {
		t.Fatalf("expected 3 charges, got %d", len(charges))
	}

	expected := []struct {
		taxable string
		tax     string
	}{
		{"125000", "6250"},
		{"125000", "8750"},
		{"50000", "5000"},
	}
	for i, want := range expected {
		if !charges[i].Taxable.Equal(d(want.taxable)) || !charges[i].Tax.Equal(d(want.tax)) {
			t.Errorf("charge %d = %s taxed %s, expected %s taxed %s",
				i, charges[i].Taxable, charges[i].Tax, want.taxable, want.tax)
		}
	}
	if charges[0].Description != "£0.00 to £125,000.00" {
		t.Errorf("Description = %q", charges[0].Description)
	}
}

func TestValidateBands(t *testing.T) {
	tests := []struct {
		name    string
		bands   []Band
		wantErr bool
	}{
		{"Valid", IncomeTaxBands(), false},
		{"Empty", nil, true},
		{"Not open ended", []Band{UpTo("100", "0.1")}, true},
		{"Open in the middle", []Band{Above("0.1"), Above("0.2")}, true},
		{"Not increasing", []Band{UpTo("100", "0.1"), UpTo("100", "0.2"), Above("0.3")}, true},
		{"Negative rate", []Band{UpTo("100", "-0.1"), Above("0.2")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBands(tt.bands)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBands() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithSurcharge(t *testing.T) {
	base := []Band{UpTo("125000", "0"), Above("0.02")}
	adjusted := WithSurcharge(base, d("0.05"))

	if !adjusted[0].Rate.Equal(d("0.05")) || !adjusted[1].Rate.Equal(d("0.07")) {
		t.Errorf("WithSurcharge() rates = %s, %s, expected 0.05, 0.07", adjusted[0].Rate, adjusted[1].Rate)
	}
	if !base[0].Rate.IsZero() {
		t.Error("WithSurcharge() modified the input bands")
	}
}
