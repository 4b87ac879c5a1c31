package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{"Zero", "0", "£0.00"},
		{"Small", "12.5", "£12.50"},
		{"Thousands", "1234.567", "£1,234.57"},
		{"Millions", "102000", "£102,000.00"},
		{"Negative", "-20000", "-£20,000.00"},
		{"Negative rounds to zero", "-0.001", "£0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Currency(decimal.RequireFromString(tt.amount))
			if result != tt.expected {
				t.Errorf("Currency(%s) = %s, expected %s", tt.amount, result, tt.expected)
			}
		})
	}
}

func TestNumericCurrency(t *testing.T) {
	if got := NumericCurrency(decimal.RequireFromString("-1234567.8")); got != "-1,234,567.80" {
		t.Errorf("NumericCurrency() = %s, expected -1,234,567.80", got)
	}
}

func TestPercent(t *testing.T) {
	value := decimal.RequireFromString("5.125")
	if got := Percent(&value); got != "5.13%" {
		t.Errorf("Percent() = %s, expected 5.13%%", got)
	}
	if got := Percent(nil); got != "n/a" {
		t.Errorf("Percent(nil) = %s, expected n/a", got)
	}
}
