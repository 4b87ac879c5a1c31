// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/internal/forecast"
)

// FindForecast finds a property forecast by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindForecast(results []forecast.Forecast, name string) *forecast.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FlatProperty is an unmortgaged flat let by a UK resident individual with
// no other income. Its first year nets 12,893.58 after tax.
func FlatProperty() config.Property {
	return config.Property{
		Name:                 "Flat 1",
		Active:               true,
		PurchasePrice:        200000,
		PurchaseDate:         "2020-06-01",
		Deposit:              50000,
		MarketValue:          250000,
		WeeklyRent:           300,
		ManagementFeePercent: 10,
		EPCRating:            "D",
		Ownership:            "individual",
		UKResident:           true,
		UKTaxFreeAllowance:   true,
	}
}

// TerraceProperty is a company-owned terrace whose interest-only mortgage
// makes a loss for the first six years.
func TerraceProperty() config.Property {
	return config.Property{
		Name:          "Terrace",
		Active:        true,
		PurchasePrice: 250000,
		PurchaseDate:  "2023-01-15",
		Deposit:       50000,
		MarketValue:   260000,
		WeeklyRent:    200,
		EPCRating:     "C",
		Ownership:     "company",
		UKResident:    true,
		Mortgage: &config.Mortgage{
			Type:           "interest_only",
			Balance:        200000,
			InterestRate:   6,
			YearsRemaining: 25,
		},
	}
}

// SampleConfiguration returns a two-property portfolio.
func SampleConfiguration() config.Configuration {
	return config.Configuration{
		Properties: []config.Property{FlatProperty(), TerraceProperty()},
	}
}
