// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/datetime"
)

// ValidateMortgageTerm warns when a repayment mortgage ends inside the
// projection window; the remaining years carry no mortgage payments.
func ValidateMortgageTerm(propertyName, mortgageType string, yearsRemaining int) string {
	if mortgageType != "principal_and_interest" && mortgageType != "repayment" {
		return ""
	}
	if yearsRemaining > 0 && yearsRemaining < constants.ProjectionYears {
		return fmt.Sprintf("Property '%s' mortgage is repaid in year %d of the %d-year projection",
			propertyName, yearsRemaining, constants.ProjectionYears)
	}
	return ""
}

// ValidatePurchaseDate checks that the purchase date parses and is not in
// the future relative to now.
func ValidatePurchaseDate(propertyName, purchaseDate string, now time.Time) []string {
	var warnings []string

	if strings.TrimSpace(purchaseDate) == "" {
		return append(warnings, fmt.Sprintf("Property '%s' has no purchase date; SDLT cannot be computed", propertyName))
	}
	date, err := datetime.ParseDate(purchaseDate)
	if err != nil {
		return append(warnings, fmt.Sprintf("Property '%s' purchase date is invalid: %v", propertyName, err))
	}
	if date.After(now) {
		warnings = append(warnings, fmt.Sprintf("Property '%s' purchase date %s is in the future",
			propertyName, datetime.Format(date)))
	}
	return warnings
}

// PortfolioValidator validates every property in a portfolio.
type PortfolioValidator struct {
	Properties []PropertyInfo

	// Now is the reference time for date checks; zero means time.Now.
	Now time.Time
}

// PropertyInfo is the subset of a property's configuration that is checked.
type PropertyInfo struct {
	Name          string
	Active        bool
	PurchaseDate  string
	PurchasePrice float64
	Deposit       float64
	MarketValue   float64
	WeeklyRent    float64
	EPCRating     string

	MortgageType           string
	MortgageBalance        float64
	MortgageYearsRemaining int
}

// ValidateAll validates the entire portfolio and returns warnings
func (pv *PortfolioValidator) ValidateAll() []string {
	var warnings []string

	now := pv.Now
	if now.IsZero() {
		now = time.Now()
	}

	active := 0
	seen := make(map[string]bool)
	for _, property := range pv.Properties {
		if seen[property.Name] {
			warnings = append(warnings, fmt.Sprintf("Property name '%s' is used more than once", property.Name))
		}
		seen[property.Name] = true

		if !property.Active {
			continue
		}
		active++

		warnings = append(warnings, ValidatePurchaseDate(property.Name, property.PurchaseDate, now)...)

		if property.MarketValue <= 0 {
			warnings = append(warnings, fmt.Sprintf("Property '%s' has no market value; yields and returns are undefined", property.Name))
		}
		if property.WeeklyRent <= 0 {
			warnings = append(warnings, fmt.Sprintf("Property '%s' has no weekly rent", property.Name))
		}
		if property.Deposit > property.PurchasePrice && property.PurchasePrice > 0 {
			warnings = append(warnings, fmt.Sprintf("Property '%s' deposit %.2f exceeds purchase price %.2f",
				property.Name, property.Deposit, property.PurchasePrice))
		}
		if property.MortgageBalance > property.MarketValue && property.MarketValue > 0 {
			warnings = append(warnings, fmt.Sprintf("Property '%s' is in negative equity", property.Name))
		}
		if strings.TrimSpace(property.EPCRating) == "" {
			warnings = append(warnings, fmt.Sprintf("Property '%s' has no EPC rating; no upgrade cost is assumed on sale", property.Name))
		}
		if warning := ValidateMortgageTerm(property.Name, property.MortgageType, property.MortgageYearsRemaining); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	if len(pv.Properties) > 0 && active == 0 {
		warnings = append(warnings, "No properties are active; nothing will be analysed")
	}
	return warnings
}
