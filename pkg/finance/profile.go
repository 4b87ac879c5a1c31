// Package finance projects the cash flow, disposal scenarios and return
// metrics of a single rental property.
package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/property-forecast/pkg/cgt"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
)

// EPCRating is an Energy Performance Certificate band. An empty rating means
// the certificate is unknown.
type EPCRating string

const (
	EPCUnknown EPCRating = ""
	EPCA       EPCRating = "A"
	EPCB       EPCRating = "B"
	EPCC       EPCRating = "C"
	EPCD       EPCRating = "D"
	EPCE       EPCRating = "E"
	EPCF       EPCRating = "F"
	EPCG       EPCRating = "G"
)

// ParseEPCRating parses a rating letter, ignoring case.
func ParseEPCRating(value string) (EPCRating, error) {
	rating := EPCRating(strings.ToUpper(strings.TrimSpace(value)))
	switch rating {
	case EPCUnknown, EPCA, EPCB, EPCC, EPCD, EPCE, EPCF, EPCG:
		return rating, nil
	default:
		return "", fmt.Errorf("invalid EPC rating %q, expected A to G", value)
	}
}

// Profile holds the financial attributes of one property. A Profile is
// treated as immutable for the duration of a projection.
type Profile struct {
	Name string

	PurchasePrice    decimal.Decimal
	PurchaseDate     time.Time
	Deposit          decimal.Decimal
	AcquisitionCosts decimal.Decimal
	MarketValue      decimal.Decimal
	WeeklyRent       decimal.Decimal

	HasMortgage bool
	Mortgage    loans.Mortgage

	// ManagementFeePercent is charged on gross rent, e.g. 10 for 10%.
	ManagementFeePercent decimal.Decimal
	ServiceCharge        decimal.Decimal
	GroundRent           decimal.Decimal
	OtherCosts           decimal.Decimal

	EPCRating EPCRating

	Ownership          tax.Ownership
	UKResident         bool
	UKTaxFreeAllowance bool
	PersonalIncome     decimal.Decimal

	// CGTRateBand optionally pins the individual CGT rate.
	CGTRateBand cgt.RateBand
}

// BuyerType classifies the owner for SDLT purposes.
func (p Profile) BuyerType() tax.BuyerType {
	return tax.ClassifyBuyer(p.Ownership, p.UKResident)
}

// IsCompany reports whether the property is held by a company.
func (p Profile) IsCompany() bool {
	return p.Ownership == tax.OwnershipCompany
}

// OutstandingBalance is the mortgage balance at the start of the projection,
// or zero when there is no mortgage.
func (p Profile) OutstandingBalance() decimal.Decimal {
	if !p.HasMortgage {
		return decimal.Zero
	}
	return p.Mortgage.Balance
}

type profileAmount struct {
	field string
	value decimal.Decimal
}

// Validate checks the profile for values no calculator can accept.
func (p Profile) Validate() error {
	amounts := []profileAmount{
		{"purchasePrice", p.PurchasePrice},
		{"deposit", p.Deposit},
		{"acquisitionCosts", p.AcquisitionCosts},
		{"marketValue", p.MarketValue},
		{"weeklyRent", p.WeeklyRent},
		{"managementFeePercent", p.ManagementFeePercent},
		{"serviceCharge", p.ServiceCharge},
		{"groundRent", p.GroundRent},
		{"otherCosts", p.OtherCosts},
		{"personalIncome", p.PersonalIncome},
	}
	if p.HasMortgage {
		amounts = append(amounts,
			profileAmount{"mortgage.balance", p.Mortgage.Balance},
			profileAmount{"mortgage.interestRate", p.Mortgage.AnnualRate},
		)
	}
	for _, amount := range amounts {
		if amount.value.IsNegative() {
			return &tax.InvalidAmountError{Calculator: "finance.Profile." + amount.field, Amount: amount.value}
		}
	}

	switch p.Ownership {
	case tax.OwnershipIndividual, tax.OwnershipCompany:
	default:
		return fmt.Errorf("property %q: invalid ownership status %q", p.Name, p.Ownership)
	}

	if _, err := ParseEPCRating(string(p.EPCRating)); err != nil {
		return fmt.Errorf("property %q: %w", p.Name, err)
	}

	if p.HasMortgage {
		if _, err := loans.Start(p.Mortgage); err != nil {
			return fmt.Errorf("property %q: %w", p.Name, err)
		}
	}
	return nil
}
