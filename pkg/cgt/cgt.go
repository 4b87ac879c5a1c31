// Package cgt computes tax on the disposal of a property for individual and
// company owners.
package cgt

import (
	"fmt"
	"strings"

	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
)

var (
	// AnnualExemptAmount is the individual's yearly tax-free gain.
	AnnualExemptAmount = decimal.NewFromInt(3000)

	// BasicRateLimit is the income-plus-gain ceiling for the basic CGT rate.
	BasicRateLimit = decimal.NewFromInt(50270)

	BasicRate  = decimal.RequireFromString("0.18")
	HigherRate = decimal.RequireFromString("0.24")
)

// RateBand selects how an individual's CGT rate is chosen.
type RateBand string

const (
	// RateBandAuto derives the band from gain plus reference income.
	RateBandAuto   RateBand = ""
	RateBandBasic  RateBand = "basic"
	RateBandHigher RateBand = "higher"
)

// ParseRateBand parses a rate band override. An empty string means auto.
func ParseRateBand(value string) (RateBand, error) {
	switch RateBand(strings.ToLower(strings.TrimSpace(value))) {
	case RateBandAuto, "auto":
		return RateBandAuto, nil
	case RateBandBasic:
		return RateBandBasic, nil
	case RateBandHigher:
		return RateBandHigher, nil
	default:
		return "", fmt.Errorf("invalid CGT rate band %q, expected basic, higher or auto", value)
	}
}

// Disposal describes a sale and its allowable costs.
type Disposal struct {
	SalePrice        decimal.Decimal
	PurchasePrice    decimal.Decimal
	AcquisitionCosts decimal.Decimal
	ImprovementCosts decimal.Decimal
	SellingCosts     decimal.Decimal
}

// Options parameterise the computation by owner.
type Options struct {
	Ownership tax.Ownership

	// ReferenceIncome is the income used alongside the gain to pick the
	// individual's rate band.
	ReferenceIncome decimal.Decimal
	RateBand        RateBand

	// AnnualExemptAmount overrides the default exemption when set.
	AnnualExemptAmount *decimal.Decimal
}

// Result is the outcome of a disposal.
type Result struct {
	TotalCosts      decimal.Decimal `json:"totalCosts"`
	GrossGain       decimal.Decimal `json:"grossGain"`
	ExemptAmount    decimal.Decimal `json:"exemptAmount"`
	TaxableGain     decimal.Decimal `json:"taxableGain"`
	Rate            decimal.Decimal `json:"rate"`
	Liability       decimal.Decimal `json:"liability"`
	NetProceeds     decimal.Decimal `json:"netProceeds"`
	NetGainAfterTax decimal.Decimal `json:"netGainAfterTax"`
	TaxType         string          `json:"taxType,omitempty"`
	IsBasicRate     bool            `json:"isBasicRate"`
}

// Compute returns the tax due on a disposal. A gross gain of zero or less
// carries no liability; losses are not carried forward.
func Compute(disposal Disposal, opts Options) (Result, error) {
	for _, amount := range []decimal.Decimal{
		disposal.SalePrice, disposal.PurchasePrice, disposal.AcquisitionCosts,
		disposal.ImprovementCosts, disposal.SellingCosts,
	} {
		if amount.IsNegative() {
			return Result{}, &tax.InvalidAmountError{Calculator: "cgt.Compute", Amount: amount}
		}
	}

	totalCosts := disposal.PurchasePrice.
		Add(disposal.AcquisitionCosts).
		Add(disposal.ImprovementCosts).
		Add(disposal.SellingCosts)
	gross := disposal.SalePrice.Sub(totalCosts)

	result := Result{
		TotalCosts:      totalCosts,
		GrossGain:       gross,
		NetProceeds:     disposal.SalePrice.Sub(disposal.SellingCosts),
		NetGainAfterTax: gross,
	}
	if !gross.IsPositive() {
		return result, nil
	}

	switch opts.Ownership {
	case tax.OwnershipCompany:
		liability, err := tax.ComputeCorporationTax(gross)
		if err != nil {
			return Result{}, fmt.Errorf("corporation tax on gain: %w", err)
		}
		result.TaxableGain = gross
		result.Liability = liability
		result.Rate = liability.Div(gross).Round(4)
		result.TaxType = "Corporation Tax on capital gains"
	case tax.OwnershipIndividual, "":
		exempt := AnnualExemptAmount
		if opts.AnnualExemptAmount != nil {
			exempt = *opts.AnnualExemptAmount
		}
		rate, err := individualRate(gross, opts)
		if err != nil {
			return Result{}, err
		}
		result.ExemptAmount = exempt
		result.TaxableGain = mathutil.NonNegative(gross.Sub(exempt))
		result.Rate = rate
		result.Liability = mathutil.Round(result.TaxableGain.Mul(rate))
		result.IsBasicRate = rate.Equal(BasicRate)
		result.TaxType = fmt.Sprintf("Capital Gains Tax (%s%% rate)", rate.Mul(mathutil.Hundred).StringFixed(0))
	default:
		return Result{}, fmt.Errorf("invalid ownership status %q", opts.Ownership)
	}

	result.NetProceeds = result.NetProceeds.Sub(result.Liability)
	result.NetGainAfterTax = gross.Sub(result.Liability)
	return result, nil
}

func individualRate(gain decimal.Decimal, opts Options) (decimal.Decimal, error) {
	switch opts.RateBand {
	case RateBandBasic:
		return BasicRate, nil
	case RateBandHigher:
		return HigherRate, nil
	case RateBandAuto:
		if gain.Add(opts.ReferenceIncome).LessThanOrEqual(BasicRateLimit) {
			return BasicRate, nil
		}
		return HigherRate, nil
	default:
		return decimal.Zero, fmt.Errorf("invalid CGT rate band %q", opts.RateBand)
	}
}
