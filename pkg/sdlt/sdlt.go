// Package sdlt computes Stamp Duty Land Tax on residential purchases,
// including the buy-to-let surcharge and the corporate flat-rate override.
package sdlt

import (
	"time"

	"github.com/iwvelando/property-forecast/pkg/format"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/iwvelando/property-forecast/pkg/ratetable"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
)

// Calculator holds the rate tables used for SDLT. It carries no other state
// and is safe for concurrent use.
type Calculator struct {
	Residential ratetable.Table[ratetable.Tier]
	Surcharge   ratetable.Table[ratetable.Surcharge]
	FlatRate    ratetable.Table[ratetable.FlatRate]
}

// Result is the outcome of an SDLT computation.
type Result struct {
	SDLT            decimal.Decimal  `json:"sdlt"`
	Breakdown       []tax.BandCharge `json:"breakdown"`
	RateTier        string           `json:"rateTier"`
	BuyerType       tax.BuyerType    `json:"buyerType"`
	IsBTL           bool             `json:"isBtl"`
	SurchargeRate   decimal.Decimal  `json:"surchargeRate"`
	SurchargeAmount decimal.Decimal  `json:"surchargeAmount"`
	FlatRateApplied bool             `json:"flatRateApplied"`
	EffectiveRate   decimal.Decimal  `json:"effectiveRate"`
}

// NewCalculator returns a calculator using the built-in historic tables.
func NewCalculator() *Calculator {
	return &Calculator{
		Residential: ratetable.SDLTResidential(),
		Surcharge:   ratetable.SDLTBuyToLetSurcharge(),
		FlatRate:    ratetable.SDLTCorporateFlatRate(),
	}
}

// Compute returns the SDLT due on a purchase.
//
// Buy-to-let purchases add the buyer's surcharge to every band. A company
// buying to let above the flat-rate threshold instead pays the flat rate on
// the entire price; a price exactly at the threshold is still banded.
func (c *Calculator) Compute(purchaseDate time.Time, price decimal.Decimal, buyer tax.BuyerType, isBTL bool) (Result, error) {
	if price.IsNegative() {
		return Result{}, &tax.InvalidAmountError{Calculator: "sdlt.Compute", Amount: price}
	}
	if !buyer.Valid() {
		_, err := tax.ParseBuyerType(string(buyer))
		return Result{}, err
	}

	tier, err := c.Residential.Resolve(purchaseDate)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		RateTier:      tier.Value.Name,
		BuyerType:     buyer,
		IsBTL:         isBTL,
		SurchargeRate: decimal.Zero,
	}

	bands := tier.Value.Bands
	if isBTL {
		surcharge, err := ratetable.ResolveSurcharge(c.Surcharge, purchaseDate, buyer)
		if err != nil {
			return Result{}, err
		}
		result.SurchargeRate = surcharge
		result.SurchargeAmount = mathutil.Round(price.Mul(surcharge))
		bands = tax.WithSurcharge(bands, surcharge)

		if buyer.IsCompany() {
			flat, err := c.FlatRate.Resolve(purchaseDate)
			if err != nil {
				return Result{}, err
			}
			if rate, ok := flat.Value.Rates[buyer]; ok && price.GreaterThan(flat.Value.Threshold) {
				due := price.Mul(rate)
				result.FlatRateApplied = true
				result.SurchargeAmount = decimal.Zero
				result.SDLT = mathutil.Round(due)
				result.Breakdown = []tax.BandCharge{{
					Description: "Flat rate on whole price above " + format.Currency(flat.Value.Threshold),
					From:        decimal.Zero,
					To:          price,
					Taxable:     price,
					Rate:        rate,
					Tax:         due,
				}}
				result.EffectiveRate = effectiveRate(result.SDLT, price)
				return result, nil
			}
		}
	}

	breakdown, err := tax.ComputeBandedBreakdown(price, bands)
	if err != nil {
		return Result{}, err
	}
	total := decimal.Zero
	for _, charge := range breakdown {
		total = total.Add(charge.Tax)
	}
	result.Breakdown = breakdown
	result.SDLT = mathutil.Round(total)
	result.EffectiveRate = effectiveRate(result.SDLT, price)
	return result, nil
}

func effectiveRate(due, price decimal.Decimal) decimal.Decimal {
	return mathutil.CalculatePercentage(due, price).Round(3)
}
