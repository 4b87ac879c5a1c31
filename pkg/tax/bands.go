// Package tax implements the banded UK tax calculators: a generic marginal
// band engine plus income, corporation and offshore tax built on it.
package tax

import (
	"errors"
	"fmt"

	"github.com/iwvelando/property-forecast/pkg/format"
	"github.com/shopspring/decimal"
)

// Band is one slice of a marginal schedule. Limit is the inclusive upper
// bound; the lower bound is the previous band's limit (exclusive). The final
// band of a schedule must be Open.
type Band struct {
	Limit decimal.Decimal
	Rate  decimal.Decimal
	Open  bool
}

// UpTo builds a bounded band from literal values.
func UpTo(limit, rate string) Band {
	return Band{Limit: decimal.RequireFromString(limit), Rate: decimal.RequireFromString(rate)}
}

// Above builds the unbounded final band.
func Above(rate string) Band {
	return Band{Rate: decimal.RequireFromString(rate), Open: true}
}

// WithSurcharge returns a copy of bands with surcharge added to every rate.
func WithSurcharge(bands []Band, surcharge decimal.Decimal) []Band {
	adjusted := make([]Band, len(bands))
	for i, band := range bands {
		adjusted[i] = band
		adjusted[i].Rate = band.Rate.Add(surcharge)
	}
	return adjusted
}

// ValidateBands checks that limits are strictly increasing and that only the
// final band is open, so the bands partition [0, ∞).
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return errors.New("band list is empty")
	}
	previous := decimal.Zero
	for i, band := range bands {
		last := i == len(bands)-1
		if band.Open != last {
			if last {
				return fmt.Errorf("final band must be unbounded")
			}
			return fmt.Errorf("band %d is unbounded but is not the final band", i+1)
		}
		if band.Rate.IsNegative() {
			return fmt.Errorf("band %d has negative rate %s", i+1, band.Rate)
		}
		if band.Open {
			continue
		}
		if !band.Limit.GreaterThan(previous) {
			return fmt.Errorf("band %d limit %s does not exceed previous limit %s", i+1, band.Limit, previous)
		}
		previous = band.Limit
	}
	return nil
}

// BandCharge is the tax raised within one band.
type BandCharge struct {
	Description string          `json:"description"`
	From        decimal.Decimal `json:"from"`
	To          decimal.Decimal `json:"to"`
	Open        bool            `json:"open,omitempty"`
	Taxable     decimal.Decimal `json:"taxable"`
	Rate        decimal.Decimal `json:"rate"`
	Tax         decimal.Decimal `json:"tax"`
}

// ComputeBandedTax returns the tax due on amount across bands.
func ComputeBandedTax(amount decimal.Decimal, bands []Band) (decimal.Decimal, error) {
	charges, err := ComputeBandedBreakdown(amount, bands)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, charge := range charges {
		total = total.Add(charge.Tax)
	}
	return total, nil
}

// ComputeBandedBreakdown applies each band's rate to the part of amount that
// falls inside it, stopping at the band containing amount. Only bands with a
// taxable portion are returned.
func ComputeBandedBreakdown(amount decimal.Decimal, bands []Band) ([]BandCharge, error) {
	if err := checkAmount("tax.ComputeBandedTax", amount); err != nil {
		return nil, err
	}
	if len(bands) == 0 {
		return nil, errors.New("tax.ComputeBandedTax: band list is empty")
	}

	var charges []BandCharge
	lower := decimal.Zero
	for _, band := range bands {
		if !amount.GreaterThan(lower) {
			break
		}
		upper := amount
		if !band.Open && band.Limit.LessThan(amount) {
			upper = band.Limit
		}
		taxable := upper.Sub(lower)
		charges = append(charges, BandCharge{
			Description: describeBand(lower, band),
			From:        lower,
			To:          band.Limit,
			Open:        band.Open,
			Taxable:     taxable,
			Rate:        band.Rate,
			Tax:         taxable.Mul(band.Rate),
		})
		if band.Open || !amount.GreaterThan(band.Limit) {
			break
		}
		lower = band.Limit
	}
	return charges, nil
}

func describeBand(lower decimal.Decimal, band Band) string {
	if band.Open {
		return "Above " + format.Currency(lower)
	}
	return format.Currency(lower) + " to " + format.Currency(band.Limit)
}
