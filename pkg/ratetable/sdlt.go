package ratetable

import (
	"fmt"
	"time"

	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
)

// Tier is one historic set of SDLT residential bands.
type Tier struct {
	Name  string
	Bands []tax.Band
}

// Surcharge maps buyer classifications to the buy-to-let surcharge rate.
type Surcharge map[tax.BuyerType]decimal.Decimal

// FlatRate is the corporate flat-rate override: above Threshold the whole
// price is charged at the buyer's rate instead of being banded.
type FlatRate struct {
	Threshold decimal.Decimal
	Rates     map[tax.BuyerType]decimal.Decimal
}

// ResolveSurcharge returns the buy-to-let surcharge for a buyer on date.
func ResolveSurcharge(table Table[Surcharge], date time.Time, buyer tax.BuyerType) (decimal.Decimal, error) {
	if !buyer.Valid() {
		return decimal.Zero, &tax.InvalidBuyerTypeError{Value: string(buyer)}
	}
	p, err := table.Resolve(date)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Value[buyer], nil
}

// ValidateTiers checks the table's dates and every tier's bands.
func ValidateTiers(table Table[Tier]) error {
	if err := table.Validate(); err != nil {
		return err
	}
	for _, p := range table.Periods {
		if err := tax.ValidateBands(p.Value.Bands); err != nil {
			return fmt.Errorf("%s %s: %w", table.Name, p.Value.Name, err)
		}
	}
	return nil
}

// SDLTResidential returns the historic residential SDLT band tiers.
func SDLTResidential() Table[Tier] {
	return Table[Tier]{
		Name: "SDLT residential",
		Periods: []Period[Tier]{
			period("1900-01-01", "1958-07-31", Tier{"Tier 0", []tax.Band{
				tax.Above("0"),
			}}),
			period("1958-08-01", "1963-07-31", Tier{"Tier 1", []tax.Band{
				tax.UpTo("3500", "0"), tax.UpTo("4500", "0.005"), tax.UpTo("5250", "0.01"),
				tax.UpTo("6000", "0.015"), tax.Above("0.02"),
			}}),
			period("1963-08-01", "1967-07-31", Tier{"Tier 2", []tax.Band{
				tax.UpTo("4500", "0"), tax.UpTo("6000", "0.005"), tax.Above("0.01"),
			}}),
			period("1967-08-01", "1972-07-31", Tier{"Tier 3", []tax.Band{
				tax.UpTo("5500", "0"), tax.UpTo("7000", "0.005"), tax.Above("0.01"),
			}}),
			period("1972-08-01", "1974-04-30", Tier{"Tier 4", []tax.Band{
				tax.UpTo("10000", "0"), tax.UpTo("15000", "0.005"), tax.Above("0.01"),
			}}),
			period("1974-05-01", "1980-04-05", Tier{"Tier 5", []tax.Band{
				tax.UpTo("15000", "0"), tax.UpTo("20000", "0.005"), tax.UpTo("25000", "0.01"),
				tax.UpTo("30000", "0.015"), tax.Above("0.02"),
			}}),
			period("1980-04-06", "1982-03-21", Tier{"Tier 6", []tax.Band{
				tax.UpTo("20000", "0"), tax.UpTo("25000", "0.005"), tax.UpTo("30000", "0.01"),
				tax.UpTo("35000", "0.015"), tax.Above("0.02"),
			}}),
			period("1982-03-22", "1984-03-12", Tier{"Tier 7", []tax.Band{
				tax.UpTo("25000", "0"), tax.UpTo("30000", "0.005"), tax.UpTo("35000", "0.01"),
				tax.UpTo("40000", "0.015"), tax.Above("0.02"),
			}}),
			period("1984-03-13", "1991-12-19", Tier{"Tier 8", []tax.Band{
				tax.UpTo("30000", "0"), tax.Above("0.01"),
			}}),
			period("1991-12-20", "1992-08-19", Tier{"Tier 9", []tax.Band{
				tax.UpTo("250000", "0"), tax.Above("0.01"),
			}}),
			period("1992-08-20", "1993-03-15", Tier{"Tier 10", []tax.Band{
				tax.UpTo("30000", "0"), tax.Above("0.01"),
			}}),
			period("1993-03-16", "1997-07-07", Tier{"Tier 11", []tax.Band{
				tax.UpTo("60000", "0"), tax.Above("0.01"),
			}}),
			period("1997-07-08", "1998-03-23", Tier{"Tier 12", []tax.Band{
				tax.UpTo("60000", "0"), tax.UpTo("250000", "0.01"), tax.UpTo("500000", "0.015"), tax.Above("0.02"),
			}}),
			period("1998-03-24", "1999-03-15", Tier{"Tier 13", []tax.Band{
				tax.UpTo("60000", "0"), tax.UpTo("250000", "0.01"), tax.UpTo("500000", "0.02"), tax.Above("0.03"),
			}}),
			period("1999-03-16", "2000-03-27", Tier{"Tier 14", []tax.Band{
				tax.UpTo("60000", "0"), tax.UpTo("250000", "0.01"), tax.UpTo("500000", "0.025"), tax.Above("0.035"),
			}}),
			period("2000-03-28", "2005-03-16", Tier{"Tier 15", []tax.Band{
				tax.UpTo("60000", "0"), tax.UpTo("250000", "0.01"), tax.UpTo("500000", "0.03"), tax.Above("0.04"),
			}}),
			period("2005-03-17", "2006-03-22", Tier{"Tier 16", []tax.Band{
				tax.UpTo("120000", "0"), tax.UpTo("250000", "0.01"), tax.UpTo("500000", "0.03"), tax.Above("0.04"),
			}}),
			period("2006-03-23", "2008-09-02", Tier{"Tier 17", []tax.Band{
				tax.UpTo("125000", "0"), tax.UpTo("250000", "0.01"), tax.UpTo("500000", "0.03"), tax.Above("0.04"),
			}}),
			period("2008-09-03", "2009-12-31", Tier{"Tier 18", []tax.Band{
				tax.UpTo("175000", "0"), tax.UpTo("250000", "0.01"), tax.UpTo("500000", "0.03"), tax.Above("0.04"),
			}}),
			period("2010-01-01", "2011-04-05", Tier{"Tier 19", []tax.Band{
				tax.UpTo("125000", "0"), tax.UpTo("250000", "0.01"), tax.UpTo("500000", "0.03"), tax.Above("0.04"),
			}}),
			period("2011-04-06", "2012-03-21", Tier{"Tier 20", []tax.Band{
				tax.UpTo("125000", "0"), tax.UpTo("250000", "0.01"), tax.UpTo("500000", "0.03"),
				tax.UpTo("1000000", "0.04"), tax.Above("0.05"),
			}}),
			period("2012-03-22", "2014-12-02", Tier{"Tier 21", []tax.Band{
				tax.UpTo("125000", "0"), tax.UpTo("250000", "0.01"), tax.UpTo("500000", "0.03"),
				tax.UpTo("1000000", "0.04"), tax.UpTo("2000000", "0.05"), tax.Above("0.07"),
			}}),
			period("2014-12-03", "2020-07-07", Tier{"Tier 22", []tax.Band{
				tax.UpTo("125000", "0"), tax.UpTo("250000", "0.02"), tax.UpTo("925000", "0.05"),
				tax.UpTo("1500000", "0.10"), tax.Above("0.12"),
			}}),
			period("2020-07-08", "2021-06-30", Tier{"Tier 23", []tax.Band{
				tax.UpTo("500000", "0"), tax.UpTo("925000", "0.05"), tax.UpTo("1500000", "0.10"), tax.Above("0.12"),
			}}),
			period("2021-07-01", "2021-09-30", Tier{"Tier 24", []tax.Band{
				tax.UpTo("250000", "0"), tax.UpTo("925000", "0.05"), tax.UpTo("1500000", "0.10"), tax.Above("0.12"),
			}}),
			period("2021-10-01", "2022-09-22", Tier{"Tier 25", []tax.Band{
				tax.UpTo("125000", "0"), tax.UpTo("250000", "0.02"), tax.UpTo("925000", "0.05"),
				tax.UpTo("1500000", "0.10"), tax.Above("0.12"),
			}}),
			period("2022-09-23", "2025-03-31", Tier{"Tier 26", []tax.Band{
				tax.UpTo("250000", "0"), tax.UpTo("925000", "0.05"), tax.UpTo("1500000", "0.10"), tax.Above("0.12"),
			}}),
			period("2025-04-01", "2050-03-31", Tier{"Tier 27", []tax.Band{
				tax.UpTo("125000", "0"), tax.UpTo("250000", "0.02"), tax.UpTo("925000", "0.05"),
				tax.UpTo("1500000", "0.10"), tax.Above("0.12"),
			}}),
		},
	}
}

func surcharge(ukIndividual, nonUK, ukCompany string) Surcharge {
	return Surcharge{
		tax.UKIndividual:    decimal.RequireFromString(ukIndividual),
		tax.NonUKIndividual: decimal.RequireFromString(nonUK),
		tax.UKCompany:       decimal.RequireFromString(ukCompany),
		tax.NonUKCompany:    decimal.RequireFromString(nonUK),
	}
}

// SDLTBuyToLetSurcharge returns the higher-rates surcharge added to every
// band for additional residential property. Non-UK companies pay the non-UK
// rate.
func SDLTBuyToLetSurcharge() Table[Surcharge] {
	return Table[Surcharge]{
		Name: "SDLT buy-to-let surcharge",
		Periods: []Period[Surcharge]{
			period("1900-01-01", "2016-03-31", surcharge("0", "0", "0")),
			period("2016-04-01", "2020-07-07", surcharge("0.03", "0.03", "0.03")),
			period("2020-07-08", "2021-06-30", surcharge("0.03", "0.03", "0.03")),
			period("2021-07-01", "2021-09-30", surcharge("0.03", "0.03", "0.03")),
			period("2021-10-01", "2022-09-22", surcharge("0.03", "0.05", "0.03")),
			period("2022-09-23", "2025-03-31", surcharge("0.03", "0.05", "0.03")),
			period("2025-04-01", "2050-03-31", surcharge("0.05", "0.07", "0.05")),
		},
	}
}

func flatRate(threshold, ukRate, nonUKRate string) FlatRate {
	return FlatRate{
		Threshold: decimal.RequireFromString(threshold),
		Rates: map[tax.BuyerType]decimal.Decimal{
			tax.UKCompany:    decimal.RequireFromString(ukRate),
			tax.NonUKCompany: decimal.RequireFromString(nonUKRate),
		},
	}
}

// SDLTCorporateFlatRate returns the flat rate charged on the whole price
// when a company buys residential property above the threshold. A zero
// threshold with no rates means no override was in force. The non-UK rate
// includes the 2% non-resident surcharge from 2021-04-01.
func SDLTCorporateFlatRate() Table[FlatRate] {
	none := FlatRate{Rates: map[tax.BuyerType]decimal.Decimal{}}
	return Table[FlatRate]{
		Name: "SDLT corporate flat rate",
		Periods: []Period[FlatRate]{
			period("1900-01-01", "2012-03-20", none),
			period("2012-03-21", "2014-03-19", flatRate("2000000", "0.15", "0.15")),
			period("2014-03-20", "2021-03-31", flatRate("500000", "0.15", "0.15")),
			period("2021-04-01", "2024-10-30", flatRate("500000", "0.15", "0.17")),
			period("2024-10-31", "2050-03-31", flatRate("500000", "0.17", "0.19")),
		},
	}
}
