package main

import (
	"fmt"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/pkg/cgt"
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/datetime"
	"github.com/iwvelando/property-forecast/pkg/output"
	"github.com/iwvelando/property-forecast/pkg/sdlt"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagPurchaseDate     string
	flagPrice            string
	flagBuyerType        string
	flagBuyToLet         bool
	flagIncome           string
	flagSalePrice        string
	flagPurchasePrice    string
	flagAcquisitionCosts string
	flagImprovementCosts string
	flagSellingCosts     string
	flagOwnership        string
	flagReferenceIncome  string
	flagRateBand         string
)

var sdltCmd = &cobra.Command{
	Use:   "sdlt",
	Short: "Calculate Stamp Duty Land Tax for a single purchase",
	RunE:  runSDLT,
}

var incomeTaxCmd = &cobra.Command{
	Use:   "income-tax",
	Short: "Calculate income tax on an annual income",
	RunE:  runIncomeTax,
}

var cgtCmd = &cobra.Command{
	Use:   "cgt",
	Short: "Calculate the tax due on a property disposal",
	RunE:  runCGT,
}

func init() {
	sdltCmd.Flags().StringVar(&flagPurchaseDate, "date", "", "purchase date ("+constants.DateLayout+")")
	sdltCmd.Flags().StringVar(&flagPrice, "price", "", "purchase price")
	sdltCmd.Flags().StringVar(&flagBuyerType, "buyer", string(tax.UKIndividual), "buyer type: uk_individual, non_uk_individual, uk_company, non_uk_company")
	sdltCmd.Flags().BoolVar(&flagBuyToLet, "btl", true, "apply buy-to-let surcharges")
	_ = sdltCmd.MarkFlagRequired("date")
	_ = sdltCmd.MarkFlagRequired("price")

	incomeTaxCmd.Flags().StringVar(&flagIncome, "income", "", "annual income")
	_ = incomeTaxCmd.MarkFlagRequired("income")

	cgtCmd.Flags().StringVar(&flagSalePrice, "sale-price", "", "sale price")
	cgtCmd.Flags().StringVar(&flagPurchasePrice, "purchase-price", "0", "purchase price")
	cgtCmd.Flags().StringVar(&flagAcquisitionCosts, "acquisition-costs", "0", "allowable acquisition costs")
	cgtCmd.Flags().StringVar(&flagImprovementCosts, "improvement-costs", "0", "capital improvement costs")
	cgtCmd.Flags().StringVar(&flagSellingCosts, "selling-costs", "0", "selling costs")
	cgtCmd.Flags().StringVar(&flagOwnership, "ownership", string(tax.OwnershipIndividual), "ownership: individual or company")
	cgtCmd.Flags().StringVar(&flagReferenceIncome, "reference-income", "0", "other taxable income used to pick the rate band")
	cgtCmd.Flags().StringVar(&flagRateBand, "rate-band", "", "basic or higher; derived from income when empty")
	_ = cgtCmd.MarkFlagRequired("sale-price")

	rootCmd.AddCommand(sdltCmd, incomeTaxCmd, cgtCmd)
}

// calculatorLogger builds a logger for commands that do not read a
// portfolio, so only the level override applies.
func calculatorLogger() (*zap.Logger, error) {
	return initializeLogger(config.LoggingConfig{Format: "console"}, flagLogLevel)
}

func parseAmount(flag, value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
	}
	return amount, nil
}

// printCalculation writes a calculator result in the selected output format.
// CSV is not meaningful for a single calculation and falls back to pretty.
func printCalculation(result interface{}, pretty func() string) error {
	outputFormat, err := resolveOutputFormat("")
	if err != nil {
		return err
	}
	if outputFormat == constants.OutputFormatJSON {
		data, err := output.ValueJSONString(result)
		if err != nil {
			return err
		}
		fmt.Print(data)
		return nil
	}
	fmt.Print(pretty())
	return nil
}

func runSDLT(_ *cobra.Command, _ []string) error {
	logger, err := calculatorLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	purchaseDate, err := datetime.ParseDate(flagPurchaseDate)
	if err != nil {
		return err
	}
	price, err := parseAmount("price", flagPrice)
	if err != nil {
		return err
	}
	buyer, err := tax.ParseBuyerType(flagBuyerType)
	if err != nil {
		return err
	}

	result, err := sdlt.NewCalculator().Compute(purchaseDate, price, buyer, flagBuyToLet)
	if err != nil {
		return err
	}
	logger.Debug("computed SDLT",
		zap.String("op", "main.runSDLT"),
		zap.String("rateTier", result.RateTier),
		zap.String("sdlt", result.SDLT.String()),
	)
	return printCalculation(result, func() string { return output.SDLTString(result) })
}

func runIncomeTax(_ *cobra.Command, _ []string) error {
	income, err := parseAmount("income", flagIncome)
	if err != nil {
		return err
	}
	result, err := tax.ComputeIncomeTax(income)
	if err != nil {
		return err
	}
	return printCalculation(result, func() string { return output.IncomeTaxString(result) })
}

func runCGT(_ *cobra.Command, _ []string) error {
	var disposal cgt.Disposal
	var referenceIncome decimal.Decimal
	for _, field := range []struct {
		flag   string
		value  string
		target *decimal.Decimal
	}{
		{"sale-price", flagSalePrice, &disposal.SalePrice},
		{"purchase-price", flagPurchasePrice, &disposal.PurchasePrice},
		{"acquisition-costs", flagAcquisitionCosts, &disposal.AcquisitionCosts},
		{"improvement-costs", flagImprovementCosts, &disposal.ImprovementCosts},
		{"selling-costs", flagSellingCosts, &disposal.SellingCosts},
		{"reference-income", flagReferenceIncome, &referenceIncome},
	} {
		amount, err := parseAmount(field.flag, field.value)
		if err != nil {
			return err
		}
		*field.target = amount
	}

	ownership, err := tax.ParseOwnership(flagOwnership)
	if err != nil {
		return err
	}
	band, err := cgt.ParseRateBand(flagRateBand)
	if err != nil {
		return err
	}

	result, err := cgt.Compute(disposal, cgt.Options{
		Ownership:       ownership,
		ReferenceIncome: referenceIncome,
		RateBand:        band,
	})
	if err != nil {
		return err
	}
	return printCalculation(result, func() string { return output.CGTString(result) })
}
