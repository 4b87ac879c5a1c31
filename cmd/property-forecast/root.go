package main

import (
	"fmt"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/internal/forecast"
	"github.com/iwvelando/property-forecast/internal/optimizer"
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/output"
	"github.com/iwvelando/property-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig       string
	flagOutputFormat string
	flagLogLevel     string
	flagOptimize     bool
)

var rootCmd = &cobra.Command{
	Use:          "property-forecast",
	Short:        "UK buy-to-let tax and cash-flow forecasts",
	Long:         "Project ten years of cash flow, tax and capital growth for a portfolio of UK rental properties.",
	RunE:         runForecast,
	SilenceUsage: true,
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast every active property in the portfolio (default)",
	RunE:  runForecast,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", constants.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flagOutputFormat, "output-format", "", "type of output override: pretty, csv, json")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	for _, cmd := range []*cobra.Command{rootCmd, forecastCmd} {
		cmd.Flags().BoolVar(&flagOptimize, "optimize", false, "solve break-even rent and mortgage rate for every property")
	}
	rootCmd.AddCommand(forecastCmd)
}

// resolveOutputFormat applies the CLI override over the configured format.
func resolveOutputFormat(configured string) (string, error) {
	outputFormat := configured
	if flagOutputFormat != "" {
		outputFormat = flagOutputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return "", err
	}
	return outputFormat, nil
}

func runForecast(_ *cobra.Command, _ []string) error {
	conf, err := config.LoadConfiguration(flagConfig)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", flagConfig, err)
		return err
	}

	logger, err := initializeLogger(conf.Logging, flagLogLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat, err := resolveOutputFormat(conf.Output.Format)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main.runForecast"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.runForecast"),
		)
	}

	var optimized *optimizer.Result
	if flagOptimize {
		optimizer.AddDefaultDirectives(conf)
	}
	if flagOptimize || hasDirectives(conf) {
		runner, err := optimizer.NewRunner(logger, conf)
		if err != nil {
			logger.Fatal("failed to initialize optimizer",
				zap.String("op", "main.runForecast"),
				zap.Error(err),
			)
		}
		optimized, err = runner.Run()
		if err != nil {
			logger.Fatal("failed to run optimizer",
				zap.String("op", "main.runForecast"),
				zap.Error(err),
			)
		}
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		logger.Fatal("failed to compute forecast",
			zap.String("op", "main.runForecast"),
			zap.Error(err),
		)
	}
	if optimized != nil {
		optimized.Apply(results)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(results)
	case constants.OutputFormatCSV:
		output.CsvFormat(results)
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(results); err != nil {
			logger.Fatal("failed to write report",
				zap.String("op", "main.runForecast"),
				zap.Error(err),
			)
		}
	}
	return nil
}

func hasDirectives(conf *config.Configuration) bool {
	for _, property := range conf.ActiveProperties() {
		if len(property.Optimizers) > 0 {
			return true
		}
	}
	return false
}
