// Package constants provides shared constants for the property-forecast application.
package constants

// DateLayout is the format expected in config files and requests for purchase
// and lookup dates.
const DateLayout = "2006-01-02"

// Projection constants
const (
	// ProjectionYears is the fixed length of the cash-flow window
	ProjectionYears = 10

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// WeeksPerYear converts weekly rent to annual rent
	WeeksPerYear = 52

	// CurrencyPlaces is the number of decimal places kept for currency amounts
	CurrencyPlaces = 2

	// RatePlaces is the number of decimal places kept for reported percentages
	RatePlaces = 2

	// InternalPlaces bounds intermediate precision in compounding loops
	InternalPlaces = 20
)

// Default modelling assumptions, expressed as fractions.
const (
	VacancyRate      = "0.0385"
	MaintenanceRate  = "0.035"
	InflationRate    = "0.028"
	RentalGrowthRate = "0.0371"
	AgencyFeeRate    = "0.015"
	LegalFee         = "1500"

	// InterestReliefRate is the basic-rate credit given on mortgage interest
	InterestReliefRate = "0.20"
)

// Risk reserve constants
const (
	// TenantDisputeMonths is the number of months of mortgage payments reserved
	// against a tenant dispute
	TenantDisputeMonths = 18

	// TenantDisputeLegalCost is the fixed legal cost added to the dispute reserve
	TenantDisputeLegalCost = "1500"

	// RentRecoveryWeeks is the weekly rent multiple covered by rent recovery insurance
	RentRecoveryWeeks = 104
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML portfolios (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// PercentageMultiplier is used for percentage conversions
const PercentageMultiplier = 100
