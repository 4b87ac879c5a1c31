// Package config defines the data structures related to configuration and
// includes functions for loading and validating the property portfolio.
package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/property-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for property-forecast.
type Configuration struct {
	Assumptions Assumptions   `yaml:"assumptions,omitempty" mapstructure:"assumptions"`
	Properties  []Property    `yaml:"properties" mapstructure:"properties"`
	Logging     LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output      OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// Assumptions override the default modelling rates. Unset values keep the
// defaults. Rates are fractions, e.g. 0.028 for 2.8%.
type Assumptions struct {
	VacancyRate        *float64           `yaml:"vacancyRate,omitempty" mapstructure:"vacancyRate"`
	MaintenanceRate    *float64           `yaml:"maintenanceRate,omitempty" mapstructure:"maintenanceRate"`
	InflationRate      *float64           `yaml:"inflationRate,omitempty" mapstructure:"inflationRate"`
	RentalGrowthRate   *float64           `yaml:"rentalGrowthRate,omitempty" mapstructure:"rentalGrowthRate"`
	InterestReliefRate *float64           `yaml:"interestReliefRate,omitempty" mapstructure:"interestReliefRate"`
	GrowthRates        []float64          `yaml:"growthRates,omitempty" mapstructure:"growthRates"`
	AgencyFeeRate      *float64           `yaml:"agencyFeeRate,omitempty" mapstructure:"agencyFeeRate"`
	LegalFee           *float64           `yaml:"legalFee,omitempty" mapstructure:"legalFee"`
	EPCUpgradeCosts    map[string]float64 `yaml:"epcUpgradeCosts,omitempty" mapstructure:"epcUpgradeCosts"`
	CGTExemptAmount    *float64           `yaml:"cgtExemptAmount,omitempty" mapstructure:"cgtExemptAmount"`

	// IncludeAcquisitionCosts adds each property's acquisition costs to the
	// cash deployed used for NRAT.
	IncludeAcquisitionCosts bool `yaml:"includeAcquisitionCosts,omitempty" mapstructure:"includeAcquisitionCosts"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// ActiveProperties returns the properties selected for analysis.
func (c *Configuration) ActiveProperties() []Property {
	var active []Property
	for _, property := range c.Properties {
		if property.Active {
			active = append(active, property)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var properties []validation.PropertyInfo
	for _, property := range c.Properties {
		info := validation.PropertyInfo{
			Name:          property.Name,
			Active:        property.Active,
			PurchaseDate:  property.PurchaseDate,
			PurchasePrice: property.PurchasePrice,
			Deposit:       property.Deposit,
			MarketValue:   property.MarketValue,
			WeeklyRent:    property.WeeklyRent,
			EPCRating:     property.EPCRating,
		}
		if property.Mortgage != nil {
			info.MortgageBalance = property.Mortgage.Balance
			info.MortgageType = property.Mortgage.Type
			info.MortgageYearsRemaining = property.Mortgage.YearsRemaining
		}
		properties = append(properties, info)
	}

	validator := validation.PortfolioValidator{Properties: properties}
	return validator.ValidateAll()
}
