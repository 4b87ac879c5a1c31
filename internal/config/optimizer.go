package config

import (
	"fmt"
	"strings"
)

const (
	OptimizerFieldWeeklyRent   = "weeklyRent"
	OptimizerFieldMortgageRate = "mortgageRate"

	OptimizerKindCashFloor = "cash_floor"

	defaultToleranceAmount = 0.01
	defaultMaxIterations   = 50
)

// OptimizerConfig defines a single-parameter stress directive for a
// property: find the weakest rent or highest mortgage rate at which the
// first year's cash flow after tax stays at or above the floor.
type OptimizerConfig struct {
	Field         string   `yaml:"field,omitempty" mapstructure:"field"`
	Kind          string   `yaml:"kind,omitempty" mapstructure:"kind"`
	Floor         float64  `yaml:"floor,omitempty" mapstructure:"floor"`
	Min           *float64 `yaml:"min,omitempty" mapstructure:"min"`
	Max           *float64 `yaml:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalOptimizerField returns the canonical identifier for an optimizer field.
func CanonicalOptimizerField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerFieldWeeklyRent
	}
	switch strings.ToLower(trimmed) {
	case "weeklyrent", "weekly_rent", "weekly-rent", "rent":
		return OptimizerFieldWeeklyRent
	case "mortgagerate", "mortgage_rate", "mortgage-rate", "interestrate", "rate":
		return OptimizerFieldMortgageRate
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.Field = CanonicalOptimizerField(o.Field)

	o.Kind = strings.ToLower(strings.TrimSpace(o.Kind))
	if o.Kind == "" {
		o.Kind = OptimizerKindCashFloor
	}

	if o.Tolerance <= 0 {
		o.Tolerance = defaultToleranceAmount
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	switch o.Field {
	case OptimizerFieldWeeklyRent, OptimizerFieldMortgageRate:
		// supported fields
	default:
		return fmt.Errorf("optimizer field %q is not supported", o.Field)
	}
	if o.Kind != OptimizerKindCashFloor {
		return fmt.Errorf("optimizer kind %q is not supported", o.Kind)
	}

	if o.Min != nil && *o.Min < 0 {
		return fmt.Errorf("optimizer minimum %.2f must not be negative", *o.Min)
	}
	if o.Min != nil && o.Max != nil && *o.Min >= *o.Max {
		return fmt.Errorf("optimizer minimum %.2f must be less than maximum %.2f", *o.Min, *o.Max)
	}
	return nil
}
