// Package optimizer stress-tests properties by searching for the weakest
// rent or highest mortgage rate at which the first year's cash flow after
// tax still meets a floor.
package optimizer

import (
	"fmt"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/internal/forecast"
	"github.com/iwvelando/property-forecast/pkg/adapters"
	"github.com/iwvelando/property-forecast/pkg/finance"
	"github.com/iwvelando/property-forecast/pkg/format"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/iwvelando/property-forecast/pkg/optimization"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	minRentCeiling  = decimal.NewFromInt(1000)
	rentCeilingMult = decimal.NewFromInt(4)
	maxMortgageRate = decimal.NewFromInt(25)
	two             = decimal.NewFromInt(2)
)

// Runner solves the configured optimizer directives for every active
// property by bisection over a single input.
type Runner struct {
	logger    *zap.Logger
	conf      *config.Configuration
	projector *finance.Projector
}

type target struct {
	property string
	profile  finance.Profile
	cfg      config.OptimizerConfig
	minValue decimal.Decimal
	maxValue decimal.Decimal
	original decimal.Decimal
	floor    decimal.Decimal
}

// increasing reports whether raising the field improves cash flow.
func (t target) increasing() bool {
	return t.cfg.Field == config.OptimizerFieldWeeklyRent
}

type evaluation struct {
	value    decimal.Decimal
	cashFlow decimal.Decimal
	floor    decimal.Decimal
}

func (e evaluation) feasible() bool {
	return e.cashFlow.GreaterThanOrEqual(e.floor)
}

func (e evaluation) headroom() decimal.Decimal {
	return e.cashFlow.Sub(e.floor)
}

// Result summarizes optimizer results keyed by property name.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty indicates whether any optimizer results were produced.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Apply attaches optimizer summaries to the provided forecast results.
func (r Result) Apply(forecasts []forecast.Forecast) {
	if len(r.Summaries) == 0 {
		return
	}
	for i := range forecasts {
		summaries, ok := r.Summaries[forecasts[i].Name]
		if !ok {
			continue
		}
		metrics := forecasts[i].Metrics
		metrics.Optimizations = append(metrics.Optimizations, summaries...)
		forecasts[i].Metrics = metrics
	}
}

// DefaultDirectives returns the break-even rent directive and, for a
// mortgaged property, the maximum mortgage rate directive.
func DefaultDirectives(property config.Property) []config.OptimizerConfig {
	directives := []config.OptimizerConfig{{Field: config.OptimizerFieldWeeklyRent}}
	if property.Mortgage != nil && property.Mortgage.Balance > 0 {
		directives = append(directives, config.OptimizerConfig{Field: config.OptimizerFieldMortgageRate})
	}
	return directives
}

// AddDefaultDirectives gives every active property without directives the
// default set.
func AddDefaultDirectives(conf *config.Configuration) {
	for i := range conf.Properties {
		property := &conf.Properties[i]
		if property.Active && len(property.Optimizers) == 0 {
			property.Optimizers = DefaultDirectives(*property)
		}
	}
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	assumptions, err := adapters.AssumptionsFromConfig(conf.Assumptions)
	if err != nil {
		return nil, fmt.Errorf("invalid assumptions: %w", err)
	}

	return &Runner{
		logger:    logger,
		conf:      conf,
		projector: finance.NewProjector(logger, assumptions),
	}, nil
}

// Run executes all optimizer directives. The configuration is not modified.
func (r *Runner) Run() (*Result, error) {
	targets, err := r.collectTargets()
	if err != nil {
		return nil, err
	}

	summaries := make(map[string][]optimization.Summary)
	for _, target := range targets {
		summary, err := r.optimize(target)
		if err != nil {
			return nil, err
		}
		summaries[target.property] = append(summaries[target.property], summary)

		r.logger.Info("optimizer solved property field",
			zap.String("op", "optimizer.Run"),
			zap.String("property", target.property),
			zap.String("field", summary.Field),
			zap.String("original", summary.OriginalDisplay),
			zap.String("optimized", summary.ValueDisplay),
			zap.String("floor", summary.Floor.StringFixed(2)),
			zap.String("cashFlow", summary.CashFlow.StringFixed(2)),
			zap.Int("iterations", summary.Iterations),
			zap.Bool("converged", summary.Converged),
		)
	}

	return &Result{Summaries: summaries}, nil
}

func (r *Runner) collectTargets() ([]target, error) {
	var targets []target

	for _, property := range r.conf.Properties {
		if !property.Active || len(property.Optimizers) == 0 {
			continue
		}
		profile, err := adapters.PropertyToProfile(property)
		if err != nil {
			return nil, err
		}

		for _, cfg := range property.Optimizers {
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("property %s: %w", property.Name, err)
			}
			t := target{
				property: property.Name,
				profile:  profile,
				cfg:      cfg,
				floor:    adapters.Decimal(cfg.Floor),
			}
			if err := t.setBounds(); err != nil {
				return nil, fmt.Errorf("property %s: %w", property.Name, err)
			}
			targets = append(targets, t)
		}
	}

	return targets, nil
}

func (t *target) setBounds() error {
	switch t.cfg.Field {
	case config.OptimizerFieldWeeklyRent:
		t.original = t.profile.WeeklyRent
		t.maxValue = mathutil.Max(t.original.Mul(rentCeilingMult), minRentCeiling)
	case config.OptimizerFieldMortgageRate:
		if !t.profile.HasMortgage {
			return fmt.Errorf("optimizer field %s requires a mortgage", t.cfg.Field)
		}
		t.original = t.profile.Mortgage.AnnualRate
		t.maxValue = maxMortgageRate
	default:
		return fmt.Errorf("optimizer field %q is not supported", t.cfg.Field)
	}

	t.minValue = decimal.Zero
	if t.cfg.Min != nil {
		t.minValue = adapters.Decimal(*t.cfg.Min)
	}
	if t.cfg.Max != nil {
		t.maxValue = adapters.Decimal(*t.cfg.Max)
	}
	if !t.minValue.LessThan(t.maxValue) {
		return fmt.Errorf("optimizer bounds %s to %s are empty", t.minValue, t.maxValue)
	}
	return nil
}

func (r *Runner) optimize(t target) (optimization.Summary, error) {
	lowerEval, err := r.evaluate(t, t.minValue)
	if err != nil {
		return optimization.Summary{}, err
	}
	upperEval, err := r.evaluate(t, t.maxValue)
	if err != nil {
		return optimization.Summary{}, err
	}

	summary := optimization.Summary{
		Property:        t.property,
		Field:           t.cfg.Field,
		Original:        t.original,
		OriginalDisplay: display(t.cfg.Field, t.original),
		Floor:           t.floor,
	}
	finish := func(eval evaluation, iterations int, converged bool, notes ...string) optimization.Summary {
		summary.Value = eval.value
		summary.ValueDisplay = display(t.cfg.Field, eval.value)
		summary.CashFlow = eval.cashFlow
		summary.Headroom = eval.headroom()
		summary.Iterations = iterations
		summary.Converged = converged
		summary.Notes = notes
		return summary
	}

	// feasible and infeasible are the search endpoints on either side of
	// the break-even point.
	feasible, infeasible := upperEval, lowerEval
	if !t.increasing() {
		feasible, infeasible = lowerEval, upperEval
	}

	if !feasible.feasible() {
		chased := upperEval
		if lowerEval.headroom().GreaterThan(upperEval.headroom()) {
			chased = lowerEval
		}
		note := fmt.Sprintf("unable to satisfy cash floor %s within bounds %s to %s",
			format.Currency(t.floor), display(t.cfg.Field, t.minValue), display(t.cfg.Field, t.maxValue))
		return finish(chased, 0, false, note), nil
	}
	if infeasible.feasible() {
		note := fmt.Sprintf("cash floor %s holds across bounds %s to %s",
			format.Currency(t.floor), display(t.cfg.Field, t.minValue), display(t.cfg.Field, t.maxValue))
		return finish(infeasible, 0, true, note), nil
	}

	tolerance := adapters.Decimal(t.cfg.Tolerance)
	iterations := 0
	for iterations < t.cfg.MaxIterations && feasible.value.Sub(infeasible.value).Abs().GreaterThan(tolerance) {
		mid := snap(t.cfg.Field, feasible.value.Add(infeasible.value).Div(two))
		if mid.Equal(feasible.value) || mid.Equal(infeasible.value) {
			break
		}
		evalMid, err := r.evaluate(t, mid)
		if err != nil {
			return optimization.Summary{}, err
		}
		iterations++
		if evalMid.feasible() {
			feasible = evalMid
		} else {
			infeasible = evalMid
		}
	}

	return finish(feasible, iterations, true), nil
}

func (r *Runner) evaluate(t target, value decimal.Decimal) (evaluation, error) {
	value = snap(t.cfg.Field, value)
	profile := t.profile
	switch t.cfg.Field {
	case config.OptimizerFieldWeeklyRent:
		profile.WeeklyRent = value
	case config.OptimizerFieldMortgageRate:
		profile.Mortgage.AnnualRate = value
	}

	records, err := r.projector.ProjectCashflow(profile)
	if err != nil {
		return evaluation{}, fmt.Errorf("optimizer cash flow evaluation failed: %w", err)
	}
	return evaluation{
		value:    value,
		cashFlow: records[0].NetCashFlowAfterTax,
		floor:    t.floor,
	}, nil
}

func snap(field string, value decimal.Decimal) decimal.Decimal {
	if field == config.OptimizerFieldMortgageRate {
		return mathutil.RoundRate(value)
	}
	return mathutil.Round(value)
}

func display(field string, value decimal.Decimal) string {
	if field == config.OptimizerFieldMortgageRate {
		return format.Percent(&value)
	}
	return format.Currency(value)
}
