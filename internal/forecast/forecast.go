// Package forecast defines the data structures related to a property
// forecast and includes functions for computing the forecasts.
package forecast

import (
	"errors"
	"fmt"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/pkg/adapters"
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/finance"
	"github.com/iwvelando/property-forecast/pkg/format"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/optimization"
	"github.com/iwvelando/property-forecast/pkg/ratetable"
	"github.com/iwvelando/property-forecast/pkg/sdlt"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"go.uber.org/zap"
)

// Forecast holds all information related to a specific property.
type Forecast struct {
	Name      string               `json:"name"`
	Profile   finance.Profile      `json:"-"`
	BuyerType tax.BuyerType        `json:"buyerType"`
	SDLT      sdlt.Result          `json:"sdlt"`
	CashFlow  []finance.YearRecord `json:"cashFlow"`
	Growth    finance.Scenarios    `json:"growth"`
	Metrics   Metrics              `json:"metrics"`
	Notes     []string             `json:"notes,omitempty"`
}

// Metrics extends the return metrics with any optimizer results.
type Metrics struct {
	finance.ReturnMetrics
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

// Analyzer runs the full analysis chain for one property.
type Analyzer struct {
	logger                  *zap.Logger
	projector               *finance.Projector
	sdlt                    *sdlt.Calculator
	schedules               *loans.AmortizationScheduleGenerator
	includeAcquisitionCosts bool
}

// NewAnalyzer builds an analyzer from the configured assumptions.
func NewAnalyzer(logger *zap.Logger, conf config.Assumptions) (*Analyzer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	assumptions, err := adapters.AssumptionsFromConfig(conf)
	if err != nil {
		return nil, fmt.Errorf("invalid assumptions: %w", err)
	}
	return &Analyzer{
		logger:                  logger,
		projector:               finance.NewProjector(logger, assumptions),
		sdlt:                    sdlt.NewCalculator(),
		schedules:               loans.NewAmortizationScheduleGenerator(logger),
		includeAcquisitionCosts: conf.IncludeAcquisitionCosts,
	}, nil
}

// Analyze computes SDLT, the cash flow, the growth scenarios and the return
// metrics for a profile. A purchase date outside the SDLT tables is noted
// and treated as no SDLT paid.
func (a *Analyzer) Analyze(profile finance.Profile) (Forecast, error) {
	result := Forecast{
		Name:      profile.Name,
		Profile:   profile,
		BuyerType: profile.BuyerType(),
	}

	duty, err := a.sdlt.Compute(profile.PurchaseDate, profile.PurchasePrice, result.BuyerType, true)
	var noRate *ratetable.NoApplicableRateError
	switch {
	case errors.As(err, &noRate):
		a.logger.Warn("no SDLT rates for purchase date",
			zap.String("op", "forecast.Analyze"),
			zap.String("property", profile.Name),
			zap.Error(err),
		)
		result.Notes = append(result.Notes, fmt.Sprintf("SDLT not computed: %v", err))
		duty = sdlt.Result{BuyerType: result.BuyerType, IsBTL: true}
	case err != nil:
		return Forecast{}, fmt.Errorf("property %q SDLT: %w", profile.Name, err)
	}
	result.SDLT = duty

	records, err := a.projector.ProjectCashflow(profile)
	if err != nil {
		return Forecast{}, fmt.Errorf("property %q cash flow: %w", profile.Name, err)
	}
	result.CashFlow = records

	growth, err := a.projector.ProjectCapitalGrowth(profile, records)
	if err != nil {
		return Forecast{}, fmt.Errorf("property %q growth: %w", profile.Name, err)
	}
	result.Growth = growth

	result.Metrics.ReturnMetrics = finance.ComputeReturnMetrics(profile, records[0], duty.SDLT, a.includeAcquisitionCosts)
	notes, err := a.mortgageNotes(profile)
	if err != nil {
		return Forecast{}, fmt.Errorf("property %q mortgage: %w", profile.Name, err)
	}
	result.Notes = append(result.Notes, notes...)
	return result, nil
}

// mortgageNotes flags a mortgage whose term ends inside the projection.
func (a *Analyzer) mortgageNotes(profile finance.Profile) ([]string, error) {
	if !profile.HasMortgage {
		return nil, nil
	}
	m := profile.Mortgage
	if m.Type == loans.InterestOnly {
		if m.YearsRemaining > 0 && m.YearsRemaining < constants.ProjectionYears {
			return []string{fmt.Sprintf("interest-only term ends in year %d; the balance is assumed to roll over", m.YearsRemaining)}, nil
		}
		return nil, nil
	}

	schedule, err := a.schedules.GenerateSchedule(m, constants.ProjectionYears)
	if err != nil {
		return nil, err
	}
	for _, payment := range schedule {
		if payment.RemainingBalance.IsZero() && payment.Principal.IsPositive() {
			note := fmt.Sprintf("mortgage is fully repaid in year %d", payment.Year)
			if payment.WrittenOff.IsPositive() {
				note += fmt.Sprintf("; %s left after the final payment is written off", format.Currency(payment.WrittenOff))
			}
			return []string{note}, nil
		}
	}
	return nil, nil
}

// GetForecast processes the forecasts for all active properties.
func GetForecast(logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	analyzer, err := NewAnalyzer(logger, conf.Assumptions)
	if err != nil {
		return nil, err
	}

	var results []Forecast
	for _, property := range conf.Properties {
		if !property.Active {
			logger.Debug(fmt.Sprintf("skipping property %s because it is inactive", property.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		profile, err := adapters.PropertyToProfile(property)
		if err != nil {
			return results, err
		}
		result, err := analyzer.Analyze(profile)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

// Summarize aggregates the forecasts into a portfolio summary.
func Summarize(forecasts []Forecast) finance.PortfolioSummary {
	analyses := make([]finance.Analysis, 0, len(forecasts))
	for _, fc := range forecasts {
		analyses = append(analyses, finance.Analysis{
			Profile:  fc.Profile,
			CashFlow: fc.CashFlow,
			Growth:   fc.Growth,
			Metrics:  fc.Metrics.ReturnMetrics,
		})
	}
	return finance.SummarizePortfolio(analyses)
}
