package finance

import (
	"fmt"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TaxVariant names one way the rental profit of a property can be taxed.
// Every variant is computed each year so owners can compare structures.
type TaxVariant string

const (
	Company            TaxVariant = "company"
	OnshoreIndividual  TaxVariant = "onshore_individual"
	OffshoreIndividual TaxVariant = "offshore_individual"
)

// TaxVariants lists every variant in report order.
func TaxVariants() []TaxVariant {
	return []TaxVariant{Company, OnshoreIndividual, OffshoreIndividual}
}

// ApplicableVariant selects the variant that governs what the owner of the
// property actually pays. Individuals use the onshore bands only when they
// are UK resident and entitled to the personal allowance.
func ApplicableVariant(p Profile) TaxVariant {
	switch {
	case p.IsCompany():
		return Company
	case p.UKResident && p.UKTaxFreeAllowance:
		return OnshoreIndividual
	default:
		return OffshoreIndividual
	}
}

// YearRecord is one projected year. Currency amounts are in pence precision.
type YearRecord struct {
	Year int `json:"year"`

	AnnualRent  decimal.Decimal `json:"annualRent"`
	VacancyLoss decimal.Decimal `json:"vacancyLoss"`
	GrossRent   decimal.Decimal `json:"grossRent"`

	ManagementFee decimal.Decimal `json:"managementFee"`
	ServiceCharge decimal.Decimal `json:"serviceCharge"`
	GroundRent    decimal.Decimal `json:"groundRent"`
	OtherCosts    decimal.Decimal `json:"otherCosts"`
	Maintenance   decimal.Decimal `json:"maintenance"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`

	NetOperatingIncome decimal.Decimal `json:"netOperatingIncome"`

	Interest             decimal.Decimal `json:"interest"`
	Principal            decimal.Decimal `json:"principal"`
	TotalMortgagePayment decimal.Decimal `json:"totalMortgagePayment"`
	RemainingBalance     decimal.Decimal `json:"remainingBalance"`

	NetCashFlow     decimal.Decimal `json:"netCashFlow"`
	NetIncomeForTax decimal.Decimal `json:"netIncomeForTax"`
	PersonalIncome  decimal.Decimal `json:"personalIncome"`

	CompanyTax            decimal.Decimal `json:"companyTax"`
	OnshoreIndividualTax  decimal.Decimal `json:"onshoreIndividualTax"`
	OffshoreIndividualTax decimal.Decimal `json:"offshoreIndividualTax"`

	ApplicableVariant  TaxVariant      `json:"applicableVariant"`
	GrossApplicableTax decimal.Decimal `json:"grossApplicableTax"`

	LossBroughtForward decimal.Decimal `json:"lossBroughtForward"`
	LossGenerated      decimal.Decimal `json:"lossGenerated"`
	LossUtilized       decimal.Decimal `json:"lossUtilized"`
	LossCarriedForward decimal.Decimal `json:"lossCarriedForward"`

	ApplicableTax       decimal.Decimal `json:"applicableTax"`
	NetCashFlowAfterTax decimal.Decimal `json:"netCashFlowAfterTax"`
}

// VariantTax returns the tax computed for a variant before loss relief.
func (r YearRecord) VariantTax(v TaxVariant) decimal.Decimal {
	switch v {
	case Company:
		return r.CompanyTax
	case OnshoreIndividual:
		return r.OnshoreIndividualTax
	case OffshoreIndividual:
		return r.OffshoreIndividualTax
	default:
		return decimal.Zero
	}
}

// State is carried from one projected year into the next.
type State struct {
	Mortgage         loans.State
	HasMortgage      bool
	LossCarryforward decimal.Decimal
}

// Projector runs the yearly cash-flow fold for a property.
type Projector struct {
	assumptions Assumptions
	logger      *zap.Logger
}

// NewProjector creates a projector with the given assumptions.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewProjector(logger *zap.Logger, assumptions Assumptions) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{assumptions: assumptions, logger: logger}
}

// Start validates the inputs and returns the state before year 1: the
// opening mortgage balance and no carried loss.
func (p *Projector) Start(profile Profile) (State, error) {
	if err := p.assumptions.Validate(); err != nil {
		return State{}, err
	}
	if err := profile.Validate(); err != nil {
		return State{}, err
	}

	state := State{HasMortgage: profile.HasMortgage, LossCarryforward: decimal.Zero}
	if profile.HasMortgage {
		mortgage, err := loans.Start(profile.Mortgage)
		if err != nil {
			return State{}, fmt.Errorf("property %q: %w", profile.Name, err)
		}
		state.Mortgage = mortgage
	}
	return state, nil
}

// ProjectCashflow folds Step over the projection window. Any error aborts
// the whole projection since later years depend on earlier ones.
func (p *Projector) ProjectCashflow(profile Profile) ([]YearRecord, error) {
	state, err := p.Start(profile)
	if err != nil {
		return nil, err
	}

	records := make([]YearRecord, 0, constants.ProjectionYears)
	for year := 1; year <= constants.ProjectionYears; year++ {
		var record YearRecord
		record, state, err = p.Step(profile, state, year)
		if err != nil {
			return nil, fmt.Errorf("property %q year %d: %w", profile.Name, year, err)
		}
		records = append(records, record)
	}

	p.logger.Debug("projected cash flow",
		zap.String("op", "finance.ProjectCashflow"),
		zap.String("property", profile.Name),
		zap.String("variant", string(ApplicableVariant(profile))),
		zap.String("lossCarriedForward", state.LossCarryforward.String()),
	)
	return records, nil
}

// Step computes one year (1-based) from the state left by the previous year.
func (p *Projector) Step(profile Profile, state State, year int) (YearRecord, State, error) {
	a := p.assumptions
	record := YearRecord{Year: year}
	next := state

	record.AnnualRent = mathutil.Round(mathutil.Compound(
		profile.WeeklyRent.Mul(decimal.NewFromInt(constants.WeeksPerYear)), a.RentalGrowthRate, year-1))
	record.VacancyLoss = mathutil.Round(record.AnnualRent.Mul(a.VacancyRate))
	record.GrossRent = record.AnnualRent.Sub(record.VacancyLoss)

	record.ManagementFee = mathutil.Round(mathutil.ApplyPercentage(record.GrossRent, profile.ManagementFeePercent))
	record.ServiceCharge = mathutil.Round(mathutil.Compound(profile.ServiceCharge, a.InflationRate, year-1))
	record.GroundRent = mathutil.Round(profile.GroundRent)
	record.OtherCosts = mathutil.Round(mathutil.Compound(profile.OtherCosts, a.InflationRate, year-1))
	record.Maintenance = mathutil.Round(record.GrossRent.Mul(a.MaintenanceRate))
	record.TotalExpenses = record.ManagementFee.
		Add(record.ServiceCharge).
		Add(record.GroundRent).
		Add(record.OtherCosts).
		Add(record.Maintenance)
	record.NetOperatingIncome = record.GrossRent.Sub(record.TotalExpenses)

	payment := loans.Payment{Year: year}
	if state.HasMortgage {
		payment, next.Mortgage = state.Mortgage.Step(year)
	}
	record.Interest = payment.Interest
	record.Principal = payment.Principal
	record.TotalMortgagePayment = payment.Payment
	record.RemainingBalance = payment.RemainingBalance

	record.NetCashFlow = record.NetOperatingIncome.Sub(record.TotalMortgagePayment)
	record.NetIncomeForTax = record.NetOperatingIncome.Sub(record.Interest)
	record.PersonalIncome = mathutil.Round(mathutil.Compound(profile.PersonalIncome, a.InflationRate, year-1))

	var err error
	if record.CompanyTax, err = p.companyTax(record); err != nil {
		return YearRecord{}, state, err
	}
	if record.OnshoreIndividualTax, err = p.deltaTax(onshoreTax, record); err != nil {
		return YearRecord{}, state, err
	}
	if record.OffshoreIndividualTax, err = p.deltaTax(offshoreTax, record); err != nil {
		return YearRecord{}, state, err
	}

	record.ApplicableVariant = ApplicableVariant(profile)
	record.GrossApplicableTax = record.VariantTax(record.ApplicableVariant)
	applyLossRelief(&record, state.LossCarryforward)
	next.LossCarryforward = record.LossCarriedForward

	record.NetCashFlowAfterTax = record.NetCashFlow.Sub(record.ApplicableTax)

	if record.LossUtilized.IsPositive() {
		p.logger.Debug("loss carried forward utilised",
			zap.String("op", "finance.Step"),
			zap.String("property", profile.Name),
			zap.Int("year", year),
			zap.String("utilised", record.LossUtilized.String()),
		)
	}
	return record, next, nil
}

// applyLossRelief fills in the loss corkscrew for a year. A negative gross
// tax adds to the carried loss and nothing is payable; a positive gross tax
// consumes carried loss before anything becomes payable.
func applyLossRelief(record *YearRecord, broughtForward decimal.Decimal) {
	record.LossBroughtForward = broughtForward
	record.LossGenerated = decimal.Zero
	record.LossUtilized = decimal.Zero

	gross := record.GrossApplicableTax
	switch {
	case gross.IsNegative():
		record.LossGenerated = gross.Abs()
		record.ApplicableTax = decimal.Zero
	case gross.IsPositive() && broughtForward.IsPositive():
		record.LossUtilized = mathutil.Min(broughtForward, gross)
		record.ApplicableTax = gross.Sub(record.LossUtilized)
	default:
		record.ApplicableTax = gross
	}
	record.LossCarriedForward = broughtForward.Add(record.LossGenerated).Sub(record.LossUtilized)
}

// companyTax is corporation tax on rental profit after interest. A loss is
// valued at the small profits rate so it can be carried forward.
func (p *Projector) companyTax(record YearRecord) (decimal.Decimal, error) {
	profit := record.NetIncomeForTax
	if profit.IsNegative() {
		return mathutil.Round(profit.Mul(tax.SmallProfitsRate)), nil
	}
	return tax.ComputeCorporationTax(profit)
}

type incomeTaxFunc func(decimal.Decimal) (decimal.Decimal, error)

func onshoreTax(income decimal.Decimal) (decimal.Decimal, error) {
	result, err := tax.ComputeIncomeTax(income)
	return result.TaxPayable, err
}

func offshoreTax(income decimal.Decimal) (decimal.Decimal, error) {
	result, err := tax.ComputeOffshoreTax(income)
	return result.TaxPayable, err
}

// deltaTax is the extra tax an individual pays by adding the rental profit
// to their personal income, after the basic-rate credit on mortgage interest.
func (p *Projector) deltaTax(compute incomeTaxFunc, record YearRecord) (decimal.Decimal, error) {
	personalOnly, err := compute(record.PersonalIncome)
	if err != nil {
		return decimal.Zero, err
	}
	combined, err := compute(mathutil.NonNegative(record.PersonalIncome.Add(record.NetOperatingIncome)))
	if err != nil {
		return decimal.Zero, err
	}
	credit := mathutil.Round(record.Interest.Mul(p.assumptions.InterestReliefRate))
	return mathutil.NonNegative(combined.Sub(credit)).Sub(personalOnly), nil
}
