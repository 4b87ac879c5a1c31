// Package loans provides buy-to-let mortgage amortization on a yearly basis.
package loans

import (
	"fmt"
	"strings"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MortgageType distinguishes repayment structures.
type MortgageType string

const (
	InterestOnly         MortgageType = "interest_only"
	PrincipalAndInterest MortgageType = "principal_and_interest"
)

// ParseMortgageType parses a mortgage type string.
func ParseMortgageType(value string) (MortgageType, error) {
	switch MortgageType(strings.ToLower(strings.TrimSpace(value))) {
	case InterestOnly:
		return InterestOnly, nil
	case PrincipalAndInterest, "repayment":
		return PrincipalAndInterest, nil
	default:
		return "", fmt.Errorf("invalid mortgage type %q, expected %s or %s", value, InterestOnly, PrincipalAndInterest)
	}
}

// Mortgage holds the terms of an outstanding loan at the start of a
// projection. AnnualRate is a percentage, e.g. 5.25.
type Mortgage struct {
	Type           MortgageType
	Balance        decimal.Decimal
	AnnualRate     decimal.Decimal
	YearsRemaining int
}

// Payment holds the values for a given year.
type Payment struct {
	Year             int             `json:"year"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	// WrittenOff is the balance left over after the final payment of the
	// term. It is cleared without a further payment.
	WrittenOff decimal.Decimal `json:"writtenOff"`
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard amortization formula, rounded to pence. A zero rate falls back to
// straight-line repayment.
func CalculateMonthlyPayment(balance, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 || !balance.IsPositive() {
		return decimal.Zero
	}
	months := decimal.NewFromInt(int64(termMonths))
	if annualRate.IsZero() {
		return mathutil.Round(balance.Div(months))
	}

	periodicRate := annualRate.DivRound(decimal.NewFromInt(constants.PercentageMultiplier*constants.MonthsPerYear), constants.InternalPlaces)
	power := mathutil.Pow(decimal.NewFromInt(1).Add(periodicRate), termMonths)
	return mathutil.Round(balance.Mul(periodicRate).Mul(power).Div(power.Sub(decimal.NewFromInt(1))))
}

// CalculateAnnualInterest calculates a year's interest on an opening balance.
func CalculateAnnualInterest(balance, annualRate decimal.Decimal) decimal.Decimal {
	return mathutil.Round(balance.Mul(mathutil.FromPercent(annualRate)))
}

// State is the amortization state carried from one year to the next.
type State struct {
	Mortgage Mortgage

	// Balance is the outstanding balance at the start of the next year.
	Balance decimal.Decimal

	// AnnualPayment is fixed at inception for repayment mortgages and never
	// recomputed on a reduced balance.
	AnnualPayment decimal.Decimal
}

// Start validates a mortgage and fixes its annual payment.
func Start(m Mortgage) (State, error) {
	if m.Balance.IsNegative() {
		return State{}, fmt.Errorf("mortgage balance must be non-negative, got %s", m.Balance)
	}
	if m.AnnualRate.IsNegative() {
		return State{}, fmt.Errorf("mortgage rate must be non-negative, got %s", m.AnnualRate)
	}
	if m.YearsRemaining < 0 {
		return State{}, fmt.Errorf("mortgage term must be non-negative, got %d years", m.YearsRemaining)
	}

	state := State{Mortgage: m, Balance: m.Balance}
	switch m.Type {
	case InterestOnly:
		state.AnnualPayment = CalculateAnnualInterest(m.Balance, m.AnnualRate)
	case PrincipalAndInterest:
		if m.YearsRemaining == 0 && m.Balance.IsPositive() {
			return State{}, fmt.Errorf("repayment mortgage with balance %s has no remaining term", m.Balance)
		}
		monthly := CalculateMonthlyPayment(m.Balance, m.AnnualRate, m.YearsRemaining*constants.MonthsPerYear)
		state.AnnualPayment = monthly.Mul(decimal.NewFromInt(constants.MonthsPerYear))
	default:
		return State{}, fmt.Errorf("invalid mortgage type %q", m.Type)
	}
	return state, nil
}

// Step applies one projection year (1-based) to the state.
//
// Interest-only loans pay interest on an unchanged balance every year; the
// capital repayment at term end is outside the projection. Repayment loans
// pay the same fixed annual amount every year of the term, with interest
// charged on the opening balance. A year whose principal would exceed the
// balance pays only what clears it. Whatever is still owed after the final
// year of the term is written off, and every later year is zero.
func (s State) Step(year int) (Payment, State) {
	payment := Payment{Year: year}
	next := s

	if s.Mortgage.Type == InterestOnly {
		payment.Interest = CalculateAnnualInterest(s.Balance, s.Mortgage.AnnualRate)
		payment.Payment = payment.Interest
		payment.Principal = decimal.Zero
		payment.RemainingBalance = s.Balance
		return payment, next
	}

	if !s.Balance.IsPositive() || year > s.Mortgage.YearsRemaining {
		payment.Payment = decimal.Zero
		payment.Interest = decimal.Zero
		payment.Principal = decimal.Zero
		payment.RemainingBalance = decimal.Zero
		next.Balance = decimal.Zero
		return payment, next
	}

	payment.Interest = CalculateAnnualInterest(s.Balance, s.Mortgage.AnnualRate)
	payment.Payment = s.AnnualPayment
	payment.Principal = payment.Payment.Sub(payment.Interest)
	if payment.Principal.GreaterThan(s.Balance) {
		payment.Principal = s.Balance
		payment.Payment = payment.Interest.Add(payment.Principal)
	}
	payment.RemainingBalance = s.Balance.Sub(payment.Principal)
	if year == s.Mortgage.YearsRemaining {
		payment.WrittenOff = payment.RemainingBalance
		payment.RemainingBalance = decimal.Zero
	}
	next.Balance = payment.RemainingBalance
	return payment, next
}

// AmortizationScheduleGenerator provides utilities for generating yearly amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule returns one payment per year for the given number of years.
func (g *AmortizationScheduleGenerator) GenerateSchedule(m Mortgage, years int) ([]Payment, error) {
	state, err := Start(m)
	if err != nil {
		return nil, err
	}

	schedule := make([]Payment, 0, years)
	for year := 1; year <= years; year++ {
		var payment Payment
		payment, state = state.Step(year)
		if payment.RemainingBalance.IsZero() && payment.Principal.IsPositive() {
			g.logger.Debug(fmt.Sprintf("mortgage repaid in year %d", year),
				zap.String("op", "loans.GenerateSchedule"),
			)
		}
		schedule = append(schedule, payment)
	}
	return schedule, nil
}
