package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidAmountError is returned when a negative amount is passed to a
// banded calculator.
type InvalidAmountError struct {
	Calculator string
	Amount     decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: amount must be non-negative, got %s", e.Calculator, e.Amount.String())
}

// InvalidBuyerTypeError is returned for an unrecognised buyer classification.
// Suggestion holds the closest valid classification, if any is close enough.
type InvalidBuyerTypeError struct {
	Value      string
	Suggestion BuyerType
}

func (e *InvalidBuyerTypeError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid buyer type %q (did you mean %q?)", e.Value, e.Suggestion)
	}
	return fmt.Sprintf("invalid buyer type %q, expected one of %v", e.Value, BuyerTypes())
}

func checkAmount(calculator string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &InvalidAmountError{Calculator: calculator, Amount: amount}
	}
	return nil
}
