// Package optimization provides shared data structures for optimization results.
package optimization

import "github.com/shopspring/decimal"

// Summary captures the result of a single optimization directive.
type Summary struct {
	Property        string          `json:"property"`
	Field           string          `json:"field"`
	Original        decimal.Decimal `json:"original"`
	Value           decimal.Decimal `json:"value"`
	Floor           decimal.Decimal `json:"floor"`
	CashFlow        decimal.Decimal `json:"cashFlow"`
	Headroom        decimal.Decimal `json:"headroom"`
	Iterations      int             `json:"iterations"`
	Converged       bool            `json:"converged"`
	Notes           []string        `json:"notes,omitempty"`
	OriginalDisplay string          `json:"originalDisplay,omitempty"`
	ValueDisplay    string          `json:"valueDisplay,omitempty"`
}
