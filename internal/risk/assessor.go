package risk

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/ledger"
)

// Level classifies a pending transfer's fraud risk.
type Level string

const (
	// Low risk transfers proceed without confirmation.
	Low Level = "low"
	// Medium risk transfers require explicit user confirmation.
	Medium Level = "medium"
	// High risk transfers require explicit user confirmation.
	High Level = "high"
)

func validLevel(l Level) bool {
	switch l {
	case Low, Medium, High:
		return true
	}
	return false
}

// Assessment is the model's classification of a pending transfer.
type Assessment struct {
	Risk   Level  `json:"risk"`
	Reason string `json:"reason"`
}

func (a Assessment) validate() error {
	if !validLevel(a.Risk) {
		return fmt.Errorf("unexpected risk value %q", a.Risk)
	}
	return nil
}

// Input is the pending transfer plus the payer's recent history, the
// context the model classifies against.
type Input struct {
	Amount    decimal.Decimal
	Recipient string
	Recent    []ledger.Entry
}

// Assessor classifies a pending transfer. Implementations call an external
// model and are expected to fail; the Gate handles degradation.
type Assessor interface {
	Assess(ctx context.Context, input Input) (Assessment, error)
}
