package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Request captures a two-party transfer as entered by the payer. Recipient is
// raw user input and may contain formatting characters.
type Request struct {
	Recipient   string
	Amount      decimal.Decimal
	Description string
}

// WithdrawRequest captures a single-account debit with no counterparty
// (bill-pay style). Modeled as its own operation rather than a transfer with
// a missing recipient.
type WithdrawRequest struct {
	Amount      decimal.Decimal
	Description string
}

// Result describes the committed outcome of a transfer.
type Result struct {
	PayerBalance     decimal.Decimal
	RecipientBalance decimal.Decimal
	CompletedAt      time.Time
}

// WithdrawResult describes the committed outcome of a withdrawal.
type WithdrawResult struct {
	Balance     decimal.Decimal
	CompletedAt time.Time
}

// Engine executes money movements as all-or-nothing units: balances, ledger
// entries and notifications commit together or not at all. Implementations
// must be safe to re-execute from scratch, since the store retries the whole
// unit on write conflicts.
type Engine interface {
	Transfer(ctx context.Context, payerID string, req Request) (Result, error)
	Withdraw(ctx context.Context, payerID string, req WithdrawRequest) (WithdrawResult, error)
}
