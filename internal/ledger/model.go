package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType distinguishes the two sides of a money movement.
type EntryType string

const (
	// TypeDeposit marks money arriving at the entry's account.
	TypeDeposit EntryType = "deposit"
	// TypeWithdrawal marks money leaving the entry's account.
	TypeWithdrawal EntryType = "withdrawal"
)

// Entry is one side of a transfer, recorded against exactly one account.
// Entries are immutable once written; the ledger is append-only. A two-party
// transfer produces a withdrawal on the payer and a deposit on the payee with
// the same amount and timestamp.
type Entry struct {
	ID          string
	AccountID   string
	Amount      decimal.Decimal
	Description string
	Type        EntryType
	// Recipient carries the counterparty account number on withdrawals.
	Recipient string
	// Sender carries the counterparty display name on deposits.
	Sender    string
	CreatedAt time.Time
}
