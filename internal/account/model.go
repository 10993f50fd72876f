package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prefs controls which notification kinds an account holder receives.
type Prefs struct {
	Deposits bool
	Alerts   bool
	Info     bool
}

// DefaultPrefs returns the preferences assigned to new accounts.
func DefaultPrefs() Prefs {
	return Prefs{Deposits: true, Alerts: true, Info: true}
}

// Account is a payable customer account. Number is the public 9-digit
// identifier used as the transfer counterparty address; ID is internal.
type Account struct {
	ID         string
	HolderName string
	Number     string
	Balance    decimal.Decimal
	Prefs      Prefs
	CreatedAt  time.Time
}
