package transfer

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/account"
	"github.com/lumenbank/lumen_bank/internal/ledger"
	"github.com/lumenbank/lumen_bank/internal/notification"
)

// lowBalanceThreshold triggers an alert notification when a debit leaves the
// payer below it.
var lowBalanceThreshold = decimal.NewFromInt(100)

// SanitizeRecipient strips formatting characters (hyphens, whitespace) from a
// recipient identifier and validates the 9-digit account number shape.
func SanitizeRecipient(raw string) (string, error) {
	sanitized := strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if !account.ValidNumber(sanitized) {
		return "", ErrInvalidRecipient
	}
	return sanitized, nil
}

// plan is the pure outcome of a validated money movement: the new balances
// plus every entry and notification to append. Engines apply it atomically;
// entry and notification IDs are assigned at apply time.
type plan struct {
	payerBalance     decimal.Decimal
	recipientBalance decimal.Decimal
	entries          []ledger.Entry
	notes            []notification.Notification
}

// planTransfer derives the effect of moving amount from payer to recipient.
// Pure function of its inputs, safe to recompute on store retry.
func planTransfer(payer, recipient account.Account, amount decimal.Decimal, description string, now time.Time) (plan, error) {
	if !amount.IsPositive() {
		return plan{}, ErrInvalidAmount
	}

	payerBalance := payer.Balance.Sub(amount)
	if payerBalance.IsNegative() {
		return plan{}, ErrInsufficientFunds
	}

	p := plan{
		payerBalance:     payerBalance,
		recipientBalance: recipient.Balance.Add(amount),
		entries: []ledger.Entry{
			{
				AccountID:   payer.ID,
				Amount:      amount,
				Description: description,
				Type:        ledger.TypeWithdrawal,
				Recipient:   recipient.Number,
				CreatedAt:   now,
			},
			{
				AccountID:   recipient.ID,
				Amount:      amount,
				Description: description,
				Type:        ledger.TypeDeposit,
				Sender:      payer.HolderName,
				CreatedAt:   now,
			},
		},
	}

	if note, ok := lowBalanceNote(payer, payerBalance, now); ok {
		p.notes = append(p.notes, note)
	}
	if recipient.Prefs.Deposits {
		p.notes = append(p.notes, notification.Notification{
			UserID:    recipient.ID,
			Message:   fmt.Sprintf("You received %s from %s", amount.StringFixed(2), payer.HolderName),
			Type:      notification.TypeDeposit,
			CreatedAt: now,
		})
	}

	return p, nil
}

// planWithdrawal derives the effect of a single-account debit: one withdrawal
// entry, no counterparty side.
func planWithdrawal(payer account.Account, amount decimal.Decimal, description string, now time.Time) (plan, error) {
	if !amount.IsPositive() {
		return plan{}, ErrInvalidAmount
	}

	payerBalance := payer.Balance.Sub(amount)
	if payerBalance.IsNegative() {
		return plan{}, ErrInsufficientFunds
	}

	p := plan{
		payerBalance: payerBalance,
		entries: []ledger.Entry{
			{
				AccountID:   payer.ID,
				Amount:      amount,
				Description: description,
				Type:        ledger.TypeWithdrawal,
				CreatedAt:   now,
			},
		},
	}

	if note, ok := lowBalanceNote(payer, payerBalance, now); ok {
		p.notes = append(p.notes, note)
	}

	return p, nil
}

func lowBalanceNote(payer account.Account, balance decimal.Decimal, now time.Time) (notification.Notification, bool) {
	if !balance.LessThan(lowBalanceThreshold) || !payer.Prefs.Alerts {
		return notification.Notification{}, false
	}
	return notification.Notification{
		UserID:    payer.ID,
		Message:   fmt.Sprintf("Low balance: your balance fell to %s", balance.StringFixed(2)),
		Type:      notification.TypeAlert,
		CreatedAt: now,
	}, true
}
