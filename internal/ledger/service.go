package ledger

import (
	"context"

	"github.com/lumenbank/lumen_bank/internal/account"
)

const (
	historyLimit       = 100
	frequentRecipients = 3
)

// FrequentRecipient is a derived quick-pay shortcut: a frequently paid
// account number resolved to its holder's display name. Never persisted,
// recomputed from the ledger on each read.
type FrequentRecipient struct {
	Number string
	Name   string
}

// Service exposes read operations over the ledger.
type Service struct {
	repo     Repository
	accounts account.Repository
}

// NewService builds a ledger read service.
func NewService(repo Repository, accounts account.Repository) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// History returns the account's entries newest-first.
func (s *Service) History(ctx context.Context, accountID string) ([]Entry, error) {
	return s.repo.History(ctx, accountID, historyLimit)
}

// Recent returns a bounded window of latest entries for risk serialization.
func (s *Service) Recent(ctx context.Context, accountID string, limit int) ([]Entry, error) {
	return s.repo.History(ctx, accountID, limit)
}

// FrequentRecipients derives the payer's top payees from withdrawal history.
// Numbers that no longer resolve to an account are dropped.
func (s *Service) FrequentRecipients(ctx context.Context, payerID string) ([]FrequentRecipient, error) {
	entries, err := s.repo.History(ctx, payerID, historyLimit)
	if err != nil {
		return nil, err
	}

	recipients := make([]FrequentRecipient, 0, frequentRecipients)
	for _, number := range TopRecipients(entries, frequentRecipients) {
		acct, err := s.accounts.GetByNumber(ctx, number)
		if err != nil {
			continue
		}
		recipients = append(recipients, FrequentRecipient{Number: number, Name: acct.HolderName})
	}
	return recipients, nil
}
