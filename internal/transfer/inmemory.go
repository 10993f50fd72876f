package transfer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/account"
	"github.com/lumenbank/lumen_bank/internal/events"
	"github.com/lumenbank/lumen_bank/internal/ledger"
	"github.com/lumenbank/lumen_bank/internal/notification"
)

// InMemoryEngine executes money movements against in-memory repositories
// under a single mutex, standing in for the store transaction in tests and
// dev mode.
type InMemoryEngine struct {
	mu       sync.Mutex
	accounts account.Repository
	entries  ledger.Repository
	notes    notification.Repository
	feed     account.ChangeFeed
	events   events.Publisher
	logger   *slog.Logger
}

// NewInMemoryEngine builds an engine over in-memory repositories.
func NewInMemoryEngine(accounts account.Repository, entries ledger.Repository, notes notification.Repository,
	feed account.ChangeFeed, publisher events.Publisher, logger *slog.Logger) *InMemoryEngine {
	return &InMemoryEngine{
		accounts: accounts,
		entries:  entries,
		notes:    notes,
		feed:     feed,
		events:   publisher,
		logger:   logger,
	}
}

// Transfer moves funds between two accounts atomically.
func (e *InMemoryEngine) Transfer(ctx context.Context, payerID string, req Request) (Result, error) {
	if !req.Amount.IsPositive() {
		return Result{}, ErrInvalidAmount
	}

	e.mu.Lock()

	payer, err := e.accounts.Get(ctx, payerID)
	if err != nil {
		e.mu.Unlock()
		if errors.Is(err, account.ErrNotFound) {
			return Result{}, ErrAccountNotFound
		}
		return Result{}, err
	}

	number, err := SanitizeRecipient(req.Recipient)
	if err != nil {
		e.mu.Unlock()
		return Result{}, err
	}
	if number == payer.Number {
		e.mu.Unlock()
		return Result{}, ErrSelfPayment
	}

	recipient, err := e.accounts.GetByNumber(ctx, number)
	if err != nil {
		e.mu.Unlock()
		if errors.Is(err, account.ErrNotFound) {
			return Result{}, ErrRecipientNotFound
		}
		return Result{}, err
	}

	now := time.Now().UTC()
	p, err := planTransfer(payer, recipient, req.Amount, req.Description, now)
	if err != nil {
		e.mu.Unlock()
		return Result{}, err
	}

	if err := e.apply(ctx, payer.ID, recipient.ID, p); err != nil {
		e.mu.Unlock()
		return Result{}, err
	}
	e.mu.Unlock()

	e.announce(ctx, payerID, recipient.ID, req.Amount, now)
	return Result{PayerBalance: p.payerBalance, RecipientBalance: p.recipientBalance, CompletedAt: now}, nil
}

// Withdraw debits the payer without a counterparty.
func (e *InMemoryEngine) Withdraw(ctx context.Context, payerID string, req WithdrawRequest) (WithdrawResult, error) {
	if !req.Amount.IsPositive() {
		return WithdrawResult{}, ErrInvalidAmount
	}

	e.mu.Lock()

	payer, err := e.accounts.Get(ctx, payerID)
	if err != nil {
		e.mu.Unlock()
		if errors.Is(err, account.ErrNotFound) {
			return WithdrawResult{}, ErrAccountNotFound
		}
		return WithdrawResult{}, err
	}

	now := time.Now().UTC()
	p, err := planWithdrawal(payer, req.Amount, req.Description, now)
	if err != nil {
		e.mu.Unlock()
		return WithdrawResult{}, err
	}

	if err := e.apply(ctx, payer.ID, "", p); err != nil {
		e.mu.Unlock()
		return WithdrawResult{}, err
	}
	e.mu.Unlock()

	e.announce(ctx, payerID, "", req.Amount, now)
	return WithdrawResult{Balance: p.payerBalance, CompletedAt: now}, nil
}

func (e *InMemoryEngine) apply(ctx context.Context, payerID, recipientID string, p plan) error {
	if err := e.accounts.SetBalance(ctx, payerID, p.payerBalance); err != nil {
		return err
	}
	if recipientID != "" {
		if err := e.accounts.SetBalance(ctx, recipientID, p.recipientBalance); err != nil {
			return err
		}
	}
	for _, entry := range p.entries {
		entry.ID = uuid.NewString()
		if err := e.entries.Append(ctx, entry); err != nil {
			return err
		}
	}
	for _, note := range p.notes {
		note.ID = uuid.NewString()
		if err := e.notes.Append(ctx, note); err != nil {
			return err
		}
	}
	return nil
}

func (e *InMemoryEngine) announce(ctx context.Context, payerID, recipientID string, amount decimal.Decimal, completedAt time.Time) {
	if e.feed != nil {
		_ = e.feed.Publish(ctx, payerID)
		if recipientID != "" {
			_ = e.feed.Publish(ctx, recipientID)
		}
	}
	if e.events != nil {
		ev := events.TransferCompleted{
			EventID:     uuid.NewString(),
			PayerID:     payerID,
			RecipientID: recipientID,
			Amount:      amount,
			CompletedAt: completedAt,
		}
		if err := e.events.TransferCompleted(ctx, ev); err != nil && e.logger != nil {
			e.logger.Warn("transfer event publish failed", "event_id", ev.EventID, "error", err)
		}
	}
}
