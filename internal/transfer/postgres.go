package transfer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/account"
	"github.com/lumenbank/lumen_bank/internal/events"
	"github.com/lumenbank/lumen_bank/internal/store"
)

// PostgresEngine commits money movements in PostgreSQL. The whole
// precondition-and-effect sequence runs inside store.WithinTx with both
// account rows locked, so a failed precondition leaves no partial effect and
// concurrent transfers serialize on the contended balances.
type PostgresEngine struct {
	db     *pgxpool.Pool
	feed   account.ChangeFeed
	events events.Publisher
	logger *slog.Logger
}

// NewPostgresEngine builds a Postgres-backed transfer engine.
func NewPostgresEngine(db *pgxpool.Pool, feed account.ChangeFeed, publisher events.Publisher, logger *slog.Logger) *PostgresEngine {
	return &PostgresEngine{db: db, feed: feed, events: publisher, logger: logger}
}

// Transfer moves funds between two accounts atomically.
func (e *PostgresEngine) Transfer(ctx context.Context, payerID string, req Request) (Result, error) {
	if !req.Amount.IsPositive() {
		return Result{}, ErrInvalidAmount
	}

	var (
		res         Result
		recipientID string
	)
	err := store.WithinTx(ctx, e.db, func(tx pgx.Tx) error {
		payer, err := lockAccount(ctx, tx, `WHERE id = $1`, payerID)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		number, err := SanitizeRecipient(req.Recipient)
		if err != nil {
			return err
		}
		if number == payer.Number {
			return ErrSelfPayment
		}

		recipient, err := lockAccount(ctx, tx, `WHERE number = $1`, number)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return ErrRecipientNotFound
			}
			return err
		}

		now := time.Now().UTC()
		p, err := planTransfer(payer, recipient, req.Amount, req.Description, now)
		if err != nil {
			return err
		}

		if err := applyPlan(ctx, tx, payer.ID, recipient.ID, p); err != nil {
			return err
		}

		recipientID = recipient.ID
		res = Result{PayerBalance: p.payerBalance, RecipientBalance: p.recipientBalance, CompletedAt: now}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	e.announce(ctx, payerID, recipientID, req.Amount, res.CompletedAt)
	return res, nil
}

// Withdraw debits the payer without a counterparty.
func (e *PostgresEngine) Withdraw(ctx context.Context, payerID string, req WithdrawRequest) (WithdrawResult, error) {
	if !req.Amount.IsPositive() {
		return WithdrawResult{}, ErrInvalidAmount
	}

	var res WithdrawResult
	err := store.WithinTx(ctx, e.db, func(tx pgx.Tx) error {
		payer, err := lockAccount(ctx, tx, `WHERE id = $1`, payerID)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		now := time.Now().UTC()
		p, err := planWithdrawal(payer, req.Amount, req.Description, now)
		if err != nil {
			return err
		}

		if err := applyPlan(ctx, tx, payer.ID, "", p); err != nil {
			return err
		}

		res = WithdrawResult{Balance: p.payerBalance, CompletedAt: now}
		return nil
	})
	if err != nil {
		return WithdrawResult{}, err
	}

	e.announce(ctx, payerID, "", req.Amount, res.CompletedAt)
	return res, nil
}

// announce runs after commit: change feed signals and the transfer event are
// best-effort side channels, never part of the atomic unit.
func (e *PostgresEngine) announce(ctx context.Context, payerID, recipientID string, amount decimal.Decimal, completedAt time.Time) {
	if e.feed != nil {
		if err := e.feed.Publish(ctx, payerID); err != nil {
			e.logger.Warn("change feed publish failed", "account_id", payerID, "error", err)
		}
		if recipientID != "" {
			if err := e.feed.Publish(ctx, recipientID); err != nil {
				e.logger.Warn("change feed publish failed", "account_id", recipientID, "error", err)
			}
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
		if err := e.events.TransferCompleted(ctx, ev); err != nil {
			e.logger.Warn("transfer event publish failed", "event_id", ev.EventID, "error", err)
		}
	}
}

func lockAccount(ctx context.Context, tx pgx.Tx, where, key string) (account.Account, error) {
	row := tx.QueryRow(ctx, `SELECT id, holder_name, COALESCE(number, ''), balance::text, pref_deposits, pref_alerts, pref_info
        FROM accounts `+where+` FOR UPDATE`, key)
	var (
		acct    account.Account
		id      uuid.UUID
		balance string
	)
	if err := row.Scan(&id, &acct.HolderName, &acct.Number, &balance,
		&acct.Prefs.Deposits, &acct.Prefs.Alerts, &acct.Prefs.Info); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, err
	}
	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return account.Account{}, err
	}
	acct.ID = id.String()
	acct.Balance = parsed
	return acct, nil
}

func applyPlan(ctx context.Context, tx pgx.Tx, payerID, recipientID string, p plan) error {
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1::numeric WHERE id = $2`,
		p.payerBalance.StringFixed(2), payerID); err != nil {
		return err
	}
	if recipientID != "" {
		if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1::numeric WHERE id = $2`,
			p.recipientBalance.StringFixed(2), recipientID); err != nil {
			return err
		}
	}

	for _, entry := range p.entries {
		if _, err := tx.Exec(ctx, `INSERT INTO transactions (id, account_id, amount, description, type, recipient, sender, created_at)
            VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)`,
			uuid.New(), entry.AccountID, entry.Amount.StringFixed(2), entry.Description,
			string(entry.Type), entry.Recipient, entry.Sender, entry.CreatedAt); err != nil {
			return err
		}
	}

	for _, note := range p.notes {
		if _, err := tx.Exec(ctx, `INSERT INTO notifications (id, user_id, message, type, is_read, created_at)
            VALUES ($1, $2, $3, $4, FALSE, $5)`,
			uuid.New(), note.UserID, note.Message, string(note.Type), note.CreatedAt); err != nil {
			return err
		}
	}

	return nil
}
