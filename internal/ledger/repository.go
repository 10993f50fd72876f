package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads and appends ledger entries. Transfer-related entries are
// appended by the transfer engine inside its atomic unit, never through
// Append directly.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	History(ctx context.Context, accountID string, limit int) ([]Entry, error)
}

// PostgresRepository stores ledger entries in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts one entry outside any transfer transaction.
func (r *PostgresRepository) Append(ctx context.Context, entry Entry) error {
	entryID, err := uuid.Parse(entry.ID)
	if err != nil {
		return err
	}
	accountID, err := uuid.Parse(entry.AccountID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO transactions (id, account_id, amount, description, type, recipient, sender, created_at)
        VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)`,
		entryID, accountID, entry.Amount.StringFixed(2), entry.Description,
		string(entry.Type), entry.Recipient, entry.Sender, entry.CreatedAt.UTC())
	return err
}

// History returns the account's entries newest-first. Ordering keys on the
// server-assigned timestamp with the id as a tiebreaker, so concurrent
// inserts settle into a stable order once committed.
func (r *PostgresRepository) History(ctx context.Context, accountID string, limit int) ([]Entry, error) {
	acctID, err := uuid.Parse(accountID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, account_id, amount::text, description, type, recipient, sender, created_at
        FROM transactions WHERE account_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, acctID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry     Entry
			id        uuid.UUID
			owner     uuid.UUID
			amount    string
			kind      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &owner, &amount, &entry.Description, &kind, &entry.Recipient, &entry.Sender, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		entry.ID = id.String()
		entry.AccountID = owner.String()
		entry.Amount = parsed
		entry.Type = EntryType(kind)
		entry.CreatedAt = createdAt.UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
