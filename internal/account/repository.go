package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates no account exists for the given id or number.
var ErrNotFound = errors.New("account not found")

// Repository persists accounts. Balance mutation happens only through the
// transfer engine; SetBalance exists for engine implementations.
type Repository interface {
	Create(ctx context.Context, acct Account) error
	Get(ctx context.Context, id string) (Account, error)
	GetByNumber(ctx context.Context, number string) (Account, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	SetNumber(ctx context.Context, id, number string) error
	SetBalance(ctx context.Context, id string, balance decimal.Decimal) error
	UpdateName(ctx context.Context, id, holderName string) error
	UpdatePrefs(ctx context.Context, id string, prefs Prefs) error
}

// PostgresRepository stores accounts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an account record.
func (r *PostgresRepository) Create(ctx context.Context, acct Account) error {
	id, err := uuid.Parse(acct.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO accounts (id, holder_name, number, balance, pref_deposits, pref_alerts, pref_info, created_at)
        VALUES ($1, $2, NULLIF($3, ''), $4::numeric, $5, $6, $7, $8)`,
		id, acct.HolderName, acct.Number, acct.Balance.StringFixed(2),
		acct.Prefs.Deposits, acct.Prefs.Alerts, acct.Prefs.Info, acct.CreatedAt.UTC())
	return err
}

const accountColumns = `id, holder_name, COALESCE(number, ''), balance::text, pref_deposits, pref_alerts, pref_info, created_at`

// Get fetches an account by internal id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Account, error) {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, acctID)
	return scanAccount(row)
}

// GetByNumber fetches an account by its public 9-digit number.
func (r *PostgresRepository) GetByNumber(ctx context.Context, number string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number)
	return scanAccount(row)
}

// NumberExists reports whether the number is already assigned.
func (r *PostgresRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE number = $1)`, number).Scan(&exists)
	return exists, err
}

// SetNumber assigns the account number. Used by the lazy allocation path for
// accounts persisted before numbers existed.
func (r *PostgresRepository) SetNumber(ctx context.Context, id, number string) error {
	return r.exec(ctx, `UPDATE accounts SET number = $1 WHERE id = $2`, number, id)
}

// SetBalance overwrites the stored balance.
func (r *PostgresRepository) SetBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	return r.exec(ctx, `UPDATE accounts SET balance = $1::numeric WHERE id = $2`, balance.StringFixed(2), id)
}

// UpdateName patches the holder display name.
func (r *PostgresRepository) UpdateName(ctx context.Context, id, holderName string) error {
	return r.exec(ctx, `UPDATE accounts SET holder_name = $1 WHERE id = $2`, holderName, id)
}

// UpdatePrefs patches the notification preference flags.
func (r *PostgresRepository) UpdatePrefs(ctx context.Context, id string, prefs Prefs) error {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET pref_deposits = $1, pref_alerts = $2, pref_info = $3 WHERE id = $4`,
		prefs.Deposits, prefs.Alerts, prefs.Info, acctID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) exec(ctx context.Context, query, value, id string) error {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, query, value, acctID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var (
		acct      Account
		id        uuid.UUID
		balance   string
		createdAt time.Time
	)
	if err := row.Scan(&id, &acct.HolderName, &acct.Number, &balance,
		&acct.Prefs.Deposits, &acct.Prefs.Alerts, &acct.Prefs.Info, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return Account{}, err
	}
	acct.ID = id.String()
	acct.Balance = parsed
	acct.CreatedAt = createdAt.UTC()
	return acct, nil
}
