package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListLimit bounds live notification display to the most recent entries.
const ListLimit = 20

// Repository persists notifications. Transfer-triggered notifications are
// written by the transfer engine inside its atomic unit.
type Repository interface {
	Append(ctx context.Context, n Notification) error
	List(ctx context.Context, userID string, limit int) ([]Notification, error)
	UnreadIDs(ctx context.Context, userID string) ([]string, error)
	MarkRead(ctx context.Context, userID string, ids []string) error
}

// PostgresRepository stores notifications in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts one notification.
func (r *PostgresRepository) Append(ctx context.Context, n Notification) error {
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(n.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO notifications (id, user_id, message, type, is_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		id, userID, n.Message, string(n.Type), n.IsRead, n.CreatedAt.UTC())
	return err
}

// List returns the user's most recent notifications, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, message, type, is_read, created_at
        FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		var (
			n         Notification
			id        uuid.UUID
			owner     uuid.UUID
			kind      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &owner, &n.Message, &kind, &n.IsRead, &createdAt); err != nil {
			return nil, err
		}
		n.ID = id.String()
		n.UserID = owner.String()
		n.Type = Type(kind)
		n.CreatedAt = createdAt.UTC()
		items = append(items, n)
	}
	return items, rows.Err()
}

// UnreadIDs snapshots the ids of currently-unread notifications.
func (r *PostgresRepository) UnreadIDs(ctx context.Context, userID string) ([]string, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id FROM notifications WHERE user_id = $1 AND is_read = FALSE`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id.String())
	}
	return ids, rows.Err()
}

// MarkRead flips IsRead for exactly the given ids. Notifications created
// after the caller's snapshot are untouched.
func (r *PostgresRepository) MarkRead(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		p, err := uuid.Parse(id)
		if err != nil {
			return err
		}
		parsed = append(parsed, p)
	}
	_, err = r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND id = ANY($2)`, uid, parsed)
	return err
}
