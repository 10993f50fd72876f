package notification

import "time"

// Type classifies a notification for display.
type Type string

const (
	// TypeDeposit announces incoming money.
	TypeDeposit Type = "deposit"
	// TypeAlert warns about account state, e.g. a low balance.
	TypeAlert Type = "alert"
	// TypeInfo carries administrative announcements.
	TypeInfo Type = "info"
)

// Notification is a per-user alert. Append-only except for the IsRead flag.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Type      Type
	IsRead    bool
	CreatedAt time.Time
}
