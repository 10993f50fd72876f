package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lumenbank/lumen_bank/internal/account"
)

// ErrSuppressed indicates the target disabled this notification kind.
var ErrSuppressed = errors.New("notification suppressed by preferences")

// Service exposes notification reads, the mark-all-read batch and
// administrative announcements.
type Service struct {
	repo     Repository
	accounts account.Repository
}

// NewService builds a notification service instance.
func NewService(repo Repository, accounts account.Repository) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// List returns the user's most recent notifications for live display.
func (s *Service) List(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.List(ctx, userID, ListLimit)
}

// MarkAllRead flips IsRead for the notifications that were unread when the
// snapshot was taken. Notifications arriving afterwards stay unread rather
// than being clobbered.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	ids, err := s.repo.UnreadIDs(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, userID, ids)
}

// Announce appends an administrative info notification, honoring the target
// account's info preference.
func (s *Service) Announce(ctx context.Context, userID, message string) error {
	acct, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !acct.Prefs.Info {
		return ErrSuppressed
	}
	return s.repo.Append(ctx, Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Type:      TypeInfo,
		CreatedAt: time.Now().UTC(),
	})
}
