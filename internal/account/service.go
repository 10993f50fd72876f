package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const fallbackHolderName = "Account Holder"

// Service exposes account operations: provisioning at signup, self-healing
// reads, profile patches and live observation.
type Service struct {
	repo          Repository
	feed          ChangeFeed
	signupBalance decimal.Decimal
	logger        *slog.Logger
}

// NewService builds an account service instance.
func NewService(repo Repository, feed ChangeFeed, signupBalance decimal.Decimal, logger *slog.Logger) *Service {
	return &Service{repo: repo, feed: feed, signupBalance: signupBalance, logger: logger}
}

// Provision creates the account for a fresh signup with the opening balance
// and a newly allocated unique number.
func (s *Service) Provision(ctx context.Context, id, holderName string) (Account, error) {
	number, err := GenerateNumber(ctx, s.repo)
	if err != nil {
		return Account{}, err
	}
	acct := Account{
		ID:         id,
		HolderName: holderName,
		Number:     number,
		Balance:    s.signupBalance,
		Prefs:      DefaultPrefs(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// Get reads the account and heals incomplete state: a record missing its
// number gets one allocated and persisted, and a record missing entirely is
// materialized with the opening balance. The latter should only happen for
// accounts whose signup provisioning failed partway, so it is logged as
// anomalous.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	acct, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return s.materialize(ctx, id)
	}
	if err != nil {
		return Account{}, err
	}

	if acct.Number == "" {
		number, err := GenerateNumber(ctx, s.repo)
		if err != nil {
			return Account{}, err
		}
		if err := s.repo.SetNumber(ctx, id, number); err != nil {
			return Account{}, err
		}
		acct.Number = number
		s.logger.Warn("allocated missing account number", "account_id", id, "number", number)
	}

	return acct, nil
}

func (s *Service) materialize(ctx context.Context, id string) (Account, error) {
	number, err := GenerateNumber(ctx, s.repo)
	if err != nil {
		return Account{}, err
	}
	acct := Account{
		ID:         id,
		HolderName: fallbackHolderName,
		Number:     number,
		Balance:    s.signupBalance,
		Prefs:      DefaultPrefs(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		return Account{}, err
	}
	s.logger.Warn("materialized missing account", "account_id", id)
	return acct, nil
}

// Watch emits the current account snapshot and a fresh one after every
// committed change until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, id string) (<-chan Account, error) {
	initial, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	signals := s.feed.Subscribe(ctx, id)
	out := make(chan Account, 1)
	out <- initial

	go func() {
		defer close(out)
		for range signals {
			acct, err := s.Get(ctx, id)
			if err != nil {
				s.logger.Warn("watch re-read failed", "account_id", id, "error", err)
				continue
			}
			select {
			case out <- acct:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// UpdateName patches the holder display name.
func (s *Service) UpdateName(ctx context.Context, id, holderName string) error {
	if holderName == "" {
		return errors.New("holder name must not be empty")
	}
	return s.repo.UpdateName(ctx, id, holderName)
}

// UpdatePrefs patches the notification preference flags.
func (s *Service) UpdatePrefs(ctx context.Context, id string, prefs Prefs) error {
	return s.repo.UpdatePrefs(ctx, id, prefs)
}
