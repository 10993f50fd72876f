package account

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, acct Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[acct.ID]; exists {
		return errors.New("account exists")
	}
	r.accounts[acct.ID] = acct
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acct, nil
}

func (r *memoryRepository) GetByNumber(_ context.Context, number string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acct := range r.accounts {
		if acct.Number == number && number != "" {
			return acct, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *memoryRepository) NumberExists(_ context.Context, number string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acct := range r.accounts {
		if acct.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) SetNumber(_ context.Context, id, number string) error {
	return r.patch(id, func(acct *Account) { acct.Number = number })
}

func (r *memoryRepository) SetBalance(_ context.Context, id string, balance decimal.Decimal) error {
	return r.patch(id, func(acct *Account) { acct.Balance = balance })
}

func (r *memoryRepository) UpdateName(_ context.Context, id, holderName string) error {
	return r.patch(id, func(acct *Account) { acct.HolderName = holderName })
}

func (r *memoryRepository) UpdatePrefs(_ context.Context, id string, prefs Prefs) error {
	return r.patch(id, func(acct *Account) { acct.Prefs = prefs })
}

func (r *memoryRepository) patch(id string, apply func(*Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	apply(&acct)
	r.accounts[id] = acct
	return nil
}
