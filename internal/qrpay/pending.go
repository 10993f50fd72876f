package qrpay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/risk"
)

// ErrPendingNotFound indicates the confirmation id is unknown, expired or
// already resolved.
var ErrPendingNotFound = errors.New("pending payment not found")

// Pending is a risk-flagged QR payment parked until the payer confirms or
// cancels. It expires unconfirmed after the store's TTL.
type Pending struct {
	ID          string          `json:"id"`
	PayerID     string          `json:"payer_id"`
	Recipient   string          `json:"recipient"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Risk        risk.Level      `json:"risk"`
	Reason      string          `json:"reason"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PendingStore parks pending payments. Take removes and returns in one step
// so a pending payment resolves at most once.
type PendingStore interface {
	Put(ctx context.Context, p Pending, ttl time.Duration) error
	Take(ctx context.Context, id string) (Pending, error)
}

const pendingKeyPrefix = "qrpay:pending:"

// RedisPendingStore parks pending payments in Redis with a TTL.
type RedisPendingStore struct {
	client *redis.Client
}

// NewRedisPendingStore constructs a Redis-backed pending store.
func NewRedisPendingStore(client *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{client: client}
}

// Put stores the pending payment under its id.
func (s *RedisPendingStore) Put(ctx context.Context, p Pending, ttl time.Duration) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, pendingKeyPrefix+p.ID, payload, ttl).Err()
}

// Take removes and returns the pending payment. GETDEL makes the read and
// the delete one atomic step, so concurrent takers cannot both resolve the
// same payment.
func (s *RedisPendingStore) Take(ctx context.Context, id string) (Pending, error) {
	payload, err := s.client.GetDel(ctx, pendingKeyPrefix+id).Result()
	if err == redis.Nil {
		return Pending{}, ErrPendingNotFound
	}
	if err != nil {
		return Pending{}, err
	}

	var p Pending
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Pending{}, err
	}
	return p, nil
}

type memoryPending struct {
	pending   Pending
	expiresAt time.Time
}

// MemoryPendingStore parks pending payments in process memory for tests and
// dev mode.
type MemoryPendingStore struct {
	mu    sync.Mutex
	items map[string]memoryPending
}

// NewMemoryPendingStore constructs an in-memory pending store.
func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{items: make(map[string]memoryPending)}
}

// Put stores the pending payment under its id.
func (s *MemoryPendingStore) Put(_ context.Context, p Pending, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.ID] = memoryPending{pending: p, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Take removes and returns the pending payment.
func (s *MemoryPendingStore) Take(_ context.Context, id string) (Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return Pending{}, ErrPendingNotFound
	}
	delete(s.items, id)
	if time.Now().After(item.expiresAt) {
		return Pending{}, ErrPendingNotFound
	}
	return item.pending, nil
}
