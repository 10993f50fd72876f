package notification

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	items map[string][]Notification // keyed by user id
	seq   int
	order map[string]int
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		items: make(map[string][]Notification),
		order: make(map[string]int),
	}
}

func (r *memoryRepository) Append(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.order[n.ID] = r.seq
	r.items[n.UserID] = append(r.items[n.UserID], n)
	return nil
}

func (r *memoryRepository) List(_ context.Context, userID string, limit int) ([]Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Notification, len(r.items[userID]))
	copy(items, r.items[userID])

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return r.order[items[i].ID] > r.order[items[j].ID]
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *memoryRepository) UnreadIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, n := range r.items[userID] {
		if !n.IsRead {
			ids = append(ids, n.ID)
		}
	}
	return ids, nil
}

func (r *memoryRepository) MarkRead(_ context.Context, userID string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	marked := make(map[string]bool, len(ids))
	for _, id := range ids {
		marked[id] = true
	}
	items := r.items[userID]
	for i := range items {
		if marked[items[i].ID] {
			items[i].IsRead = true
		}
	}
	return nil
}
