package account

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ChangeFeed signals committed account changes to live observers. Delivery is
// eventual: a slow subscriber sees coalesced signals, never a missed final
// state, because observers re-read the account on every signal.
type ChangeFeed interface {
	Publish(ctx context.Context, accountID string) error
	Subscribe(ctx context.Context, accountID string) <-chan struct{}
}

const feedChannelPrefix = "account:changed:"

// RedisChangeFeed backs the change feed with Redis pub/sub so every API
// instance observes transfers committed by its peers.
type RedisChangeFeed struct {
	client *redis.Client
}

// NewRedisChangeFeed constructs a Redis-backed change feed.
func NewRedisChangeFeed(client *redis.Client) *RedisChangeFeed {
	return &RedisChangeFeed{client: client}
}

// Publish announces a change to the given account.
func (f *RedisChangeFeed) Publish(ctx context.Context, accountID string) error {
	return f.client.Publish(ctx, feedChannelPrefix+accountID, "1").Err()
}

// Subscribe returns a signal channel that fires on every published change
// until ctx is cancelled, at which point the channel is closed.
func (f *RedisChangeFeed) Subscribe(ctx context.Context, accountID string) <-chan struct{} {
	out := make(chan struct{}, 1)
	sub := f.client.Subscribe(ctx, feedChannelPrefix+accountID)

	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default: // coalesce
				}
			}
		}
	}()

	return out
}

// MemoryChangeFeed is an in-process change feed for tests and dev mode. It is
// an explicit observer registry with register/unregister lifecycle.
type MemoryChangeFeed struct {
	mu   sync.Mutex
	subs map[string][]chan struct{}
}

// NewMemoryChangeFeed constructs an in-memory change feed.
func NewMemoryChangeFeed() *MemoryChangeFeed {
	return &MemoryChangeFeed{subs: make(map[string][]chan struct{})}
}

// Publish signals all current subscribers of the account.
func (f *MemoryChangeFeed) Publish(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[accountID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Subscribe registers an observer; it is removed when ctx is cancelled.
func (f *MemoryChangeFeed) Subscribe(ctx context.Context, accountID string) <-chan struct{} {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	f.subs[accountID] = append(f.subs[accountID], ch)
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		subs := f.subs[accountID]
		for i, existing := range subs {
			if existing == ch {
				f.subs[accountID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
		close(ch)
	}()

	return ch
}
