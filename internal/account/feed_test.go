package account

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisChangeFeedDeliversSignals(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	feed := NewRedisChangeFeed(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := feed.Subscribe(ctx, "acct-1")

	// Subscription setup races the first publish, so retry until delivered.
	deadline := time.After(2 * time.Second)
	for {
		if err := feed.Publish(context.Background(), "acct-1"); err != nil {
			t.Fatalf("publish: %v", err)
		}
		select {
		case <-signals:
			return
		case <-deadline:
			t.Fatal("no signal within 2s")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestRedisChangeFeedClosesOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	feed := NewRedisChangeFeed(client)

	ctx, cancel := context.WithCancel(context.Background())
	signals := feed.Subscribe(ctx, "acct-1")
	cancel()

	select {
	case _, ok := <-signals:
		if ok {
			t.Fatal("expected closed channel after cancel, got signal")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed within 2s of cancel")
	}
}

func TestMemoryChangeFeedScopesByAccount(t *testing.T) {
	feed := NewMemoryChangeFeed()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := feed.Subscribe(ctx, "acct-a")
	b := feed.Subscribe(ctx, "acct-b")

	if err := feed.Publish(context.Background(), "acct-a"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case <-a:
	case <-time.After(time.Second):
		t.Fatal("subscriber for acct-a got no signal")
	}

	select {
	case <-b:
		t.Fatal("subscriber for acct-b should not receive acct-a signals")
	default:
	}
}
