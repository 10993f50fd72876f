package account

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/logging"
)

func newTestService(t *testing.T) (*Service, Repository, *MemoryChangeFeed) {
	t.Helper()
	repo := NewMemoryRepository()
	feed := NewMemoryChangeFeed()
	svc := NewService(repo, feed, decimal.RequireFromString("500.00"), logging.Discard())
	return svc, repo, feed
}

func TestProvisionCreatesFundedAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)

	acct, err := svc.Provision(context.Background(), "user-1", "Ada Lovelace")
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if !ValidNumber(acct.Number) {
		t.Fatalf("provisioned number %q invalid", acct.Number)
	}
	if !acct.Balance.Equal(decimal.RequireFromString("500.00")) {
		t.Fatalf("opening balance = %s, want 500.00", acct.Balance)
	}
	if !acct.Prefs.Deposits || !acct.Prefs.Alerts || !acct.Prefs.Info {
		t.Fatalf("default prefs should enable everything, got %+v", acct.Prefs)
	}

	stored, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("stored account missing: %v", err)
	}
	if stored.Number != acct.Number {
		t.Fatalf("stored number %q != returned %q", stored.Number, acct.Number)
	}
}

func TestGetAllocatesMissingNumber(t *testing.T) {
	svc, repo, _ := newTestService(t)

	err := repo.Create(context.Background(), Account{
		ID:         "user-1",
		HolderName: "Ada Lovelace",
		Balance:    decimal.NewFromInt(100),
		Prefs:      DefaultPrefs(),
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	acct, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ValidNumber(acct.Number) {
		t.Fatalf("expected allocated number, got %q", acct.Number)
	}

	stored, _ := repo.Get(context.Background(), "user-1")
	if stored.Number != acct.Number {
		t.Fatalf("allocated number not persisted: stored %q, returned %q", stored.Number, acct.Number)
	}
}

func TestGetMaterializesMissingAccount(t *testing.T) {
	svc, _, _ := newTestService(t)

	acct, err := svc.Get(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !acct.Balance.Equal(decimal.RequireFromString("500.00")) {
		t.Fatalf("materialized balance = %s, want 500.00", acct.Balance)
	}
	if acct.HolderName == "" {
		t.Fatal("materialized account should carry a fallback holder name")
	}
	if !ValidNumber(acct.Number) {
		t.Fatalf("materialized number %q invalid", acct.Number)
	}

	// A second read returns the same account instead of materializing again.
	again, err := svc.Get(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.Number != acct.Number {
		t.Fatalf("second get returned different number: %q vs %q", again.Number, acct.Number)
	}
}

func TestWatchEmitsSnapshotThenChanges(t *testing.T) {
	svc, repo, feed := newTestService(t)

	if _, err := svc.Provision(context.Background(), "user-1", "Ada Lovelace"); err != nil {
		t.Fatalf("provision: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := svc.Watch(ctx, "user-1")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	select {
	case snapshot := <-updates:
		if !snapshot.Balance.Equal(decimal.RequireFromString("500.00")) {
			t.Fatalf("snapshot balance = %s, want 500.00", snapshot.Balance)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot within 1s")
	}

	if err := repo.SetBalance(context.Background(), "user-1", decimal.NewFromInt(250)); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	if err := feed.Publish(context.Background(), "user-1"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case changed := <-updates:
		if !changed.Balance.Equal(decimal.NewFromInt(250)) {
			t.Fatalf("changed balance = %s, want 250", changed.Balance)
		}
	case <-time.After(time.Second):
		t.Fatal("no change signal within 1s")
	}
}

func TestUpdateNameRejectsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Provision(context.Background(), "user-1", "Ada"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if err := svc.UpdateName(context.Background(), "user-1", ""); err == nil {
		t.Fatal("expected error for empty holder name")
	}
}
