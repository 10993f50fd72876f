package transfer

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/account"
	"github.com/lumenbank/lumen_bank/internal/events"
	"github.com/lumenbank/lumen_bank/internal/ledger"
	"github.com/lumenbank/lumen_bank/internal/logging"
	"github.com/lumenbank/lumen_bank/internal/notification"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.TransferCompleted
}

func (p *capturePublisher) TransferCompleted(_ context.Context, ev events.TransferCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type engineFixture struct {
	engine    *InMemoryEngine
	accounts  account.Repository
	entries   ledger.Repository
	notes     notification.Repository
	published *capturePublisher
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		accounts:  account.NewMemoryRepository(),
		entries:   ledger.NewMemoryRepository(),
		notes:     notification.NewMemoryRepository(),
		published: &capturePublisher{},
	}
	f.engine = NewInMemoryEngine(f.accounts, f.entries, f.notes,
		account.NewMemoryChangeFeed(), f.published, logging.Discard())
	return f
}

func (f *engineFixture) seed(t *testing.T, id, name, number, balance string) {
	t.Helper()
	err := f.accounts.Create(context.Background(), account.Account{
		ID:         id,
		HolderName: name,
		Number:     number,
		Balance:    decimal.RequireFromString(balance),
		Prefs:      account.DefaultPrefs(),
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
}

func (f *engineFixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	acct, err := f.accounts.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("read account %s: %v", id, err)
	}
	return acct.Balance
}

func TestTransferMovesFundsAndRecordsBothSides(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", "Alice", "000000001", "500.00")
	f.seed(t, "bob", "Bob", "001002003", "500.00")

	res, err := f.engine.Transfer(context.Background(), "alice", Request{
		Recipient:   "001002003",
		Amount:      decimal.RequireFromString("120.50"),
		Description: "rent share",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !res.PayerBalance.Equal(decimal.RequireFromString("379.50")) {
		t.Fatalf("payer balance = %s, want 379.50", res.PayerBalance)
	}
	if !res.RecipientBalance.Equal(decimal.RequireFromString("620.50")) {
		t.Fatalf("recipient balance = %s, want 620.50", res.RecipientBalance)
	}

	payerEntries, _ := f.entries.History(context.Background(), "alice", 10)
	if len(payerEntries) != 1 {
		t.Fatalf("expected 1 payer entry, got %d", len(payerEntries))
	}
	if payerEntries[0].Type != ledger.TypeWithdrawal || payerEntries[0].Recipient != "001002003" {
		t.Fatalf("payer entry wrong: %+v", payerEntries[0])
	}

	bobEntries, _ := f.entries.History(context.Background(), "bob", 10)
	if len(bobEntries) != 1 {
		t.Fatalf("expected 1 recipient entry, got %d", len(bobEntries))
	}
	if bobEntries[0].Type != ledger.TypeDeposit || bobEntries[0].Sender != "Alice" {
		t.Fatalf("recipient entry wrong: %+v", bobEntries[0])
	}
	if !bobEntries[0].Amount.Equal(payerEntries[0].Amount) {
		t.Fatalf("entry amounts differ: %s vs %s", bobEntries[0].Amount, payerEntries[0].Amount)
	}

	notes, _ := f.notes.List(context.Background(), "bob", 10)
	if len(notes) != 1 || notes[0].Type != notification.TypeDeposit {
		t.Fatalf("expected one deposit notification for bob, got %+v", notes)
	}
	if notes[0].Message != "You received 120.50 from Alice" {
		t.Fatalf("unexpected notification message %q", notes[0].Message)
	}

	if len(f.published.events) != 1 || f.published.events[0].PayerID != "alice" {
		t.Fatalf("expected one published event for alice, got %+v", f.published.events)
	}
}

func TestTransferConservesTotalMoney(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", "Alice", "000000001", "500.00")
	f.seed(t, "bob", "Bob", "001002003", "300.00")

	total := decimal.RequireFromString("800.00")
	amounts := []string{"42.00", "0.01", "157.99"}
	for _, a := range amounts {
		_, err := f.engine.Transfer(context.Background(), "alice", Request{
			Recipient: "001002003",
			Amount:    decimal.RequireFromString(a),
		})
		if err != nil {
			t.Fatalf("transfer %s: %v", a, err)
		}
		sum := f.balance(t, "alice").Add(f.balance(t, "bob"))
		if !sum.Equal(total) {
			t.Fatalf("money not conserved after %s: total %s", a, sum)
		}
	}
}

func TestTransferInsufficientFundsLeavesStateUntouched(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", "Alice", "000000001", "50.00")
	f.seed(t, "bob", "Bob", "001002003", "500.00")

	_, err := f.engine.Transfer(context.Background(), "alice", Request{
		Recipient: "001002003",
		Amount:    decimal.RequireFromString("50.01"),
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if !f.balance(t, "alice").Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("payer balance changed on failed transfer")
	}
	if entries, _ := f.entries.History(context.Background(), "alice", 10); len(entries) != 0 {
		t.Fatalf("failed transfer left %d ledger entries", len(entries))
	}
	if len(f.published.events) != 0 {
		t.Fatalf("failed transfer published %d events", len(f.published.events))
	}
}

func TestTransferFullBalanceToZero(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", "Alice", "000000001", "75.25")
	f.seed(t, "bob", "Bob", "001002003", "0.00")

	res, err := f.engine.Transfer(context.Background(), "alice", Request{
		Recipient: "001002003",
		Amount:    decimal.RequireFromString("75.25"),
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !res.PayerBalance.IsZero() {
		t.Fatalf("payer balance = %s, want 0", res.PayerBalance)
	}
}

func TestPlanTransferRecomputesIdentically(t *testing.T) {
	// The serializable-transaction store retries by re-running the whole
	// operation from freshly read state. Planning the same snapshot twice
	// must yield the same effect, with the inputs untouched.
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	payer := account.Account{
		ID: "alice", HolderName: "Alice", Number: "000000001",
		Balance: decimal.RequireFromString("150.00"),
		Prefs:   account.DefaultPrefs(),
	}
	recipient := account.Account{
		ID: "bob", HolderName: "Bob", Number: "001002003",
		Balance: decimal.RequireFromString("20.00"),
		Prefs:   account.DefaultPrefs(),
	}
	amount := decimal.RequireFromString("75.00")

	first, err := planTransfer(payer, recipient, amount, "rent share", now)
	if err != nil {
		t.Fatalf("first plan: %v", err)
	}
	second, err := planTransfer(payer, recipient, amount, "rent share", now)
	if err != nil {
		t.Fatalf("second plan: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("plans differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if !first.payerBalance.Equal(decimal.RequireFromString("75.00")) {
		t.Fatalf("payer balance = %s, want 75.00", first.payerBalance)
	}
	if !payer.Balance.Equal(decimal.RequireFromString("150.00")) || !recipient.Balance.Equal(decimal.RequireFromString("20.00")) {
		t.Fatal("planning must not mutate the account snapshots")
	}

	w1, err := planWithdrawal(payer, amount, "cash out", now)
	if err != nil {
		t.Fatalf("first withdrawal plan: %v", err)
	}
	w2, err := planWithdrawal(payer, amount, "cash out", now)
	if err != nil {
		t.Fatalf("second withdrawal plan: %v", err)
	}
	if !reflect.DeepEqual(w1, w2) {
		t.Fatalf("withdrawal plans differ:\nfirst:  %+v\nsecond: %+v", w1, w2)
	}
}

func TestTransferValidationOrder(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", "Alice", "000000001", "500.00")

	cases := []struct {
		name    string
		payer   string
		req     Request
		wantErr error
	}{
		{"zero amount", "alice", Request{Recipient: "001002003", Amount: decimal.Zero}, ErrInvalidAmount},
		{"negative amount", "alice", Request{Recipient: "001002003", Amount: decimal.NewFromInt(-5)}, ErrInvalidAmount},
		{"unknown payer", "nobody", Request{Recipient: "001002003", Amount: decimal.NewFromInt(5)}, ErrAccountNotFound},
		{"malformed recipient", "alice", Request{Recipient: "12ab", Amount: decimal.NewFromInt(5)}, ErrInvalidRecipient},
		{"blank recipient", "alice", Request{Recipient: "", Amount: decimal.NewFromInt(5)}, ErrInvalidRecipient},
		{"self payment", "alice", Request{Recipient: "000-000-001", Amount: decimal.NewFromInt(5)}, ErrSelfPayment},
		{"unknown recipient", "alice", Request{Recipient: "999999999", Amount: decimal.NewFromInt(5)}, ErrRecipientNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Transfer(context.Background(), tc.payer, tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestTransferNormalizesRecipientFormatting(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", "Alice", "000000001", "500.00")
	f.seed(t, "bob", "Bob", "001002003", "0.00")

	for _, raw := range []string{"001-002-003", " 001 002 003 ", "001002003"} {
		if _, err := f.engine.Transfer(context.Background(), "alice", Request{
			Recipient: raw,
			Amount:    decimal.NewFromInt(1),
		}); err != nil {
			t.Fatalf("recipient %q: %v", raw, err)
		}
	}
	if !f.balance(t, "bob").Equal(decimal.NewFromInt(3)) {
		t.Fatalf("bob balance = %s, want 3", f.balance(t, "bob"))
	}
}

func TestTransferLowBalanceAlert(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", "Alice", "000000001", "120.00")
	f.seed(t, "bob", "Bob", "001002003", "0.00")

	_, err := f.engine.Transfer(context.Background(), "alice", Request{
		Recipient: "001002003",
		Amount:    decimal.RequireFromString("30.00"),
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	notes, _ := f.notes.List(context.Background(), "alice", 10)
	if len(notes) != 1 || notes[0].Type != notification.TypeAlert {
		t.Fatalf("expected one low-balance alert, got %+v", notes)
	}
	if notes[0].Message != "Low balance: your balance fell to 90.00" {
		t.Fatalf("unexpected alert message %q", notes[0].Message)
	}
}

func TestTransferPrefsSuppressNotifications(t *testing.T) {
	f := newEngineFixture(t)

	payerPrefs := account.DefaultPrefs()
	payerPrefs.Alerts = false
	if err := f.accounts.Create(context.Background(), account.Account{
		ID: "alice", HolderName: "Alice", Number: "000000001",
		Balance: decimal.RequireFromString("100.00"), Prefs: payerPrefs,
	}); err != nil {
		t.Fatalf("seed alice: %v", err)
	}

	bobPrefs := account.DefaultPrefs()
	bobPrefs.Deposits = false
	if err := f.accounts.Create(context.Background(), account.Account{
		ID: "bob", HolderName: "Bob", Number: "001002003",
		Balance: decimal.Zero, Prefs: bobPrefs,
	}); err != nil {
		t.Fatalf("seed bob: %v", err)
	}

	_, err := f.engine.Transfer(context.Background(), "alice", Request{
		Recipient: "001002003",
		Amount:    decimal.RequireFromString("60.00"),
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// Payer dropped below the threshold but disabled alerts; recipient
	// disabled deposit notices. The ledger still records both sides.
	if notes, _ := f.notes.List(context.Background(), "alice", 10); len(notes) != 0 {
		t.Fatalf("alerts disabled but alice got %d notifications", len(notes))
	}
	if notes, _ := f.notes.List(context.Background(), "bob", 10); len(notes) != 0 {
		t.Fatalf("deposit notices disabled but bob got %d notifications", len(notes))
	}
	if entries, _ := f.entries.History(context.Background(), "bob", 10); len(entries) != 1 {
		t.Fatalf("ledger must record the deposit regardless of prefs")
	}
}

func TestWithdrawDebitsSingleAccount(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", "Alice", "000000001", "200.00")

	res, err := f.engine.Withdraw(context.Background(), "alice", WithdrawRequest{
		Amount:      decimal.RequireFromString("25.00"),
		Description: "electricity bill",
	})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !res.Balance.Equal(decimal.RequireFromString("175.00")) {
		t.Fatalf("balance = %s, want 175.00", res.Balance)
	}

	entries, _ := f.entries.History(context.Background(), "alice", 10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Type != ledger.TypeWithdrawal || entries[0].Recipient != "" {
		t.Fatalf("withdrawal entry wrong: %+v", entries[0])
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", "Alice", "000000001", "10.00")

	_, err := f.engine.Withdraw(context.Background(), "alice", WithdrawRequest{
		Amount: decimal.RequireFromString("10.01"),
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if !f.balance(t, "alice").Equal(decimal.RequireFromString("10.00")) {
		t.Fatal("failed withdrawal changed the balance")
	}
}
