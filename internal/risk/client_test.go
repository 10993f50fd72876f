package risk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/ledger"
)

func TestModelClientAssess(t *testing.T) {
	var captured struct {
		Amount             decimal.Decimal `json:"amount"`
		Recipient          string          `json:"recipient"`
		RecentTransactions string          `json:"recentTransactions"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Assessment{Risk: High, Reason: "recipient never seen before"})
	}))
	defer srv.Close()

	client := NewModelClient(srv.URL, "secret-key")
	got, err := client.Assess(context.Background(), Input{
		Amount:    decimal.RequireFromString("900.00"),
		Recipient: "001002003",
		Recent: []ledger.Entry{
			{Amount: decimal.NewFromInt(10), Type: ledger.TypeWithdrawal, Recipient: "111111111", CreatedAt: time.Now().UTC()},
		},
	})
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if got.Risk != High || got.Reason != "recipient never seen before" {
		t.Fatalf("unexpected assessment %+v", got)
	}

	if captured.Recipient != "001002003" {
		t.Fatalf("request recipient = %q", captured.Recipient)
	}

	// History travels as a JSON string, not a nested array.
	var recent []map[string]any
	if err := json.Unmarshal([]byte(captured.RecentTransactions), &recent); err != nil {
		t.Fatalf("recentTransactions is not a JSON string of entries: %v", err)
	}
	if len(recent) != 1 || recent[0]["type"] != "withdrawal" {
		t.Fatalf("unexpected serialized history %v", recent)
	}
}

func TestModelClientRejectsMalformedRisk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"risk":"catastrophic","reason":"?"}`))
	}))
	defer srv.Close()

	client := NewModelClient(srv.URL, "")
	if _, err := client.Assess(context.Background(), Input{Amount: decimal.NewFromInt(1)}); err == nil {
		t.Fatal("expected error for unexpected risk value")
	}
}

func TestModelClientRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewModelClient(srv.URL, "")
	if _, err := client.Assess(context.Background(), Input{Amount: decimal.NewFromInt(1)}); err == nil {
		t.Fatal("expected error for 503 response")
	}
}
