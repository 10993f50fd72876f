package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ModelClient calls the external assessment model over HTTP.
type ModelClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewModelClient creates a client for the assessment endpoint. The overall
// deadline comes from the caller's context; the embedded timeout is a
// backstop for callers without one.
func NewModelClient(baseURL, apiKey string) *ModelClient {
	return &ModelClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type assessRequest struct {
	Amount             decimal.Decimal `json:"amount"`
	Recipient          string          `json:"recipient"`
	RecentTransactions string          `json:"recentTransactions"`
}

type recentEntry struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Recipient   string          `json:"recipient,omitempty"`
	Description string          `json:"description,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Assess posts the pending transfer and serialized recent history, and
// validates the response against the expected {risk, reason} shape.
func (c *ModelClient) Assess(ctx context.Context, input Input) (Assessment, error) {
	recent := make([]recentEntry, 0, len(input.Recent))
	for _, entry := range input.Recent {
		recent = append(recent, recentEntry{
			Amount:      entry.Amount,
			Type:        string(entry.Type),
			Recipient:   entry.Recipient,
			Description: entry.Description,
			Timestamp:   entry.CreatedAt,
		})
	}
	serialized, err := json.Marshal(recent)
	if err != nil {
		return Assessment{}, fmt.Errorf("serialize history: %w", err)
	}

	body, err := json.Marshal(assessRequest{
		Amount:             input.Amount,
		Recipient:          input.Recipient,
		RecentTransactions: string(serialized),
	})
	if err != nil {
		return Assessment{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Assessment{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Assessment{}, fmt.Errorf("assessment request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Assessment{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Assessment{}, fmt.Errorf("assessment API error (%d): %s", resp.StatusCode, respBody)
	}

	var assessment Assessment
	if err := json.Unmarshal(respBody, &assessment); err != nil {
		return Assessment{}, fmt.Errorf("decode response: %w", err)
	}
	if err := assessment.validate(); err != nil {
		return Assessment{}, err
	}
	return assessment, nil
}
