package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// TransferCompleted is emitted after a transfer commits. Downstream consumers
// (analytics, statements) read it from the event stream; the transfer itself
// never depends on delivery.
type TransferCompleted struct {
	EventID     string          `json:"event_id"`
	PayerID     string          `json:"payer_id"`
	RecipientID string          `json:"recipient_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Publisher delivers transfer events to downstream systems.
type Publisher interface {
	TransferCompleted(ctx context.Context, ev TransferCompleted) error
}

// LogPublisher writes events to the structured logger when no broker is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a logging publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// TransferCompleted logs the event.
func (p *LogPublisher) TransferCompleted(_ context.Context, ev TransferCompleted) error {
	if p == nil || p.logger == nil {
		return nil
	}
	p.logger.Info("transfer completed",
		"event_id", ev.EventID,
		"payer_id", ev.PayerID,
		"recipient_id", ev.RecipientID,
		"amount", ev.Amount.StringFixed(2),
	)
	return nil
}
