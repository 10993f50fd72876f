package qrpay

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/ledger"
	"github.com/lumenbank/lumen_bank/internal/risk"
	"github.com/lumenbank/lumen_bank/internal/transfer"
)

// riskWindow bounds how much payer history the assessment model sees.
const riskWindow = 10

// Payload is a decoded QR code: the recipient plus an optional pre-filled
// amount. Decode mechanics live with the QR collaborator; the core receives
// the payload.
type Payload struct {
	Recipient   string
	Amount      decimal.Decimal
	Description string
}

// Status of a QR payment attempt.
const (
	StatusCompleted            = "completed"
	StatusConfirmationRequired = "confirmation_required"
)

// PayResult is either a committed transfer or a parked payment awaiting
// confirmation.
type PayResult struct {
	Status         string
	Transfer       transfer.Result
	Warning        string
	ConfirmationID string
	Risk           risk.Level
	Reason         string
}

// Service routes QR-initiated payments through the risk gate before the
// transfer engine. Direct transfers never pass through here: QR recipients
// are less deliberately chosen, so only they carry the extra check.
type Service struct {
	engine  transfer.Engine
	gate    *risk.Gate
	history *ledger.Service
	pending PendingStore
	ttl     time.Duration
}

// NewService builds the QR payment service.
func NewService(engine transfer.Engine, gate *risk.Gate, history *ledger.Service, pending PendingStore, ttl time.Duration) *Service {
	return &Service{engine: engine, gate: gate, history: history, pending: pending, ttl: ttl}
}

// Pay assesses and, when low risk, immediately executes the payment. Medium
// and high risk payments are parked; nothing reaches the engine until the
// payer confirms.
func (s *Service) Pay(ctx context.Context, payerID string, payload Payload) (PayResult, error) {
	if !payload.Amount.IsPositive() {
		return PayResult{}, transfer.ErrInvalidAmount
	}

	recent, err := s.history.Recent(ctx, payerID, riskWindow)
	if err != nil {
		// History is advisory input to the gate; assess without it.
		recent = nil
	}

	outcome := s.gate.Check(ctx, risk.Input{
		Amount:    payload.Amount,
		Recipient: payload.Recipient,
		Recent:    recent,
	})

	if outcome.RequiresConfirmation() {
		p := Pending{
			ID:          uuid.NewString(),
			PayerID:     payerID,
			Recipient:   payload.Recipient,
			Amount:      payload.Amount,
			Description: payload.Description,
			Risk:        outcome.Assessment.Risk,
			Reason:      outcome.Assessment.Reason,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.pending.Put(ctx, p, s.ttl); err != nil {
			return PayResult{}, err
		}
		return PayResult{
			Status:         StatusConfirmationRequired,
			ConfirmationID: p.ID,
			Risk:           outcome.Assessment.Risk,
			Reason:         outcome.Assessment.Reason,
		}, nil
	}

	res, err := s.engine.Transfer(ctx, payerID, transfer.Request{
		Recipient:   payload.Recipient,
		Amount:      payload.Amount,
		Description: payload.Description,
	})
	if err != nil {
		return PayResult{}, err
	}

	result := PayResult{Status: StatusCompleted, Transfer: res, Risk: outcome.Assessment.Risk}
	if outcome.Degraded {
		result.Warning = "payment completed without a fraud check"
	}
	return result, nil
}

// Confirm executes a previously parked payment.
func (s *Service) Confirm(ctx context.Context, payerID, confirmationID string) (transfer.Result, error) {
	p, err := s.take(ctx, payerID, confirmationID)
	if err != nil {
		return transfer.Result{}, err
	}
	return s.engine.Transfer(ctx, payerID, transfer.Request{
		Recipient:   p.Recipient,
		Amount:      p.Amount,
		Description: p.Description,
	})
}

// Cancel discards a parked payment. No state changes; the transfer never
// reached the engine.
func (s *Service) Cancel(ctx context.Context, payerID, confirmationID string) error {
	_, err := s.take(ctx, payerID, confirmationID)
	return err
}

// take removes the pending payment for payerID. A take by anyone else puts
// the payment back, so a guessed confirmation ID cannot destroy it, and the
// caller learns nothing beyond not-found.
func (s *Service) take(ctx context.Context, payerID, confirmationID string) (Pending, error) {
	p, err := s.pending.Take(ctx, confirmationID)
	if err != nil {
		return Pending{}, err
	}
	if p.PayerID != payerID {
		if err := s.pending.Put(ctx, p, s.ttl); err != nil {
			return Pending{}, err
		}
		return Pending{}, ErrPendingNotFound
	}
	return p, nil
}
