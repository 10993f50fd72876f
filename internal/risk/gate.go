package risk

import (
	"context"
	"log/slog"
	"time"
)

const degradedReason = "risk assessment unavailable"

// Outcome is the gate's decision. Degraded marks fail-open results: the
// assessment call failed or timed out and the transfer proceeds as low risk,
// with a non-blocking warning surfaced to the user.
type Outcome struct {
	Assessment Assessment
	Degraded   bool
}

// Gate bounds the assessment call with a timeout and converts failures into
// fail-open outcomes. A fraud-check outage must never block a payment.
type Gate struct {
	assessor Assessor
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGate builds a risk gate. A nil assessor yields permanently degraded
// outcomes, used when no assessment endpoint is configured.
func NewGate(assessor Assessor, timeout time.Duration, logger *slog.Logger) *Gate {
	return &Gate{assessor: assessor, timeout: timeout, logger: logger}
}

// Check classifies the pending transfer, failing open on any error.
func (g *Gate) Check(ctx context.Context, input Input) Outcome {
	if g.assessor == nil {
		return Outcome{Assessment: Assessment{Risk: Low, Reason: degradedReason}, Degraded: true}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	assessment, err := g.assessor.Assess(ctx, input)
	if err != nil {
		g.logger.Warn("risk assessment degraded", "recipient", input.Recipient, "error", err)
		return Outcome{Assessment: Assessment{Risk: Low, Reason: degradedReason}, Degraded: true}
	}
	return Outcome{Assessment: assessment}
}

// RequiresConfirmation reports whether the outcome suspends the payment
// pending explicit user confirmation.
func (o Outcome) RequiresConfirmation() bool {
	return !o.Degraded && o.Assessment.Risk != Low
}
