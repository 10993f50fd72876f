package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/logging"
)

type stubAssessor struct {
	assessment Assessment
	err        error
	delay      time.Duration
}

func (s *stubAssessor) Assess(ctx context.Context, _ Input) (Assessment, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Assessment{}, ctx.Err()
		}
	}
	return s.assessment, s.err
}

func TestGatePassesThroughAssessment(t *testing.T) {
	gate := NewGate(&stubAssessor{assessment: Assessment{Risk: Medium, Reason: "large amount"}}, time.Second, logging.Discard())

	out := gate.Check(context.Background(), Input{Amount: decimal.NewFromInt(900)})
	if out.Degraded {
		t.Fatal("healthy assessment marked degraded")
	}
	if out.Assessment.Risk != Medium {
		t.Fatalf("risk = %s, want medium", out.Assessment.Risk)
	}
	if !out.RequiresConfirmation() {
		t.Fatal("medium risk must require confirmation")
	}
}

func TestGateFailsOpenOnError(t *testing.T) {
	gate := NewGate(&stubAssessor{err: errors.New("model offline")}, time.Second, logging.Discard())

	out := gate.Check(context.Background(), Input{Amount: decimal.NewFromInt(900)})
	if !out.Degraded {
		t.Fatal("assessment error must degrade, not block")
	}
	if out.Assessment.Risk != Low {
		t.Fatalf("degraded risk = %s, want low", out.Assessment.Risk)
	}
	if out.RequiresConfirmation() {
		t.Fatal("degraded outcomes never require confirmation")
	}
}

func TestGateFailsOpenOnTimeout(t *testing.T) {
	slow := &stubAssessor{assessment: Assessment{Risk: High}, delay: time.Second}
	gate := NewGate(slow, 10*time.Millisecond, logging.Discard())

	start := time.Now()
	out := gate.Check(context.Background(), Input{Amount: decimal.NewFromInt(900)})
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("gate waited %s past its timeout", elapsed)
	}
	if !out.Degraded {
		t.Fatal("timeout must degrade, not block")
	}
}

func TestGateWithoutAssessorIsAlwaysDegraded(t *testing.T) {
	gate := NewGate(nil, time.Second, logging.Discard())

	out := gate.Check(context.Background(), Input{Amount: decimal.NewFromInt(5)})
	if !out.Degraded || out.Assessment.Risk != Low {
		t.Fatalf("nil assessor outcome %+v, want degraded low", out)
	}
}

func TestRequiresConfirmationMatrix(t *testing.T) {
	cases := []struct {
		out  Outcome
		want bool
	}{
		{Outcome{Assessment: Assessment{Risk: Low}}, false},
		{Outcome{Assessment: Assessment{Risk: Medium}}, true},
		{Outcome{Assessment: Assessment{Risk: High}}, true},
		{Outcome{Assessment: Assessment{Risk: High}, Degraded: true}, false},
	}
	for _, tc := range cases {
		if got := tc.out.RequiresConfirmation(); got != tc.want {
			t.Fatalf("RequiresConfirmation(%+v) = %v, want %v", tc.out, got, tc.want)
		}
	}
}
