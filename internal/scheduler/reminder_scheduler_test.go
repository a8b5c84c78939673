package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"talent_match_backend/internal/service"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingRunner struct {
	calls     atomic.Int32
	lastToken atomic.Value
}

func (r *countingRunner) RunReminderSweep(ctx context.Context, token string, now time.Time) (*service.SweepSummary, error) {
	r.calls.Add(1)
	r.lastToken.Store(token)
	return &service.SweepSummary{Timestamp: now.Format(time.RFC3339)}, nil
}

func TestSchedulerRunsAndStops(t *testing.T) {
	runner := &countingRunner{}
	s := NewReminderScheduler(runner, 10*time.Millisecond, func() string { return "tick-secret" })

	s.Start()
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for runner.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
	s.Stop()

	if runner.calls.Load() < 2 {
		t.Fatalf("expected at least 2 sweeps, got %d", runner.calls.Load())
	}
	if got := runner.lastToken.Load(); got != "tick-secret" {
		t.Fatalf("expected scheduler to pass the configured secret, got %v", got)
	}
}

func TestSchedulerDisabledWithZeroInterval(t *testing.T) {
	runner := &countingRunner{}
	s := NewReminderScheduler(runner, 0, func() string { return "" })
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if runner.calls.Load() != 0 {
		t.Fatalf("expected no sweeps when interval is zero, got %d", runner.calls.Load())
	}
}
