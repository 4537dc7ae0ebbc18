package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/me/kickstart/internal/logging"
	"github.com/me/kickstart/pkg/model"
)

func sleeper(id string, d time.Duration) *model.TaskDescriptor {
	return &model.TaskDescriptor{
		ID:      id,
		Tier:    model.TierCritical,
		Timeout: 5 * time.Second,
		Action: func(ctx context.Context) error {
			time.Sleep(d)
			return nil
		},
	}
}

func TestBatchResultsInRegistrationOrder(t *testing.T) {
	// The slowest task is registered first; completion order is reversed
	// but result order must follow registration.
	wave := []*model.TaskDescriptor{
		sleeper("slow", 60*time.Millisecond),
		sleeper("mid", 30*time.Millisecond),
		sleeper("fast", 5*time.Millisecond),
	}

	b := NewBatch(3, logging.Nop())
	results := b.Run(context.Background(), wave)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, want := range []string{"slow", "mid", "fast"} {
		if results[i].TaskID != want {
			t.Errorf("results[%d] = %s, want %s", i, results[i].TaskID, want)
		}
	}
}

func TestBatchNoFailFast(t *testing.T) {
	var ran atomic.Int32
	fail := &model.TaskDescriptor{
		ID: "fail", Tier: model.TierCritical, Timeout: time.Second,
		Action: func(ctx context.Context) error { return errors.New("nope") },
	}
	ok := &model.TaskDescriptor{
		ID: "ok", Tier: model.TierCritical, Timeout: time.Second,
		Action: func(ctx context.Context) error {
			time.Sleep(20 * time.Millisecond)
			ran.Add(1)
			return nil
		},
	}

	results := NewBatch(2, logging.Nop()).Run(context.Background(), []*model.TaskDescriptor{fail, ok})

	if results[0].Outcome != model.OutcomeFailure {
		t.Errorf("fail outcome = %s", results[0].Outcome)
	}
	if results[1].Outcome != model.OutcomeSuccess {
		t.Errorf("ok outcome = %s; a sibling failure must not cancel it", results[1].Outcome)
	}
	if ran.Load() != 1 {
		t.Error("sibling task did not run to completion")
	}
}

func TestBatchBoundedConcurrency(t *testing.T) {
	const limit = 2
	var inFlight, peak atomic.Int32

	var wave []*model.TaskDescriptor
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		wave = append(wave, &model.TaskDescriptor{
			ID: id, Tier: model.TierBackground, Timeout: time.Second,
			Action: func(ctx context.Context) error {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(15 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			},
		})
	}

	NewBatch(limit, logging.Nop()).Run(context.Background(), wave)

	if p := peak.Load(); p > limit {
		t.Errorf("peak concurrency %d exceeded limit %d", p, limit)
	}
}

func TestBatchTimeoutDoesNotDelaySiblings(t *testing.T) {
	wave := []*model.TaskDescriptor{
		{
			ID: "stuck", Tier: model.TierBackground, Timeout: 40 * time.Millisecond,
			Action: func(ctx context.Context) error { select {} },
		},
		sleeper("quick", 5*time.Millisecond),
	}

	start := time.Now()
	results := NewBatch(2, logging.Nop()).Run(context.Background(), wave)
	elapsed := time.Since(start)

	if results[0].Outcome != model.OutcomeTimedOut {
		t.Errorf("stuck outcome = %s", results[0].Outcome)
	}
	if results[1].Outcome != model.OutcomeSuccess {
		t.Errorf("quick outcome = %s", results[1].Outcome)
	}
	if elapsed > 2*time.Second {
		t.Errorf("wave took %s; should settle near the 40ms budget", elapsed)
	}
}

func TestBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wave := []*model.TaskDescriptor{sleeper("a", time.Millisecond), sleeper("b", time.Millisecond)}
	results := NewBatch(1, logging.Nop()).Run(ctx, wave)

	if len(results) != 2 {
		t.Fatalf("got %d results, want every task accounted for", len(results))
	}
	for _, r := range results {
		if r.TaskID == "" {
			t.Error("cancelled wave left a hole in the results")
		}
	}
}

func TestBatchEmptyWave(t *testing.T) {
	results := NewBatch(2, logging.Nop()).Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("empty wave produced %d results", len(results))
	}
}
