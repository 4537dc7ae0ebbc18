package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/me/kickstart/pkg/model"
)

func TestRunTaskSuccess(t *testing.T) {
	task := &model.TaskDescriptor{
		ID:      "ok",
		Tier:    model.TierCritical,
		Timeout: time.Second,
		Action: func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			return nil
		},
	}

	res := RunTask(context.Background(), task)
	if res.Outcome != model.OutcomeSuccess {
		t.Fatalf("outcome = %s, want SUCCESS (%s)", res.Outcome, res.ErrorMessage)
	}
	if res.Duration < 10*time.Millisecond {
		t.Errorf("duration %s shorter than the action's sleep", res.Duration)
	}
	if res.TaskID != "ok" || res.Tier != model.TierCritical {
		t.Errorf("result identity mismatch: %+v", res)
	}
}

func TestRunTaskFailure(t *testing.T) {
	task := &model.TaskDescriptor{
		ID:      "boom",
		Tier:    model.TierImportant,
		Timeout: time.Second,
		Action: func(ctx context.Context) error {
			return errors.New("disk full")
		},
	}

	res := RunTask(context.Background(), task)
	if res.Outcome != model.OutcomeFailure {
		t.Fatalf("outcome = %s, want FAILURE", res.Outcome)
	}
	if res.ErrorMessage != "disk full" {
		t.Errorf("error message = %q", res.ErrorMessage)
	}
}

func TestRunTaskTimeout(t *testing.T) {
	task := &model.TaskDescriptor{
		ID:      "hang",
		Tier:    model.TierBackground,
		Timeout: 50 * time.Millisecond,
		Action: func(ctx context.Context) error {
			// Never resolves on its own.
			select {}
		},
	}

	start := time.Now()
	res := RunTask(context.Background(), task)
	elapsed := time.Since(start)

	if res.Outcome != model.OutcomeTimedOut {
		t.Fatalf("outcome = %s, want TIMED_OUT", res.Outcome)
	}
	if res.Duration != 50*time.Millisecond {
		t.Errorf("duration = %s, want the timeout budget", res.Duration)
	}
	if elapsed > time.Second {
		t.Errorf("RunTask took %s, should settle near the 50ms budget", elapsed)
	}
}

func TestRunTaskPanicContained(t *testing.T) {
	task := &model.TaskDescriptor{
		ID:      "panicky",
		Tier:    model.TierImportant,
		Timeout: time.Second,
		Action: func(ctx context.Context) error {
			panic("unexpected nil")
		},
	}

	res := RunTask(context.Background(), task)
	if res.Outcome != model.OutcomeFailure {
		t.Fatalf("outcome = %s, want FAILURE", res.Outcome)
	}
	if res.ErrorMessage == "" {
		t.Error("panic message should be captured")
	}
}

func TestRunTaskNilActionSucceeds(t *testing.T) {
	res := RunTask(context.Background(), &model.TaskDescriptor{ID: "noop", Tier: model.TierBackground})
	if res.Outcome != model.OutcomeSuccess {
		t.Errorf("outcome = %s, want SUCCESS", res.Outcome)
	}
}

func TestRunTaskLateResultDiscarded(t *testing.T) {
	released := make(chan struct{})
	task := &model.TaskDescriptor{
		ID:      "slow",
		Tier:    model.TierBackground,
		Timeout: 20 * time.Millisecond,
		Action: func(ctx context.Context) error {
			<-released
			return errors.New("late failure that must not surface")
		},
	}

	res := RunTask(context.Background(), task)
	if res.Outcome != model.OutcomeTimedOut {
		t.Fatalf("outcome = %s, want TIMED_OUT", res.Outcome)
	}

	// Let the abandoned action finish; the already-created result is
	// immutable so nothing to assert beyond not blocking or panicking.
	close(released)
	time.Sleep(10 * time.Millisecond)
	if res.Outcome != model.OutcomeTimedOut {
		t.Error("result mutated after late action settled")
	}
}
