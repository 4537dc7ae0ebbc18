// Package runner executes bootstrap tasks: a timeout-isolated executor for a
// single task and a bounded-concurrency batch runner for a whole wave.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/me/kickstart/pkg/model"
)

// RunTask runs one task's action racing against its timeout budget and
// converts whichever settles first into a TaskResult. It never panics and
// never returns an error: action panics and failures become Failure results,
// an expired budget becomes TimedOut with duration equal to the budget.
//
// A timed-out action is abandoned, not forcibly cancelled — its context is
// cancelled so cooperative actions can stop, but an action that keeps
// running does so in the background and its eventual outcome is discarded.
func RunTask(ctx context.Context, task *model.TaskDescriptor) model.TaskResult {
	start := time.Now()

	actionCtx := ctx
	var cancel context.CancelFunc
	if task.Timeout > 0 {
		actionCtx, cancel = context.WithTimeout(ctx, task.Timeout)
	} else {
		actionCtx, cancel = context.WithCancel(ctx)
	}

	// Buffered so a late-settling action never leaks its goroutine waiting
	// on a send nobody receives.
	done := make(chan error, 1)
	go func() {
		defer cancel()
		done <- runAction(actionCtx, task.Action)
	}()

	var timeout <-chan time.Time
	if task.Timeout > 0 {
		timer := time.NewTimer(task.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		elapsed := time.Since(start)
		if err != nil {
			return model.TaskResult{
				TaskID:       task.ID,
				Tier:         task.Tier,
				Outcome:      model.OutcomeFailure,
				Duration:     elapsed,
				ErrorMessage: err.Error(),
			}
		}
		return model.TaskResult{
			TaskID:   task.ID,
			Tier:     task.Tier,
			Outcome:  model.OutcomeSuccess,
			Duration: elapsed,
		}
	case <-timeout:
		return model.TaskResult{
			TaskID:       task.ID,
			Tier:         task.Tier,
			Outcome:      model.OutcomeTimedOut,
			Duration:     task.Timeout,
			ErrorMessage: fmt.Sprintf("exceeded timeout budget of %s", task.Timeout),
		}
	}
}

// runAction invokes the action, converting a panic into an error so one
// misbehaving task can never take down the scheduler.
func runAction(ctx context.Context, action model.Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	if action == nil {
		return nil
	}
	return action(ctx)
}
