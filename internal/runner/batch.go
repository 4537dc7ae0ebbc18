package runner

import (
	"context"
	"log/slog"
	"sync"

	"github.com/me/kickstart/pkg/model"
)

// Batch runs a wave of mutually-independent tasks with bounded concurrency.
type Batch struct {
	// MaxConcurrency caps the number of simultaneously running tasks.
	// Zero or negative means unlimited.
	MaxConcurrency int

	logger *slog.Logger
}

// NewBatch creates a batch runner for the given concurrency bound.
func NewBatch(maxConcurrency int, logger *slog.Logger) *Batch {
	return &Batch{
		MaxConcurrency: maxConcurrency,
		logger:         logger.With("component", "runner"),
	}
}

// Run launches every task in the wave, at most MaxConcurrency at a time,
// and waits for all of them to settle. One task's failure or timeout never
// cancels its siblings. Results are returned in wave (registration) order,
// not completion order, for deterministic metrics.
func (b *Batch) Run(ctx context.Context, wave []*model.TaskDescriptor) []model.TaskResult {
	results := make([]model.TaskResult, len(wave))
	if len(wave) == 0 {
		return results
	}

	sem := newSemaphore(b.MaxConcurrency)
	var wg sync.WaitGroup

	for i, task := range wave {
		if !sem.acquire(ctx) {
			// Context cancelled: record the remaining tasks as failed
			// rather than leaving holes in the wave's results.
			for j := i; j < len(wave); j++ {
				results[j] = model.TaskResult{
					TaskID:       wave[j].ID,
					Tier:         wave[j].Tier,
					Outcome:      model.OutcomeFailure,
					ErrorMessage: ctx.Err().Error(),
				}
			}
			break
		}

		wg.Add(1)
		go func(i int, task *model.TaskDescriptor) {
			defer wg.Done()
			defer sem.release()

			b.logger.Debug("task starting", "task_id", task.ID, "tier", task.Tier, "timeout", task.Timeout)
			res := RunTask(ctx, task)
			results[i] = res

			switch res.Outcome {
			case model.OutcomeSuccess:
				b.logger.Debug("task settled", "task_id", task.ID, "duration", res.Duration)
			default:
				b.logger.Warn("task settled", "task_id", task.ID, "outcome", res.Outcome, "error", res.ErrorMessage)
			}
		}(i, task)
	}

	wg.Wait()
	return results
}
