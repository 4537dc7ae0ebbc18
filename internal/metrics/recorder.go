// Package metrics accumulates per-task results into a run summary and
// adapts timeout budgets from the previous run's persisted summary.
package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/me/kickstart/pkg/model"
)

// Recorder accumulates TaskResults into an in-progress RunSummary as each
// wave settles. It is append-only: results are never rewritten, and a
// finalized summary is never mutated again.
type Recorder struct {
	mu        sync.Mutex
	summary   model.RunSummary
	started   time.Time
	finalized bool
}

// NewRecorder starts a recorder for a fresh bootstrap run.
func NewRecorder() *Recorder {
	return &Recorder{
		summary: model.RunSummary{
			RunID:     "run_" + uuid.New().String(),
			Timestamp: time.Now().UTC(),
		},
		started: time.Now(),
	}
}

// Record appends the results of a settled wave.
// Results recorded after Finalize are dropped.
func (r *Recorder) Record(results []model.TaskResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}

	for _, res := range results {
		r.summary.Results = append(r.summary.Results, res)
		if res.Outcome == model.OutcomeSuccess {
			r.summary.CompletedCount++
		} else {
			r.summary.FailedCount++
		}
	}
}

// MarkCriticalDone stamps the blocking portion of the run. Called exactly
// once, when the Critical tier settles.
func (r *Recorder) MarkCriticalDone() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.summary.CriticalDuration == 0 {
		r.summary.CriticalDuration = time.Since(r.started)
	}
}

// Finalize stamps the total duration and freezes the summary. Subsequent
// calls return the same summary unchanged.
func (r *Recorder) Finalize() *model.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.finalized {
		r.summary.TotalDuration = time.Since(r.started)
		r.finalized = true
	}
	return r.copyLocked()
}

// Snapshot returns a copy of the in-progress summary. Safe at any point;
// before Finalize the total duration reflects elapsed time so far.
func (r *Recorder) Snapshot() *model.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.copyLocked()
	if !r.finalized {
		out.TotalDuration = time.Since(r.started)
	}
	return out
}

func (r *Recorder) copyLocked() *model.RunSummary {
	out := r.summary
	out.Results = make([]model.TaskResult, len(r.summary.Results))
	copy(out.Results, r.summary.Results)
	return &out
}
