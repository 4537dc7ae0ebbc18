// Package scheduler orchestrates the bootstrap sequence: it owns the task
// registry, resolves dependencies into waves, runs the Critical tier
// synchronously, defers Important and Background work past the interactive
// transition, and records and persists the run summary.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/me/kickstart/internal/history"
	"github.com/me/kickstart/internal/idle"
	"github.com/me/kickstart/internal/logging"
	"github.com/me/kickstart/internal/metrics"
	"github.com/me/kickstart/internal/resolver"
	"github.com/me/kickstart/internal/runner"
	"github.com/me/kickstart/pkg/model"
)

// Config holds scheduler tuning knobs.
type Config struct {
	// Per-tier concurrency bounds for a single wave.
	CriticalConcurrency   int
	ImportantConcurrency  int
	BackgroundConcurrency int

	// PaceDelay is inserted between successive Background waves so they do
	// not contend with residual foreground work.
	PaceDelay time.Duration

	// Tuner adapts timeout budgets from the previous run's summary.
	Tuner metrics.Tuner
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		CriticalConcurrency:   model.TierCritical.MaxConcurrency(),
		ImportantConcurrency:  model.TierImportant.MaxConcurrency(),
		BackgroundConcurrency: model.TierBackground.MaxConcurrency(),
		PaceDelay:             100 * time.Millisecond,
		Tuner:                 metrics.DefaultTuner(),
	}
}

// PhaseInfo describes one task's progress for diagnostics.
type PhaseInfo struct {
	Completed bool          `json:"completed"`
	Outcome   model.Outcome `json:"outcome,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// Scheduler drives a single bootstrap run per process lifetime. Construct
// one with New at the application's entry point and hand it to anything
// that needs to wait on startup; there is no ambient singleton.
type Scheduler struct {
	cfg      Config
	store    history.Store
	notifier idle.Notifier
	logger   *slog.Logger

	mu            sync.Mutex
	state         model.BootstrapState
	tasks         []*model.TaskDescriptor
	ids           map[string]bool
	recorder      *metrics.Recorder
	final         *model.RunSummary
	interactiveAt time.Time
	onInteractive func()

	interactiveCh chan struct{}
	doneCh        chan struct{}
}

// New creates a scheduler with the given collaborators. A nil store keeps
// history in memory only (tuning starts cold each run), a nil notifier
// falls back to the quiet-delay timer, and a nil logger discards output.
func New(cfg Config, store history.Store, notifier idle.Notifier, logger *slog.Logger) *Scheduler {
	if store == nil {
		store = history.NewMemoryStore()
	}
	if notifier == nil {
		notifier = idle.TimerNotifier{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Scheduler{
		cfg:           cfg,
		store:         store,
		notifier:      notifier,
		logger:        logger.With("component", "bootstrap"),
		state:         model.StateNotStarted,
		ids:           make(map[string]bool),
		interactiveCh: make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Register appends a task descriptor to the registry. Registration is pure
// append: no execution happens here. It fails with ErrRegistryClosed once
// Start has been called and with DuplicateTaskIDError on an ID collision.
func (s *Scheduler) Register(d model.TaskDescriptor) error {
	if d.ID == "" {
		return errors.New("task id must not be empty")
	}
	if !d.Tier.Valid() {
		return fmt.Errorf("task %s: unknown tier %q", d.ID, d.Tier)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != model.StateNotStarted {
		return model.ErrRegistryClosed
	}
	if s.ids[d.ID] {
		return &model.DuplicateTaskIDError{ID: d.ID}
	}

	s.ids[d.ID] = true
	s.tasks = append(s.tasks, &d)
	return nil
}

// OnInteractive sets a callback fired exactly once when the Critical tier
// settles. Must be called before Start; later calls are ignored.
func (s *Scheduler) OnInteractive(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == model.StateNotStarted {
		s.onInteractive = fn
	}
}

// Start runs the bootstrap. It blocks until every Critical wave has
// settled, flips the scheduler to Interactive, then continues Important and
// Background work off the caller's goroutine. The returned summary covers
// the blocking portion; task failures never surface as errors — inspect
// CriticalFailures on the summary to degrade gracefully.
//
// Calling Start again is a no-op that returns the current summary.
func (s *Scheduler) Start(ctx context.Context) *model.RunSummary {
	s.mu.Lock()
	if s.state != model.StateNotStarted {
		s.mu.Unlock()
		s.logger.Debug("start called again, ignoring")
		return s.CurrentSummary()
	}
	s.setStateLocked(model.StateCriticalRunning)
	s.recorder = metrics.NewRecorder()
	tasks := s.tasks
	s.mu.Unlock()

	s.logger.Info("bootstrap starting", "tasks", len(tasks))
	s.tune(ctx, tasks)

	critical := byTier(tasks, model.TierCritical)
	important := byTier(tasks, model.TierImportant)
	background := byTier(tasks, model.TierBackground)

	s.runTier(ctx, model.TierCritical, critical, s.cfg.CriticalConcurrency, 0)
	s.recorder.MarkCriticalDone()

	// The Interactive transition happens exactly once, regardless of how
	// many Critical tasks failed: the application must never stay stuck
	// behind a failed bootstrap.
	s.mu.Lock()
	s.setStateLocked(model.StateInteractive)
	s.interactiveAt = time.Now()
	cb := s.onInteractive
	s.mu.Unlock()
	close(s.interactiveCh)
	if cb != nil {
		cb()
	}

	summary := s.recorder.Snapshot()
	s.logger.Info("interactive",
		"critical_duration", summary.CriticalDuration,
		"critical_failures", len(summary.CriticalFailures()))

	s.notifier.RunWhenIdle(func() {
		s.runDeferred(ctx, important, background)
	})

	return summary
}

// runDeferred executes the Important and Background tiers after the host
// reports idle, then finalizes and persists the run summary.
func (s *Scheduler) runDeferred(ctx context.Context, important, background []*model.TaskDescriptor) {
	s.mu.Lock()
	s.setStateLocked(model.StateBackgroundRunning)
	s.mu.Unlock()

	s.runTier(ctx, model.TierImportant, important, s.cfg.ImportantConcurrency, 0)
	s.runTier(ctx, model.TierBackground, background, s.cfg.BackgroundConcurrency, s.cfg.PaceDelay)

	final := s.recorder.Finalize()
	if err := history.SaveSummary(ctx, s.store, final); err != nil {
		s.logger.Warn("persist run summary", "error", err)
	}

	s.mu.Lock()
	s.final = final
	s.setStateLocked(model.StateComplete)
	s.mu.Unlock()
	close(s.doneCh)

	s.logger.Info("bootstrap complete",
		"total_duration", final.TotalDuration,
		"completed", final.CompletedCount,
		"failed", final.FailedCount)
}

// runTier resolves one tier's tasks into waves and runs them strictly in
// sequence, pausing paceDelay between waves when requested.
func (s *Scheduler) runTier(ctx context.Context, tier model.Tier, tasks []*model.TaskDescriptor, concurrency int, paceDelay time.Duration) {
	if len(tasks) == 0 {
		return
	}

	waves, err := resolver.Waves(tasks)
	var cycleErr *model.CycleError
	if errors.As(err, &cycleErr) {
		// Diagnostic only: the partition is still complete and the
		// entangled tasks run best-effort in the final wave.
		s.logger.Warn("dependency cycle detected", "tier", tier, "tasks", cycleErr.TaskIDs)
	}

	batch := runner.NewBatch(concurrency, s.logger)
	for i, wave := range waves {
		if ctx.Err() != nil {
			s.logger.Warn("context cancelled, abandoning remaining waves", "tier", tier, "wave", i)
			return
		}
		if i > 0 && paceDelay > 0 {
			time.Sleep(paceDelay)
		}

		s.logger.Debug("wave starting", "tier", tier, "wave", i, "tasks", len(wave))
		s.recorder.Record(batch.Run(ctx, wave))
	}
}

// tune shrinks timeout budgets when the previous persisted run overshot
// the target duration.
func (s *Scheduler) tune(ctx context.Context, tasks []*model.TaskDescriptor) {
	previous, err := history.LoadSummary(ctx, s.store)
	if err != nil {
		s.logger.Warn("load previous run summary", "error", err)
		return
	}
	if s.cfg.Tuner.Adjust(tasks, previous) {
		s.logger.Info("timeout budgets tightened",
			"previous_total", previous.TotalDuration,
			"target", s.cfg.Tuner.Target,
			"factor", s.cfg.Tuner.Factor)
	}
}

// State returns the current bootstrap state.
func (s *Scheduler) State() model.BootstrapState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsComplete reports whether every tier has settled.
func (s *Scheduler) IsComplete() bool {
	return s.State().IsTerminal()
}

// InteractiveSince returns when the Critical tier settled, or the zero time
// if the transition has not happened yet.
func (s *Scheduler) InteractiveSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interactiveAt
}

// WaitForInteractive blocks until the Interactive transition fires or the
// timeout elapses. Waiters are woken by a channel close, not by polling.
func (s *Scheduler) WaitForInteractive(timeout time.Duration) bool {
	return wait(s.interactiveCh, timeout)
}

// WaitForCompletion blocks until the bootstrap reaches Complete or the
// timeout elapses. A non-positive timeout waits indefinitely.
func (s *Scheduler) WaitForCompletion(timeout time.Duration) bool {
	return wait(s.doneCh, timeout)
}

func wait(ch <-chan struct{}, timeout time.Duration) bool {
	if timeout <= 0 {
		<-ch
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}

// CurrentSummary returns the run summary. Safe to call in any state: before
// Complete it reflects the partial data recorded so far, after Complete it
// is the finalized, persisted summary.
func (s *Scheduler) CurrentSummary() *model.RunSummary {
	s.mu.Lock()
	final, recorder := s.final, s.recorder
	s.mu.Unlock()

	if final != nil {
		return final
	}
	if recorder != nil {
		return recorder.Snapshot()
	}
	return &model.RunSummary{}
}

// PhaseStatus returns per-task progress keyed by task ID, for diagnostics
// and tests. Registered tasks that have not settled yet appear with
// Completed false.
func (s *Scheduler) PhaseStatus() map[string]PhaseInfo {
	s.mu.Lock()
	tasks := s.tasks
	s.mu.Unlock()

	status := make(map[string]PhaseInfo, len(tasks))
	for _, t := range tasks {
		status[t.ID] = PhaseInfo{}
	}
	for _, r := range s.CurrentSummary().Results {
		status[r.TaskID] = PhaseInfo{
			Completed: true,
			Outcome:   r.Outcome,
			Duration:  r.Duration,
		}
	}
	return status
}

// setStateLocked advances the state machine. Callers hold s.mu.
func (s *Scheduler) setStateLocked(next model.BootstrapState) {
	if !s.state.CanTransitionTo(next) {
		s.logger.Error("invalid state transition", "from", s.state, "to", next)
		return
	}
	s.logger.Debug("state transition", "from", s.state, "to", next)
	s.state = next
}

// byTier filters tasks to one tier, preserving registration order.
func byTier(tasks []*model.TaskDescriptor, tier model.Tier) []*model.TaskDescriptor {
	var out []*model.TaskDescriptor
	for _, t := range tasks {
		if t.Tier == tier {
			out = append(out, t)
		}
	}
	return out
}
