package model

import "time"

// Outcome classifies how a single task execution settled.
type Outcome string

const (
	OutcomeSuccess  Outcome = "SUCCESS"
	OutcomeFailure  Outcome = "FAILURE"
	OutcomeTimedOut Outcome = "TIMED_OUT"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// TaskResult records how one task execution attempt settled. Exactly one
// TaskResult is produced per attempt; it is immutable once created. A late
// result from an action that already timed out is discarded, never merged.
type TaskResult struct {
	TaskID       string        `json:"task_id"`
	Tier         Tier          `json:"tier"`
	Outcome      Outcome       `json:"outcome"`
	Duration     time.Duration `json:"duration_ns"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Millis returns the task duration in whole milliseconds.
func (r TaskResult) Millis() int64 {
	return r.Duration.Milliseconds()
}

// RunSummary aggregates the timings and outcomes of one bootstrap run.
// One summary is produced per process lifetime; it is persisted when the
// Background tier settles and read back by the next run's tuner.
type RunSummary struct {
	RunID            string        `json:"run_id"`
	Timestamp        time.Time     `json:"timestamp"`
	TotalDuration    time.Duration `json:"total_duration_ns"`
	CriticalDuration time.Duration `json:"critical_duration_ns"`
	CompletedCount   int           `json:"completed_count"`
	FailedCount      int           `json:"failed_count"`
	Results          []TaskResult  `json:"results"`
}

// CriticalFailures returns the results of Critical-tier tasks that did not
// succeed. This is the view callers inspect after Start returns to decide
// whether to degrade the user experience.
func (s *RunSummary) CriticalFailures() []TaskResult {
	var failed []TaskResult
	for _, r := range s.Results {
		if r.Tier == TierCritical && r.Outcome != OutcomeSuccess {
			failed = append(failed, r)
		}
	}
	return failed
}

// Result returns the result recorded for the given task ID, if any.
func (s *RunSummary) Result(taskID string) (TaskResult, bool) {
	for _, r := range s.Results {
		if r.TaskID == taskID {
			return r, true
		}
	}
	return TaskResult{}, false
}
