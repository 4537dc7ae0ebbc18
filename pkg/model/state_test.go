package model

import "testing"

func TestBootstrapStateTransitions(t *testing.T) {
	tests := []struct {
		from, to BootstrapState
		want     bool
	}{
		{StateNotStarted, StateCriticalRunning, true},
		{StateCriticalRunning, StateInteractive, true},
		{StateInteractive, StateBackgroundRunning, true},
		{StateBackgroundRunning, StateComplete, true},

		// No skipping or backward moves.
		{StateNotStarted, StateInteractive, false},
		{StateInteractive, StateCriticalRunning, false},
		{StateComplete, StateNotStarted, false},
		{StateComplete, StateComplete, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBootstrapStateIsTerminal(t *testing.T) {
	for _, s := range []BootstrapState{StateNotStarted, StateCriticalRunning, StateInteractive, StateBackgroundRunning} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if !StateComplete.IsTerminal() {
		t.Error("COMPLETE should be terminal")
	}
}

func TestCriticalFailures(t *testing.T) {
	sum := &RunSummary{
		Results: []TaskResult{
			{TaskID: "db", Tier: TierCritical, Outcome: OutcomeSuccess},
			{TaskID: "session", Tier: TierCritical, Outcome: OutcomeFailure, ErrorMessage: "token expired"},
			{TaskID: "fonts", Tier: TierCritical, Outcome: OutcomeTimedOut},
			{TaskID: "prefetch", Tier: TierBackground, Outcome: OutcomeFailure},
		},
	}

	failed := sum.CriticalFailures()
	if len(failed) != 2 {
		t.Fatalf("CriticalFailures = %d results, want 2", len(failed))
	}
	if failed[0].TaskID != "session" || failed[1].TaskID != "fonts" {
		t.Errorf("unexpected failure order: %v", failed)
	}
}

func TestTierMaxConcurrency(t *testing.T) {
	if TierImportant.MaxConcurrency() <= TierBackground.MaxConcurrency() {
		t.Error("Important tier should have higher concurrency than Background")
	}
	if TierCritical.MaxConcurrency() < TierImportant.MaxConcurrency() {
		t.Error("Critical tier should not have lower concurrency than Important")
	}
}
