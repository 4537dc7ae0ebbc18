package model

import (
	"context"
	"time"
)

// Tier determines the scheduling policy applied to a task: Critical tasks
// block startup, Important tasks run deferred once the host is idle, and
// Background tasks run last with pacing between waves. Tier never affects
// ordering within a wave.
type Tier string

const (
	TierCritical   Tier = "CRITICAL"
	TierImportant  Tier = "IMPORTANT"
	TierBackground Tier = "BACKGROUND"
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	return string(t)
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierCritical, TierImportant, TierBackground:
		return true
	}
	return false
}

// MaxConcurrency returns the default number of tasks from this tier that
// may run simultaneously within a wave.
func (t Tier) MaxConcurrency() int {
	switch t {
	case TierCritical:
		return 4
	case TierImportant:
		return 3
	default:
		return 2
	}
}

// Action is the opaque unit of initialization work a task performs. It is
// invoked at most once per bootstrap run. The context carries the task's
// timeout budget; actions should honor cancellation but are not required
// to — an overrunning action is abandoned, never forcibly stopped.
type Action func(ctx context.Context) error

// TaskDescriptor is the immutable definition of one bootstrap unit of work.
type TaskDescriptor struct {
	// ID uniquely identifies the task within a registry. It is stable
	// across runs and doubles as the dependency reference and metrics key.
	ID string

	// Tier selects the scheduling policy (see Tier).
	Tier Tier

	// Action performs the actual initialization work.
	Action Action

	// Timeout is the budget after which the action is considered failed
	// regardless of actual completion. Zero or negative means unlimited.
	Timeout time.Duration

	// DependsOn lists task IDs that must settle (successfully or not)
	// before this task may start. References to tasks in earlier tiers
	// are treated as already satisfied.
	DependsOn []string
}
