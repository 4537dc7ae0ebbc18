package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRegistryClosed is returned when a task is registered after Start was
// called. The registry is read-only once execution begins.
var ErrRegistryClosed = errors.New("task registry is closed (bootstrap already started)")

// DuplicateTaskIDError is returned when a task is registered with an ID
// already present in the registry.
type DuplicateTaskIDError struct {
	ID string
}

func (e *DuplicateTaskIDError) Error() string {
	return fmt.Sprintf("duplicate task id %q", e.ID)
}

// CycleError is a diagnostic reported when dependency resolution finds a
// cycle. It is not fatal: the resolver still produces a complete wave
// partition by placing the entangled tasks into a single final wave.
type CycleError struct {
	TaskIDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected among tasks: %s", strings.Join(e.TaskIDs, ", "))
}
