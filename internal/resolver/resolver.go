// Package resolver turns a set of task descriptors into an ordered list of
// execution waves honoring dependency constraints. It uses Kahn-style
// layering: wave k contains every task whose dependencies are all satisfied
// by tasks in strictly earlier waves.
package resolver

import (
	"github.com/me/kickstart/pkg/model"
)

// Waves partitions tasks into dependency-ordered waves. Tasks within a wave
// are mutually independent by construction and may run concurrently.
//
// Dependencies referencing tasks outside the input set are treated as
// already satisfied: earlier tiers run to completion (or explicit failure)
// before later tiers begin, so a cross-tier reference is resolved by the
// time this tier executes.
//
// If the graph contains a cycle, every still-unassigned task is placed into
// a single final wave and a *model.CycleError diagnostic is returned next to
// the complete partition. Forward progress wins over strict correctness: a
// stalled bootstrap is worse than a best-effort one. The returned waves
// always cover every input task exactly once, even on error.
func Waves(tasks []*model.TaskDescriptor) ([][]*model.TaskDescriptor, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	inSet := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		inSet[t.ID] = true
	}

	// deps[id] holds the unresolved in-set dependencies of id, deduplicated.
	// dependents is the reverse edge map used to decrement in-degrees.
	deps := make(map[string]map[string]bool, len(tasks))
	dependents := make(map[string][]string)
	for _, t := range tasks {
		deps[t.ID] = make(map[string]bool)
		for _, dep := range t.DependsOn {
			if dep == t.ID || !inSet[dep] || deps[t.ID][dep] {
				continue
			}
			deps[t.ID][dep] = true
			dependents[dep] = append(dependents[dep], t.ID)
		}
	}

	var waves [][]*model.TaskDescriptor
	assigned := make(map[string]bool, len(tasks))
	remaining := len(tasks)

	for remaining > 0 {
		// Registration order within the wave keeps metrics deterministic.
		var wave []*model.TaskDescriptor
		for _, t := range tasks {
			if !assigned[t.ID] && len(deps[t.ID]) == 0 {
				wave = append(wave, t)
			}
		}

		if len(wave) == 0 {
			// Cycle: no task has in-degree zero but tasks remain. Dump the
			// rest into one final wave and report the diagnostic.
			var stuck []*model.TaskDescriptor
			var stuckIDs []string
			for _, t := range tasks {
				if !assigned[t.ID] {
					stuck = append(stuck, t)
					stuckIDs = append(stuckIDs, t.ID)
				}
			}
			waves = append(waves, stuck)
			return waves, &model.CycleError{TaskIDs: stuckIDs}
		}

		for _, t := range wave {
			assigned[t.ID] = true
			remaining--
			for _, dependent := range dependents[t.ID] {
				delete(deps[dependent], t.ID)
			}
		}
		waves = append(waves, wave)
	}

	return waves, nil
}

// WaveIndex returns a lookup from task ID to the index of the wave the task
// was assigned to. Useful for diagnostics and ordering assertions.
func WaveIndex(waves [][]*model.TaskDescriptor) map[string]int {
	idx := make(map[string]int)
	for i, wave := range waves {
		for _, t := range wave {
			idx[t.ID] = i
		}
	}
	return idx
}
