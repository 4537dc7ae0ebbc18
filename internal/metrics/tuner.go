package metrics

import (
	"time"

	"github.com/me/kickstart/pkg/model"
)

// Tuner shrinks timeout budgets when the previous run overshot the target
// duration. It trades individual task slack for a better chance of hitting
// the target on a host that has historically been slow, rather than trying
// to diagnose why it was slow. This is the scheduler's only feedback loop.
type Tuner struct {
	// Target is the total run duration the bootstrap aims for.
	Target time.Duration

	// Factor scales every timeout budget when the previous run exceeded
	// Target. Expected in (0, 1).
	Factor float64

	// Floor is the minimum a timeout can be shrunk to.
	Floor time.Duration
}

// DefaultTuner returns the standard tuning policy: scale by 0.8 with a
// 100ms floor when the previous run took longer than 1.5s.
func DefaultTuner() Tuner {
	return Tuner{
		Target: 1500 * time.Millisecond,
		Factor: 0.8,
		Floor:  100 * time.Millisecond,
	}
}

// Adjust scales the timeout of every task in place when the previous run's
// total duration exceeded the target. Returns true if budgets were changed.
// A nil previous summary (first run, or lost history) is a no-op.
func (t Tuner) Adjust(tasks []*model.TaskDescriptor, previous *model.RunSummary) bool {
	if previous == nil || previous.TotalDuration <= t.Target {
		return false
	}
	if t.Factor <= 0 || t.Factor >= 1 {
		return false
	}

	for _, task := range tasks {
		if task.Timeout <= 0 {
			// Unlimited budgets stay unlimited.
			continue
		}
		scaled := time.Duration(float64(task.Timeout) * t.Factor)
		if scaled < t.Floor {
			scaled = t.Floor
		}
		task.Timeout = scaled
	}
	return true
}
