// Package idle provides the host-idle signal the scheduler uses to defer
// Important-tier work until the host environment has no pending
// user-interaction work.
package idle

import "time"

// Notifier defers a callback until the host reports it is idle. The
// callback is invoked exactly once, on the notifier's own goroutine.
type Notifier interface {
	RunWhenIdle(fn func())
}

// TimerNotifier approximates an idle signal with a short quiet delay: once
// the blocking portion of startup has returned, a host that has scheduled
// nothing for the delay window is treated as idle. Hosts with a real idle
// primitive (UI event loops, display servers) should wrap it in their own
// Notifier instead.
type TimerNotifier struct {
	// Delay is the quiet window to wait before firing. Zero means the
	// 50ms default.
	Delay time.Duration
}

// RunWhenIdle fires fn after the quiet delay elapses.
func (n TimerNotifier) RunWhenIdle(fn func()) {
	delay := n.Delay
	if delay <= 0 {
		delay = 50 * time.Millisecond
	}
	go func() {
		time.Sleep(delay)
		fn()
	}()
}

// Immediate treats the host as always idle. Used in tests and by callers
// that invoke Start from a context with no foreground work to protect.
type Immediate struct{}

// RunWhenIdle fires fn right away on a fresh goroutine.
func (Immediate) RunWhenIdle(fn func()) {
	go fn()
}
