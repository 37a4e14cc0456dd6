package gesture

import "time"

// Timer is a cancellable one-shot timer handle.
type Timer interface {
	// Cancel stops the timer if it has not fired yet. Cancelling an
	// already-fired or already-cancelled timer is a no-op.
	Cancel()
}

// TimerService arms one-shot timers for the Engine. The callback may run on
// any goroutine; the Engine serializes re-entry itself. Tests substitute a
// manual implementation to drive timers deterministically.
type TimerService interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type clockTimers struct{}

// ClockTimers returns a TimerService backed by the runtime timer wheel.
func ClockTimers() TimerService { return clockTimers{} }

func (clockTimers) AfterFunc(d time.Duration, fn func()) Timer {
	return clockTimer{time.AfterFunc(d, fn)}
}

type clockTimer struct{ t *time.Timer }

func (c clockTimer) Cancel() { c.t.Stop() }
