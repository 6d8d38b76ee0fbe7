package session

import (
	"time"
)

// Scheduler defers a function by a delay and returns a cancel handle. The
// engine routes its auto-advance/auto-submit timers through this so tests
// can fire them deterministically.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

// NewTimerScheduler returns the production scheduler backed by time.AfterFunc.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(delay time.Duration, fn func()) func() {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}
