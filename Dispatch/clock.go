package Dispatch

import "time"

// Clock abstracts timers so waterfall pacing can be driven by a fake
// clock in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// NewRealClock returns a Clock backed by the system timer.
func NewRealClock() Clock {
	return realClock{}
}
