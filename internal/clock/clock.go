// Package clock abstracts wall-clock reads and sleeps so that SLA rules
// and the store's retry loop can be driven deterministically in tests.
package clock

import "time"

// Clock is the subset of the time package used by the tracker.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
