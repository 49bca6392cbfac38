// internal/app/clock.go
package app

import "time"

// Timer is a cancelable pending callback, as returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock supplies "observed now" timestamps and the undo timer. Injected so
// tests can drive time deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// SystemClock returns the wall-clock implementation of Clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
