package poller

import "time"

// Clock creates the recurring timer that drives a poller.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker the poller uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock returns a Clock backed by time.NewTicker.
func RealClock() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
