package alert

import (
	"math"
	"sync"
	"time"
)

const (
	// DefaultDeltaThreshold is the minimum change from the last announced
	// value before a routine announcement fires again.
	DefaultDeltaThreshold = 1.0
	// DefaultMinPeriod is the minimum time between routine announcements.
	DefaultMinPeriod = 15 * time.Second
)

// Throttle rate-limits routine value announcements by value delta and
// elapsed time. Target-reached alerts bypass it entirely.
type Throttle struct {
	mu             sync.Mutex
	lastValue      float64
	lastAt         time.Time
	announced      bool
	DeltaThreshold float64
	MinPeriod      time.Duration
}

// NewThrottle creates a throttle with the given policy. Zero values fall
// back to the defaults.
func NewThrottle(delta float64, period time.Duration) *Throttle {
	if delta <= 0 {
		delta = DefaultDeltaThreshold
	}
	if period <= 0 {
		period = DefaultMinPeriod
	}
	return &Throttle{DeltaThreshold: delta, MinPeriod: period}
}

// ShouldAnnounce reports whether a routine announcement for value is due
// at now. The first-ever announcement always fires; afterwards both the
// value delta and the minimum period must be satisfied.
func (t *Throttle) ShouldAnnounce(value float64, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.announced {
		return true
	}
	if math.Abs(value-t.lastValue) < t.DeltaThreshold {
		return false
	}
	return now.Sub(t.lastAt) >= t.MinPeriod
}

// Commit records that an announcement for value was actually dispatched.
// Only dispatched announcements move the throttle state.
func (t *Throttle) Commit(value float64, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastValue = value
	t.lastAt = now
	t.announced = true
}
