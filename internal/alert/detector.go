// Package alert holds the target-crossing detector and the announcement
// throttle policy used by the sampling engine.
package alert

import (
	"strings"
	"sync"
)

// Direction is the monitored direction of temperature change.
type Direction string

const (
	Rising  Direction = "rising"
	Falling Direction = "falling"
)

// ParseDirection normalizes user input to a Direction. The second return
// is false for unrecognized input.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rising", "increases", "up":
		return Rising, true
	case "falling", "decreases", "down":
		return Falling, true
	}
	return Direction(s), false
}

// Reached reports whether the target has been crossed. Unknown directions
// report false rather than erroring; the monitor keeps running and the
// target simply never fires.
func Reached(dir Direction, target, current float64) bool {
	switch dir {
	case Rising:
		return current >= target
	case Falling:
		return current <= target
	}
	return false
}

// Latch is a one-way flag: TryFire returns true exactly once. It
// suppresses repeated firing of the one-time target alert within a
// session while the condition keeps holding.
type Latch struct {
	mu    sync.Mutex
	fired bool
}

// TryFire sets the latch and reports whether this call was the first.
func (l *Latch) TryFire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fired {
		return false
	}
	l.fired = true
	return true
}

// Fired reports whether the latch has been set.
func (l *Latch) Fired() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fired
}
