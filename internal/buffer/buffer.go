// Package buffer provides a mutex-guarded time-windowed store of
// temperature readings keyed by elapsed time since session start.
package buffer

import (
	"sync"
	"time"
)

const (
	// DefaultMinWindow is the span below which Snapshot returns everything.
	DefaultMinWindow = 100 * time.Second
	// DefaultMaxWindow is the retention span; older readings are evicted.
	DefaultMaxWindow = 7200 * time.Second
)

// Reading is a single temperature sample, immutable once created.
type Reading struct {
	Value   float64
	Elapsed time.Duration // since session start
}

// Buffer is a bounded time-series of readings. Appends and snapshots may
// run from different goroutines; a single mutex guards all access.
type Buffer struct {
	mu        sync.Mutex
	readings  []Reading
	minWindow time.Duration
	maxWindow time.Duration
}

// New creates a buffer with the given display and retention windows.
// Non-positive windows fall back to the defaults.
func New(minWindow, maxWindow time.Duration) *Buffer {
	if minWindow <= 0 {
		minWindow = DefaultMinWindow
	}
	if maxWindow <= 0 {
		maxWindow = DefaultMaxWindow
	}
	return &Buffer{
		minWindow: minWindow,
		maxWindow: maxWindow,
	}
}

// Append adds a reading. Once the stored span exceeds the retention
// window, readings older than latest-maxWindow are dropped from the front.
func (b *Buffer) Append(value float64, elapsed time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.readings = append(b.readings, Reading{Value: value, Elapsed: elapsed})

	span := elapsed - b.readings[0].Elapsed
	if span <= b.maxWindow {
		return
	}

	cutoff := elapsed - b.maxWindow
	idx := 0
	for i, r := range b.readings {
		if r.Elapsed >= cutoff {
			idx = i
			break
		}
	}
	if idx > 0 {
		b.readings = append(b.readings[:0], b.readings[idx:]...)
	}
}

// Snapshot returns copies of the values and their elapsed times in
// seconds. While the stored span is within minWindow everything is
// returned; beyond that only readings inside the trailing maxWindow.
// An empty buffer yields two empty slices.
func (b *Buffer) Snapshot() (values []float64, times []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	values = []float64{}
	times = []float64{}
	if len(b.readings) == 0 {
		return values, times
	}

	latest := b.readings[len(b.readings)-1].Elapsed
	span := latest - b.readings[0].Elapsed

	start := 0
	if span > b.minWindow {
		cutoff := latest - b.maxWindow
		for i, r := range b.readings {
			if r.Elapsed >= cutoff {
				start = i
				break
			}
		}
	}

	for _, r := range b.readings[start:] {
		values = append(values, r.Value)
		times = append(times, r.Elapsed.Seconds())
	}
	return values, times
}

// Len returns the number of retained readings.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.readings)
}

// Last returns the most recent reading and whether one exists.
func (b *Buffer) Last() (Reading, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.readings) == 0 {
		return Reading{}, false
	}
	return b.readings[len(b.readings)-1], true
}

// Clear empties the buffer. Concurrent appends land either before or
// after the clear.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readings = nil
}
