package sensor

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Simulated is a deterministic-ish temperature source: a slow ramp from
// the start value toward the peak, a small sine wobble, and jitter. Used
// for demos without hardware and for exercising the engine in tests.
type Simulated struct {
	mu        sync.Mutex
	start     float64
	peak      float64
	rampOver  time.Duration
	startedAt time.Time
	failNext  int
	connected bool
	rng       *rand.Rand
}

// SimOption tunes a Simulated driver.
type SimOption func(*Simulated)

// SimRange sets the start and peak temperatures of the ramp.
func SimRange(start, peak float64) SimOption {
	return func(s *Simulated) {
		s.start = start
		s.peak = peak
	}
}

// SimRamp sets how long the ramp from start to peak takes.
func SimRamp(d time.Duration) SimOption {
	return func(s *Simulated) { s.rampOver = d }
}

// NewSimulated creates a connected simulated driver. Defaults: 20° to
// 95° over five minutes.
func NewSimulated(opts ...SimOption) *Simulated {
	s := &Simulated{
		start:     20.0,
		peak:      95.0,
		rampOver:  5 * time.Minute,
		startedAt: time.Now(),
		connected: true,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// errSimulated is the injected failure returned after FailNext.
var errSimulated = errors.New("simulated read failure")

// FailNext makes the next n reads fail. Used to exercise the engine's
// retry and consecutive-error paths.
func (s *Simulated) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// Read returns the simulated temperature at the current point of the ramp.
func (s *Simulated) Read(_ context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return 0, ErrNotConnected
	}
	if s.failNext > 0 {
		s.failNext--
		return 0, errSimulated
	}

	elapsed := time.Since(s.startedAt)
	progress := elapsed.Seconds() / s.rampOver.Seconds()
	if progress > 1 {
		progress = 1
	}

	base := s.start + (s.peak-s.start)*progress
	wobble := 0.8 * math.Sin(elapsed.Seconds()/7)
	jitter := (s.rng.Float64() - 0.5) * 0.3
	return base + wobble + jitter, nil
}

// Connected reports whether Disconnect has been called.
func (s *Simulated) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Disconnect marks the driver unusable. Idempotent.
func (s *Simulated) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}
