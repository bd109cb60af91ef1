// Package engine runs monitoring sessions: a periodic sensor read loop
// feeding a time-windowed buffer, an edge-triggered target alarm, a
// rate-limited voice announcer, and a bounded teardown of everything
// the session touched.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luki/thermalarm/internal/alert"
	"github.com/luki/thermalarm/internal/buffer"
	"github.com/luki/thermalarm/internal/config"
	"github.com/luki/thermalarm/internal/lifecycle"
	"github.com/luki/thermalarm/internal/logging"
	"github.com/luki/thermalarm/internal/sensor"
)

// ErrSensorUnavailable ends a session after too many consecutive failed
// reads.
var ErrSensorUnavailable = errors.New("monitoring stopped: sensor unavailable")

// ErrSensorDisconnected rejects a session start once teardown has
// released the sensor; the operator must reconnect first.
var ErrSensorDisconnected = errors.New("sensor disconnected: reconnect before monitoring again")

// Presenter receives display-facing events. Implementations must be
// safe to call with no UI mounted.
type Presenter interface {
	ReadingUpdated(value float64, elapsed time.Duration)
	TargetReached(message string)
	SessionEnded(err error)
}

// Speaker renders announcements audibly.
type Speaker interface {
	Say(ctx context.Context, text string) error
	Release() error
}

// Notifier pushes messages to an external relay. Send is best effort
// and reports success only.
type Notifier interface {
	Send(ctx context.Context, message, title, priority string, tags []string) bool
	Close() error
}

// RunRecorder persists one session's readings.
type RunRecorder interface {
	Record(elapsed time.Duration, temperature float64) error
	Close() error
}

// Recorder opens run recorders. A nil Recorder disables persistence.
type Recorder interface {
	CreateRun(sensorName string, target float64, direction string, started time.Time) (RunRecorder, error)
}

// Options wires an Engine to its collaborators. Driver and Provider are
// required; everything else may be nil.
type Options struct {
	Driver     sensor.Driver
	Provider   *config.Provider
	SensorName string
	Presenter  Presenter
	Speaker    Speaker
	Notifier   Notifier
	Recorder   Recorder
	Log        *logging.Logger
}

// Engine owns at most one running session at a time.
type Engine struct {
	opts Options
	log  *logging.Logger

	mu      sync.Mutex
	session *session
	lastErr error
}

// session bundles the state one monitoring run exclusively owns.
type session struct {
	id        string
	target    float64
	direction alert.Direction
	startedAt time.Time
	buf       *buffer.Buffer
	latch     *alert.Latch
	throttle  *alert.Throttle
	run       RunRecorder
	lm        *lifecycle.Manager
	cancel    context.CancelFunc
	log       *logging.Logger
}

// New creates an Engine. Nil collaborators in opts are replaced with
// no-ops so the loop never branches on their presence.
func New(opts Options) *Engine {
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	if opts.Presenter == nil {
		opts.Presenter = nopPresenter{}
	}
	if opts.SensorName == "" {
		opts.SensorName = "sensor"
	}
	return &Engine{opts: opts, log: opts.Log}
}

// StartSession begins monitoring toward target in the given direction.
// A no-op when a session is already running. Fails with
// ErrSensorDisconnected after teardown has released the driver, since
// every read would fail and the other alert channels are gone too.
func (e *Engine) StartSession(target float64, direction alert.Direction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		return nil
	}
	if !e.opts.Driver.Connected() {
		return ErrSensorDisconnected
	}

	cfg := e.opts.Provider.Snapshot()
	ctx, cancel := context.WithCancel(context.Background())

	s := &session{
		id:        uuid.NewString(),
		target:    target,
		direction: direction,
		startedAt: time.Now(),
		buf:       buffer.New(cfg.Sampling.MinWindow, cfg.Sampling.MaxWindow),
		latch:     &alert.Latch{},
		throttle:  alert.NewThrottle(cfg.Voice.DeltaThreshold, cfg.Voice.AnnouncePeriod),
		lm:        lifecycle.New(cfg.Shutdown.StepTimeout, e.log),
		cancel:    cancel,
	}
	s.log = e.log.WithSession(shortID(s.id))

	if e.opts.Recorder != nil && cfg.Recording.Enabled {
		run, err := e.opts.Recorder.CreateRun(e.opts.SensorName, target, string(direction), s.startedAt)
		if err != nil {
			s.log.Error("run recording disabled", "error", err)
		} else {
			s.run = run
		}
	}

	e.registerTeardown(s)
	e.session = s
	e.lastErr = nil

	s.lm.Go("sampling-loop", func() {
		e.runLoop(ctx, s)
	})
	s.log.Info("session started",
		"target", target, "direction", string(direction), "sensor", e.opts.SensorName)
	return nil
}

// registerTeardown fixes the shutdown order: loop and dispatch tasks
// first, then sensor, notification transport, recording, speech.
func (e *Engine) registerTeardown(s *session) {
	s.lm.Register("sampling-loop", func() error {
		s.cancel()
		s.lm.Wait()
		return nil
	})
	s.lm.Register("sensor", func() error {
		return e.opts.Driver.Disconnect()
	})
	s.lm.Register("notify", func() error {
		if e.opts.Notifier == nil {
			return nil
		}
		return e.opts.Notifier.Close()
	})
	s.lm.Register("recording", func() error {
		if s.run == nil {
			return nil
		}
		return s.run.Close()
	})
	s.lm.Register("speech", func() error {
		if e.opts.Speaker == nil {
			return nil
		}
		return e.opts.Speaker.Release()
	})
}

// StopSession tears the running session down and returns the outcome of
// each teardown step. A no-op when nothing is running.
func (e *Engine) StopSession() []lifecycle.StepResult {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()
	if s == nil {
		return nil
	}

	results := s.lm.Shutdown()
	e.clearSession(s)
	s.log.Info("session stopped", "failed_steps", len(lifecycle.Failed(results)))
	return results
}

// fatalStop ends the session from inside the loop. Runs the teardown on
// its own goroutine so the loop can exit and be waited on by step one.
func (e *Engine) fatalStop(s *session, err error) {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
	s.cancel()

	go func() {
		s.lm.Shutdown()
		e.clearSession(s)
		e.opts.Presenter.SessionEnded(err)
		s.log.Error("session ended", "error", err)
	}()
}

func (e *Engine) clearSession(s *session) {
	e.mu.Lock()
	if e.session == s {
		e.session = nil
	}
	e.mu.Unlock()
	s.buf.Clear()
}

// Running reports whether a session is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// Err returns the fatal fault that ended the last session, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// CurrentSnapshot returns the running session's buffered readings. With
// no session it returns two empty slices.
func (e *Engine) CurrentSnapshot() (values, relativeTimes []float64) {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()
	if s == nil {
		return []float64{}, []float64{}
	}
	return s.buf.Snapshot()
}

// Target returns the running session's target and direction.
func (e *Engine) Target() (target float64, direction alert.Direction, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return 0, "", false
	}
	return e.session.target, e.session.direction, true
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type nopPresenter struct{}

func (nopPresenter) ReadingUpdated(float64, time.Duration) {}
func (nopPresenter) TargetReached(string)                  {}
func (nopPresenter) SessionEnded(error)                    {}
