package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/luki/thermalarm/internal/alert"
)

// maxSleepSlice caps how long the loop sleeps at once so cancellation
// is observed promptly even at slow sample rates.
const maxSleepSlice = 100 * time.Millisecond

// runLoop is the read-process-dispatch cycle. It exits on cancellation
// or after the consecutive-error limit, never on any other fault.
func (e *Engine) runLoop(ctx context.Context, s *session) {
	nextRead := time.Now()
	consecutive := 0

	for {
		if ctx.Err() != nil {
			return
		}
		cfg := e.opts.Provider.Snapshot()
		rate := cfg.Sampling.Rate

		now := time.Now()
		if now.Before(nextRead) {
			if !sleep(ctx, minDuration(maxSleepSlice, rate/10)) {
				return
			}
			continue
		}

		value, err := e.readDriver(ctx, s)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			consecutive++
			s.log.Warn("sensor read failed",
				"error", err, "consecutive", consecutive)
			if consecutive >= cfg.Sampling.MaxConsecutiveErrors {
				e.fatalStop(s, ErrSensorUnavailable)
				return
			}
			if !sleep(ctx, rate/2) {
				return
			}
			continue
		}

		consecutive = 0
		nextRead = now.Add(rate)

		if err := e.process(ctx, s, value, now); err != nil {
			s.log.Error("reading processing failed", "error", err)
			if !sleep(ctx, time.Second) {
				return
			}
		}
	}
}

// readDriver issues the sensor read on its own goroutine so a blocked
// driver cannot hold up cancellation.
func (e *Engine) readDriver(ctx context.Context, s *session) (float64, error) {
	type result struct {
		value float64
		err   error
	}
	ch := make(chan result, 1)
	s.lm.Go("sensor-read", func() {
		v, err := e.opts.Driver.Read(ctx)
		ch <- result{v, err}
	})

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// process handles one successful reading: buffer, display, persist,
// then evaluate the target alarm and the routine announcement policy.
func (e *Engine) process(ctx context.Context, s *session, value float64, now time.Time) error {
	elapsed := now.Sub(s.startedAt)
	s.buf.Append(value, elapsed)
	e.opts.Presenter.ReadingUpdated(value, elapsed)

	var procErr error
	if s.run != nil {
		if err := s.run.Record(elapsed, value); err != nil {
			procErr = fmt.Errorf("record reading: %w", err)
		}
	}

	cfg := e.opts.Provider.Snapshot()
	if e.targetReached(s, value) {
		e.dispatchTargetAlert(ctx, s, value)
	} else if cfg.Voice.Enabled && s.throttle.ShouldAnnounce(value, now) {
		s.throttle.Commit(value, now)
		e.dispatchAnnouncement(ctx, s, value)
	}
	return procErr
}

// targetReached evaluates the alarm condition and reports true only on
// the first tick where it holds; the latch keeps it from re-firing.
func (e *Engine) targetReached(s *session, value float64) bool {
	if !alert.Reached(s.direction, s.target, value) {
		return false
	}
	return s.latch.TryFire()
}

// dispatchTargetAlert runs the one-time alarm sequence: popup, high
// priority push, spoken confirmation. All best effort, all off the
// loop's path.
func (e *Engine) dispatchTargetAlert(ctx context.Context, s *session, value float64) {
	msg := fmt.Sprintf("%s reached %.1f°C (target %.1f°C %s)",
		e.opts.SensorName, value, s.target, s.direction)
	s.log.Info("target reached", "value", value, "target", s.target)

	s.lm.Go("target-alert", func() {
		e.opts.Presenter.TargetReached(msg)
		if e.opts.Notifier != nil {
			title := fmt.Sprintf("Target %.1f° reached", s.target)
			if !e.opts.Notifier.Send(ctx, msg, title, "high", []string{"thermometer", "bell"}) {
				s.log.Warn("target notification not delivered")
			}
		}
		if e.opts.Speaker != nil {
			text := fmt.Sprintf("Target reached. %.1f degrees.", value)
			if err := e.opts.Speaker.Say(ctx, text); err != nil {
				s.log.Warn("target announcement failed", "error", err)
			}
		}
	})
}

// dispatchAnnouncement speaks and pushes a routine value update.
func (e *Engine) dispatchAnnouncement(ctx context.Context, s *session, value float64) {
	s.lm.Go("announce", func() {
		if e.opts.Speaker != nil {
			if err := e.opts.Speaker.Say(ctx, fmt.Sprintf("%.1f degrees", value)); err != nil {
				s.log.Warn("announcement failed", "error", err)
			}
		}
		if e.opts.Notifier != nil {
			msg := fmt.Sprintf("%s at %.1f°C", e.opts.SensorName, value)
			e.opts.Notifier.Send(ctx, msg, "", "", nil)
		}
	})
}

// sleep blocks for d or until ctx is cancelled, reporting false on
// cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if b > 0 && b < a {
		return b
	}
	return a
}
