package lifecycle

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestShutdownRunsStepsInOrder(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	for _, name := range []string{"loop", "speech", "notify", "record", "sensor"} {
		name := name
		m.Register(name, func() error {
			order = append(order, name)
			return nil
		})
	}

	results := m.Shutdown()
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	want := []string{"loop", "speech", "notify", "record", "sensor"}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("step %d ran %q, want %q", i, order[i], name)
		}
		if results[i].Name != name {
			t.Errorf("result %d is %q, want %q", i, results[i].Name, name)
		}
	}
}

func TestFailingStepDoesNotAbortLaterSteps(t *testing.T) {
	m := New(time.Second, nil)

	boom := errors.New("boom")
	m.Register("first", func() error { return boom })
	var ran bool
	m.Register("second", func() error { ran = true; return nil })

	results := m.Shutdown()
	if !ran {
		t.Error("second step did not run after the first failed")
	}
	if !errors.Is(results[0].Err, boom) {
		t.Errorf("first step error = %v, want boom", results[0].Err)
	}
	if results[1].Err != nil {
		t.Errorf("second step error = %v", results[1].Err)
	}
	if got := Failed(results); len(got) != 1 || got[0].Name != "first" {
		t.Errorf("Failed = %+v", got)
	}
}

func TestHungStepIsTimeBoxed(t *testing.T) {
	m := New(50*time.Millisecond, nil)

	m.Register("hung", func() error {
		time.Sleep(5 * time.Second)
		return nil
	})
	var ran bool
	m.Register("after", func() error { ran = true; return nil })

	start := time.Now()
	results := m.Shutdown()
	if took := time.Since(start); took > time.Second {
		t.Fatalf("shutdown took %v, should be bounded by the step timeout", took)
	}
	if !results[0].TimedOut {
		t.Error("hung step not reported as timed out")
	}
	if results[0].Err == nil {
		t.Error("hung step has no error")
	}
	if !ran {
		t.Error("step after the hung one did not run")
	}
}

func TestShutdownReentrant(t *testing.T) {
	m := New(time.Second, nil)

	var calls atomic.Int32
	m.Register("only", func() error {
		calls.Add(1)
		return nil
	})

	first := m.Shutdown()
	second := m.Shutdown()
	if calls.Load() != 1 {
		t.Errorf("step ran %d times, want 1", calls.Load())
	}
	if len(first) != 1 || len(second) != 1 || first[0].Name != second[0].Name {
		t.Errorf("second Shutdown returned different results: %+v vs %+v", first, second)
	}
}

func TestGoAndWait(t *testing.T) {
	m := New(time.Second, nil)

	var done atomic.Int32
	for i := 0; i < 3; i++ {
		m.Go("worker", func() { done.Add(1) })
	}
	m.Wait()
	if done.Load() != 3 {
		t.Errorf("expected 3 tasks finished, got %d", done.Load())
	}
}
