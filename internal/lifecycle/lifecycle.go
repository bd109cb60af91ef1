// Package lifecycle tears sessions down in a fixed order with a time
// budget per step. A hung resource gets its step's budget and no more;
// the steps after it still run.
package lifecycle

import (
	"fmt"
	"sync"
	"time"

	"github.com/luki/thermalarm/internal/logging"
)

// DefaultStepTimeout bounds a teardown step when no timeout is configured.
const DefaultStepTimeout = 5 * time.Second

// Step is one named teardown action.
type Step struct {
	Name string
	Run  func() error
}

// StepResult reports how one step went.
type StepResult struct {
	Name     string
	Err      error
	Duration time.Duration
	TimedOut bool
}

// Manager owns a session's teardown steps and its background tasks.
type Manager struct {
	mu          sync.Mutex
	steps       []Step
	stepTimeout time.Duration
	log         *logging.Logger
	tasks       sync.WaitGroup
	once        sync.Once
	results     []StepResult
}

// New creates a manager. stepTimeout <= 0 uses DefaultStepTimeout.
func New(stepTimeout time.Duration, log *logging.Logger) *Manager {
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{stepTimeout: stepTimeout, log: log}
}

// Register appends a teardown step. Steps run in registration order.
func (m *Manager) Register(name string, run func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, Step{Name: name, Run: run})
}

// Go runs fn on a tracked goroutine. Wait blocks until all tracked
// goroutines return.
func (m *Manager) Go(name string, fn func()) {
	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		m.log.Debug("task started", "task", name)
		fn()
		m.log.Debug("task finished", "task", name)
	}()
}

// Wait blocks until every tracked goroutine has returned.
func (m *Manager) Wait() {
	m.tasks.Wait()
}

// Shutdown runs every registered step in order, each bounded by the
// step timeout. A failing or hung step is recorded and the next step
// still runs. Calling Shutdown again returns the first call's results.
func (m *Manager) Shutdown() []StepResult {
	m.once.Do(func() {
		m.mu.Lock()
		steps := m.steps
		m.mu.Unlock()

		results := make([]StepResult, 0, len(steps))
		for _, step := range steps {
			results = append(results, m.runStep(step))
		}
		m.mu.Lock()
		m.results = results
		m.mu.Unlock()
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results
}

func (m *Manager) runStep(step Step) StepResult {
	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- step.Run()
	}()

	select {
	case err := <-done:
		res := StepResult{Name: step.Name, Err: err, Duration: time.Since(start)}
		if err != nil {
			m.log.Error("shutdown step failed", "step", step.Name, "error", err)
		} else {
			m.log.Debug("shutdown step done", "step", step.Name, "took", res.Duration)
		}
		return res
	case <-time.After(m.stepTimeout):
		m.log.Error("shutdown step timed out", "step", step.Name, "timeout", m.stepTimeout)
		return StepResult{
			Name:     step.Name,
			Err:      fmt.Errorf("step %q timed out after %s", step.Name, m.stepTimeout),
			Duration: time.Since(start),
			TimedOut: true,
		}
	}
}

// Failed returns the results of steps that errored or timed out.
func Failed(results []StepResult) []StepResult {
	var out []StepResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
