package monitor

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/thermalarm/internal/alert"
	"github.com/luki/thermalarm/internal/config"
	"github.com/luki/thermalarm/internal/engine"
	"github.com/luki/thermalarm/internal/sensor"
)

func testModel(t *testing.T) Model {
	t.Helper()
	eng := engine.New(engine.Options{
		Driver:   sensor.NewSimulated(),
		Provider: config.NewProvider(config.Default()),
	})
	t.Cleanup(func() { eng.StopSession() })
	return New(eng, "sim")
}

func TestRelaySafeWithoutProgram(t *testing.T) {
	r := NewRelay()
	r.ReadingUpdated(42.0, time.Second)
	r.TargetReached("reached")
	r.SessionEnded(nil)
}

func TestSetupRejectsNonNumericTarget(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("warm")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.mode != modeSetup {
		t.Error("bad input should stay on the setup form")
	}
	if m.formErr == "" {
		t.Error("expected a form error message")
	}
}

func TestDirectionToggle(t *testing.T) {
	m := testModel(t)
	if m.direction != alert.Rising {
		t.Fatalf("default direction %v", m.direction)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.direction != alert.Falling {
		t.Error("tab did not toggle to falling")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.direction != alert.Rising {
		t.Error("second tab did not toggle back to rising")
	}
}

func TestPopupRaisedAndDismissed(t *testing.T) {
	m := testModel(t)
	next, _ := m.Update(targetReachedMsg{text: "cpu reached 80.0"})
	m = next.(Model)
	if m.popup == "" {
		t.Fatal("popup not raised")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.popup != "" {
		t.Error("enter did not dismiss the popup")
	}
}

func TestSessionEndShowsStoppedState(t *testing.T) {
	m := testModel(t)
	m.mode = modeRunning
	next, _ := m.Update(sessionEndedMsg{err: engine.ErrSensorUnavailable})
	m = next.(Model)
	if m.mode != modeStopped {
		t.Error("session end should land in the stopped state")
	}
	if m.endedErr == nil {
		t.Error("session end error not surfaced")
	}
}

func TestStopKeyEndsSessionForGood(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("60")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.mode != modeRunning {
		t.Fatalf("session did not start: %v", m.endedErr)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = next.(Model)
	if m.mode != modeStopped {
		t.Error("stop should land in the stopped state, not the setup form")
	}

	// Teardown released the sensor, so a fresh start must be refused.
	if err := m.eng.StartSession(60, alert.Rising); err != engine.ErrSensorDisconnected {
		t.Errorf("StartSession after stop = %v, want ErrSensorDisconnected", err)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("q in stopped state should quit")
	}
}
