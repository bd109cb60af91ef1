package speech

import (
	"context"
	"testing"
)

func TestMissingCommandIsUnavailable(t *testing.T) {
	s := New("definitely-not-a-tts-binary-xyz", nil)
	if s.Available() {
		t.Error("speaker with a missing command reports available")
	}
	// Saying through an unavailable speaker is a silent no-op.
	if err := s.Say(context.Background(), "hello"); err != nil {
		t.Errorf("unavailable Say returned %v", err)
	}
}

func TestConfiguredCommandRuns(t *testing.T) {
	// "true" exists everywhere and exits zero, which is all Say checks.
	s := New("true", nil)
	if !s.Available() {
		t.Skip("no /bin/true on PATH")
	}
	if err := s.SayTemperature(context.Background(), 42.5); err != nil {
		t.Errorf("Say via true: %v", err)
	}
}

func TestFailingCommandReportsError(t *testing.T) {
	s := New("false", nil)
	if !s.Available() {
		t.Skip("no /bin/false on PATH")
	}
	if err := s.Say(context.Background(), "boom"); err == nil {
		t.Error("expected an error from a failing speech command")
	}
}

func TestCancelledContextIsNotAnError(t *testing.T) {
	s := New("sleep", nil)
	if !s.Available() {
		t.Skip("no sleep on PATH")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Say(ctx, "5"); err != nil {
		t.Errorf("cancelled Say returned %v", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	s := New("true", nil)
	if err := s.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
	if s.Available() {
		t.Error("released speaker reports available")
	}
	if err := s.Say(context.Background(), "hello"); err != nil {
		t.Errorf("Say after release returned %v", err)
	}
}
