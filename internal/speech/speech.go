// Package speech speaks temperature announcements through whatever
// text-to-speech command the host has. Announcing is best effort; a
// missing or broken TTS binary degrades to silence, never to an error
// the sampling loop has to care about.
package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/luki/thermalarm/internal/logging"
)

// candidates are probed in order when no command is configured. Each
// entry is the binary plus the arguments that make it read stdin-free
// text from argv.
var candidates = [][]string{
	{"say"},
	{"espeak"},
	{"spd-say", "--wait"},
	{"festival", "--tts"},
}

// Speaker runs a TTS command per announcement.
type Speaker struct {
	mu      sync.Mutex
	argv    []string
	log     *logging.Logger
	current *exec.Cmd
	closed  bool
}

// New probes for a usable TTS command. command overrides auto-detection
// ("espeak -v en-us" style strings are split on whitespace). A Speaker
// is always returned; if nothing usable exists it is simply unavailable.
func New(command string, log *logging.Logger) *Speaker {
	if log == nil {
		log = logging.Nop()
	}
	s := &Speaker{log: log}

	if command != "" {
		argv := strings.Fields(command)
		if _, err := exec.LookPath(argv[0]); err != nil {
			log.Warn("configured speech command not found", "command", argv[0])
			return s
		}
		s.argv = argv
		return s
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			s.argv = c
			break
		}
	}
	if s.argv == nil {
		log.Debug("no text-to-speech command found")
	}
	return s
}

// Available reports whether announcements will actually be spoken.
func (s *Speaker) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.argv != nil && !s.closed
}

// Say speaks text and blocks until the command exits or ctx is
// cancelled. Unavailable speakers return nil so callers never branch on
// whether audio exists.
func (s *Speaker) Say(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.argv == nil || s.closed {
		s.mu.Unlock()
		return nil
	}
	argv := append(append([]string{}, s.argv...), text)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	s.current = cmd
	s.mu.Unlock()

	err := cmd.Run()

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("speech command %s: %w", argv[0], err)
	}
	return nil
}

// SayTemperature announces a reading in a fixed spoken form.
func (s *Speaker) SayTemperature(ctx context.Context, value float64) error {
	return s.Say(ctx, fmt.Sprintf("%.1f degrees", value))
}

// Release stops any in-flight announcement and disables the speaker.
// Idempotent.
func (s *Speaker) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.current != nil && s.current.Process != nil {
		_ = s.current.Process.Kill()
	}
	return nil
}
