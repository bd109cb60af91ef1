package monitor

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages the engine pushes into the TUI.

type readingMsg struct {
	value   float64
	elapsed time.Duration
}

type targetReachedMsg struct{ text string }

type sessionEndedMsg struct{ err error }

// Relay forwards engine events into a running BubbleTea program. Events
// arriving before Attach (or after the program exits) are dropped, so
// the engine can fire into an unmounted UI safely.
type Relay struct {
	mu sync.Mutex
	p  *tea.Program
}

func NewRelay() *Relay { return &Relay{} }

// Attach points the relay at a program. Call before p.Run.
func (r *Relay) Attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *Relay) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (r *Relay) ReadingUpdated(value float64, elapsed time.Duration) {
	r.send(readingMsg{value: value, elapsed: elapsed})
}

func (r *Relay) TargetReached(text string) {
	r.send(targetReachedMsg{text: text})
}

func (r *Relay) SessionEnded(err error) {
	r.send(sessionEndedMsg{err: err})
}
