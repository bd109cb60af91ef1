package alert

import (
	"testing"
	"time"
)

func TestThrottleFirstAnnouncementFires(t *testing.T) {
	th := NewThrottle(1.0, 15*time.Second)
	if !th.ShouldAnnounce(20.0, time.Now()) {
		t.Error("first announcement should always fire")
	}
}

func TestThrottlePolicy(t *testing.T) {
	th := NewThrottle(1.0, 15*time.Second)
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	th.Commit(20.0, base)

	cases := []struct {
		name  string
		value float64
		at    time.Time
		want  bool
	}{
		{"delta too small", 20.5, base.Add(5 * time.Second), false},
		{"period too short", 21.5, base.Add(5 * time.Second), false},
		{"delta and period satisfied", 21.5, base.Add(16 * time.Second), true},
		{"exact period boundary", 21.5, base.Add(15 * time.Second), true},
		{"exact delta boundary", 21.0, base.Add(16 * time.Second), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := th.ShouldAnnounce(tc.value, tc.at); got != tc.want {
				t.Errorf("ShouldAnnounce(%v, +%s) = %v, want %v",
					tc.value, tc.at.Sub(base), got, tc.want)
			}
		})
	}
}

func TestThrottleOnlyCommitMovesState(t *testing.T) {
	th := NewThrottle(1.0, 15*time.Second)
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	th.Commit(20.0, base)

	// A suppressed announcement must not update state.
	th.ShouldAnnounce(21.5, base.Add(5*time.Second))
	if !th.ShouldAnnounce(21.5, base.Add(16*time.Second)) {
		t.Error("state moved without Commit")
	}

	th.Commit(21.5, base.Add(16*time.Second))
	if th.ShouldAnnounce(22.0, base.Add(17*time.Second)) {
		t.Error("expected suppression right after Commit")
	}
}
