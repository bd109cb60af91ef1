package alert

import "testing"

func TestReached(t *testing.T) {
	cases := []struct {
		name    string
		dir     Direction
		target  float64
		current float64
		want    bool
	}{
		{"rising at target", Rising, 25.0, 25.0, true},
		{"rising above target", Rising, 25.0, 26.3, true},
		{"rising below target", Rising, 25.0, 24.9, false},
		{"falling at target", Falling, 25.0, 25.0, true},
		{"falling below target", Falling, 25.0, 20.0, true},
		{"falling above target", Falling, 25.0, 25.1, false},
		{"unknown direction", Direction("sideways"), 25.0, 99.0, false},
		{"empty direction", Direction(""), 25.0, 99.0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Reached(tc.dir, tc.target, tc.current); got != tc.want {
				t.Errorf("Reached(%q, %v, %v) = %v, want %v",
					tc.dir, tc.target, tc.current, got, tc.want)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	cases := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"rising", Rising, true},
		{"Increases", Rising, true},
		{" falling ", Falling, true},
		{"decreases", Falling, true},
		{"sideways", Direction("sideways"), false},
	}
	for _, tc := range cases {
		got, ok := ParseDirection(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseDirection(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLatchFiresOnce(t *testing.T) {
	var l Latch
	if l.Fired() {
		t.Fatal("new latch should not be fired")
	}
	if !l.TryFire() {
		t.Fatal("first TryFire should succeed")
	}
	for i := 0; i < 5; i++ {
		if l.TryFire() {
			t.Fatal("latch fired more than once")
		}
	}
	if !l.Fired() {
		t.Error("latch should report fired")
	}
}
