package sensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

func TestSelectSensor(t *testing.T) {
	stats := []host.TemperatureStat{
		{SensorKey: "acpitz", Temperature: 40},
		{SensorKey: "nvme_composite", Temperature: 35},
		{SensorKey: "coretemp_package_id_0", Temperature: 55},
	}

	tests := []struct {
		name    string
		stats   []host.TemperatureStat
		key     string
		want    string
		wantErr bool
	}{
		{"priority prefix wins", stats, "", "coretemp_package_id_0", false},
		{"exact key match", stats, "nvme_composite", "nvme_composite", false},
		{"unknown key fails", stats, "k10temp", "", true},
		{"fallback to first", []host.TemperatureStat{{SensorKey: "weird0"}}, "", "weird0", false},
		{"no sensors", nil, "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := selectSensor(tc.stats, tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("selected %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSimulatedRamp(t *testing.T) {
	sim := NewSimulated(SimRange(20, 90), SimRamp(time.Minute))

	v, err := sim.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// Ramp barely started: should sit near the start value, allowing for
	// the wobble and jitter terms.
	if v < 17 || v > 24 {
		t.Errorf("early reading %.2f not near start value 20", v)
	}
}

func TestSimulatedFailNext(t *testing.T) {
	sim := NewSimulated()
	sim.FailNext(2)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := sim.Read(ctx); err == nil {
			t.Fatalf("read %d: expected injected failure", i)
		}
	}
	if _, err := sim.Read(ctx); err != nil {
		t.Fatalf("read after injected failures: %v", err)
	}
}

func TestSimulatedDisconnect(t *testing.T) {
	sim := NewSimulated()
	if !sim.Connected() {
		t.Fatal("new driver should be connected")
	}
	if err := sim.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := sim.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
	if sim.Connected() {
		t.Error("still connected after disconnect")
	}
	if _, err := sim.Read(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("read after disconnect: got %v, want ErrNotConnected", err)
	}
}
