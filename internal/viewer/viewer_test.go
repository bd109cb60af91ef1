package viewer

import (
	"testing"
	"time"

	"github.com/luki/thermalarm/internal/record"
)

func sampleSeq(n int) []record.Sample {
	out := make([]record.Sample, n)
	for i := range out {
		out[i] = record.Sample{
			Elapsed:     time.Duration(i) * time.Second,
			Temperature: 20 + float64(i),
		}
	}
	return out
}

func TestSparkWindowEndsAtCursor(t *testing.T) {
	samples := sampleSeq(100)

	pts := sparkWindow(samples, 50, 20)
	if len(pts) != 20 {
		t.Fatalf("expected 20 points, got %d", len(pts))
	}
	if pts[len(pts)-1].Elapsed != 50*time.Second {
		t.Errorf("window does not end at the cursor: %v", pts[len(pts)-1].Elapsed)
	}

	// Near the start the window is clipped, not padded.
	pts = sparkWindow(samples, 3, 20)
	if len(pts) != 4 {
		t.Errorf("clipped window has %d points, want 4", len(pts))
	}
}

func TestSampleStats(t *testing.T) {
	lo, hi, avg := sampleStats([]record.Sample{
		{Temperature: 20}, {Temperature: 30}, {Temperature: 25},
	})
	if lo != 20 || hi != 30 || avg != 25 {
		t.Errorf("stats lo=%v hi=%v avg=%v", lo, hi, avg)
	}
}

func TestSampleRangeIncludesTarget(t *testing.T) {
	samples := []record.Sample{{Temperature: 20}, {Temperature: 25}}
	lo, hi := sampleRange(samples, 90)
	if hi < 90 {
		t.Errorf("range max %v excludes the target", hi)
	}
	if lo > 20 {
		t.Errorf("range min %v excludes the data", lo)
	}
}
