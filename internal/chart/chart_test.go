package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/luki/thermalarm/internal/alert"
)

func TestSparkline(t *testing.T) {
	var pts []Point
	for i, v := range []float64{30, 35, 40, 50, 60, 70, 80, 90, 100} {
		pts = append(pts, Point{Temp: v, Elapsed: time.Duration(i) * 2 * time.Second})
	}
	result := RenderSparkline(pts, 20, 20, 110, 85, alert.Rising)
	if len(result) == 0 {
		t.Error("sparkline should not be empty")
	}
	t.Logf("Sparkline: %s", result)
}

func TestSparklineMinuteTicks(t *testing.T) {
	var pts []Point
	for i := 0; i < 20; i++ {
		pts = append(pts, Point{
			Temp:    float64(40 + i%5),
			Elapsed: 50*time.Second + time.Duration(i)*time.Second,
		})
	}

	result := RenderSparkline(pts, 20, 30, 55, 80, alert.Rising)
	if len(result) == 0 {
		t.Error("sparkline should not be empty")
	}
	if !strings.Contains(result, "│") {
		t.Error("expected minute tick mark in sparkline")
	}
	t.Logf("Sparkline with ticks: %s", result)
}

func TestEmptySparklineIsPlaceholder(t *testing.T) {
	result := RenderSparkline(nil, 10, 0, 100, 50, alert.Rising)
	if !strings.Contains(result, "╌") {
		t.Error("empty sparkline should render placeholder dashes")
	}
}

func TestFromSeries(t *testing.T) {
	pts := FromSeries([]float64{20, 21}, []float64{0, 2})
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %d", len(pts))
	}
	if pts[1].Temp != 21 || pts[1].Elapsed != 2*time.Second {
		t.Errorf("second point: %+v", pts[1])
	}
}

func TestTempColorTracksTarget(t *testing.T) {
	far := TempColor(20, 80, alert.Rising)
	near := TempColor(79, 80, alert.Rising)
	reached := TempColor(81, 80, alert.Rising)
	if far == reached || near == reached || far == near {
		t.Errorf("expected three distinct colors: %v %v %v", far, near, reached)
	}
	if TempColor(19, 20, alert.Falling) != reached {
		t.Error("falling past the target should use the reached color")
	}
}

func TestRenderTimelineHasLabel(t *testing.T) {
	var pts []Point
	for i := 0; i < 30; i++ {
		pts = append(pts, Point{Temp: 40, Elapsed: 45*time.Second + time.Duration(i)*time.Second})
	}
	result := RenderTimeline(pts, 30)
	if !strings.Contains(result, "01:00") {
		t.Errorf("expected 01:00 label in timeline: %q", result)
	}
}
