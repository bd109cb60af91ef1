// Package chart renders sparklines of a monitoring session: color-coded
// temperature blocks, minute tick marks on the elapsed-time axis, and a
// scale bar showing the current value against the session target.
package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/thermalarm/internal/alert"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Point is one plotted sample: a temperature at a session-relative time.
type Point struct {
	Temp    float64
	Elapsed time.Duration
}

// FromSeries converts a buffer snapshot (values plus relative seconds)
// into plot points.
func FromSeries(values, relativeTimes []float64) []Point {
	n := len(values)
	if len(relativeTimes) < n {
		n = len(relativeTimes)
	}
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{
			Temp:    values[i],
			Elapsed: time.Duration(relativeTimes[i] * float64(time.Second)),
		}
	}
	return pts
}

// TempColor picks a color for a value relative to the session target:
// green while far away, yellow when close, red once the target side is
// reached.
func TempColor(v, target float64, direction alert.Direction) lipgloss.Color {
	const closeBand = 2.0
	switch {
	case alert.Reached(direction, target, v):
		return lipgloss.Color("196") // red
	case math.Abs(target-v) <= closeBand:
		return lipgloss.Color("220") // yellow
	default:
		return lipgloss.Color("78") // soft green
	}
}

// RenderSparkline renders the session's temperature curve. A subtle
// pipe is drawn at each elapsed-minute boundary.
func RenderSparkline(points []Point, width int, rangeMin, rangeMax, target float64, direction alert.Direction) string {
	if width <= 0 {
		return ""
	}

	if len(points) == 0 {
		dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
		return dim.Render(strings.Repeat("╌", width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	for i := 0; i < padLen; i++ {
		sb.WriteString(dim.Render("╌"))
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	for i, p := range points {
		norm := (p.Temp - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		if i > 0 && minuteOf(p) != minuteOf(points[i-1]) {
			sb.WriteString(tickStyle.Render("│"))
			continue
		}

		ch := string(sparkBlocks[idx])
		style := lipgloss.NewStyle().Foreground(TempColor(p.Temp, target, direction))
		if alert.Reached(direction, target, p.Temp) {
			style = style.Bold(true)
		}
		sb.WriteString(style.Render(ch))
	}

	return sb.String()
}

func minuteOf(p Point) int {
	return int(p.Elapsed / time.Minute)
}

// RenderTimeline renders elapsed-time labels under the sparkline, one
// MM:SS label at each minute boundary.
func RenderTimeline(points []Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)

	line := make([]rune, width)
	for i := range line {
		line[i] = ' '
	}

	type tick struct {
		pos   int
		label string
	}
	var ticks []tick

	for i, p := range points {
		if i == 0 || minuteOf(p) == minuteOf(points[i-1]) {
			continue
		}
		mins := int(p.Elapsed / time.Minute)
		secs := int(p.Elapsed/time.Second) % 60
		ticks = append(ticks, tick{
			pos:   padLen + i,
			label: fmt.Sprintf("%02d:%02d", mins, secs),
		})
	}

	lastEnd := -1
	for _, t := range ticks {
		start := t.pos - 2
		if start < 0 {
			start = 0
		}
		end := start + len(t.label)
		if end > width {
			continue
		}
		if start <= lastEnd+1 {
			continue
		}
		for j, ch := range t.label {
			line[start+j] = ch
		}
		lastEnd = end
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	return tickStyle.Render(string(line))
}

// RenderTargetScale renders a scale bar with the target marked and the
// current value as a diamond.
func RenderTargetScale(current, rangeMin, rangeMax, target float64, direction alert.Direction, width int) string {
	if width <= 0 {
		return ""
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	targetPos := -1
	if target > rangeMin && target < rangeMax {
		targetPos = int(float64(width-1) * (target - rangeMin) / span)
	}

	curPos := int(float64(width-1) * (current - rangeMin) / span)
	if curPos < 0 {
		curPos = 0
	}
	if curPos >= width {
		curPos = width - 1
	}

	var sb strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == curPos:
			style := lipgloss.NewStyle().Foreground(TempColor(current, target, direction)).Bold(true)
			sb.WriteString(style.Render("◆"))
		case i == targetPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("▪"))
		default:
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Render("·"))
		}
	}

	return sb.String()
}

// RenderTempValue renders the temperature value with target coloring.
func RenderTempValue(temp, target float64, direction alert.Direction) string {
	s := fmt.Sprintf("%5.1f°C", temp)
	style := lipgloss.NewStyle().Foreground(TempColor(temp, target, direction))
	if alert.Reached(direction, target, temp) {
		style = style.Bold(true)
	}
	return style.Render(s)
}
