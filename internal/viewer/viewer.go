// Package viewer implements the recorded-run browser TUI: a list of
// past monitoring sessions and a time-scrubbable sparkline for each.
package viewer

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/thermalarm/internal/alert"
	"github.com/luki/thermalarm/internal/chart"
	"github.com/luki/thermalarm/internal/record"
)

// Run launches the run browser over the given store.
func Run(store *record.Store) error {
	runs, err := store.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintf(os.Stderr, "No recorded runs found in %s\n", store.Dir())
		return nil
	}

	p := tea.NewProgram(
		initModel(store, runs),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorAccent   = lipgloss.Color("214")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorCrit     = lipgloss.Color("196")
)

// ── Model ────────────────────────────────────────────────────────────

type mode int

const (
	modeList mode = iota
	modeDetail
)

type model struct {
	store *record.Store
	runs  []record.Meta

	mode     mode
	selected int

	run     record.Meta
	samples []record.Sample
	cursor  int

	width  int
	height int
	err    error
}

func initModel(store *record.Store, runs []record.Meta) model {
	return model{store: store, runs: runs}
}

func (m *model) openRun(idx int) {
	samples, err := m.store.LoadRun(m.runs[idx].File)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.run = m.runs[idx]
	m.samples = samples
	m.cursor = len(samples) - 1
	m.mode = modeDetail
}

// ── Init / Update ────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if m.mode == modeList {
			return m.updateList(msg)
		}
		return m.updateDetail(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.runs)-1 {
			m.selected++
		}
	case "home":
		m.selected = 0
	case "end":
		m.selected = len(m.runs) - 1
	case "enter":
		m.openRun(m.selected)
	}
	return m, nil
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.mode = modeList
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < len(m.samples)-1 {
			m.cursor++
		}
	case "shift+left", "H":
		m.cursor -= 30
		if m.cursor < 0 {
			m.cursor = 0
		}
	case "shift+right", "L":
		m.cursor += 30
		if m.cursor >= len(m.samples) {
			m.cursor = len(m.samples) - 1
		}
	case "home":
		m.cursor = 0
	case "end":
		if len(m.samples) > 0 {
			m.cursor = len(m.samples) - 1
		}
	case "[":
		if m.selected < len(m.runs)-1 {
			m.selected++
			m.openRun(m.selected)
		}
	case "]":
		if m.selected > 0 {
			m.selected--
			m.openRun(m.selected)
		}
	}
	return m, nil
}

// ── View ─────────────────────────────────────────────────────────────

func (m model) View() string {
	if m.width == 0 {
		return "  Loading..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string
	sections = append(sections, m.renderTitle(contentWidth))

	if m.err != nil {
		errBox := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("ERROR: %v", m.err))
		sections = append(sections, errBox)
	}

	if m.mode == modeList {
		sections = append(sections, m.renderList(contentWidth))
	} else {
		sections = append(sections, m.renderDetail(contentWidth)...)
	}

	sections = append(sections, m.renderFooter(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) renderTitle(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("THERMALARM HISTORY")

	var right string
	if m.mode == modeDetail {
		right = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).
			Render(m.run.Started.Format("2006-01-02 15:04")) +
			lipgloss.NewStyle().Foreground(colorDim).
				Render(fmt.Sprintf("  [ %d/%d ]  %d samples", m.selected+1, len(m.runs), len(m.samples)))
	} else {
		right = lipgloss.NewStyle().Foreground(colorDim).
			Render(fmt.Sprintf("%d runs  %s", len(m.runs), m.store.Dir()))
	}

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m model) renderList(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	rowS := lipgloss.NewStyle().Foreground(colorLabel)
	selS := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	header := dimS.Render(fmt.Sprintf("  %-17s %-22s %-9s %s",
		"started", "sensor", "target", "direction"))
	rows := []string{header}

	visible := m.height - 8
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}

	for i := start; i < len(m.runs) && i < start+visible; i++ {
		r := m.runs[i]
		arrow := "↑"
		if r.Direction == "falling" {
			arrow = "↓"
		}
		line := fmt.Sprintf("%-17s %-22s %6.1f°C  %s %s",
			r.Started.Format("2006-01-02 15:04"),
			truncate(r.Sensor, 22),
			r.Target, arrow, r.Direction)
		if i == m.selected {
			rows = append(rows, selS.Render("▶ "+line))
		} else {
			rows = append(rows, rowS.Render("  "+line))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m model) renderDetail(width int) []string {
	if len(m.samples) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(2, 0).
			Align(lipgloss.Center).
			Width(width).
			Render("No samples in this run.")
		return []string{empty}
	}

	cur := m.samples[m.cursor]
	direction := alert.Direction(m.run.Direction)

	innerWidth := width - 4
	chartWidth := innerWidth - 10
	if chartWidth < 15 {
		chartWidth = 15
	}

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	cursorLine := "  " +
		lipgloss.NewStyle().Foreground(colorAccent).Bold(true).
			Render(fmtElapsed(cur.Elapsed)) +
		dimS.Render(fmt.Sprintf("  %d/%d  ", m.cursor+1, len(m.samples))) +
		m.renderScrubber(width - 30)

	pts := sparkWindow(m.samples, m.cursor, chartWidth)
	rangeMin, rangeMax := sampleRange(m.samples, m.run.Target)

	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	header := dimS.Render("at cursor ") +
		chart.RenderTempValue(cur.Temperature, m.run.Target, direction) +
		dimS.Render("   target ") +
		valS.Render(fmt.Sprintf("%.1f°C %s", m.run.Target, m.run.Direction))

	spark := frameL +
		chart.RenderSparkline(pts, chartWidth, rangeMin, rangeMax, m.run.Target, direction) +
		frameR
	timeline := " " + chart.RenderTimeline(pts, chartWidth)

	lo, hi, avg := sampleStats(m.samples)
	stats := dimS.Render("avg ") + valS.Render(fmt.Sprintf("%5.1f", avg)) +
		dimS.Render("  lo ") + valS.Render(fmt.Sprintf("%5.1f", lo)) +
		dimS.Render("  pk ") + valS.Render(fmt.Sprintf("%5.1f", hi)) +
		dimS.Render("  length ") + valS.Render(fmtElapsed(m.samples[len(m.samples)-1].Elapsed))

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", spark, timeline, "", stats))

	return []string{cursorLine, panel}
}

func (m model) renderScrubber(width int) string {
	if len(m.samples) == 0 || width <= 0 {
		return ""
	}

	pos := 0
	if len(m.samples) > 1 {
		pos = m.cursor * (width - 1) / (len(m.samples) - 1)
	}
	if pos >= width {
		pos = width - 1
	}

	var sb strings.Builder
	dimS := lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	curS := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	for i := 0; i < width; i++ {
		if i == pos {
			sb.WriteString(curS.Render("◆"))
		} else {
			sb.WriteString(dimS.Render("─"))
		}
	}
	return sb.String()
}

func (m model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)

	var keys string
	if m.mode == modeList {
		keys = dimS.Render("j/k") + keyS.Render(":select") +
			dimS.Render("  enter") + keyS.Render(":open") +
			dimS.Render("  q") + keyS.Render(":quit")
	} else {
		keys = dimS.Render("h/l") + keyS.Render(":scrub") +
			dimS.Render("  H/L") + keyS.Render(":skip 30") +
			dimS.Render("  [/]") + keyS.Render(":run") +
			dimS.Render("  esc") + keyS.Render(":back") +
			dimS.Render("  q") + keyS.Render(":quit")
	}

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(keys)
}

// ── Helpers ──────────────────────────────────────────────────────────

func sparkWindow(samples []record.Sample, cursor, width int) []chart.Point {
	start := cursor - width + 1
	if start < 0 {
		start = 0
	}
	var pts []chart.Point
	for i := start; i <= cursor && i < len(samples); i++ {
		pts = append(pts, chart.Point{
			Temp:    samples[i].Temperature,
			Elapsed: samples[i].Elapsed,
		})
	}
	return pts
}

func sampleRange(samples []record.Sample, target float64) (float64, float64) {
	lo, hi := samples[0].Temperature, samples[0].Temperature
	for _, s := range samples[1:] {
		if s.Temperature < lo {
			lo = s.Temperature
		}
		if s.Temperature > hi {
			hi = s.Temperature
		}
	}
	if target < lo {
		lo = target
	}
	if target > hi {
		hi = target
	}
	return lo - 5, hi + 5
}

func sampleStats(samples []record.Sample) (lo, hi, avg float64) {
	lo, hi = samples[0].Temperature, samples[0].Temperature
	for _, s := range samples {
		if s.Temperature < lo {
			lo = s.Temperature
		}
		if s.Temperature > hi {
			hi = s.Temperature
		}
		avg += s.Temperature
	}
	avg /= float64(len(samples))
	return lo, hi, avg
}

func fmtElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int(d/time.Second) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

func truncate(s string, w int) string {
	if len(s) <= w {
		return s
	}
	if w <= 3 {
		return s[:w]
	}
	return s[:w-1] + "…"
}
