// Package monitor implements the live monitoring TUI: a target entry
// form, a real-time sparkline of the session, and a popup raised when
// the target temperature is reached.
package monitor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/thermalarm/internal/alert"
	"github.com/luki/thermalarm/internal/chart"
	"github.com/luki/thermalarm/internal/engine"
)

type mode int

const (
	modeSetup mode = iota
	modeRunning
	modeStopped
)

// Model is the BubbleTea model for the live monitor.
type Model struct {
	eng        *engine.Engine
	sensorName string

	mode      mode
	input     textinput.Model
	direction alert.Direction
	formErr   string

	target    float64
	current   float64
	elapsed   time.Duration
	readings  int
	startedAt time.Time

	popup    string
	endedErr error

	width  int
	height int
}

// New creates the initial model for the live monitor.
func New(eng *engine.Engine, sensorName string) Model {
	ti := textinput.New()
	ti.Placeholder = "temperature"
	ti.CharLimit = 8
	ti.Width = 12
	ti.Focus()

	return Model{
		eng:        eng,
		sensorName: sensorName,
		input:      ti,
		direction:  alert.Rising,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if m.popup != "" {
			switch msg.String() {
			case "enter", "esc", " ":
				m.popup = ""
			case "q", "ctrl+c":
				m.eng.StopSession()
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			m.eng.StopSession()
			return m, tea.Quit
		}

		switch m.mode {
		case modeSetup:
			return m.updateSetup(msg)
		case modeRunning:
			return m.updateRunning(msg)
		default:
			return m.updateStopped(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case readingMsg:
		m.current = msg.value
		m.elapsed = msg.elapsed
		m.readings++

	case targetReachedMsg:
		m.popup = msg.text

	case sessionEndedMsg:
		// Teardown has released the sensor and alert channels, so a new
		// session cannot be offered from here.
		m.endedErr = msg.err
		m.mode = modeStopped
	}

	return m, nil
}

func (m Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "tab", "up", "down":
		if m.direction == alert.Rising {
			m.direction = alert.Falling
		} else {
			m.direction = alert.Rising
		}
		return m, nil
	case "enter":
		target, err := strconv.ParseFloat(strings.TrimSpace(m.input.Value()), 64)
		if err != nil {
			m.formErr = "enter a temperature, like 60 or 82.5"
			return m, nil
		}
		m.formErr = ""
		m.endedErr = nil
		m.target = target
		m.readings = 0
		m.startedAt = time.Now()
		m.mode = modeRunning
		if err := m.eng.StartSession(target, m.direction); err != nil {
			m.endedErr = err
			m.mode = modeSetup
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateRunning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.eng.StopSession()
		return m, tea.Quit
	case "s", "esc":
		m.eng.StopSession()
		m.endedErr = nil
		m.mode = modeStopped
	}
	return m, nil
}

func (m Model) updateStopped(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "enter":
		return m, tea.Quit
	}
	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorAlert    = lipgloss.Color("196")
	colorOk       = lipgloss.Color("78")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string
	sections = append(sections, m.renderTitleBar(contentWidth))

	if m.endedErr != nil {
		errBox := lipgloss.NewStyle().
			Foreground(colorAlert).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf(" %v", m.endedErr))
		sections = append(sections, errBox)
	}

	switch m.mode {
	case modeSetup:
		sections = append(sections, m.renderSetup(contentWidth))
	case modeRunning:
		sections = append(sections, m.renderSession(contentWidth))
	default:
		sections = append(sections, m.renderStopped(contentWidth))
	}

	sections = append(sections, m.renderFooter(contentWidth))
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.popup != "" {
		return m.renderPopup(content)
	}
	return content
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("THERMALARM")

	var statusParts []string
	statusParts = append(statusParts, lipgloss.NewStyle().
		Foreground(colorDim).
		Render(m.sensorName))

	if m.mode == modeRunning {
		statusParts = append(statusParts, lipgloss.NewStyle().
			Foreground(colorDim).
			Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startedAt)))))
		statusParts = append(statusParts, lipgloss.NewStyle().
			Foreground(colorOk).
			Render("MONITORING"))
	}

	sep := lipgloss.NewStyle().Foreground(colorDim).Render(" │ ")
	right := strings.Join(statusParts, sep)

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

func (m Model) renderSetup(width int) string {
	labelS := lipgloss.NewStyle().Foreground(colorLabel)
	dimS := lipgloss.NewStyle().Foreground(colorDim)

	dir := "rising ↑"
	if m.direction == alert.Falling {
		dir = "falling ↓"
	}

	rows := []string{
		labelS.Render("Alert when the temperature reaches:"),
		"",
		"  " + m.input.View(),
		"",
		labelS.Render("Direction: ") + lipgloss.NewStyle().Bold(true).Render(dir) +
			dimS.Render("  (tab to toggle)"),
	}
	if m.formErr != "" {
		rows = append(rows, "", lipgloss.NewStyle().Foreground(colorAlert).Render(m.formErr))
	}

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2).
		Width(width).
		Render(form)
}

func (m Model) renderStopped(width int) string {
	labelS := lipgloss.NewStyle().Foreground(colorLabel)
	dimS := lipgloss.NewStyle().Foreground(colorDim)

	rows := []string{
		labelS.Render("Monitoring stopped."),
		"",
		dimS.Render("The sensor and alert channels have been released."),
		dimS.Render("Restart thermalarm to begin a new session."),
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderSession(width int) string {
	values, times := m.eng.CurrentSnapshot()
	pts := chart.FromSeries(values, times)

	innerWidth := width - 4
	chartWidth := innerWidth - 10
	if chartWidth < 15 {
		chartWidth = 15
	}

	rangeMin, rangeMax := seriesRange(values, m.target)

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	header := dimS.Render("now ") +
		chart.RenderTempValue(m.current, m.target, m.direction) +
		dimS.Render("   target ") +
		valS.Render(fmt.Sprintf("%.1f°C %s", m.target, m.direction)) +
		dimS.Render("   samples ") +
		valS.Render(fmt.Sprintf("%d", m.readings))

	spark := frameL +
		chart.RenderSparkline(pts, chartWidth, rangeMin, rangeMax, m.target, m.direction) +
		frameR
	timeline := " " + chart.RenderTimeline(pts, chartWidth)
	scale := " " + chart.RenderTargetScale(m.current, rangeMin, rangeMax, m.target, m.direction, chartWidth)

	var stats string
	if len(values) > 0 {
		lo, hi := minMax(values)
		stats = dimS.Render("lo ") + valS.Render(fmt.Sprintf("%5.1f", lo)) +
			dimS.Render("  pk ") + valS.Render(fmt.Sprintf("%5.1f", hi)) +
			dimS.Render("  span ") + valS.Render(fmtDuration(m.elapsed))
	} else {
		stats = dimS.Render("waiting for readings...")
	}

	rows := []string{header, "", spark, timeline, scale, "", stats}
	panel := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(panel)
}

func (m Model) renderPopup(background string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorAlert).
		Foreground(colorLabel).
		Padding(1, 3).
		Render(lipgloss.NewStyle().Bold(true).Foreground(colorAlert).Render("TARGET REACHED") +
			"\n\n" + m.popup +
			"\n\n" + lipgloss.NewStyle().Foreground(colorDim).Render("enter to dismiss"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	labelS := lipgloss.NewStyle().Foreground(colorLabel)

	var keys string
	switch m.mode {
	case modeSetup:
		keys = dimS.Render("enter") + labelS.Render(":start") +
			dimS.Render("  tab") + labelS.Render(":direction") +
			dimS.Render("  q") + labelS.Render(":quit")
	case modeRunning:
		keys = dimS.Render("s") + labelS.Render(":stop") +
			dimS.Render("  q") + labelS.Render(":quit")
	default:
		keys = dimS.Render("q") + labelS.Render(":quit")
	}

	tickS := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Render("│")
	legend := tickS + dimS.Render(" 1min")

	gap := width - lipgloss.Width(legend) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + strings.Repeat(" ", gap) + keys)
}

// seriesRange pads the plotted range and always keeps the target in
// view.
func seriesRange(values []float64, target float64) (float64, float64) {
	if len(values) == 0 {
		return target - 10, target + 10
	}
	lo, hi := minMax(values)
	lo = math.Min(lo, target)
	hi = math.Max(hi, target)
	return lo - 5, hi + 5
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
