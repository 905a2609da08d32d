package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ookbridge/internal/decoder"
)

// maxRejections is how many recent rejections the monitor keeps on screen.
const maxRejections = 5

// Messages for the live feed
type eventMsg decoder.Event
type feedClosedMsg struct{}

// waitForEvent returns a command that blocks until the next feed event.
func waitForEvent(events <-chan decoder.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return feedClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// monitorKeyMap defines key bindings for the monitor screen
type monitorKeyMap struct {
	Clear key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Clear, k.Quit}}
}

// sensorValue is the latest value seen for one protocol/device/metric.
type sensorValue struct {
	Protocol string
	Reading  decoder.EventReading
	Seen     time.Time
}

// Monitor is a live view of a bridge feed: the latest value per sensor,
// decoder counters and the most recent rejections.
type Monitor struct {
	Source string // Feed URL shown in the title

	events     <-chan decoder.Event
	latest     map[string]sensorValue
	rejections []decoder.Event
	stats      decoder.Snapshot
	lastEvent  time.Time
	closed     bool

	Width  int
	Height int

	Spinner spinner.Model
	Help    help.Model
	Keys    monitorKeyMap
}

// NewMonitor creates a monitor that reads events until the channel closes.
func NewMonitor(source string, events <-chan decoder.Event) Monitor {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	width, height := GetTerminalSize()

	return Monitor{
		Source:  source,
		events:  events,
		latest:  make(map[string]sensorValue),
		Width:   width,
		Height:  height,
		Spinner: s,
		Help:    help.New(),
		Keys: monitorKeyMap{
			Clear: key.NewBinding(
				key.WithKeys("c"),
				key.WithHelp("c", "clear rejections"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
	}
}

// RunMonitor runs the monitor full screen until the user quits.
func RunMonitor(source string, events <-chan decoder.Event) error {
	_, err := tea.NewProgram(NewMonitor(source, events), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model
func (m Monitor) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, waitForEvent(m.events))
}

// Update implements tea.Model
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = clampWidth(msg.Width)
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Clear):
			m.rejections = nil
		}
		return m, nil

	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.apply(decoder.Event(msg))
		return m, waitForEvent(m.events)

	case feedClosedMsg:
		m.closed = true
		return m, nil
	}

	return m, nil
}

// apply folds one event into the monitor state.
func (m *Monitor) apply(ev decoder.Event) {
	m.stats = ev.Stats
	m.lastEvent = ev.Time

	if ev.Rejection != nil {
		if ev.Rejection.Kind == "timeout" {
			return
		}
		m.rejections = append(m.rejections, ev)
		if len(m.rejections) > maxRejections {
			m.rejections = m.rejections[len(m.rejections)-maxRejections:]
		}
		return
	}

	for _, r := range ev.Readings {
		m.latest[r.Key(ev.Protocol)] = sensorValue{Protocol: ev.Protocol, Reading: r, Seen: ev.Time}
	}
}

// View implements tea.Model
func (m Monitor) View() string {
	var b strings.Builder

	status := m.Spinner.View() + " live"
	if m.closed {
		status = ErrorMessageStyle.Render(FailureMarker + " feed closed")
	}
	title := HeaderTitleStyle.Render("OOKBRIDGE MONITOR") + "  " + status
	b.WriteString(HeaderBorderStyle(m.Width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, HeaderCommandStyle.Render(m.Source))))
	b.WriteString("\n\n")

	b.WriteString(m.renderCounters())
	b.WriteString("\n\n")
	b.WriteString(m.renderReadings())
	b.WriteString("\n")

	if len(m.rejections) > 0 {
		b.WriteString("\n")
		b.WriteString(TroubleshootingTitleStyle.Render("  Recent rejections"))
		b.WriteString("\n")
		for _, ev := range m.rejections {
			b.WriteString("  " + FormatEvent(ev) + "\n")
		}
	}

	b.WriteString("\n  " + m.Help.View(m.Keys))
	return b.String()
}

func (m Monitor) renderCounters() string {
	s := m.stats
	counter := func(label string, n uint64) string {
		return MutedStyle.Render(label+" ") + ValueStyle.Render(fmt.Sprint(n))
	}
	line := strings.Join([]string{
		counter("cycles", s.Cycles),
		counter("raingauge", s.RainGaugeFrames),
		counter("f007tp", s.F007TPFrames),
		counter("timeouts", s.Timeouts),
		counter("structural", s.Structural),
		counter("integrity", s.Integrity),
	}, "   ")
	if s.Uptime != "" {
		line += "   " + MutedStyle.Render("up "+s.Uptime)
	}
	return "  " + line
}

func (m Monitor) renderReadings() string {
	if len(m.latest) == 0 {
		return MutedStyle.Render("  Waiting for readings...")
	}

	keys := make([]string, 0, len(m.latest))
	for k := range m.latest {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	header := fmt.Sprintf("  %-10s %6s  %-12s %12s  %s", "PROTOCOL", "DEVICE", "METRIC", "VALUE", "SEEN")
	lines := []string{TroubleshootingTitleStyle.Render(header)}
	for _, k := range keys {
		v := m.latest[k]
		lines = append(lines, fmt.Sprintf("  %-10s %6d  %-12s %12s  %s",
			v.Protocol, v.Reading.DeviceID, v.Reading.Metric,
			formatValue(v.Reading), MutedStyle.Render(v.Seen.Format(time.TimeOnly))))
	}
	return strings.Join(lines, "\n")
}
