package monitor

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"heimdall/internal/coverage"
	"heimdall/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the alert viewport.
type logMsg struct{ line string }

// coverageMsg carries a fresh coverage snapshot.
type coverageMsg struct{ telemetry.CoverageRow }

// maxLogLines caps the alert history kept by the TUI.
const maxLogLines = 500

var statusStyles = map[string]lipgloss.Style{
	string(coverage.StatusOptimal):    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")),
	string(coverage.StatusGood):       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14")),
	string(coverage.StatusAcceptable): lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")),
	string(coverage.StatusCritical):   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")),
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TUIWriter renders coverage and alerts using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter. Quitting
// the TUI interrupts the process.
func NewTUIWriter(site string) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(site), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteCoverage implements CoverageWriter.
func (w *TUIWriter) WriteCoverage(row telemetry.CoverageRow) error {
	w.program.Send(coverageMsg{row})
	return nil
}

// WriteAlert implements AlertWriter.
func (w *TUIWriter) WriteAlert(row telemetry.AlertRow) error {
	line := fmt.Sprintf("%s[%s]%s %scamera=%s%s %sthreat=%s%s %sstatus=%s%s %sdrone=%s%s %spos=(%.5f,%.5f,%.0fm)%s %sspd=%.0fkm/h%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, row.CameraID, colorReset,
		colorFor(threatColors, row.ThreatLevel), row.ThreatLevel, colorReset,
		colorCyan, row.Status, colorReset,
		colorMagenta, row.DroneType, colorReset,
		colorGreen, row.Lat, row.Lon, row.Alt, colorReset,
		colorYellow, row.SpeedKmh, colorReset,
	)
	if row.InsidePerimeter {
		line += fmt.Sprintf(" %sINSIDE%s", colorRed, colorReset)
	}
	w.program.Send(logMsg{line: line})
	return nil
}

// WriteAlerts sends multiple alerts to the TUI.
func (w *TUIWriter) WriteAlerts(rows []telemetry.AlertRow) error {
	for _, r := range rows {
		_ = w.WriteAlert(r)
	}
	return nil
}

// Close stops the TUI without interrupting the process.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	site       string
	table      table.Model
	vp         viewport.Model
	logs       []string
	latest     telemetry.CoverageRow
	haveReport bool
	wrap       bool
	autoscroll bool
	help       bool
	width      int
	height     int
}

func newTUIModel(site string) tuiModel {
	cols := []table.Column{
		{Title: "Point", Width: 6},
		{Title: "Lat", Width: 10},
		{Title: "Lon", Width: 10},
		{Title: "State", Width: 11},
		{Title: "Cameras", Width: 36},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(1))
	return tuiModel{
		site:       site,
		table:      t,
		vp:         viewport.New(0, 0),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "h", "?", "esc", "q":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
		case "h", "?":
			m.help = true
		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	case coverageMsg:
		m.latest = msg.CoverageRow
		m.haveReport = true
		rows := coverageTableRows(msg.CoverageRow)
		m.table.SetRows(rows)
		m.table.SetHeight(len(rows) + 1)
		m.updateViewportHeight()
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	}
	return m, nil
}

func coverageTableRows(row telemetry.CoverageRow) []table.Row {
	rows := make([]table.Row, 0, len(row.Points))
	for _, p := range row.Points {
		cams := "-"
		if len(p.Cameras) > 0 {
			cams = strings.Join(p.Cameras, ", ")
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("P%d", p.Index+1),
			fmt.Sprintf("%.5f", p.Lat),
			fmt.Sprintf("%.5f", p.Lon),
			p.State,
			cams,
		})
	}
	return rows
}

func (m *tuiModel) updateViewportHeight() {
	used := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.table.View()) + lipgloss.Height(m.renderBottom())
	h := m.height - used - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	content := "no alerts"
	if len(m.logs) > 0 {
		lines := m.logs
		if m.wrap && m.vp.Width > 0 {
			lines = make([]string, len(m.logs))
			for i, l := range m.logs {
				lines[i] = wordwrap.String(l, m.vp.Width)
			}
		}
		content = strings.Join(lines, "\n")
	}
	m.vp.SetContent(content)
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	return strings.Join([]string{
		m.renderHeader(),
		m.table.View(),
		divider,
		"Alerts:",
		m.vp.View(),
		divider,
		m.renderBottom(),
	}, "\n")
}

func (m tuiModel) renderHeader() string {
	title := titleStyle.Render("HEIMDALL " + m.site)
	if !m.haveReport {
		return title + " " + dimStyle.Render("waiting for coverage")
	}
	r := m.latest
	badge := strings.ToUpper(r.Status)
	if st, ok := statusStyles[r.Status]; ok {
		badge = st.Render(" " + badge + " ")
	}
	summary := fmt.Sprintf("coverage %.1f%%  redundancy %.1f%%  covered %d/%d  vulnerable %d  blind %d  cameras %d/%d",
		r.CoveragePercent, r.RedundancyPercent, r.CoveredPoints, r.TotalPoints,
		r.VulnerablePoints, r.BlindSpots, r.ActiveCameras, r.TotalCameras)
	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", badge, " ", summary)
}

func (m tuiModel) renderBottom() string {
	var flags []string
	if m.wrap {
		flags = append(flags, "wrap")
	}
	if m.autoscroll {
		flags = append(flags, "follow")
	}
	status := ""
	if len(flags) > 0 {
		status = " [" + strings.Join(flags, " ") + "]"
	}
	return dimStyle.Render("q quit  w wrap  s scroll  h help" + status)
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		titleStyle.Render("Keys"),
		"  q, ctrl+c  quit",
		"  w          toggle line wrap",
		"  s          toggle autoscroll",
		"  up/down    scroll alerts",
		"  h, ?       toggle this help",
	}
	return strings.Join(lines, "\n")
}
