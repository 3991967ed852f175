package monitor

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"heimdall/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	if err := w.WriteCoverage(sampleCoverage()); err != nil {
		t.Fatalf("coverage: %v", err)
	}
	if _, ok := p.msgs[0].(coverageMsg); !ok {
		t.Fatalf("expected coverageMsg, got %T", p.msgs[0])
	}
	if err := w.WriteAlerts([]telemetry.AlertRow{sampleAlert("N1", epoch)}); err != nil {
		t.Fatalf("alerts: %v", err)
	}
	lm, ok := p.msgs[1].(logMsg)
	if !ok {
		t.Fatalf("expected logMsg, got %T", p.msgs[1])
	}
	if !strings.Contains(lm.line, "camera=N1") || !strings.Contains(lm.line, "INSIDE") {
		t.Fatalf("unexpected alert line %q", lm.line)
	}
}

func TestCoverageFillsTable(t *testing.T) {
	m := newTUIModel("site-1")
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = mi.(tuiModel)
	mi, _ = m.Update(coverageMsg{sampleCoverage()})
	m = mi.(tuiModel)

	rows := m.table.Rows()
	if len(rows) != 3 {
		t.Fatalf("table rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "P1" || rows[0][4] != "A, B" || rows[2][4] != "-" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	header := m.renderHeader()
	if !strings.Contains(header, "CRITICAL") || !strings.Contains(header, "blind 1") {
		t.Fatalf("header missing summary: %q", header)
	}
}

func TestWrapToggle(t *testing.T) {
	m := newTUIModel("site-1")
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 30})
	m = mi.(tuiModel)
	long := "one two three four five six"
	mi, _ = m.Update(logMsg{line: long})
	m = mi.(tuiModel)
	lines := strings.Split(m.vp.View(), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected single line before wrap")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = mi.(tuiModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	lines = strings.Split(m.vp.View(), "\n")
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected wrapped content on second line")
	}
}

func TestScrollToggle(t *testing.T) {
	m := newTUIModel("site-1")
	m.vp.Height = 1
	m.vp.Width = 20
	mi, _ := m.Update(logMsg{line: "l1"})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "l2"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	mi, _ = m.Update(logMsg{line: "l3"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = mi.(tuiModel)
	if m.vp.YOffset != 0 {
		t.Fatalf("expected YOffset 0 after scrolling up, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if !m.autoscroll {
		t.Fatalf("autoscroll should be on")
	}
	if expected := len(m.logs) - m.vp.Height; m.vp.YOffset != expected {
		t.Fatalf("expected YOffset %d, got %d", expected, m.vp.YOffset)
	}
}

func TestHelpAndQuit(t *testing.T) {
	m := newTUIModel("site-1")
	mi, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	m = mi.(tuiModel)
	if !m.help || !strings.Contains(m.View(), "toggle line wrap") {
		t.Fatalf("help not shown")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = mi.(tuiModel)
	if m.help {
		t.Fatalf("help should close on esc")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
