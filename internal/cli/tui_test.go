package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/copper/pkg/drc"
	"github.com/matzehuels/copper/pkg/geom"
)

func testReport() *drc.Report {
	return &drc.Report{
		Violations: []drc.Violation{
			{
				Rule:     drc.RuleTraceClearance,
				Severity: drc.SeverityError,
				Items:    [2]drc.Item{{Key: "trace:1"}, {Key: "trace:2"}},
				Message:  "traces too close",
				Actual:   geom.MM(0.15),
				Required: geom.MM(0.2),
			},
			{
				Rule:     drc.RuleTraceWidth,
				Severity: drc.SeverityWarning,
				Items:    [2]drc.Item{{Key: "trace:3"}},
				Message:  "trace too thin",
				Excluded: true,
			},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m ViolationListModel, keys ...string) ViolationListModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(ViolationListModel)
	}
	return m
}

func TestViolationListToggle(t *testing.T) {
	m := NewViolationListModel(testReport())
	if len(m.Excluded) != 1 {
		t.Fatalf("Excluded = %v, want the pre-excluded violation", m.Excluded)
	}

	// Exclude the first, lift the second.
	m = press(m, "x", "down", "x", "enter")
	if !m.Saved {
		t.Error("enter should save")
	}

	added, removed := m.Changes()
	if len(added) != 1 || added[0].Rule != drc.RuleTraceClearance {
		t.Errorf("added = %v", added)
	}
	if len(removed) != 1 || removed[0] != "trace_width:trace:3" {
		t.Errorf("removed = %v", removed)
	}
}

func TestViolationListToggleTwiceIsNoChange(t *testing.T) {
	m := press(NewViolationListModel(testReport()), "x", "x", "q")
	if m.Saved {
		t.Error("q should not save")
	}
	added, removed := m.Changes()
	if len(added) != 0 || len(removed) != 0 {
		t.Errorf("Changes() = %v, %v, want none", added, removed)
	}
}

func TestViolationListCursorBounds(t *testing.T) {
	m := press(NewViolationListModel(testReport()), "up", "down", "down", "down")
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
}

func TestViolationListView(t *testing.T) {
	view := NewViolationListModel(testReport()).View()
	for _, want := range []string{"Design Rule Violations", "trace_clearance", "traces too close"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	empty := NewViolationListModel(&drc.Report{}).View()
	if !strings.Contains(empty, "No violations") {
		t.Error("Empty report should say so")
	}
}
