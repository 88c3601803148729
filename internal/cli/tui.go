package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/copper/pkg/drc"
)

// List styles
var (
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listExcludedStyle = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
)

// =============================================================================
// ViolationListModel - Interactive exclusion editing
// =============================================================================

// ViolationListModel is the bubbletea model for browsing a DRC report and
// toggling exclusions.
type ViolationListModel struct {
	Violations []drc.Violation
	Excluded   map[string]bool
	Cursor     int
	Height     int
	Offset     int

	// Saved is set when the user confirms the edits.
	Saved bool

	initial map[string]bool
}

// NewViolationListModel creates a model over every violation of rep,
// excluded ones included.
func NewViolationListModel(rep *drc.Report) ViolationListModel {
	m := ViolationListModel{
		Violations: rep.Violations,
		Excluded:   make(map[string]bool),
		Height:     15,
		initial:    make(map[string]bool),
	}
	for _, v := range rep.Violations {
		if v.Excluded {
			m.Excluded[v.Fingerprint()] = true
			m.initial[v.Fingerprint()] = true
		}
	}
	return m
}

func (m ViolationListModel) Init() tea.Cmd {
	return nil
}

func (m ViolationListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Violations)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "x", " ":
			if len(m.Violations) == 0 {
				return m, nil
			}
			fp := m.Violations[m.Cursor].Fingerprint()
			if m.Excluded[fp] {
				delete(m.Excluded, fp)
			} else {
				m.Excluded[fp] = true
			}
		case "enter", "s":
			m.Saved = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-9, 5)
	}
	return m, nil
}

func (m ViolationListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Design Rule Violations"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  x exclude  ⏎ save  q quit"))
	b.WriteString("\n\n")

	if len(m.Violations) == 0 {
		b.WriteString(StyleSuccess.Render("No violations"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Violations))
	visible := m.Violations[m.Offset:end]
	rows := violationRows(visible)
	for i := range rows {
		cursor := "  "
		if m.Offset+i == m.Cursor {
			cursor = "▸ "
		}
		mark := ""
		if m.Excluded[visible[i].Fingerprint()] {
			mark = "excl"
		}
		rows[i] = append([]string{cursor, mark}, rows[i]...)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Severity", "Rule", "Items", "At", "Measured").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row >= len(visible) {
				return lipgloss.NewStyle()
			}
			v := visible[row]
			base := lipgloss.NewStyle()
			if m.Offset+row == m.Cursor {
				base = base.Bold(true)
			}
			if m.Excluded[v.Fingerprint()] {
				return base.Inherit(listExcludedStyle)
			}
			if col == 2 {
				return base.Inherit(severityStyle(v.Severity))
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	cur := m.Violations[m.Cursor]
	b.WriteString(StyleValue.Render(cur.Message))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(cur.Fingerprint()))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d excluded", m.Cursor+1, len(m.Violations), len(m.Excluded))))

	return b.String()
}

// Changes returns the violations newly excluded and the fingerprints whose
// exclusion was lifted, both in report order.
func (m ViolationListModel) Changes() (added []drc.Violation, removed []string) {
	for _, v := range m.Violations {
		fp := v.Fingerprint()
		switch {
		case m.Excluded[fp] && !m.initial[fp]:
			added = append(added, v)
		case !m.Excluded[fp] && m.initial[fp]:
			removed = append(removed, fp)
		}
	}
	return added, removed
}
