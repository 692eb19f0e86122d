package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Disabled entries are shown but can
// never hold the cursor.
type MenuItem struct {
	Label    string
	Detail   string // dim text after the label
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list with a cursor over its enabled items.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu places the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(0, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// Select moves the cursor to index i when that item is enabled.
func (m *Menu) Select(i int) {
	if m.enabled(i) {
		m.Selected = i
	}
}

func (m Menu) enabled(i int) bool {
	return i >= 0 && i < len(m.Items) && !m.Items[i].Disabled
}

// move selects the first enabled item at or after from in direction dir.
// The cursor stays put when there is none.
func (m *Menu) move(from, dir int) {
	for i := from; i >= 0 && i < len(m.Items); i += dir {
		if m.enabled(i) {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		m.move(m.Selected-1, -1)
	case "down", "j":
		m.move(m.Selected+1, 1)
	case "home", "g":
		m.move(0, 1)
	case "end", "G":
		m.move(len(m.Items)-1, -1)
	case "enter":
		if m.enabled(m.Selected) && m.Items[m.Selected].Action != nil {
			return m, m.Items[m.Selected].Action()
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			m.Select(int(key[0] - '1'))
		}
	}
	return m, nil
}

func (m Menu) View() string {
	cursor := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	normal := lipgloss.NewStyle().Foreground(theme.Text)
	off := lipgloss.NewStyle().Foreground(theme.Border)
	detail := lipgloss.NewStyle().Foreground(theme.TextDim)

	lines := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		var line string
		switch {
		case item.Disabled:
			line = off.Render("    " + item.Label)
		case i == m.Selected:
			line = cursor.Render("  ▸ " + item.Label)
		default:
			line = normal.Render("    " + item.Label)
		}
		if item.Detail != "" {
			line += "  " + detail.Render(item.Detail)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
