package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/ui/theme"
)

// Button is a styled button component.
type Button struct {
	Label   string
	Active  bool
	OnPress func() tea.Cmd
}

// NewButton creates a new button.
func NewButton(label string, active bool, onPress func() tea.Cmd) Button {
	return Button{
		Label:   label,
		Active:  active,
		OnPress: onPress,
	}
}

// Update handles key events.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if !b.Active {
		return b, nil
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if kmsg.String() == "enter" && b.OnPress != nil {
			return b, b.OnPress()
		}
	}

	return b, nil
}

// View renders the button.
func (b Button) View() string {
	if b.Active {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}

// Dialog is a modal yes/no question. Answered is set once the user picks.
type Dialog struct {
	Message  string
	Yes      Button
	No       Button
	Answered bool
	Accepted bool
}

// NewDialog creates a dialog with "No" focused.
func NewDialog(message, yes, no string) Dialog {
	return Dialog{
		Message: message,
		Yes:     NewButton(yes, false, nil),
		No:      NewButton(no, true, nil),
	}
}

// Update handles y/n shortcuts, focus switching and enter.
func (d Dialog) Update(msg tea.Msg) (Dialog, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || d.Answered {
		return d, nil
	}

	switch kmsg.String() {
	case "y", "Y":
		d.Answered, d.Accepted = true, true
	case "n", "N", "esc":
		d.Answered, d.Accepted = true, false
	case "left", "right", "tab", "h", "l":
		d.Yes.Active, d.No.Active = !d.Yes.Active, !d.No.Active
	case "enter":
		d.Answered, d.Accepted = true, d.Yes.Active
	}
	return d, nil
}

// View renders the dialog box.
func (d Dialog) View(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(d.Message))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, d.Yes.View(), "  ", d.No.View()))

	w := width - 10
	if w > 60 {
		w = 60
	}
	return theme.Modal.Width(w).Render(b.String())
}
