package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/ui/theme"
)

// Choice is one selectable option.
type Choice struct {
	Value string
	Label string
}

// ChoiceList is a single-choice selector for radio and select controls.
type ChoiceList struct {
	Prompt   string
	Choices  []Choice
	Selected int    // cursor position
	Chosen   string // value picked with enter, or the initial value
	Done     bool
}

// NewChoiceList creates a choice list with the cursor on the current value.
func NewChoiceList(prompt string, choices []Choice, current string) ChoiceList {
	c := ChoiceList{Prompt: prompt, Choices: choices, Chosen: current}
	for i, ch := range choices {
		if ch.Value == current {
			c.Selected = i
			break
		}
	}
	return c
}

// Init returns nil.
func (c ChoiceList) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection. Number keys pick an
// option directly.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, tea.Cmd) {
	if c.Done {
		return c, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Choices)-1 {
			c.Selected++
		}
	case "enter", "space":
		if c.Selected < len(c.Choices) {
			c.Chosen = c.Choices[c.Selected].Value
			c.Done = true
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(c.Choices) {
				c.Selected = i
				c.Chosen = c.Choices[i].Value
				c.Done = true
			}
		}
	}

	return c, nil
}

// View renders the choice list.
func (c ChoiceList) View() string {
	var b strings.Builder
	if c.Prompt != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Prompt) + "\n")
	}

	for i, ch := range c.Choices {
		mark := "( )"
		if ch.Value == c.Chosen {
			mark = "(•)"
		}
		prefix := "  "
		if i == c.Selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d. %s %s", prefix, i+1, mark, ch.Label)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == c.Selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(line) + "\n")
	}

	return b.String()
}
