package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/ui/theme"
)

// PageIndicator shows where the learner is within the attempt: one dot per
// page plus a final mark for the summary.
type PageIndicator struct {
	Current int // zero-based; -1 while the summary is shown
	Total   int
	Summary bool
}

// NewPageIndicator creates a page indicator.
func NewPageIndicator(current, total int, summary bool) PageIndicator {
	return PageIndicator{Current: current, Total: total, Summary: summary}
}

// Label returns the textual position, e.g. "Page 2 of 4".
func (p PageIndicator) Label() string {
	if p.Summary {
		return "Summary"
	}
	if p.Total == 0 {
		return ""
	}
	return fmt.Sprintf("Page %d of %d", p.Current+1, p.Total)
}

// View renders the dots followed by the label.
func (p PageIndicator) View() string {
	dots := make([]string, 0, p.Total+1)
	for i := 0; i < p.Total; i++ {
		if !p.Summary && i == p.Current {
			dots = append(dots, lipgloss.NewStyle().Foreground(theme.Secondary).Render("●"))
		} else {
			dots = append(dots, lipgloss.NewStyle().Foreground(theme.Border).Render("○"))
		}
	}
	end := lipgloss.NewStyle().Foreground(theme.Border).Render("◇")
	if p.Summary {
		end = lipgloss.NewStyle().Foreground(theme.Secondary).Render("◆")
	}
	dots = append(dots, end)

	return strings.Join(dots, " ") + "  " +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(p.Label())
}
