package layout

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/ui/theme"
)

// A question card plus its answer rows needs roughly this much room.
const (
	MinWidth  = 60
	MinHeight = 18
)

// KeyHint is one binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether the terminal cannot fit a page.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(
			"Make the terminal at least %dx%d to continue (now %dx%d).",
			MinWidth, MinHeight, width, height,
		)))
}

// RenderHeader renders a one-line bar: app name and title on the left,
// status on the right. The title is cut when both do not fit.
func RenderHeader(title, status string, width int) string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("quizplay")
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	room := width - 2 - lipgloss.Width(name) - lipgloss.Width(right) - 4
	if title != "" && room > 1 {
		if lipgloss.Width(title) > room {
			title = truncate(title, room)
		}
		name += lipgloss.NewStyle().Foreground(theme.TextDim).Render(" / ") +
			lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	}

	gap := width - 2 - lipgloss.Width(name) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Background(theme.BgCard)
	return bar.Render(name + strings.Repeat(" ", gap) + right)
}

// RenderBanner renders a one-line notice, e.g. an error, across the content width.
func RenderBanner(text string, color color.Color, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Foreground(color).
		Bold(true).
		Padding(0, 2).
		Render(text)
}

// RenderFooter renders as many hints as fit on one line.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var line string
	for _, h := range hints {
		part := keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
		next := part
		if line != "" {
			next = line + "   " + part
		}
		if lipgloss.Width(next) > width-2 {
			break
		}
		line = next
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(theme.Border).
		Render(line)
}

// RenderFrame stacks header, content and footer, padding content to fill
// the remaining height.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
