package session

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/markup"
	"github.com/abhisek/quizplay/internal/quiz"
	sess "github.com/abhisek/quizplay/internal/session"
	"github.com/abhisek/quizplay/internal/ui/components"
	"github.com/abhisek/quizplay/internal/ui/layout"
	"github.com/abhisek/quizplay/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	// Modals replace the page.
	switch {
	case s.dialog != nil:
		return components.Centered(s.dialog.View(width), width, height)
	case s.password != nil:
		return components.Centered(s.renderPassword(width), width, height)
	case len(s.progress) > 0:
		return components.Centered(theme.Modal.Render(s.progressText()), width, height)
	case s.toc != nil:
		return components.Centered(s.renderTOC(width), width, height)
	}

	var top strings.Builder
	if s.errMsg != "" {
		top.WriteString(layout.RenderBanner(s.errMsg, theme.Error, width))
		top.WriteString("\n")
	}

	if !s.started || s.snap.Attempt == nil || s.failed {
		if s.failed {
			top.WriteString(renderLoading(width, "Press R to try again."))
		} else {
			top.WriteString(renderLoading(width, "Opening attempt..."))
		}
		return top.String()
	}

	indicator := components.NewPageIndicator(s.snap.CurrentPage, s.snap.PageCount(), s.snap.ShowingSummary())
	top.WriteString("  " + indicator.View())
	if !s.snap.Loaded || s.snap.Op != sess.OpIdle {
		top.WriteString("  " + theme.Hint.Render(s.snap.Op.String()+"..."))
	}
	top.WriteString("\n")
	top.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	top.WriteString("\n")

	var body string
	var starts map[int]int
	if s.snap.ShowingSummary() {
		body = s.renderSummary(width)
	} else {
		body, starts = s.renderPage(width)
	}

	bodyHeight := height - lipgloss.Height(top.String())
	return top.String() + s.scroll(body, starts, bodyHeight)
}

// scroll windows body to height lines, honoring a pending scroll request.
func (s *SessionScreen) scroll(body string, starts map[int]int, height int) string {
	lines := strings.Split(body, "\n")
	if s.scrollToSlot != 0 {
		if line, ok := starts[s.scrollToSlot]; ok {
			if line < s.offset || line >= s.offset+height {
				s.offset = line
			}
		}
		s.scrollToSlot = 0
	}
	if s.offset > len(lines)-1 {
		s.offset = max(len(lines)-1, 0)
	}
	end := s.offset + max(height, 0)
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[s.offset:end], "\n")
}

// renderPage renders the current page's question cards. It returns each
// card's first line by slot.
func (s *SessionScreen) renderPage(width int) (string, map[int]int) {
	cw := components.ContentWidth(width)
	starts := make(map[int]int, len(s.snap.Questions))

	focusedSlot := 0
	if s.focus < len(s.fields) {
		focusedSlot = s.fields[s.focus].Slot
	}

	var b strings.Builder
	line := 0
	for _, q := range s.snap.Questions {
		starts[q.Slot] = line
		card := components.Panel(s.renderQuestion(q, cw-4), cw, q.Slot == focusedSlot)
		card = lipgloss.PlaceHorizontal(width, lipgloss.Center, card)
		b.WriteString(card)
		b.WriteString("\n")
		line += lipgloss.Height(card)
	}
	if len(s.snap.Questions) == 0 {
		b.WriteString(theme.Hint.Render("  This page has no questions."))
	}
	return b.String(), starts
}

func (s *SessionScreen) renderQuestion(q quiz.Question, width int) string {
	var b strings.Builder

	head := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(fmt.Sprintf("Question %d", q.Number))
	meta := q.Status
	if q.ReadableMark != "" {
		meta += " · " + q.ReadableMark
	}
	b.WriteString(head + "  " + theme.Hint.Render(meta))
	if q.Flagged {
		b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Accent).Render("⚑"))
	}
	b.WriteString("\n")
	b.WriteString(theme.Body.Width(width).Render(markup.QuestionText(q.HTML)))
	b.WriteString("\n")

	for i, f := range s.fields {
		if f.Slot != q.Slot {
			continue
		}
		b.WriteString("\n")
		b.WriteString(s.renderField(i, f))
	}
	return b.String()
}

func (s *SessionScreen) renderField(i int, f pageField) string {
	focused := i == s.focus
	if focused && s.editing {
		if f.Kind == kindChoice {
			return s.choiceEdit.View()
		}
		return s.textEdit.View()
	}

	prefix := "  "
	if focused {
		prefix = lipgloss.NewStyle().Foreground(theme.Primary).Render("▸ ")
	}
	label := f.Label
	if label == "" {
		label = "Answer:"
	}

	value := f.display(s.snap.Answers)
	style := theme.Body
	if _, pending := s.snap.Answers[f.Name]; pending {
		style = theme.Pending
	}
	if value == "" {
		value = theme.Hint.Render("not answered")
	} else {
		value = style.Render(value)
	}
	return prefix + lipgloss.NewStyle().Foreground(theme.TextDim).Render(label) + " " + value
}

func (s *SessionScreen) renderSummary(width int) string {
	cw := components.ContentWidth(width)
	questions := append([]quiz.Question(nil), s.snap.SummaryQuestions...)
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Number < questions[j].Number })

	var b strings.Builder
	b.WriteString(theme.Title.Width(width).Render("Summary of attempt"))
	b.WriteString("\n\n")
	for _, q := range questions {
		status := theme.Hint.Render(q.Status)
		if q.State == "complete" {
			status = theme.Saved.Render(q.Status)
		}
		row := fmt.Sprintf("%-14s %-8s ", fmt.Sprintf("Question %d", q.Number), fmt.Sprintf("page %d", q.Page+1)) + status
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(row)))
		b.WriteString("\n")
	}
	if len(questions) == 0 {
		b.WriteString(theme.Hint.Render("  No questions."))
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.NewButton("Submit all and finish (F)", true, nil).View()))
	return b.String()
}

func (s *SessionScreen) renderPassword(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("This quiz requires a password."))
	b.WriteString("\n")
	if s.passwordNote != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.passwordNote))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.password.View())

	w := width - 10
	if w > 60 {
		w = 60
	}
	return theme.Modal.Width(w).Render(b.String())
}

func (s *SessionScreen) renderTOC(width int) string {
	w := width - 10
	if w > 50 {
		w = 50
	}
	title := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Pages")
	return theme.Modal.Width(w).Render(title + "\n\n" + s.toc.View())
}

func (s *SessionScreen) progressText() string {
	ids := make([]int, 0, len(s.progress))
	for id := range s.progress {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return s.progress[ids[len(ids)-1]]
}

// renderLoading renders the loading state.
func renderLoading(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  " + text)
}
