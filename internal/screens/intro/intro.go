// Package intro shows the quiz before an attempt is opened.
package intro

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/gateway"
	"github.com/abhisek/quizplay/internal/markup"
	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/router"
	"github.com/abhisek/quizplay/internal/screen"
	"github.com/abhisek/quizplay/internal/ui/components"
	"github.com/abhisek/quizplay/internal/ui/layout"
	"github.com/abhisek/quizplay/internal/ui/theme"
)

const loadTimeout = 30 * time.Second

type loadedMsg struct {
	Quiz     *quiz.Quiz
	Attempts []quiz.Attempt
	Err      error
}

// IntroScreen describes the quiz and opens the player on Enter.
type IntroScreen struct {
	gw       gateway.Gateway
	courseID int
	quizID   int
	player   func() screen.Screen

	loading  bool
	quiz     *quiz.Quiz
	attempts []quiz.Attempt
	errMsg   string
}

var _ screen.Screen = (*IntroScreen)(nil)
var _ screen.KeyHintProvider = (*IntroScreen)(nil)
var _ screen.Resumer = (*IntroScreen)(nil)

// New creates an IntroScreen. player builds a fresh attempt screen each
// time the learner enters the quiz.
func New(gw gateway.Gateway, courseID, quizID int, player func() screen.Screen) *IntroScreen {
	return &IntroScreen{
		gw:       gw,
		courseID: courseID,
		quizID:   quizID,
		player:   player,
	}
}

func (s *IntroScreen) Init() tea.Cmd {
	s.loading = true
	s.errMsg = ""
	gw, courseID, quizID := s.gw, s.courseID, s.quizID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		q, err := gw.GetQuiz(ctx, courseID, quizID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		attempts, err := gw.GetUserAttempts(ctx, q.ID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Quiz: q, Attempts: attempts}
	}
}

func (s *IntroScreen) Title() string {
	if s.quiz != nil {
		return s.quiz.Name
	}
	return "Quiz"
}

func (s *IntroScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Q", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: s.actionLabel()},
		{Key: "R", Description: "Refresh"},
		{Key: "Q", Description: "Quit"},
	}
}

func (s *IntroScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loading = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.quiz = msg.Quiz
		s.attempts = msg.Attempts
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, tea.Quit
		case "r":
			return s, s.Init()
		case "enter":
			if s.loading || s.errMsg != "" {
				return s, nil
			}
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: s.player()}
			}
		}
	}
	return s, nil
}

// actionLabel names what Enter does given the attempt history.
func (s *IntroScreen) actionLabel() string {
	if n := len(s.attempts); n > 0 && !s.attempts[n-1].State.IsFinished() {
		return "Continue attempt"
	}
	return "Start attempt"
}

func (s *IntroScreen) View(width, height int) string {
	if s.errMsg != "" {
		return components.Centered(
			layout.RenderBanner("Error getting quiz data. "+s.errMsg, theme.Error, width-8),
			width, height)
	}
	if s.loading || s.quiz == nil {
		return components.Centered(theme.Hint.Render("Loading quiz..."), width, height)
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render(s.quiz.Name))
	b.WriteString("\n\n")
	if intro := markup.PlainText(s.quiz.Intro); intro != "" {
		b.WriteString(theme.Body.Width(cw).Render(intro))
		b.WriteString("\n\n")
	}

	row := func(label, value string) {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(16).Render(label))
		b.WriteString(theme.Body.Render(value))
		b.WriteString("\n")
	}
	if s.quiz.IsTimed() {
		row("Time limit", quiz.FormatDuration(s.quiz.TimeLimit))
	} else {
		row("Time limit", "None")
	}
	if s.quiz.IsSequential() {
		row("Navigation", "Sequential")
	} else {
		row("Navigation", "Free")
	}
	row("Attempts", fmt.Sprintf("%d", len(s.attempts)))
	if n := len(s.attempts); n > 0 {
		last := s.attempts[n-1]
		row("Last attempt", fmt.Sprintf("#%d (%s)", last.Number, last.State))
	}

	b.WriteString("\n")
	b.WriteString(components.NewButton(s.actionLabel(), true, nil).View())

	return components.Centered(components.Panel(b.String(), cw, false), width, height)
}

// Resume reloads the attempt history after the player closes.
func (s *IntroScreen) Resume() tea.Cmd {
	return s.Init()
}
