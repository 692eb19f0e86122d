package app

import (
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/quizplay/internal/backnav"
	"github.com/abhisek/quizplay/internal/gateway"
	"github.com/abhisek/quizplay/internal/router"
	"github.com/abhisek/quizplay/internal/screen"
	"github.com/abhisek/quizplay/internal/screens/intro"
	"github.com/abhisek/quizplay/internal/screens/session"
	"github.com/abhisek/quizplay/internal/ui/layout"
)

// Options holds the dependencies injected into the TUI.
type Options struct {
	Gateway    gateway.Gateway
	CourseID   int
	QuizID     int
	FocusDelay time.Duration
	Logger     zerolog.Logger
}

// sender forwards messages into the running program. It is bound after the
// program is created and before it runs.
type sender struct {
	p *tea.Program
}

func (s *sender) Send(msg tea.Msg) {
	if s.p != nil {
		s.p.Send(msg)
	}
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	goBack   *backnav.Registry
	hardware *backnav.Registry
	width    int
	height   int
}

// newAppModel creates the root model with the quiz intro screen. Both back
// registries end in a router-level handler that pops the active screen.
func newAppModel(opts Options, send func(tea.Msg)) AppModel {
	goBack := backnav.NewRegistry("go-back")
	hardware := backnav.NewRegistry("hardware-back")
	pop := func(*backnav.Handle) { send(router.PopScreenMsg{}) }
	goBack.Register(backnav.PriorityDefault, pop)
	hardware.Register(backnav.PriorityDefault, pop)

	player := func() screen.Screen {
		return session.New(session.Deps{
			Gateway:      opts.Gateway,
			CourseID:     opts.CourseID,
			QuizID:       opts.QuizID,
			GoBack:       goBack,
			HardwareBack: hardware,
			Send:         send,
			FocusDelay:   opts.FocusDelay,
			Logger:       opts.Logger,
		})
	}

	return AppModel{
		router:   router.New(intro.New(opts.Gateway, opts.CourseID, opts.QuizID, player)),
		goBack:   goBack,
		hardware: hardware,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if ec, ok := m.router.Active().(screen.EscapeConsumer); ok && ec.ConsumesEscape() {
				break
			}
			// Handlers may send into the program, so dispatch off the
			// update loop.
			hardware := m.hardware
			return m, func() tea.Msg {
				hardware.Dispatch()
				return nil
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if len(footerHints) == 0 {
		footerHints = []layout.KeyHint{
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	s := &sender{}
	p := tea.NewProgram(newAppModel(opts, s.Send))
	s.p = p
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
