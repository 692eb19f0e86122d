package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/quizplay/internal/backnav"
	"github.com/abhisek/quizplay/internal/gateway"
	"github.com/abhisek/quizplay/internal/markup"
	"github.com/abhisek/quizplay/internal/preflight"
	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/router"
	"github.com/abhisek/quizplay/internal/screen"
	sess "github.com/abhisek/quizplay/internal/session"
	"github.com/abhisek/quizplay/internal/ui/components"
	"github.com/abhisek/quizplay/internal/ui/layout"
)

const (
	msgConfirmFinish  = "Submit all your answers and finish the attempt?"
	msgConfirmAbandon = "Leave without saving this page?"
)

// Deps holds what the attempt screen needs from the app.
type Deps struct {
	Gateway  gateway.Gateway
	CourseID int
	QuizID   int

	GoBack       *backnav.Registry
	HardwareBack *backnav.Registry

	// Send delivers messages to the running program from any goroutine.
	Send func(tea.Msg)

	FocusDelay time.Duration
	Logger     zerolog.Logger
}

// dialogPurpose tells what a yes/no dialog answers.
type dialogPurpose int

const (
	purposeHost dialogPurpose = iota // the session asked through Host.Confirm
	purposeFinish
	purposeAbandon
)

// SessionScreen implements screen.Screen for one quiz attempt.
type SessionScreen struct {
	sess   *sess.Session
	goBack *backnav.Registry
	ctx    context.Context
	cancel context.CancelFunc

	snap    sess.Snapshot
	fields  []pageField
	focus   int
	started bool
	failed  bool // bootstrap failed; r retries
	errMsg  string

	progress map[int]string // open blocking indicators by id

	dialog        *components.Dialog
	dialogPurpose dialogPurpose
	dialogReply   chan<- bool

	password      *components.TextInput
	passwordReply chan<- passwordReply
	passwordNote  string

	toc *components.Menu

	editing    bool
	textEdit   components.TextInput
	choiceEdit components.ChoiceList
	editField  pageField

	offset       int
	scrollToSlot int
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)
var _ screen.Closer = (*SessionScreen)(nil)
var _ screen.EscapeConsumer = (*SessionScreen)(nil)

// New creates the attempt screen and its session. The session takes over
// both back registries until the screen is closed.
func New(deps Deps) *SessionScreen {
	ctx, cancel := context.WithCancel(context.Background())
	host := &bridge{send: deps.Send, done: ctx.Done()}

	s := &SessionScreen{
		goBack:   deps.GoBack,
		ctx:      ctx,
		cancel:   cancel,
		progress: map[int]string{},
	}
	s.sess = sess.New(deps.Gateway, sess.Options{
		CourseID:      deps.CourseID,
		QuizID:        deps.QuizID,
		Host:          host,
		PostProcessor: markup.Renderer{},
		Validator:     preflight.NewValidator(host, preflight.DefaultMaxLength),
		GoBack:        deps.GoBack,
		HardwareBack:  deps.HardwareBack,
		Exit:          func() { deps.Send(router.PopScreenMsg{}) },
		FocusDelay:    deps.FocusDelay,
		Logger:        deps.Logger,
	})
	return s
}

func (s *SessionScreen) Init() tea.Cmd {
	return s.start()
}

func (s *SessionScreen) start() tea.Cmd {
	ss, ctx := s.sess, s.ctx
	s.failed = false
	s.errMsg = ""
	return func() tea.Msg {
		return startedMsg{Err: ss.Start(ctx, sess.FreshStart{})}
	}
}

// Close cancels pending prompts and hands the back registries back.
func (s *SessionScreen) Close() {
	s.cancel()
	s.sess.Close()
}

func (s *SessionScreen) Title() string {
	if s.snap.Quiz != nil {
		return s.snap.Quiz.Name
	}
	return "Attempt"
}

func (s *SessionScreen) Status() string {
	if s.snap.Attempt == nil {
		return ""
	}
	label := components.NewPageIndicator(s.snap.CurrentPage, s.snap.PageCount(), s.snap.ShowingSummary()).Label()
	if s.snap.Quiz != nil && s.snap.Quiz.ReadableTimeLimit != "" {
		label += "  ·  " + s.snap.Quiz.ReadableTimeLimit
	}
	return label
}

// ConsumesEscape keeps Esc inside open modals and edits instead of
// triggering a back navigation.
func (s *SessionScreen) ConsumesEscape() bool {
	return s.dialog != nil || s.password != nil || s.toc != nil || s.editing
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.dialog != nil:
		return []layout.KeyHint{
			{Key: "Y", Description: "Yes"},
			{Key: "N", Description: "No"},
		}
	case s.password != nil:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Cancel"},
		}
	case s.toc != nil:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Go"},
			{Key: "Esc", Description: "Close"},
		}
	case s.editing:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Keep"},
			{Key: "Esc", Description: "Discard"},
		}
	case s.failed:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	case s.snap.ShowingSummary():
		return []layout.KeyHint{
			{Key: "T", Description: "Pages"},
			{Key: "F", Description: "Finish"},
			{Key: "Q", Description: "Leave"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Answer"},
	}
	if s.snap.PreviousPage >= 0 {
		hints = append(hints, layout.KeyHint{Key: "P", Description: "Previous"})
	}
	if s.snap.NextPage >= 0 {
		hints = append(hints, layout.KeyHint{Key: "N", Description: "Next"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "N", Description: "Summary"})
	}
	return append(hints,
		layout.KeyHint{Key: "T", Description: "Pages"},
		layout.KeyHint{Key: "Q", Description: "Leave"},
	)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		s.refresh()
		return s, nil

	case startedMsg:
		s.started = true
		s.refresh()
		if msg.Err != nil {
			s.failed = true
		}
		return s, nil

	case navDoneMsg:
		s.refresh()
		if msg.Err == nil {
			s.errMsg = ""
		}
		return s, nil

	case answerSetMsg, leaveDoneMsg:
		s.refresh()
		return s, nil

	case errorMsg:
		s.errMsg = msg.Text
		return s, nil

	case progressMsg:
		s.progress[msg.ID] = msg.Text
		return s, nil

	case progressDoneMsg:
		delete(s.progress, msg.ID)
		return s, nil

	case confirmMsg:
		d := components.NewDialog(msg.Text, "Leave", "Stay")
		s.dialog = &d
		s.dialogPurpose = purposeHost
		s.dialogReply = msg.Reply
		return s, nil

	case passwordMsg:
		in := components.NewTextInput("Password:", "", true, preflight.DefaultMaxLength)
		s.password = &in
		s.passwordReply = msg.Reply
		s.passwordNote = msg.Request.Reason
		return s, in.Init()

	case scrollMsg:
		if msg.Slot == 0 {
			s.offset = 0
			s.scrollToSlot = 0
		} else {
			s.scrollToSlot = msg.Slot
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Forward to the open text input (cursor blink and the like).
	if s.password != nil {
		var cmd tea.Cmd
		*s.password, cmd = s.password.Update(msg)
		return s, cmd
	}
	if s.editing && s.editField.Kind == kindText {
		var cmd tea.Cmd
		s.textEdit, cmd = s.textEdit.Update(msg)
		return s, cmd
	}
	return s, nil
}

// refresh re-reads the session snapshot and rebuilds the page's fields.
func (s *SessionScreen) refresh() {
	prev := s.snap
	s.snap = s.sess.Snapshot()
	if prev.CurrentPage != s.snap.CurrentPage || prev.ShowingSummary() != s.snap.ShowingSummary() ||
		len(prev.Questions) != len(s.snap.Questions) {
		s.focus = 0
		s.offset = 0
		s.editing = false
	}
	s.fields = buildFields(s.snap.Questions)
	if s.focus >= len(s.fields) {
		s.focus = 0
	}
}

// busy reports whether an operation is settling or a blocking indicator is up.
func (s *SessionScreen) busy() bool {
	return !s.started || s.snap.Op != sess.OpIdle || !s.snap.Loaded || len(s.progress) > 0
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch {
	case s.dialog != nil:
		return s.handleDialogKey(msg)
	case s.password != nil:
		return s.handlePasswordKey(msg)
	case s.toc != nil:
		return s.handleTOCKey(msg)
	case s.editing:
		return s.handleEditKey(msg)
	}

	if s.failed {
		if key == "r" {
			return s, s.start()
		}
		return s, nil
	}

	switch key {
	case "q":
		return s, s.dispatchBack()
	case "pgdown":
		s.offset += 5
		return s, nil
	case "pgup":
		if s.offset -= 5; s.offset < 0 {
			s.offset = 0
		}
		return s, nil
	}

	if s.busy() {
		return s, nil
	}

	switch key {
	case "n", "right":
		if s.snap.ShowingSummary() {
			return s, nil
		}
		target := s.snap.NextPage
		if target < 0 {
			target = quiz.SummaryPage
		}
		return s, s.navigate(sess.NavRequest{Target: target})
	case "p", "left":
		if s.snap.ShowingSummary() {
			return s, s.navigate(sess.NavRequest{Target: s.snap.CurrentPage})
		}
		if s.snap.PreviousPage < 0 {
			return s, nil
		}
		return s, s.navigate(sess.NavRequest{Target: s.snap.PreviousPage})
	case "s":
		return s, s.navigate(sess.NavRequest{Target: quiz.SummaryPage})
	case "t":
		s.openTOC()
		return s, nil
	case "F":
		if !s.snap.ShowingSummary() {
			return s, nil
		}
		d := components.NewDialog(msgConfirmFinish, "Finish", "Cancel")
		s.dialog = &d
		s.dialogPurpose = purposeFinish
		return s, nil
	case "x":
		d := components.NewDialog(msgConfirmAbandon, "Leave", "Stay")
		s.dialog = &d
		s.dialogPurpose = purposeAbandon
		return s, nil
	case "tab", "down", "j":
		if len(s.fields) > 0 {
			s.focus = (s.focus + 1) % len(s.fields)
			s.scrollToSlot = s.fields[s.focus].Slot
		}
		return s, nil
	case "shift+tab", "up", "k":
		if len(s.fields) > 0 {
			s.focus = (s.focus - 1 + len(s.fields)) % len(s.fields)
			s.scrollToSlot = s.fields[s.focus].Slot
		}
		return s, nil
	case "enter", "space":
		return s.beginEdit()
	}
	return s, nil
}

// dispatchBack runs the in-app back action. The session's handler answers
// it while the attempt is open.
func (s *SessionScreen) dispatchBack() tea.Cmd {
	reg := s.goBack
	if reg == nil {
		ss, ctx := s.sess, s.ctx
		return func() tea.Msg { return leaveDoneMsg{Err: ss.Leave(ctx)} }
	}
	return func() tea.Msg {
		reg.Dispatch()
		return nil
	}
}

func (s *SessionScreen) navigate(req sess.NavRequest) tea.Cmd {
	ss, ctx := s.sess, s.ctx
	return func() tea.Msg {
		return navDoneMsg{Err: ss.RequestNavigation(ctx, req)}
	}
}

func (s *SessionScreen) openTOC() {
	sequential := s.snap.Quiz != nil && s.snap.Quiz.IsSequential()
	items := make([]components.MenuItem, 0, len(s.snap.TOC)+1)
	current := 0
	for i, p := range s.snap.TOC {
		p := p
		if p.Index == s.snap.CurrentPage && !s.snap.ShowingSummary() {
			current = i
		}
		items = append(items, components.MenuItem{
			Label:    tocLabel(p),
			Disabled: sequential,
			Action: func() tea.Cmd {
				return s.navigate(sess.NavRequest{Target: p.Index, FromTOC: true, FocusSlot: firstSlot(p)})
			},
		})
	}
	items = append(items, components.MenuItem{
		Label: "Summary",
		Action: func() tea.Cmd {
			return s.navigate(sess.NavRequest{Target: quiz.SummaryPage, FromTOC: true})
		},
	})
	m := components.NewMenu(items)
	if s.snap.ShowingSummary() || sequential {
		current = len(items) - 1
	}
	m.Select(current)
	s.toc = &m
}

func (s *SessionScreen) handleTOCKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc", "t":
		s.toc = nil
		return s, nil
	case "enter":
		var cmd tea.Cmd
		*s.toc, cmd = s.toc.Update(msg)
		s.toc = nil
		return s, cmd
	}
	var cmd tea.Cmd
	*s.toc, cmd = s.toc.Update(msg)
	return s, cmd
}

func (s *SessionScreen) handleDialogKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	d, _ := s.dialog.Update(msg)
	if !d.Answered {
		s.dialog = &d
		return s, nil
	}
	s.dialog = nil

	switch s.dialogPurpose {
	case purposeHost:
		if s.dialogReply != nil {
			s.dialogReply <- d.Accepted
			s.dialogReply = nil
		}
	case purposeFinish:
		if d.Accepted {
			ss, ctx := s.sess, s.ctx
			return s, func() tea.Msg { return leaveDoneMsg{Err: ss.Finish(ctx, false)} }
		}
	case purposeAbandon:
		if d.Accepted {
			ss, ctx := s.sess, s.ctx
			return s, func() tea.Msg {
				ss.Abort()
				return leaveDoneMsg{Err: ss.Leave(ctx)}
			}
		}
	}
	return s, nil
}

func (s *SessionScreen) handlePasswordKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		s.replyPassword(passwordReply{Value: s.password.Value()})
		return s, nil
	case "esc":
		s.replyPassword(passwordReply{Cancelled: true})
		return s, nil
	}
	var cmd tea.Cmd
	*s.password, cmd = s.password.Update(msg)
	return s, cmd
}

func (s *SessionScreen) replyPassword(r passwordReply) {
	if s.passwordReply != nil {
		s.passwordReply <- r
		s.passwordReply = nil
	}
	s.password = nil
	s.passwordNote = ""
}

func (s *SessionScreen) beginEdit() (screen.Screen, tea.Cmd) {
	if s.snap.ShowingSummary() || len(s.fields) == 0 {
		return s, nil
	}
	f := s.fields[s.focus]
	current := f.value(s.snap.Answers)

	switch f.Kind {
	case kindCheck:
		next := f.On
		if current == f.On {
			next = ""
		}
		return s, s.setAnswer(f, next)
	case kindChoice:
		s.choiceEdit = components.NewChoiceList(f.Label, f.Choices, current)
	default:
		s.textEdit = components.NewTextInput(f.Label, "Type your answer...", false, 0)
		s.textEdit.SetValue(current)
	}
	s.editing = true
	s.editField = f
	if f.Kind == kindText {
		return s, s.textEdit.Focus()
	}
	return s, nil
}

func (s *SessionScreen) handleEditKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	f := s.editField
	switch msg.String() {
	case "esc":
		s.editing = false
		return s, nil
	case "enter":
		if f.Kind == kindText {
			s.editing = false
			return s, s.setAnswer(f, s.textEdit.Value())
		}
	}

	if f.Kind == kindChoice {
		s.choiceEdit, _ = s.choiceEdit.Update(msg)
		if s.choiceEdit.Done {
			s.editing = false
			return s, s.setAnswer(f, s.choiceEdit.Chosen)
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.textEdit, cmd = s.textEdit.Update(msg)
	return s, cmd
}

// setAnswer buffers an edit off the update loop; the session notifies the
// host when it lands.
func (s *SessionScreen) setAnswer(f pageField, value string) tea.Cmd {
	ss := s.sess
	return func() tea.Msg {
		err := ss.SetAnswer(f.Slot, f.Name, value)
		if err != nil && !errors.Is(err, sess.ErrBusy) {
			return errorMsg{Text: err.Error()}
		}
		return answerSetMsg{Err: err}
	}
}

func tocLabel(p quiz.PageDescriptor) string {
	return fmt.Sprintf("Page %d  (%d questions)", p.Index+1, len(p.Slots))
}

func firstSlot(p quiz.PageDescriptor) int {
	if len(p.Slots) == 0 {
		return 0
	}
	return p.Slots[0]
}
