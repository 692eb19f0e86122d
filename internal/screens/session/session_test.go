package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizplay/internal/backnav"
	"github.com/abhisek/quizplay/internal/gateway"
	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/router"
	sess "github.com/abhisek/quizplay/internal/session"
)

// harness plays the role of the program: commands run on goroutines and
// every message they produce is fed back through Update on the test
// goroutine.
type harness struct {
	t      *testing.T
	gw     *gateway.Memory
	scr    *SessionScreen
	msgs   chan tea.Msg
	popped int

	closeOnce sync.Once
}

func newHarness(t *testing.T, gw *gateway.Memory) *harness {
	t.Helper()
	h := &harness{t: t, gw: gw, msgs: make(chan tea.Msg, 256)}
	send := func(msg tea.Msg) { h.msgs <- msg }

	goBack := backnav.NewRegistry("go-back")
	hardware := backnav.NewRegistry("hardware-back")
	pop := func(*backnav.Handle) { send(router.PopScreenMsg{}) }
	goBack.Register(backnav.PriorityDefault, pop)
	hardware.Register(backnav.PriorityDefault, pop)

	h.scr = New(Deps{
		Gateway:      gw,
		CourseID:     gateway.DemoCourseID,
		QuizID:       gateway.DemoQuizID,
		GoBack:       goBack,
		HardwareBack: hardware,
		Send:         send,
		FocusDelay:   10 * time.Millisecond,
		Logger:       zerolog.Nop(),
	})
	t.Cleanup(h.close)
	return h
}

func (h *harness) close() {
	h.closeOnce.Do(h.scr.Close)
}

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		if msg := cmd(); msg != nil {
			h.msgs <- msg
		}
	}()
}

func (h *harness) dispatch(msg tea.Msg) {
	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
		return
	case router.PopScreenMsg:
		h.popped++
		h.close()
		return
	}
	_, cmd := h.scr.Update(msg)
	h.run(cmd)
}

func (h *harness) pumpUntil(cond func() bool) {
	h.t.Helper()
	deadline := time.After(3 * time.Second)
	for !cond() {
		select {
		case msg := <-h.msgs:
			h.dispatch(msg)
		case <-deadline:
			h.t.Fatal("timed out waiting for screen state")
		}
	}
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		var msg tea.KeyPressMsg
		switch k {
		case "enter":
			msg = tea.KeyPressMsg{Code: tea.KeyEnter}
		case "esc":
			msg = tea.KeyPressMsg{Code: tea.KeyEscape}
		case "tab":
			msg = tea.KeyPressMsg{Code: tea.KeyTab}
		default:
			r := []rune(k)[0]
			msg = tea.KeyPressMsg{Code: r, Text: k}
		}
		h.dispatch(msg)
	}
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.press(string(r))
	}
}

// idle waits until the session has settled.
func (h *harness) idle() func() bool {
	return func() bool {
		snap := h.scr.sess.Snapshot()
		return snap.Op == sess.OpIdle && snap.Loaded && len(h.scr.progress) == 0
	}
}

func (h *harness) startAndWait() {
	h.t.Helper()
	h.run(h.scr.Init())
	h.pumpUntil(func() bool { return h.scr.started })
	h.pumpUntil(h.idle())
	h.scr.refresh()
}

func TestStartShowsFirstPage(t *testing.T) {
	h := newHarness(t, gateway.NewDemo("", quiz.NavFree))
	h.startAndWait()

	require.False(t, h.scr.failed)
	assert.Contains(t, h.scr.Status(), "Page 1 of 3")
	assert.Equal(t, "World capitals", h.scr.Title())
	require.Len(t, h.scr.fields, 2)
	assert.Equal(t, kindText, h.scr.fields[0].Kind)

	view := h.scr.View(100, 40)
	assert.Contains(t, view, "What is the capital of France?")
	assert.Contains(t, view, "Marked out of 1.00")
}

func TestAnswerIsSavedOnNavigation(t *testing.T) {
	gw := gateway.NewDemo("", quiz.NavFree)
	h := newHarness(t, gw)
	h.startAndWait()
	field := h.scr.fields[0].Name

	h.press("enter")
	require.True(t, h.scr.editing)
	assert.True(t, h.scr.ConsumesEscape())
	h.typeText("Paris")
	h.press("enter")
	h.pumpUntil(func() bool { return h.scr.snap.BufferSize == 1 })
	assert.Equal(t, "Paris", h.scr.snap.Answers[field])

	h.press("n")
	h.pumpUntil(func() bool { return h.scr.snap.CurrentPage == 1 && h.scr.snap.Loaded && h.scr.snap.Op == sess.OpIdle })

	attempt := h.scr.snap.Attempt
	require.NotNil(t, attempt)
	assert.Equal(t, "Paris", gw.SavedAnswers(attempt.ID)[field])
	assert.Equal(t, 0, h.scr.snap.BufferSize)
	require.Len(t, h.scr.fields, 1)
}

func TestEditDiscardedWithEscape(t *testing.T) {
	h := newHarness(t, gateway.NewDemo("", quiz.NavFree))
	h.startAndWait()

	h.press("enter")
	h.typeText("Lyon")
	h.press("esc")

	assert.False(t, h.scr.editing)
	assert.False(t, h.scr.ConsumesEscape())
	assert.Equal(t, 0, h.scr.sess.Snapshot().BufferSize)
}

func TestRetryAfterFirstPageFailure(t *testing.T) {
	gw := gateway.NewDemo("", quiz.NavFree)
	gw.FailNext(gateway.OpGetPage, &gateway.ErrUnavailable{Err: errors.New("timeout")})
	h := newHarness(t, gw)
	h.run(h.scr.Init())
	h.pumpUntil(func() bool { return h.scr.started && h.scr.failed })
	assert.NotEmpty(t, h.scr.errMsg)
	assert.Contains(t, h.scr.View(100, 40), "Press R to try again.")

	h.press("r")
	h.pumpUntil(func() bool {
		return !h.scr.failed && len(h.scr.fields) == 2 && h.idle()()
	})
	h.scr.refresh()
	assert.Contains(t, h.scr.View(100, 40), "What is the capital of France?")
	assert.Equal(t, 1, gw.CallCount(gateway.OpCreateOrContinue))
}

func TestPasswordPromptReasksAfterRejection(t *testing.T) {
	h := newHarness(t, gateway.NewDemo("secret", quiz.NavFree))
	h.run(h.scr.Init())

	h.pumpUntil(func() bool { return h.scr.password != nil })
	assert.True(t, h.scr.ConsumesEscape())
	assert.Empty(t, h.scr.passwordNote)
	h.typeText("wrong")
	h.press("enter")

	h.pumpUntil(func() bool { return h.scr.password != nil && h.scr.passwordNote != "" })
	h.typeText("secret")
	h.press("enter")

	h.pumpUntil(func() bool { return h.scr.started })
	h.pumpUntil(h.idle())
	h.scr.refresh()
	assert.False(t, h.scr.failed)
	assert.NotNil(t, h.scr.snap.Attempt)
}

func TestPasswordPromptCancelled(t *testing.T) {
	h := newHarness(t, gateway.NewDemo("secret", quiz.NavFree))
	h.run(h.scr.Init())

	h.pumpUntil(func() bool { return h.scr.password != nil })
	h.press("esc")
	h.pumpUntil(func() bool { return h.scr.started })

	assert.True(t, h.scr.failed)
	assert.Nil(t, h.scr.password)
	assert.Equal(t, "This quiz requires a password.", h.scr.errMsg)
}

func TestBackKeySavesAndLeaves(t *testing.T) {
	gw := gateway.NewDemo("", quiz.NavFree)
	h := newHarness(t, gw)
	h.startAndWait()

	h.press("q")
	h.pumpUntil(func() bool { return h.popped == 1 })

	subs := gw.Submissions()
	require.Len(t, subs, 1)
	assert.False(t, subs[0].Finish)
}

func TestLeaveSaveFailureAsksBeforeExiting(t *testing.T) {
	gw := gateway.NewDemo("", quiz.NavFree)
	h := newHarness(t, gw)
	h.startAndWait()

	gw.FailNext(gateway.OpSubmitAnswers, errors.New("boom"))
	h.press("q")
	h.pumpUntil(func() bool { return h.scr.dialog != nil })
	assert.Equal(t, purposeHost, h.scr.dialogPurpose)

	h.press("n")
	h.pumpUntil(func() bool { return h.scr.sess.Snapshot().Op == sess.OpIdle })
	assert.Equal(t, 0, h.popped)

	h.press("q")
	h.pumpUntil(func() bool { return h.popped == 1 })
}

func TestAbandonSkipsSave(t *testing.T) {
	gw := gateway.NewDemo("", quiz.NavFree)
	h := newHarness(t, gw)
	h.startAndWait()

	h.press("x")
	require.NotNil(t, h.scr.dialog)
	h.press("y")
	h.pumpUntil(func() bool { return h.popped == 1 })

	assert.Empty(t, gw.Submissions())
}

func TestFinishFromSummary(t *testing.T) {
	gw := gateway.NewDemo("", quiz.NavFree)
	h := newHarness(t, gw)
	h.startAndWait()

	h.press("F")
	assert.Nil(t, h.scr.dialog, "finish is only offered on the summary")

	h.press("s")
	h.pumpUntil(func() bool { return h.scr.snap.ShowingSummary() && h.scr.snap.Loaded && h.scr.snap.Op == sess.OpIdle })
	assert.Contains(t, h.scr.View(100, 40), "Summary of attempt")

	h.press("F")
	require.NotNil(t, h.scr.dialog)
	h.press("y")
	h.pumpUntil(func() bool { return h.popped == 1 })

	subs := gw.Submissions()
	require.NotEmpty(t, subs)
	assert.True(t, subs[len(subs)-1].Finish)
}

func TestTOCSequentialOffersOnlySummary(t *testing.T) {
	h := newHarness(t, gateway.NewDemo("", quiz.NavSequential))
	h.startAndWait()

	h.press("t")
	require.NotNil(t, h.scr.toc)
	items := h.scr.toc.Items
	require.Len(t, items, 4)
	for _, it := range items[:3] {
		assert.True(t, it.Disabled)
	}
	assert.Equal(t, 3, h.scr.toc.Selected)

	h.press("esc")
	assert.Nil(t, h.scr.toc)
}

func TestTOCJumpsToPage(t *testing.T) {
	h := newHarness(t, gateway.NewDemo("", quiz.NavFree))
	h.startAndWait()

	h.press("t", "j", "j", "enter")
	assert.Nil(t, h.scr.toc)
	h.pumpUntil(func() bool { return h.scr.snap.CurrentPage == 2 && h.scr.snap.Loaded && h.scr.snap.Op == sess.OpIdle })
	assert.Contains(t, h.scr.Status(), "Page 3 of 3")
}

func TestBridgeConfirmReturnsFalseWhenClosed(t *testing.T) {
	done := make(chan struct{})
	b := &bridge{send: func(tea.Msg) {}, done: done}
	close(done)
	assert.False(t, b.Confirm(t.Context(), "leave?"))
}
