package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizplay/internal/backnav"
	"github.com/abhisek/quizplay/internal/gateway"
	"github.com/abhisek/quizplay/internal/markup"
	"github.com/abhisek/quizplay/internal/quiz"
)

type recordingHost struct {
	mu        sync.Mutex
	errors    []string
	progress  []string
	dismissed int
	confirms  []string
	confirmOK bool
	focused   []int
	scrolls   int
	resizes   int
}

func (h *recordingHost) ShowError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
}

func (h *recordingHost) ShowProgress(msg string) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progress = append(h.progress, msg)
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.dismissed++
	}
}

func (h *recordingHost) Confirm(_ context.Context, msg string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.confirms = append(h.confirms, msg)
	return h.confirmOK
}

func (h *recordingHost) ScrollTop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scrolls++
}

func (h *recordingHost) Resize() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resizes++
}

func (h *recordingHost) ScrollToQuestion(slot int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.focused = append(h.focused, slot)
}

func (h *recordingHost) Changed() {}

func (h *recordingHost) Errors() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.errors...)
}

func (h *recordingHost) Focused() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.focused...)
}

type fixture struct {
	gw       *gateway.Memory
	host     *recordingHost
	back     *backnav.Registry
	hardware *backnav.Registry
	exits    int
	routed   int
	mu       sync.Mutex
	sess     *Session
}

func (f *fixture) exitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exits
}

func (f *fixture) routedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.routed
}

// newFixture wires a session to gw with a router-level back handler below it.
func newFixture(t *testing.T, gw *gateway.Memory, quizID int, opts ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		gw:       gw,
		host:     &recordingHost{},
		back:     backnav.NewRegistry("go-back"),
		hardware: backnav.NewRegistry("hardware-back"),
	}
	route := func(*backnav.Handle) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.routed++
	}
	f.back.Register(backnav.PriorityDefault, route)
	f.hardware.Register(backnav.PriorityDefault, route)

	o := Options{
		CourseID:      gateway.DemoCourseID,
		QuizID:        quizID,
		Host:          f.host,
		PostProcessor: markup.Renderer{},
		GoBack:        f.back,
		HardwareBack:  f.hardware,
		Exit: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.exits++
		},
		FocusDelay: time.Millisecond,
	}
	for _, fn := range opts {
		fn(&o)
	}
	f.sess = New(gw, o)
	t.Cleanup(func() {
		f.sess.Close()
		f.sess.Wait()
	})
	return f
}

// fourPageQuiz registers quiz 2 with four single-question pages.
func fourPageQuiz(gw *gateway.Memory, mode quiz.NavigationMode) {
	gw.AddQuiz(quiz.Quiz{ID: 2, CourseID: gateway.DemoCourseID, Name: "Four pages", Navigation: mode}, "",
		[][]gateway.MemoryQuestion{
			{{Slot: 1, Text: "one", MaxMark: 1}},
			{{Slot: 2, Text: "two", MaxMark: 1}},
			{{Slot: 3, Text: "three", MaxMark: 1}},
			{{Slot: 4, Text: "four", MaxMark: 1}},
		})
}

func answerField(attemptID, slot int) string {
	return fmt.Sprintf("q%d:%d_answer", attemptID, slot)
}

func startDemo(t *testing.T, f *fixture) Snapshot {
	t.Helper()
	require.NoError(t, f.sess.Start(context.Background(), FreshStart{}))
	return f.sess.Snapshot()
}

// blockOn holds the next call of op until the returned release is called.
// entered is closed once the call is in flight.
func blockOn(gw *gateway.Memory, op string) (entered <-chan struct{}, release func()) {
	in := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	gw.SetHook(func(_ context.Context, called string) {
		if called != op {
			return
		}
		first := false
		once.Do(func() { first = true })
		if !first {
			return
		}
		close(in)
		<-gate
	})
	return in, func() { close(gate) }
}
