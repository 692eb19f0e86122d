package session

import (
	"context"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizplay/internal/preflight"
	sess "github.com/abhisek/quizplay/internal/session"
)

// bridge turns session host calls into program messages. Its methods block
// on the program's event loop, so they must only be called from commands
// and other goroutines, never from Update.
type bridge struct {
	send func(tea.Msg)
	done <-chan struct{} // closed when the screen is torn down

	mu  sync.Mutex
	seq int
}

var _ sess.Host = (*bridge)(nil)
var _ preflight.Prompter = (*bridge)(nil)

func (b *bridge) ShowError(msg string) {
	b.send(errorMsg{Text: msg})
}

func (b *bridge) ShowProgress(msg string) func() {
	b.mu.Lock()
	b.seq++
	id := b.seq
	b.mu.Unlock()

	b.send(progressMsg{ID: id, Text: msg})
	var once sync.Once
	return func() {
		once.Do(func() { b.send(progressDoneMsg{ID: id}) })
	}
}

func (b *bridge) Confirm(ctx context.Context, msg string) bool {
	reply := make(chan bool, 1)
	b.send(confirmMsg{Text: msg, Reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	case <-b.done:
		return false
	}
}

func (b *bridge) PromptPassword(ctx context.Context, req preflight.Request) (string, error) {
	reply := make(chan passwordReply, 1)
	b.send(passwordMsg{Request: req, Reply: reply})
	select {
	case r := <-reply:
		if r.Cancelled {
			return "", preflight.ErrCancelled
		}
		return r.Value, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-b.done:
		return "", preflight.ErrCancelled
	}
}

func (b *bridge) ScrollTop() {
	b.send(scrollMsg{})
}

// Resize is a no-op: every frame is laid out from scratch.
func (b *bridge) Resize() {}

func (b *bridge) ScrollToQuestion(slot int) {
	b.send(scrollMsg{Slot: slot})
}

func (b *bridge) Changed() {
	b.send(changedMsg{})
}
