package session

import (
	"context"

	"github.com/abhisek/quizplay/internal/preflight"
	"github.com/abhisek/quizplay/internal/quiz"
)

// Host is the presenter side of the session. Calls are made from the
// goroutine running the command and never while session state is locked.
type Host interface {
	ShowError(msg string)

	// ShowProgress displays a blocking indicator until dismiss is called.
	ShowProgress(msg string) (dismiss func())

	// Confirm asks a yes/no question and blocks until answered.
	Confirm(ctx context.Context, msg string) bool

	ScrollTop()
	Resize()
	ScrollToQuestion(slot int)

	// Changed signals that a new Snapshot is worth rendering.
	Changed()
}

// NopHost ignores every side effect and declines every confirmation.
type NopHost struct{}

func (NopHost) ShowError(string)                     {}
func (NopHost) ShowProgress(string) func()           { return func() {} }
func (NopHost) Confirm(context.Context, string) bool { return false }
func (NopHost) ScrollTop()                           {}
func (NopHost) Resize()                              {}
func (NopHost) ScrollToQuestion(int)                 {}
func (NopHost) Changed()                             {}

// PostProcessor derives display annotations from question markup.
type PostProcessor interface {
	ReadableMark(html string) string
	StripInfo(html string) string
}

// FormReader is an optional PostProcessor extension that lists the values a
// question form posts untouched, such as the sequence check.
type FormReader interface {
	FormDefaults(html string) map[string]string
}

// PreflightValidator collects credentials when the access rules demand
// them.
type PreflightValidator interface {
	CollectAndValidate(ctx context.Context, req preflight.Request) (quiz.PreflightData, error)
}

type identityPost struct{}

func (identityPost) ReadableMark(string) string    { return "" }
func (identityPost) StripInfo(html string) string { return html }
