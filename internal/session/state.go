package session

import (
	"github.com/abhisek/quizplay/internal/quiz"
)

// OpState is the single-slot operation token. Only one page-affecting
// operation holds it at a time.
type OpState int

const (
	OpIdle           OpState = iota // No operation in flight
	OpLoading                       // Fetching quiz data, a page or the summary
	OpSaving                        // Submitting the answer buffer
	OpLeavingPending                // Leave protocol running
)

func (s OpState) String() string {
	switch s {
	case OpIdle:
		return "idle"
	case OpLoading:
		return "loading"
	case OpSaving:
		return "saving"
	case OpLeavingPending:
		return "leaving"
	default:
		return "unknown"
	}
}

var legalTransitions = map[OpState][]OpState{
	OpIdle:           {OpLoading, OpSaving, OpLeavingPending},
	OpLoading:        {OpIdle},
	OpSaving:         {OpLoading, OpIdle},
	OpLeavingPending: {OpIdle},
}

// CanTransition reports whether the token may move from one state to another.
func CanTransition(from, to OpState) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Flags are the session-level markers the presenter reacts to.
type Flags struct {
	// Aborted is set when the user chose to exit without finishing. Leaving
	// an aborted session skips the save.
	Aborted bool

	// Leaving is set while the leave protocol is in flight.
	Leaving bool

	// ShowingSummary is set while the summary is the active view.
	ShowingSummary bool

	// Finished is set once the attempt was submitted for grading.
	Finished bool
}

// StartInput selects how Start obtains preflight credentials.
type StartInput interface {
	isStartInput()
}

// FreshStart fetches quiz metadata and attempts before acquiring an attempt.
type FreshStart struct{}

// StartWithCredentials retries acquisition with credentials the user just
// supplied. Metadata fetched by an earlier Start is reused.
type StartWithCredentials struct {
	Preflight quiz.PreflightData
}

func (FreshStart) isStartInput()           {}
func (StartWithCredentials) isStartInput() {}

// NavRequest asks the session to move to another page or the summary.
type NavRequest struct {
	// Target is a page index or quiz.SummaryPage.
	Target int

	// FromTOC marks requests made from the table of contents.
	FromTOC bool

	// FocusSlot, when non-zero, scrolls the given question into view once the
	// page has rendered.
	FocusSlot int
}

// Snapshot is a copy of the presenter-visible session state.
type Snapshot struct {
	Quiz    *quiz.Quiz
	Access  *quiz.AccessInfo
	Attempt *quiz.Attempt

	CurrentPage  int
	NextPage     int
	PreviousPage int

	Questions        []quiz.Question
	SummaryQuestions []quiz.Question
	TOC              []quiz.PageDescriptor

	// Loaded is false while an operation is settling.
	Loaded bool

	Flags      Flags
	Op         OpState
	BufferSize int

	// Answers holds the unsaved values for the current page, keyed by field.
	Answers quiz.Answers
}

// ShowingSummary is shorthand for Flags.ShowingSummary.
func (s Snapshot) ShowingSummary() bool { return s.Flags.ShowingSummary }

// PageCount returns the number of pages in the attempt layout.
func (s Snapshot) PageCount() int {
	if s.Attempt == nil {
		return 0
	}
	return quiz.PageCount(s.Attempt.Layout)
}
