package session

import (
	"errors"
	"fmt"

	"github.com/abhisek/quizplay/internal/gateway"
)

var (
	// ErrBusy is returned when a command arrives while another operation
	// holds the token.
	ErrBusy = errors.New("another operation is in progress")

	// ErrNoAttempt is returned by commands that need an acquired attempt.
	ErrNoAttempt = errors.New("no active attempt")

	// ErrNoPage is returned when answering while no question page is shown.
	ErrNoPage = errors.New("no question page is loaded")

	// ErrUnknownSlot is returned when answering a question not on the page.
	ErrUnknownSlot = errors.New("question is not on the current page")

	// ErrInvalidPage is returned for a navigation target outside the layout.
	ErrInvalidPage = errors.New("page is outside the attempt layout")

	// ErrAlreadyStarted is returned by Start once an attempt is active.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrAttemptFinished is returned when finishing an attempt twice.
	ErrAttemptFinished = errors.New("attempt already finished")
)

// Kind classifies session failures.
type Kind int

const (
	KindFetchFailure Kind = iota + 1
	KindPreflightRequired
	KindPreflightInvalid
	KindAcquisitionFailure
	KindPageLoadFailure
	KindSummaryLoadFailure
	KindSaveFailure
)

func (k Kind) String() string {
	switch k {
	case KindFetchFailure:
		return "fetch failure"
	case KindPreflightRequired:
		return "preflight required"
	case KindPreflightInvalid:
		return "preflight invalid"
	case KindAcquisitionFailure:
		return "acquisition failure"
	case KindPageLoadFailure:
		return "page load failure"
	case KindSummaryLoadFailure:
		return "summary load failure"
	case KindSaveFailure:
		return "save failure"
	default:
		return "unknown failure"
	}
}

// User-facing fallbacks when the service gives no message of its own.
const (
	msgErrorGetQuiz      = "Error getting quiz data."
	msgErrorGetQuestions = "Error getting questions."
	msgErrorSaveAttempt  = "Error saving the attempt."
	msgPreflightRequired = "This quiz requires a password."
	msgPreflightInvalid  = "The password entered was incorrect."
	msgErrorAcquire      = "Error opening the attempt."
	msgConfirmLeave      = "Your answers could not be saved. Leave the quiz anyway?"
	msgSending           = "Sending answers..."
)

// Error is a classified session failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the text shown to the user. A message reported by the
// quiz service wins over the generic one.
func (e *Error) UserMessage() string {
	var remote *gateway.RemoteError
	if errors.As(e.Err, &remote) && remote.Message != "" {
		return remote.Message
	}
	switch e.Kind {
	case KindFetchFailure:
		return msgErrorGetQuiz
	case KindPreflightRequired:
		return msgPreflightRequired
	case KindPreflightInvalid:
		return msgPreflightInvalid
	case KindAcquisitionFailure:
		return msgErrorAcquire
	case KindSaveFailure:
		return msgErrorSaveAttempt
	default:
		return msgErrorGetQuestions
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
