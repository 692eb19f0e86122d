package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrPreflightRequired indicates the access rules need credentials that
	// were not supplied.
	ErrPreflightRequired = errors.New("preflight check required")

	// ErrPreflightInvalid indicates supplied credentials were rejected.
	ErrPreflightInvalid = errors.New("preflight data invalid")

	// ErrNotFound indicates the requested quiz, attempt or page does not exist.
	ErrNotFound = errors.New("not found")
)

// RemoteError is an error reported by the quiz service itself, as opposed to
// a transport failure.
type RemoteError struct {
	Code    string
	Message string
	Err     error // optional sentinel classification
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ErrUnavailable indicates the service could not be reached.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quiz service unavailable: %v", e.Err)
	}
	return "quiz service unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }
