// Package preflight collects the credentials a quiz's access rules demand
// before an attempt may be opened or resumed.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/quizplay/internal/quiz"
)

// DefaultMaxLength caps the password length accepted locally.
const DefaultMaxLength = 255

// DefaultMaxPrompts bounds how many times the user is re-asked after a
// locally invalid entry.
const DefaultMaxPrompts = 3

// ErrCancelled is returned when the user dismisses the credential prompt.
var ErrCancelled = errors.New("preflight cancelled")

// InvalidError reports credentials rejected before they reach the service.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("preflight data invalid: %s", e.Reason)
}

// Request describes what the prompt is for.
type Request struct {
	Quiz     *quiz.Quiz
	Access   *quiz.AccessInfo
	Existing *quiz.Attempt

	// Reason is shown above the prompt, e.g. after the service rejected a
	// previous password.
	Reason string
}

// Prompter asks the user for a password. Returning ErrCancelled aborts
// collection.
type Prompter interface {
	PromptPassword(ctx context.Context, req Request) (string, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, req Request) (string, error)

func (f PrompterFunc) PromptPassword(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Validator gathers and locally validates preflight data.
type Validator struct {
	prompter   Prompter
	maxLen     int
	maxPrompts int
}

// NewValidator creates a Validator. maxLen <= 0 selects DefaultMaxLength.
func NewValidator(p Prompter, maxLen int) *Validator {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	return &Validator{prompter: p, maxLen: maxLen, maxPrompts: DefaultMaxPrompts}
}

// CollectAndValidate returns the credentials for req. When the access rules
// need none it returns empty data without prompting.
func (v *Validator) CollectAndValidate(ctx context.Context, req Request) (quiz.PreflightData, error) {
	if req.Access == nil || !req.Access.PreflightRequired {
		return quiz.PreflightData{}, nil
	}

	var lastErr error
	for i := 0; i < v.maxPrompts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		password, err := v.prompter.PromptPassword(ctx, req)
		if err != nil {
			if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
				return nil, ErrCancelled
			}
			return nil, fmt.Errorf("prompt for password: %w", err)
		}

		if err := v.check(password); err != nil {
			lastErr = err
			req.Reason = err.Reason
			continue
		}
		return quiz.PreflightData{quiz.PreflightPasswordKey: password}, nil
	}
	return nil, lastErr
}

func (v *Validator) check(password string) *InvalidError {
	if strings.TrimSpace(password) == "" {
		return &InvalidError{Reason: "password is required"}
	}
	if utf8.RuneCountInString(password) > v.maxLen {
		return &InvalidError{Reason: fmt.Sprintf("password is longer than %d characters", v.maxLen)}
	}
	return nil
}
