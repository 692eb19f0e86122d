// Package gateway defines the boundary to the remote quiz service that owns
// quizzes, attempts and answers.
package gateway

import (
	"context"

	"github.com/abhisek/quizplay/internal/quiz"
)

// Gateway is the set of remote operations an attempt session consumes.
// Every call may fail; timeouts are the implementation's concern.
type Gateway interface {
	GetQuiz(ctx context.Context, courseID, quizID int) (*quiz.Quiz, error)
	GetAccessInfo(ctx context.Context, quizID int) (*quiz.AccessInfo, error)

	// GetUserAttempts returns the user's attempts oldest first.
	GetUserAttempts(ctx context.Context, quizID int) ([]quiz.Attempt, error)

	// CreateOrContinueAttempt starts a new attempt when existing is nil and
	// resumes existing otherwise. Preflight data is validated remotely.
	CreateOrContinueAttempt(ctx context.Context, quizID int, existing *quiz.Attempt, preflight quiz.PreflightData) (*quiz.Attempt, error)

	GetPage(ctx context.Context, attemptID, page int, preflight quiz.PreflightData) (*quiz.PageData, error)
	GetSummary(ctx context.Context, attemptID int, preflight quiz.PreflightData) ([]quiz.Question, error)
	SubmitAnswers(ctx context.Context, attemptID int, answers quiz.Answers, finish, timeUp bool) error

	LogPageViewed(ctx context.Context, attemptID, page int) error
	LogSummaryViewed(ctx context.Context, attemptID int) error
}

// Operation names used for journaling and failure injection.
const (
	OpGetQuiz          = "get_quiz"
	OpGetAccessInfo    = "get_access_info"
	OpGetUserAttempts  = "get_user_attempts"
	OpCreateOrContinue = "create_or_continue_attempt"
	OpGetPage          = "get_page"
	OpGetSummary       = "get_summary"
	OpSubmitAnswers    = "submit_answers"
	OpLogPageViewed    = "log_page_viewed"
	OpLogSummaryViewed = "log_summary_viewed"
)
