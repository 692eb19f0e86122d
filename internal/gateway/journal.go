package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/store"
)

// JournalGateway is a decorator that records every gateway call in the
// local journal.
type JournalGateway struct {
	inner     Gateway
	repo      store.JournalRepo
	sessionID string
	log       zerolog.Logger
}

// WithJournal wraps a Gateway with journaling.
func WithJournal(g Gateway, repo store.JournalRepo, sessionID string, log zerolog.Logger) Gateway {
	return &JournalGateway{
		inner:     g,
		repo:      repo,
		sessionID: sessionID,
		log:       log.With().Str("component", "journal").Logger(),
	}
}

func (j *JournalGateway) record(ctx context.Context, op string, attemptID, page int, start time.Time, detail string, err error) {
	e := store.Entry{
		SessionID: j.sessionID,
		Op:        op,
		AttemptID: attemptID,
		Page:      page,
		Success:   err == nil,
		LatencyMs: time.Since(start).Milliseconds(),
		Detail:    detail,
	}
	if err != nil {
		e.ErrorMessage = err.Error()
	}
	// Journal failures never fail the call. A cancelled call context must
	// not drop the entry either.
	if logErr := j.repo.Append(context.WithoutCancel(ctx), e); logErr != nil {
		j.log.Warn().Err(logErr).Str("op", op).Msg("failed to journal gateway call")
	}
}

func (j *JournalGateway) GetQuiz(ctx context.Context, courseID, quizID int) (*quiz.Quiz, error) {
	start := time.Now()
	q, err := j.inner.GetQuiz(ctx, courseID, quizID)
	j.record(ctx, OpGetQuiz, 0, 0, start, fmt.Sprintf("course=%d quiz=%d", courseID, quizID), err)
	return q, err
}

func (j *JournalGateway) GetAccessInfo(ctx context.Context, quizID int) (*quiz.AccessInfo, error) {
	start := time.Now()
	info, err := j.inner.GetAccessInfo(ctx, quizID)
	j.record(ctx, OpGetAccessInfo, 0, 0, start, fmt.Sprintf("quiz=%d", quizID), err)
	return info, err
}

func (j *JournalGateway) GetUserAttempts(ctx context.Context, quizID int) ([]quiz.Attempt, error) {
	start := time.Now()
	attempts, err := j.inner.GetUserAttempts(ctx, quizID)
	j.record(ctx, OpGetUserAttempts, 0, 0, start, fmt.Sprintf("quiz=%d count=%d", quizID, len(attempts)), err)
	return attempts, err
}

func (j *JournalGateway) CreateOrContinueAttempt(ctx context.Context, quizID int, existing *quiz.Attempt, preflight quiz.PreflightData) (*quiz.Attempt, error) {
	start := time.Now()
	att, err := j.inner.CreateOrContinueAttempt(ctx, quizID, existing, preflight)
	detail := "create"
	attemptID := 0
	if existing != nil {
		detail = "continue"
		attemptID = existing.ID
	}
	if att != nil {
		attemptID = att.ID
	}
	j.record(ctx, OpCreateOrContinue, attemptID, 0, start, detail, err)
	return att, err
}

func (j *JournalGateway) GetPage(ctx context.Context, attemptID, page int, preflight quiz.PreflightData) (*quiz.PageData, error) {
	start := time.Now()
	data, err := j.inner.GetPage(ctx, attemptID, page, preflight)
	j.record(ctx, OpGetPage, attemptID, page, start, "", err)
	return data, err
}

func (j *JournalGateway) GetSummary(ctx context.Context, attemptID int, preflight quiz.PreflightData) ([]quiz.Question, error) {
	start := time.Now()
	questions, err := j.inner.GetSummary(ctx, attemptID, preflight)
	j.record(ctx, OpGetSummary, attemptID, quiz.SummaryPage, start, "", err)
	return questions, err
}

func (j *JournalGateway) SubmitAnswers(ctx context.Context, attemptID int, answers quiz.Answers, finish, timeUp bool) error {
	start := time.Now()
	err := j.inner.SubmitAnswers(ctx, attemptID, answers, finish, timeUp)
	j.record(ctx, OpSubmitAnswers, attemptID, 0, start,
		fmt.Sprintf("fields=%d finish=%t timeup=%t", len(answers), finish, timeUp), err)
	return err
}

func (j *JournalGateway) LogPageViewed(ctx context.Context, attemptID, page int) error {
	start := time.Now()
	err := j.inner.LogPageViewed(ctx, attemptID, page)
	j.record(ctx, OpLogPageViewed, attemptID, page, start, "", err)
	return err
}

func (j *JournalGateway) LogSummaryViewed(ctx context.Context, attemptID int) error {
	start := time.Now()
	err := j.inner.LogSummaryViewed(ctx, attemptID)
	j.record(ctx, OpLogSummaryViewed, attemptID, quiz.SummaryPage, start, "", err)
	return err
}
