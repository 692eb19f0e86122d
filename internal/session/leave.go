package session

import (
	"context"

	"github.com/abhisek/quizplay/internal/backnav"
	"github.com/abhisek/quizplay/internal/quiz"
)

// Leave saves the current page and exits. When the save fails the user is
// asked to confirm; declining keeps the session and its unsaved answers.
// A leave already in flight makes further calls no-ops.
func (s *Session) Leave(ctx context.Context) error {
	return s.leave(ctx, s.goBack)
}

func (s *Session) leave(ctx context.Context, via *backnav.Handle) error {
	s.mu.Lock()
	if s.flags.Leaving {
		s.mu.Unlock()
		return nil
	}
	if s.op != OpIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.flags.Leaving = true
	s.setOp(OpLeavingPending)

	save := !s.flags.Aborted && !s.flags.Finished && s.pageLoaded &&
		!s.flags.ShowingSummary && len(s.questions) > 0
	var answers quiz.Answers
	attemptID := 0
	if save {
		answers = s.pendingAnswers()
		attemptID = s.attempt.ID
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.flags.Leaving = false
		s.setOp(OpIdle)
		s.mu.Unlock()
		s.host.Changed()
	}()

	if save {
		dismiss := s.host.ShowProgress(msgSending)
		err := s.gw.SubmitAnswers(ctx, attemptID, answers, false, false)
		dismiss()
		if err != nil {
			s.log.Warn().Err(err).Int("attempt_id", attemptID).Msg("save before leaving failed")
			if !s.host.Confirm(ctx, msgConfirmLeave) {
				return &Error{Kind: KindSaveFailure, Err: err}
			}
		}
	}

	s.exitVia(via)
	return nil
}

// Finish submits the attempt for grading and exits.
func (s *Session) Finish(ctx context.Context, timeUp bool) error {
	s.mu.Lock()
	if s.attempt == nil {
		s.mu.Unlock()
		return ErrNoAttempt
	}
	if s.op != OpIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.flags.Finished || s.attempt.State.IsFinished() {
		s.mu.Unlock()
		return ErrAttemptFinished
	}
	answers := quiz.Answers{}
	if s.pageLoaded && !s.flags.ShowingSummary {
		answers = s.pendingAnswers()
	}
	s.setOp(OpSaving)
	s.opNav = false
	attemptID := s.attempt.ID
	s.mu.Unlock()

	dismiss := s.host.ShowProgress(msgSending)
	err := s.gw.SubmitAnswers(ctx, attemptID, answers, true, timeUp)
	dismiss()

	s.mu.Lock()
	if err == nil {
		s.attempt.State = quiz.StateFinished
		s.flags.Finished = true
		s.buffer.Clear()
	}
	s.setOp(OpIdle)
	s.mu.Unlock()

	if err != nil {
		saveErr := &Error{Kind: KindSaveFailure, Err: err}
		s.surface(saveErr)
		s.host.Changed()
		return saveErr
	}

	s.log.Info().Int("attempt_id", attemptID).Bool("time_up", timeUp).Msg("attempt finished")
	s.host.Changed()
	s.exitVia(s.goBack)
	return nil
}

// exitVia performs the back action the session displaced. Once Close has
// run the host has already torn the session down and nothing is forwarded.
func (s *Session) exitVia(h *backnav.Handle) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		s.log.Debug().Msg("session closed before exit, not forwarding back")
		return
	}
	if h != nil && h.Forward() {
		return
	}
	if s.exit != nil {
		s.exit()
	}
}
