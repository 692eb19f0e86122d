package session

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/abhisek/quizplay/internal/gateway"
	"github.com/abhisek/quizplay/internal/quiz"
)

// RequestNavigation saves the current page and moves to req.Target. A save
// failure is shown but does not block the move. Requests that would change
// nothing return nil without contacting the service.
func (s *Session) RequestNavigation(ctx context.Context, req NavRequest) error {
	s.mu.Lock()
	if s.attempt == nil {
		s.mu.Unlock()
		return ErrNoAttempt
	}
	if s.op != OpIdle {
		repeated := s.opNav && s.opTarget == req.Target
		s.mu.Unlock()
		if repeated {
			return nil
		}
		return ErrBusy
	}
	if s.ignoreNavigation(req) {
		s.mu.Unlock()
		return nil
	}
	if req.Target != quiz.SummaryPage && !quiz.ValidPage(s.attempt.Layout, req.Target) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrInvalidPage, req.Target)
	}

	save := !s.flags.ShowingSummary && s.pageLoaded
	var answers quiz.Answers
	if save {
		answers = s.pendingAnswers()
		s.setOp(OpSaving)
	} else {
		s.setOp(OpLoading)
	}
	s.opNav, s.opTarget = true, req.Target
	s.loaded = false
	attemptID := s.attempt.ID
	s.mu.Unlock()

	s.host.ScrollTop()
	s.host.Changed()

	var errs *multierror.Error
	if save {
		if err := s.gw.SubmitAnswers(ctx, attemptID, answers, false, false); err != nil {
			saveErr := &Error{Kind: KindSaveFailure, Err: err}
			s.surface(saveErr)
			errs = multierror.Append(errs, saveErr)
		}
		s.mu.Lock()
		s.setOp(OpLoading)
		s.mu.Unlock()
	}

	var loadErr error
	if req.Target == quiz.SummaryPage {
		loadErr = s.loadSummary(ctx)
	} else {
		loadErr = s.loadPage(ctx, req.Target)
	}
	if loadErr != nil {
		s.surface(loadErr)
		errs = multierror.Append(errs, loadErr)
	}

	s.mu.Lock()
	s.loaded = true
	s.opNav = false
	s.setOp(OpIdle)
	s.mu.Unlock()

	s.host.Resize()
	if req.FocusSlot > 0 {
		s.scheduleFocus(req.FocusSlot)
	}
	s.host.Changed()
	return errs.ErrorOrNil()
}

// ignoreNavigation applies the no-op rules in order. Caller holds mu.
func (s *Session) ignoreNavigation(req NavRequest) bool {
	switch {
	case req.Target == s.attempt.CurrentPage && !s.flags.ShowingSummary && s.pageLoaded:
		return true
	case req.FromTOC && s.quiz != nil && s.quiz.IsSequential() && req.Target != quiz.SummaryPage:
		return true
	case req.Target == quiz.SummaryPage && s.flags.ShowingSummary:
		return true
	}
	return false
}

// loadPage fetches a page and installs it as current. On failure the
// previous page stays in place.
func (s *Session) loadPage(ctx context.Context, page int) error {
	s.mu.Lock()
	attemptID := s.attempt.ID
	pf := s.preflight.Clone()
	sequential := s.quiz != nil && s.quiz.IsSequential()
	s.mu.Unlock()

	data, err := s.gw.GetPage(ctx, attemptID, page, pf)
	if err != nil {
		return &Error{Kind: KindPageLoadFailure, Err: fmt.Errorf("page %d: %w", page, err)}
	}

	s.mu.Lock()
	s.buffer.Clear()
	s.questions = append([]quiz.Question(nil), data.Questions...)
	s.attempt.CurrentPage = page
	s.nextPage = data.NextPage
	if sequential {
		s.previousPage = -1
	} else {
		s.previousPage = page - 1
	}
	s.flags.ShowingSummary = false
	s.pageLoaded = true
	s.postProcess()
	s.mu.Unlock()

	s.logAsync(gateway.OpLogPageViewed, func(ctx context.Context) error {
		return s.gw.LogPageViewed(ctx, attemptID, page)
	})
	return nil
}

// postProcess annotates the installed questions once per page. The readable
// mark is taken before the info box is stripped. Caller holds mu.
func (s *Session) postProcess() {
	reader, _ := s.post.(FormReader)
	s.defaults = make(map[int]map[string]string, len(s.questions))
	for i := range s.questions {
		q := &s.questions[i]
		if reader != nil {
			s.defaults[q.Slot] = reader.FormDefaults(q.HTML)
		}
		q.ReadableMark = s.post.ReadableMark(q.HTML)
		q.HTML = s.post.StripInfo(q.HTML)
	}
}

// loadSummary shows the summary view. The flag is raised before the fetch
// and reverted if it fails.
func (s *Session) loadSummary(ctx context.Context) error {
	s.mu.Lock()
	s.flags.ShowingSummary = true
	s.summary = []quiz.Question{}
	attemptID := s.attempt.ID
	pf := s.preflight.Clone()
	s.mu.Unlock()
	s.host.Changed()

	questions, err := s.gw.GetSummary(ctx, attemptID, pf)
	if err != nil {
		s.mu.Lock()
		s.flags.ShowingSummary = false
		s.mu.Unlock()
		return &Error{Kind: KindSummaryLoadFailure, Err: err}
	}

	s.mu.Lock()
	s.summary = questions
	s.mu.Unlock()

	s.logAsync(gateway.OpLogSummaryViewed, func(ctx context.Context) error {
		return s.gw.LogSummaryViewed(ctx, attemptID)
	})
	return nil
}

func (s *Session) scheduleFocus(slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.focusTimer != nil {
		s.focusTimer.Stop()
	}
	host := s.host
	s.focusTimer = time.AfterFunc(s.focusDelay, func() {
		host.ScrollToQuestion(slot)
	})
}
