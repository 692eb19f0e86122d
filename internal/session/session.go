// Package session implements the attempt session state machine: it decides
// what remote data must exist before an attempt proceeds, which navigation
// moves are legal, how page answers are buffered and flushed, and how
// leaving is reconciled with unsaved answers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/quizplay/internal/backnav"
	"github.com/abhisek/quizplay/internal/gateway"
	"github.com/abhisek/quizplay/internal/preflight"
	"github.com/abhisek/quizplay/internal/quiz"
)

// DefaultFocusDelay is how long to wait for a page to render before
// scrolling a requested question into view.
const DefaultFocusDelay = 2 * time.Second

// DefaultLogTimeout bounds fire-and-forget view logging calls.
const DefaultLogTimeout = 10 * time.Second

// maxPreflightRounds bounds re-prompting after the service rejects the
// collected credentials.
const maxPreflightRounds = 3

// Options configures a Session.
type Options struct {
	CourseID int
	QuizID   int

	Host          Host
	PostProcessor PostProcessor

	// Validator collects credentials. When nil, a required preflight check
	// fails Start with KindPreflightRequired and the caller retries with
	// StartWithCredentials.
	Validator PreflightValidator

	// GoBack and HardwareBack are the in-app and platform back registries.
	// The session overrides both for its lifetime.
	GoBack       *backnav.Registry
	HardwareBack *backnav.Registry

	// Exit runs when leaving and no lower back handler exists.
	Exit func()

	FocusDelay time.Duration
	LogTimeout time.Duration
	Logger     zerolog.Logger
}

// Session owns one attempt from bootstrap until leave or finish.
type Session struct {
	gw         gateway.Gateway
	host       Host
	post       PostProcessor
	validator  PreflightValidator
	exit       func()
	courseID   int
	quizID     int
	focusDelay time.Duration
	logTimeout time.Duration
	log        zerolog.Logger

	goBack       *backnav.Handle
	hardwareBack *backnav.Handle

	mu       sync.Mutex
	op       OpState
	opNav    bool
	opTarget int

	quiz       *quiz.Quiz
	access     *quiz.AccessInfo
	last       *quiz.Attempt // most recent attempt from history
	newAttempt bool
	fetched    bool

	attempt      *quiz.Attempt
	preflight    quiz.PreflightData
	toc          []quiz.PageDescriptor
	questions    []quiz.Question
	defaults     map[int]map[string]string
	summary      []quiz.Question
	nextPage     int
	previousPage int
	pageLoaded   bool
	loaded       bool
	flags        Flags
	buffer       *AnswerBuffer

	focusTimer *time.Timer
	closed     bool
	bg         sync.WaitGroup
}

// New creates a session and installs its leave handler on the back
// registries. Call Close when the session is torn down.
func New(gw gateway.Gateway, opts Options) *Session {
	if opts.Host == nil {
		opts.Host = NopHost{}
	}
	if opts.PostProcessor == nil {
		opts.PostProcessor = identityPost{}
	}
	if opts.FocusDelay <= 0 {
		opts.FocusDelay = DefaultFocusDelay
	}
	if opts.LogTimeout <= 0 {
		opts.LogTimeout = DefaultLogTimeout
	}

	s := &Session{
		gw:           gw,
		host:         opts.Host,
		post:         opts.PostProcessor,
		validator:    opts.Validator,
		exit:         opts.Exit,
		courseID:     opts.CourseID,
		quizID:       opts.QuizID,
		focusDelay:   opts.FocusDelay,
		logTimeout:   opts.LogTimeout,
		log:          opts.Logger.With().Str("component", "session").Int("quiz_id", opts.QuizID).Logger(),
		nextPage:     -1,
		previousPage: -1,
		buffer:       NewAnswerBuffer(),
	}

	if opts.GoBack != nil {
		s.goBack = opts.GoBack.Register(backnav.PrioritySession, s.onBack)
	}
	if opts.HardwareBack != nil {
		s.hardwareBack = opts.HardwareBack.Register(backnav.PrioritySession, s.onBack)
	}
	return s
}

// onBack runs the leave protocol off the dispatcher's goroutine so a
// blocking confirmation cannot stall it.
func (s *Session) onBack(h *backnav.Handle) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		if err := s.leave(context.Background(), h); err != nil && !errors.Is(err, ErrBusy) {
			s.log.Debug().Err(err).Msg("leave declined")
		}
	}()
}

// Close restores the original back handlers. It is safe to call more than
// once and while a leave is in flight.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.focusTimer != nil {
		s.focusTimer.Stop()
	}
	s.mu.Unlock()

	if s.goBack != nil {
		s.goBack.Unregister()
	}
	if s.hardwareBack != nil {
		s.hardwareBack.Unregister()
	}
}

// Wait blocks until background work (view logging, back-triggered leaves)
// has finished.
func (s *Session) Wait() {
	s.bg.Wait()
}

// setOp moves the operation token. Caller holds mu.
func (s *Session) setOp(to OpState) {
	if !CanTransition(s.op, to) {
		s.log.Error().Stringer("from", s.op).Stringer("to", to).Msg("illegal operation transition")
	}
	s.op = to
}

// Start bootstraps the session and loads the attempt's current page.
// Failures are shown through the Host and returned; the session stays
// startable. After a failed first page load Start retries only the load.
func (s *Session) Start(ctx context.Context, in StartInput) error {
	var creds quiz.PreflightData
	withCreds := false
	if c, ok := in.(StartWithCredentials); ok {
		creds = c.Preflight.Clone()
		withCreds = true
	}

	s.mu.Lock()
	if s.op != OpIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.attempt != nil && s.pageLoaded {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	// An acquired attempt whose first page failed to load only needs the
	// page; acquiring again could open a second attempt.
	reload := s.attempt != nil
	page := 0
	if reload {
		page = s.attempt.CurrentPage
	}
	skipFetch := withCreds && s.fetched
	s.setOp(OpLoading)
	s.loaded = false
	s.mu.Unlock()
	s.host.Changed()

	var err error
	if reload {
		err = s.loadPage(ctx, page)
	} else {
		err = s.start(ctx, creds, skipFetch)
	}

	s.mu.Lock()
	s.loaded = true
	s.setOp(OpIdle)
	s.mu.Unlock()

	if err != nil {
		s.surface(err)
	}
	s.host.Changed()
	return err
}

func (s *Session) start(ctx context.Context, creds quiz.PreflightData, skipFetch bool) error {
	if !skipFetch {
		if err := s.fetchData(ctx); err != nil {
			return err
		}
	}
	if err := s.acquire(ctx, creds); err != nil {
		return err
	}

	s.mu.Lock()
	page := s.attempt.CurrentPage
	s.mu.Unlock()
	return s.loadPage(ctx, page)
}

func (s *Session) fetchData(ctx context.Context) error {
	q, err := s.gw.GetQuiz(ctx, s.courseID, s.quizID)
	if err != nil {
		return &Error{Kind: KindFetchFailure, Err: fmt.Errorf("get quiz: %w", err)}
	}
	if q.IsTimed() {
		q.ReadableTimeLimit = quiz.FormatDuration(q.TimeLimit)
	}
	s.mu.Lock()
	s.quiz = q
	s.mu.Unlock()

	access, err := s.gw.GetAccessInfo(ctx, q.ID)
	if err != nil {
		return &Error{Kind: KindFetchFailure, Err: fmt.Errorf("get access info: %w", err)}
	}
	s.mu.Lock()
	s.access = access
	s.mu.Unlock()

	attempts, err := s.gw.GetUserAttempts(ctx, q.ID)
	if err != nil {
		return &Error{Kind: KindFetchFailure, Err: fmt.Errorf("get user attempts: %w", err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(attempts) == 0 {
		s.last = nil
		s.newAttempt = true
	} else {
		last := attempts[len(attempts)-1]
		s.last = &last
		s.newAttempt = last.State.IsFinished()
	}
	s.fetched = true
	return nil
}

// acquire passes the preflight gate and creates or continues the attempt.
func (s *Session) acquire(ctx context.Context, creds quiz.PreflightData) error {
	s.mu.Lock()
	q, access := s.quiz, s.access
	var existing *quiz.Attempt
	if !s.newAttempt && s.last != nil {
		cp := *s.last
		existing = &cp
	}
	s.mu.Unlock()

	pf := creds
	required := access.PreflightRequired
	reason := ""
	var att *quiz.Attempt
	for round := 0; ; round++ {
		if required && pf.Empty() {
			if s.validator == nil {
				return &Error{Kind: KindPreflightRequired, Err: gateway.ErrPreflightRequired}
			}
			gate := *access
			gate.PreflightRequired = true
			collected, err := s.validator.CollectAndValidate(ctx, preflight.Request{
				Quiz:     q,
				Access:   &gate,
				Existing: existing,
				Reason:   reason,
			})
			if err != nil {
				if errors.Is(err, preflight.ErrCancelled) {
					return &Error{Kind: KindPreflightRequired, Err: err}
				}
				return &Error{Kind: KindPreflightInvalid, Err: err}
			}
			pf = collected
		}

		var err error
		att, err = s.gw.CreateOrContinueAttempt(ctx, q.ID, existing, pf)
		if err == nil {
			break
		}

		retry := s.validator != nil && round < maxPreflightRounds-1
		switch {
		case errors.Is(err, gateway.ErrPreflightInvalid) && retry,
			errors.Is(err, gateway.ErrPreflightRequired) && retry:
			s.log.Info().Int("round", round+1).Msg("preflight data rejected, asking again")
			reason = (&Error{Kind: KindPreflightInvalid, Err: err}).UserMessage()
			required = true
			pf = nil
		case errors.Is(err, gateway.ErrPreflightInvalid):
			return &Error{Kind: KindPreflightInvalid, Err: err}
		case errors.Is(err, gateway.ErrPreflightRequired):
			return &Error{Kind: KindPreflightRequired, Err: err}
		default:
			return &Error{Kind: KindAcquisitionFailure, Err: err}
		}
	}

	s.mu.Lock()
	s.attempt = att
	s.last = att
	s.newAttempt = false
	s.preflight = pf.Clone()
	s.toc = quiz.TOCFromLayout(att.Layout)
	s.mu.Unlock()

	s.log.Info().Int("attempt_id", att.ID).Int("page", att.CurrentPage).Msg("attempt acquired")
	return nil
}

// SetAnswer buffers a field value for a question on the current page.
func (s *Session) SetAnswer(slot int, field, value string) error {
	s.mu.Lock()
	if s.op != OpIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	if !s.pageLoaded || s.flags.ShowingSummary {
		s.mu.Unlock()
		return ErrNoPage
	}
	onPage := false
	for _, q := range s.questions {
		if q.Slot == slot {
			onPage = true
			break
		}
	}
	if !onPage {
		s.mu.Unlock()
		return fmt.Errorf("%w: slot %d", ErrUnknownSlot, slot)
	}
	s.buffer.Set(slot, field, value)
	s.mu.Unlock()

	s.host.Changed()
	return nil
}

// Abort marks the session as abandoned by the user. A later leave skips
// saving.
func (s *Session) Abort() {
	s.mu.Lock()
	s.flags.Aborted = true
	s.mu.Unlock()
	s.host.Changed()
}

// Snapshot returns a copy of the presenter-visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		NextPage:         s.nextPage,
		PreviousPage:     s.previousPage,
		Questions:        append([]quiz.Question(nil), s.questions...),
		SummaryQuestions: append([]quiz.Question(nil), s.summary...),
		TOC:              append([]quiz.PageDescriptor(nil), s.toc...),
		Loaded:           s.loaded,
		Flags:            s.flags,
		Op:               s.op,
		BufferSize:       s.buffer.Len(),
		Answers:          s.buffer.Flatten(),
	}
	if s.quiz != nil {
		q := *s.quiz
		snap.Quiz = &q
	}
	if s.access != nil {
		a := *s.access
		snap.Access = &a
	}
	if s.attempt != nil {
		a := *s.attempt
		a.Layout = append([]int(nil), s.attempt.Layout...)
		snap.Attempt = &a
		snap.CurrentPage = a.CurrentPage
	}
	return snap
}

// pendingAnswers builds the submission payload for the current page: the
// untouched form values overlaid with buffered edits. Caller holds mu and
// the operation token.
func (s *Session) pendingAnswers() quiz.Answers {
	out := make(quiz.Answers)
	for _, q := range s.questions {
		for k, v := range s.defaults[q.Slot] {
			out[k] = v
		}
	}
	for k, v := range s.buffer.Flatten() {
		out[k] = v
	}
	return out
}

func (s *Session) surface(err error) {
	var se *Error
	if errors.As(err, &se) {
		s.log.Warn().Err(se.Err).Stringer("kind", se.Kind).Msg("session operation failed")
		s.host.ShowError(se.UserMessage())
		return
	}
	s.log.Warn().Err(err).Msg("session operation failed")
	s.host.ShowError(err.Error())
}

// logAsync runs a view-logging call outside the operation token. Its
// failure never reaches the caller.
func (s *Session) logAsync(op string, fn func(ctx context.Context) error) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.logTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Debug().Err(err).Str("op", op).Msg("view logging failed")
		}
	}()
}
