package gateway

import (
	"context"
	"fmt"
	"html"
	"sort"
	"sync"

	"github.com/abhisek/quizplay/internal/quiz"
)

// MemoryQuestion is the authoring-side description of a question served by
// the in-memory service.
type MemoryQuestion struct {
	Slot    int
	Text    string
	MaxMark float64
}

// Submission records one SubmitAnswers call.
type Submission struct {
	AttemptID int
	Answers   quiz.Answers
	Finish    bool
	TimeUp    bool
}

// View records one view-logging call. Page is quiz.SummaryPage for the summary.
type View struct {
	AttemptID int
	Page      int
}

// Call records the operation and target of every gateway call, in order.
type Call struct {
	Op        string
	AttemptID int
	Page      int
}

type memoryQuiz struct {
	quiz     quiz.Quiz
	password string
	pages    [][]MemoryQuestion
}

// Memory is a stateful in-memory quiz service. It backs tests and the
// offline demo. Failures can be injected per operation and every call is
// recorded.
type Memory struct {
	mu          sync.Mutex
	quizzes     map[int]*memoryQuiz
	attempts    map[int][]*quiz.Attempt // by quiz id, oldest first
	saved       map[int]quiz.Answers    // by attempt id
	nextAttempt int

	failures    map[string][]error
	hook        func(ctx context.Context, op string)
	submissions []Submission
	views       []View
	calls       []Call
}

var _ Gateway = (*Memory)(nil)

// NewMemory creates an empty in-memory service.
func NewMemory() *Memory {
	return &Memory{
		quizzes:     make(map[int]*memoryQuiz),
		attempts:    make(map[int][]*quiz.Attempt),
		saved:       make(map[int]quiz.Answers),
		failures:    make(map[string][]error),
		nextAttempt: 100,
	}
}

// AddQuiz registers a quiz. A non-empty password enables the preflight check.
func (m *Memory) AddQuiz(q quiz.Quiz, password string, pages [][]MemoryQuestion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = &memoryQuiz{quiz: q, password: password, pages: pages}
}

// AddAttempt appends a pre-existing attempt to a quiz's history. A zero
// layout is filled from the quiz pages.
func (m *Memory) AddAttempt(quizID int, a quiz.Attempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		a.ID = m.allocAttemptID()
	}
	a.QuizID = quizID
	if a.Layout == nil {
		if mq := m.quizzes[quizID]; mq != nil {
			a.Layout = layoutFor(mq.pages)
		}
	}
	if a.Number == 0 {
		a.Number = len(m.attempts[quizID]) + 1
	}
	m.attempts[quizID] = append(m.attempts[quizID], &a)
}

// FailNext makes the next call of op return err. Calls queue in order.
func (m *Memory) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], err)
}

// SetHook installs a function run at the start of every call, outside the
// service lock. Tests use it to hold a call in flight.
func (m *Memory) SetHook(h func(ctx context.Context, op string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = h
}

// Submissions returns a copy of all recorded submissions.
func (m *Memory) Submissions() []Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Submission(nil), m.submissions...)
}

// Views returns a copy of all recorded view logs.
func (m *Memory) Views() []View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]View(nil), m.views...)
}

// Calls returns a copy of all recorded calls.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns the number of calls of op, or of all calls when op is "".
func (m *Memory) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op == "" {
		return len(m.calls)
	}
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Attempts returns a copy of a quiz's attempt history, oldest first.
func (m *Memory) Attempts(quizID int) []quiz.Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]quiz.Attempt, 0, len(m.attempts[quizID]))
	for _, a := range m.attempts[quizID] {
		out = append(out, cloneAttempt(a))
	}
	return out
}

// SavedAnswers returns the merged answers stored for an attempt.
func (m *Memory) SavedAnswers(attemptID int) quiz.Answers {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(quiz.Answers, len(m.saved[attemptID]))
	for k, v := range m.saved[attemptID] {
		out[k] = v
	}
	return out
}

// begin runs the hook, records the call and pops an injected failure.
// It returns with the lock held on success.
func (m *Memory) begin(ctx context.Context, op string, attemptID, page int) error {
	m.mu.Lock()
	hook := m.hook
	m.mu.Unlock()
	if hook != nil {
		hook(ctx, op)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Op: op, AttemptID: attemptID, Page: page})
	if queued := m.failures[op]; len(queued) > 0 {
		err := queued[0]
		m.failures[op] = queued[1:]
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) GetQuiz(ctx context.Context, courseID, quizID int) (*quiz.Quiz, error) {
	if err := m.begin(ctx, OpGetQuiz, 0, 0); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	mq := m.quizzes[quizID]
	if mq == nil || mq.quiz.CourseID != courseID {
		return nil, &RemoteError{Code: "invalidrecord", Message: fmt.Sprintf("quiz %d not found in course %d", quizID, courseID), Err: ErrNotFound}
	}
	q := mq.quiz
	return &q, nil
}

func (m *Memory) GetAccessInfo(ctx context.Context, quizID int) (*quiz.AccessInfo, error) {
	if err := m.begin(ctx, OpGetAccessInfo, 0, 0); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	mq := m.quizzes[quizID]
	if mq == nil {
		return nil, &RemoteError{Code: "invalidrecord", Message: fmt.Sprintf("quiz %d not found", quizID), Err: ErrNotFound}
	}
	return &quiz.AccessInfo{PreflightRequired: mq.password != ""}, nil
}

func (m *Memory) GetUserAttempts(ctx context.Context, quizID int) ([]quiz.Attempt, error) {
	if err := m.begin(ctx, OpGetUserAttempts, 0, 0); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	out := make([]quiz.Attempt, 0, len(m.attempts[quizID]))
	for _, a := range m.attempts[quizID] {
		out = append(out, cloneAttempt(a))
	}
	return out, nil
}

func (m *Memory) CreateOrContinueAttempt(ctx context.Context, quizID int, existing *quiz.Attempt, preflight quiz.PreflightData) (*quiz.Attempt, error) {
	existingID := 0
	if existing != nil {
		existingID = existing.ID
	}
	if err := m.begin(ctx, OpCreateOrContinue, existingID, 0); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	mq := m.quizzes[quizID]
	if mq == nil {
		return nil, &RemoteError{Code: "invalidrecord", Message: fmt.Sprintf("quiz %d not found", quizID), Err: ErrNotFound}
	}
	if err := mq.checkPreflight(preflight); err != nil {
		return nil, err
	}

	if existing != nil {
		a := m.findAttempt(existing.ID)
		if a == nil {
			return nil, &RemoteError{Code: "invalidrecord", Message: fmt.Sprintf("attempt %d not found", existing.ID), Err: ErrNotFound}
		}
		if a.State.IsFinished() {
			return nil, &RemoteError{Code: "attemptalreadyclosed", Message: "This attempt has already been finished."}
		}
		out := cloneAttempt(a)
		return &out, nil
	}

	a := &quiz.Attempt{
		ID:     m.allocAttemptID(),
		QuizID: quizID,
		Number: len(m.attempts[quizID]) + 1,
		Layout: layoutFor(mq.pages),
		State:  quiz.StateInProgress,
	}
	m.attempts[quizID] = append(m.attempts[quizID], a)
	out := cloneAttempt(a)
	return &out, nil
}

func (m *Memory) GetPage(ctx context.Context, attemptID, page int, preflight quiz.PreflightData) (*quiz.PageData, error) {
	if err := m.begin(ctx, OpGetPage, attemptID, page); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	a, mq, err := m.openAttempt(attemptID, preflight)
	if err != nil {
		return nil, err
	}
	if page < 0 || page >= len(mq.pages) {
		return nil, &RemoteError{Code: "Invalid page number", Message: fmt.Sprintf("page %d out of range", page), Err: ErrNotFound}
	}
	if mq.quiz.IsSequential() && page < a.CurrentPage {
		return nil, &RemoteError{Code: "Out of sequence access", Message: "You are not allowed to return to previous pages."}
	}

	a.CurrentPage = page
	next := page + 1
	if next >= len(mq.pages) {
		next = -1
	}
	data := &quiz.PageData{NextPage: next}
	for _, mqq := range mq.pages[page] {
		data.Questions = append(data.Questions, m.renderQuestion(a, page, mqq))
	}
	return data, nil
}

func (m *Memory) GetSummary(ctx context.Context, attemptID int, preflight quiz.PreflightData) ([]quiz.Question, error) {
	if err := m.begin(ctx, OpGetSummary, attemptID, quiz.SummaryPage); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	a, mq, err := m.openAttempt(attemptID, preflight)
	if err != nil {
		return nil, err
	}
	var out []quiz.Question
	for page, questions := range mq.pages {
		for _, mqq := range questions {
			q := m.renderQuestion(a, page, mqq)
			q.HTML = ""
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *Memory) SubmitAnswers(ctx context.Context, attemptID int, answers quiz.Answers, finish, timeUp bool) error {
	if err := m.begin(ctx, OpSubmitAnswers, attemptID, 0); err != nil {
		return err
	}
	defer m.mu.Unlock()

	a := m.findAttempt(attemptID)
	if a == nil {
		return &RemoteError{Code: "invalidrecord", Message: fmt.Sprintf("attempt %d not found", attemptID), Err: ErrNotFound}
	}
	if a.State.IsFinished() {
		return &RemoteError{Code: "attemptalreadyclosed", Message: "This attempt has already been finished."}
	}

	copied := make(quiz.Answers, len(answers))
	saved := m.saved[attemptID]
	if saved == nil {
		saved = make(quiz.Answers)
		m.saved[attemptID] = saved
	}
	for k, v := range answers {
		copied[k] = v
		saved[k] = v
	}
	m.submissions = append(m.submissions, Submission{AttemptID: attemptID, Answers: copied, Finish: finish, TimeUp: timeUp})
	if finish {
		a.State = quiz.StateFinished
	}
	return nil
}

func (m *Memory) LogPageViewed(ctx context.Context, attemptID, page int) error {
	if err := m.begin(ctx, OpLogPageViewed, attemptID, page); err != nil {
		return err
	}
	defer m.mu.Unlock()
	m.views = append(m.views, View{AttemptID: attemptID, Page: page})
	return nil
}

func (m *Memory) LogSummaryViewed(ctx context.Context, attemptID int) error {
	if err := m.begin(ctx, OpLogSummaryViewed, attemptID, quiz.SummaryPage); err != nil {
		return err
	}
	defer m.mu.Unlock()
	m.views = append(m.views, View{AttemptID: attemptID, Page: quiz.SummaryPage})
	return nil
}

func (mq *memoryQuiz) checkPreflight(pf quiz.PreflightData) error {
	if mq.password == "" {
		return nil
	}
	if pf.Empty() {
		return &RemoteError{Code: "preflightdatarequired", Message: "This quiz requires a password.", Err: ErrPreflightRequired}
	}
	if pf[quiz.PreflightPasswordKey] != mq.password {
		return &RemoteError{Code: "passworderror", Message: "The password entered was incorrect.", Err: ErrPreflightInvalid}
	}
	return nil
}

// openAttempt resolves an attempt that may still be answered. Caller holds mu.
func (m *Memory) openAttempt(attemptID int, pf quiz.PreflightData) (*quiz.Attempt, *memoryQuiz, error) {
	a := m.findAttempt(attemptID)
	if a == nil {
		return nil, nil, &RemoteError{Code: "invalidrecord", Message: fmt.Sprintf("attempt %d not found", attemptID), Err: ErrNotFound}
	}
	mq := m.quizzes[a.QuizID]
	if err := mq.checkPreflight(pf); err != nil {
		return nil, nil, err
	}
	return a, mq, nil
}

func (m *Memory) findAttempt(id int) *quiz.Attempt {
	for _, list := range m.attempts {
		for _, a := range list {
			if a.ID == id {
				return a
			}
		}
	}
	return nil
}

func (m *Memory) allocAttemptID() int {
	m.nextAttempt++
	return m.nextAttempt
}

// renderQuestion builds the markup a real service would return, including
// the info box and the learner's saved answer. Caller holds mu.
func (m *Memory) renderQuestion(a *quiz.Attempt, page int, mqq MemoryQuestion) quiz.Question {
	prefix := fmt.Sprintf("q%d:%d_", a.ID, mqq.Slot)
	answer := m.saved[a.ID][prefix+"answer"]
	state, status := "todo", "Not yet answered"
	if answer != "" {
		state, status = "complete", "Answer saved"
	}
	number := m.questionNumber(a.QuizID, mqq.Slot)
	body := fmt.Sprintf(`<div id="question-%d-%d" class="que shortanswer">`+
		`<div class="info"><h3 class="no">Question <span class="qno">%d</span></h3>`+
		`<div class="state">%s</div><div class="grade">Marked out of %.2f</div></div>`+
		`<div class="content"><div class="formulation">`+
		`<input type="hidden" name="%s:sequencecheck" value="1"/>`+
		`<div class="qtext"><p>%s</p></div>`+
		`<label for="%sanswer">Answer:</label>`+
		`<input type="text" name="%sanswer" id="%sanswer" value="%s"/>`+
		`</div></div></div>`,
		a.ID, mqq.Slot, number, status, mqq.MaxMark, prefix,
		html.EscapeString(mqq.Text), prefix, prefix, prefix, html.EscapeString(answer))
	return quiz.Question{
		Slot:          mqq.Slot,
		Number:        number,
		Type:          "shortanswer",
		Page:          page,
		HTML:          body,
		State:         state,
		Status:        status,
		MaxMark:       mqq.MaxMark,
		SequenceCheck: 1,
	}
}

func (m *Memory) questionNumber(quizID, slot int) int {
	mq := m.quizzes[quizID]
	var slots []int
	for _, p := range mq.pages {
		for _, q := range p {
			slots = append(slots, q.Slot)
		}
	}
	sort.Ints(slots)
	for i, s := range slots {
		if s == slot {
			return i + 1
		}
	}
	return 0
}

func layoutFor(pages [][]MemoryQuestion) []int {
	var layout []int
	for _, p := range pages {
		for _, q := range p {
			layout = append(layout, q.Slot)
		}
		layout = append(layout, 0)
	}
	return layout
}

func cloneAttempt(a *quiz.Attempt) quiz.Attempt {
	out := *a
	out.Layout = append([]int(nil), a.Layout...)
	return out
}
