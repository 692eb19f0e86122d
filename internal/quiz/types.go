package quiz

import "time"

// SummaryPage is the page sentinel that addresses the attempt summary.
const SummaryPage = -1

// NavigationMode controls how a learner may move between pages.
type NavigationMode string

const (
	NavFree       NavigationMode = "free"
	NavSequential NavigationMode = "sequential"
)

// Quiz is the quiz metadata fetched once per session.
type Quiz struct {
	ID         int
	CourseID   int
	Name       string
	Intro      string
	TimeLimit  time.Duration // zero when untimed
	Navigation NavigationMode

	// ReadableTimeLimit is derived from TimeLimit for timed quizzes only.
	ReadableTimeLimit string
}

// IsSequential reports whether the quiz forbids free page navigation.
func (q *Quiz) IsSequential() bool {
	return q.Navigation == NavSequential
}

// IsTimed reports whether the quiz has a time limit.
func (q *Quiz) IsTimed() bool {
	return q.TimeLimit > 0
}

// AccessInfo holds the access-rule evaluation for a quiz. The session only
// acts on PreflightRequired; the rest is carried for display.
type AccessInfo struct {
	PreflightRequired        bool
	IsFinished               bool
	PreventNewAttemptReasons []string
}

// AttemptState is the lifecycle state of an attempt as reported remotely.
type AttemptState string

const (
	StateInProgress AttemptState = "inprogress"
	StateOverdue    AttemptState = "overdue"
	StateFinished   AttemptState = "finished"
	StateAbandoned  AttemptState = "abandoned"
)

// IsFinished reports whether an attempt in this state can no longer be
// resumed, so a new attempt must be created instead.
func (s AttemptState) IsFinished() bool {
	return s == StateFinished || s == StateAbandoned
}

// Attempt is one user's instance of taking a quiz.
type Attempt struct {
	ID          int
	QuizID      int
	Number      int
	CurrentPage int

	// Layout lists question slots in order with 0 marking a page break,
	// e.g. [1 2 0 3 0] is two pages.
	Layout []int

	State AttemptState
}

// Question is an opaque unit of markup plus the metadata needed to render
// and answer it.
type Question struct {
	Slot          int
	Number        int
	Type          string
	Page          int
	HTML          string
	State         string
	Status        string
	Flagged       bool
	Mark          string
	MaxMark       float64
	SequenceCheck int

	// ReadableMark is a display-only annotation derived from HTML.
	ReadableMark string
}

// PageData is the gateway response for a single attempt page.
type PageData struct {
	Questions []Question
	NextPage  int // -1 on the last page
}

// PreflightPasswordKey is the preflight field used by the password access rule.
const PreflightPasswordKey = "quizpassword"

// PreflightData carries credentials for access-gated calls. It is never
// persisted.
type PreflightData map[string]string

// Empty reports whether no credential was supplied.
func (p PreflightData) Empty() bool {
	for _, v := range p {
		if v != "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (p PreflightData) Clone() PreflightData {
	if p == nil {
		return nil
	}
	out := make(PreflightData, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Answers is the flat form-field payload submitted for a page.
type Answers map[string]string
