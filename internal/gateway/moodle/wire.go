package moodle

import (
	"time"

	"github.com/abhisek/quizplay/internal/quiz"
)

// Web-service function names.
const (
	fnGetQuizzesByCourses      = "mod_quiz_get_quizzes_by_courses"
	fnGetAttemptAccessInfo     = "mod_quiz_get_attempt_access_information"
	fnGetUserAttempts          = "mod_quiz_get_user_attempts"
	fnStartAttempt             = "mod_quiz_start_attempt"
	fnGetAttemptData           = "mod_quiz_get_attempt_data"
	fnGetAttemptSummary        = "mod_quiz_get_attempt_summary"
	fnProcessAttempt           = "mod_quiz_process_attempt"
	fnViewAttempt              = "mod_quiz_view_attempt"
	fnViewAttemptSummary       = "mod_quiz_view_attempt_summary"
	navMethodSequential        = "seq"
	restPath                   = "/webservice/rest/server.php"
	errorCodePreflightRequired = "preflightdatarequired"
	errorCodePassword          = "passworderror"
	errorCodeInvalidRecord     = "invalidrecord"
)

type wsException struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

type wsQuiz struct {
	ID        int    `json:"id"`
	Course    int    `json:"course"`
	Name      string `json:"name"`
	Intro     string `json:"intro"`
	TimeLimit int64  `json:"timelimit"`
	NavMethod string `json:"navmethod"`
}

type wsQuizzes struct {
	Quizzes []wsQuiz `json:"quizzes"`
}

type wsAccessInfo struct {
	IsFinished               bool     `json:"isfinished"`
	IsPreflightCheckRequired bool     `json:"ispreflightcheckrequired"`
	PreventNewAttemptReasons []string `json:"preventnewattemptreasons"`
}

type wsAttempt struct {
	ID          int    `json:"id"`
	Quiz        int    `json:"quiz"`
	Attempt     int    `json:"attempt"`
	CurrentPage int    `json:"currentpage"`
	Layout      string `json:"layout"`
	State       string `json:"state"`
}

type wsAttempts struct {
	Attempts []wsAttempt `json:"attempts"`
}

type wsStartAttempt struct {
	Attempt wsAttempt `json:"attempt"`
}

type wsQuestion struct {
	Slot          int     `json:"slot"`
	Type          string  `json:"type"`
	Page          int     `json:"page"`
	HTML          string  `json:"html"`
	SequenceCheck int     `json:"sequencecheck"`
	Flagged       bool    `json:"flagged"`
	Number        int     `json:"number"`
	State         string  `json:"state"`
	Status        string  `json:"status"`
	Mark          string  `json:"mark"`
	MaxMark       float64 `json:"maxmark"`
}

type wsAttemptData struct {
	Attempt   wsAttempt    `json:"attempt"`
	NextPage  int          `json:"nextpage"`
	Questions []wsQuestion `json:"questions"`
}

type wsSummary struct {
	Questions []wsQuestion `json:"questions"`
}

type wsProcessAttempt struct {
	State string `json:"state"`
}

func (q wsQuiz) toQuiz() *quiz.Quiz {
	nav := quiz.NavFree
	if q.NavMethod == navMethodSequential {
		nav = quiz.NavSequential
	}
	return &quiz.Quiz{
		ID:         q.ID,
		CourseID:   q.Course,
		Name:       q.Name,
		Intro:      q.Intro,
		TimeLimit:  time.Duration(q.TimeLimit) * time.Second,
		Navigation: nav,
	}
}

func (a wsAttempt) toAttempt() (quiz.Attempt, error) {
	layout, err := quiz.ParseLayout(a.Layout)
	if err != nil {
		return quiz.Attempt{}, err
	}
	return quiz.Attempt{
		ID:          a.ID,
		QuizID:      a.Quiz,
		Number:      a.Attempt,
		CurrentPage: a.CurrentPage,
		Layout:      layout,
		State:       quiz.AttemptState(a.State),
	}, nil
}

func toQuestions(in []wsQuestion) []quiz.Question {
	out := make([]quiz.Question, 0, len(in))
	for _, q := range in {
		out = append(out, quiz.Question{
			Slot:          q.Slot,
			Number:        q.Number,
			Type:          q.Type,
			Page:          q.Page,
			HTML:          q.HTML,
			State:         q.State,
			Status:        q.Status,
			Flagged:       q.Flagged,
			Mark:          q.Mark,
			MaxMark:       q.MaxMark,
			SequenceCheck: q.SequenceCheck,
		})
	}
	return out
}
