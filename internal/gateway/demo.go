package gateway

import (
	"time"

	"github.com/abhisek/quizplay/internal/quiz"
)

// Demo identifiers accepted by NewDemo's quiz.
const (
	DemoCourseID = 1
	DemoQuizID   = 1
)

// NewDemo returns an in-memory service seeded with a small timed quiz. A
// non-empty password puts the quiz behind the preflight check.
func NewDemo(password string, mode quiz.NavigationMode) *Memory {
	m := NewMemory()
	m.AddQuiz(quiz.Quiz{
		ID:         DemoQuizID,
		CourseID:   DemoCourseID,
		Name:       "World capitals",
		Intro:      "Three short pages about capital cities.",
		TimeLimit:  10 * time.Minute,
		Navigation: mode,
	}, password, [][]MemoryQuestion{
		{
			{Slot: 1, Text: "What is the capital of France?", MaxMark: 1},
			{Slot: 2, Text: "What is the capital of Japan?", MaxMark: 1},
		},
		{
			{Slot: 3, Text: "What is the capital of Kenya?", MaxMark: 2},
		},
		{
			{Slot: 4, Text: "What is the capital of Peru?", MaxMark: 1},
			{Slot: 5, Text: "What is the capital of Canada?", MaxMark: 1},
		},
	})
	return m
}
