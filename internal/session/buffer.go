package session

import "github.com/abhisek/quizplay/internal/quiz"

// AnswerBuffer holds unsaved answers for the currently loaded page, keyed by
// question slot and then by form field name.
type AnswerBuffer struct {
	slots map[int]map[string]string
}

// NewAnswerBuffer creates an empty buffer.
func NewAnswerBuffer() *AnswerBuffer {
	return &AnswerBuffer{slots: make(map[int]map[string]string)}
}

// Set records a field value for a slot.
func (b *AnswerBuffer) Set(slot int, field, value string) {
	fields := b.slots[slot]
	if fields == nil {
		fields = make(map[string]string)
		b.slots[slot] = fields
	}
	fields[field] = value
}

// Get returns the pending value of a field.
func (b *AnswerBuffer) Get(slot int, field string) (string, bool) {
	v, ok := b.slots[slot][field]
	return v, ok
}

// Len returns the number of pending fields.
func (b *AnswerBuffer) Len() int {
	n := 0
	for _, fields := range b.slots {
		n += len(fields)
	}
	return n
}

// Clear drops every pending answer.
func (b *AnswerBuffer) Clear() {
	for slot := range b.slots {
		delete(b.slots, slot)
	}
}

// Flatten returns the pending answers as a submission payload.
func (b *AnswerBuffer) Flatten() quiz.Answers {
	out := make(quiz.Answers, b.Len())
	for _, fields := range b.slots {
		for k, v := range fields {
			out[k] = v
		}
	}
	return out
}
