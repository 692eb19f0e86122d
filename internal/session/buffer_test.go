package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerBuffer(t *testing.T) {
	b := NewAnswerBuffer()
	b.Set(1, "q1:1_answer", "a")
	b.Set(1, "q1:1_answer", "b")
	b.Set(2, "q1:2_answer", "c")

	assert.Equal(t, 2, b.Len())
	v, ok := b.Get(1, "q1:1_answer")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, "c", b.Flatten()["q1:2_answer"])

	b.Clear()
	assert.Equal(t, 0, b.Len())
	_, ok = b.Get(1, "q1:1_answer")
	assert.False(t, ok)
}
