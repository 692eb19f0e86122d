package preflight

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizplay/internal/quiz"
)

type scriptedPrompter struct {
	replies  []string
	err      error
	requests []Request
}

func (p *scriptedPrompter) PromptPassword(_ context.Context, req Request) (string, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return "", p.err
	}
	if len(p.requests) > len(p.replies) {
		return "", ErrCancelled
	}
	return p.replies[len(p.requests)-1], nil
}

var testQuiz = &quiz.Quiz{ID: 1, Name: "Locked"}

func TestCollectAndValidate_NotRequired(t *testing.T) {
	p := &scriptedPrompter{}
	v := NewValidator(p, 0)

	data, err := v.CollectAndValidate(context.Background(), Request{Quiz: testQuiz, Access: &quiz.AccessInfo{}})
	require.NoError(t, err)
	assert.True(t, data.Empty())
	assert.Empty(t, p.requests)
}

func TestCollectAndValidate_Password(t *testing.T) {
	p := &scriptedPrompter{replies: []string{"secret"}}
	v := NewValidator(p, 0)

	data, err := v.CollectAndValidate(context.Background(), Request{Quiz: testQuiz, Access: &quiz.AccessInfo{PreflightRequired: true}})
	require.NoError(t, err)
	assert.Equal(t, "secret", data[quiz.PreflightPasswordKey])
}

func TestCollectAndValidate_Cancelled(t *testing.T) {
	p := &scriptedPrompter{err: ErrCancelled}
	v := NewValidator(p, 0)

	_, err := v.CollectAndValidate(context.Background(), Request{Quiz: testQuiz, Access: &quiz.AccessInfo{PreflightRequired: true}})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestCollectAndValidate_RepromptsAfterInvalid(t *testing.T) {
	p := &scriptedPrompter{replies: []string{"  ", "ok"}}
	v := NewValidator(p, 0)

	data, err := v.CollectAndValidate(context.Background(), Request{Quiz: testQuiz, Access: &quiz.AccessInfo{PreflightRequired: true}})
	require.NoError(t, err)
	assert.Equal(t, "ok", data[quiz.PreflightPasswordKey])
	require.Len(t, p.requests, 2)
	assert.Empty(t, p.requests[0].Reason)
	assert.Equal(t, "password is required", p.requests[1].Reason)
}

func TestCollectAndValidate_GivesUp(t *testing.T) {
	long := strings.Repeat("x", 9)
	p := &scriptedPrompter{replies: []string{long, long, long}}
	v := NewValidator(p, 8)

	_, err := v.CollectAndValidate(context.Background(), Request{Quiz: testQuiz, Access: &quiz.AccessInfo{PreflightRequired: true}})
	var invalid *InvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "longer than 8")
	assert.Len(t, p.requests, DefaultMaxPrompts)
}
