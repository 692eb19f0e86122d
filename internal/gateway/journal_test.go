package gateway

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/store"
)

type failingRepo struct{ calls int }

func (f *failingRepo) Append(context.Context, store.Entry) error {
	f.calls++
	return errors.New("disk full")
}

func (f *failingRepo) Recent(context.Context, store.QueryOpts) ([]store.Entry, error) {
	return nil, nil
}

func TestJournalRecordsCalls(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "j.db"))
	require.NoError(t, err)
	defer st.Close()

	mem := NewDemo("", quiz.NavFree)
	mem.FailNext(OpSubmitAnswers, errors.New("offline"))
	g := WithJournal(mem, st.JournalRepo(), "sess-1", zerolog.Nop())
	ctx := context.Background()

	att, err := g.CreateOrContinueAttempt(ctx, DemoQuizID, nil, nil)
	require.NoError(t, err)
	_, err = g.GetPage(ctx, att.ID, 1, nil)
	require.NoError(t, err)
	err = g.SubmitAnswers(ctx, att.ID, quiz.Answers{"a": "b"}, false, false)
	require.Error(t, err)

	entries, err := st.JournalRepo().Recent(ctx, store.QueryOpts{SessionID: "sess-1"})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, OpSubmitAnswers, entries[0].Op)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "offline", entries[0].ErrorMessage)
	assert.Equal(t, "fields=1 finish=false timeup=false", entries[0].Detail)

	assert.Equal(t, OpGetPage, entries[1].Op)
	assert.Equal(t, 1, entries[1].Page)
	assert.Equal(t, att.ID, entries[1].AttemptID)

	assert.Equal(t, OpCreateOrContinue, entries[2].Op)
	assert.Equal(t, "create", entries[2].Detail)
}

func TestJournalFailureDoesNotFailCall(t *testing.T) {
	repo := &failingRepo{}
	g := WithJournal(NewDemo("", quiz.NavFree), repo, "s", zerolog.Nop())

	q, err := g.GetQuiz(context.Background(), DemoCourseID, DemoQuizID)
	require.NoError(t, err)
	assert.Equal(t, DemoQuizID, q.ID)
	assert.Equal(t, 1, repo.calls)
}
