package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"busy_timeout", "5000"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWithPragmas(t *testing.T) {
	assert.Equal(t,
		"a.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		withPragmas("a.db"))
	assert.Contains(t, withPragmas("file:a.db?mode=rwc"), "mode=rwc&_pragma=journal_mode(WAL)")
}

func TestJournalAppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	repo := s.JournalRepo()
	ctx := context.Background()

	entries, err := repo.Recent(ctx, QueryOpts{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, repo.Append(ctx, Entry{SessionID: "s1", Op: "get_page", AttemptID: 9, Page: 0, Success: true, LatencyMs: 12}))
	require.NoError(t, repo.Append(ctx, Entry{SessionID: "s1", Op: "submit_answers", AttemptID: 9, Success: false, ErrorMessage: "boom"}))
	require.NoError(t, repo.Append(ctx, Entry{SessionID: "s2", Op: "get_page", AttemptID: 10, Page: 1, Success: true}))

	entries, err = repo.Recent(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "s2", entries[0].SessionID, "newest first")
	assert.Greater(t, entries[0].Sequence, entries[1].Sequence)
	assert.False(t, entries[1].Success)
	assert.Equal(t, "boom", entries[1].ErrorMessage)
	assert.False(t, entries[2].CreatedAt.IsZero())
}

func TestJournalFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.JournalRepo()
	ctx := context.Background()

	for _, op := range []string{"get_quiz", "get_page", "get_page", "submit_answers"} {
		require.NoError(t, repo.Append(ctx, Entry{SessionID: "s1", Op: op, Success: true}))
	}
	require.NoError(t, repo.Append(ctx, Entry{SessionID: "s2", Op: "get_page", Success: true}))

	pages, err := repo.Recent(ctx, QueryOpts{SessionID: "s1", Op: "get_page"})
	require.NoError(t, err)
	assert.Len(t, pages, 2)

	limited, err := repo.Recent(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	after, err := repo.Recent(ctx, QueryOpts{After: limited[1].Sequence})
	require.NoError(t, err)
	assert.Len(t, after, 1)
}

func TestReopenKeepsSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.JournalRepo().Append(ctx, Entry{SessionID: "a", Op: "get_quiz", Success: true}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.JournalRepo().Append(ctx, Entry{SessionID: "b", Op: "get_quiz", Success: true}))

	entries, err := s.JournalRepo().Recent(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].Sequence)
	assert.Equal(t, int64(1), entries[1].Sequence)
}
