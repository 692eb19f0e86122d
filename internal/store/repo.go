package store

import (
	"context"
	"time"
)

// QueryOpts configures journal queries with filtering and pagination.
type QueryOpts struct {
	Limit     int    // max results (0 = unlimited)
	After     int64  // sequence > After
	SessionID string // only entries of this session when set
	Op        string // only entries of this operation when set
}

// Entry is one recorded gateway call.
type Entry struct {
	Sequence     int64
	SessionID    string
	Op           string
	AttemptID    int
	Page         int
	Success      bool
	ErrorMessage string
	LatencyMs    int64
	Detail       string
	CreatedAt    time.Time
}

// JournalRepo provides append and query access to the local journal.
type JournalRepo interface {
	// Append records an entry and assigns its sequence.
	Append(ctx context.Context, e Entry) error

	// Recent returns entries newest first.
	Recent(ctx context.Context, opts QueryOpts) ([]Entry, error)
}
