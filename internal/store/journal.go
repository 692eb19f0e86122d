package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type journalRepo struct {
	db *sql.DB
}

// Append numbers the entry one past the highest recorded sequence. SQLite
// holds the write lock for the whole statement, so concurrent writers,
// including other processes sharing the file, never reuse a number.
func (r *journalRepo) Append(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO journal_entries
			(sequence, session_id, op, attempt_id, page, success, error_message, latency_ms, detail, created_at)
		SELECT COALESCE(MAX(sequence), 0) + 1, ?, ?, ?, ?, ?, ?, ?, ?, ?
		FROM journal_entries`,
		e.SessionID, e.Op, e.AttemptID, e.Page, e.Success, e.ErrorMessage, e.LatencyMs, e.Detail, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save journal entry: %w", err)
	}
	return nil
}

func (r *journalRepo) Recent(ctx context.Context, opts QueryOpts) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, opts.SessionID)
	}
	if opts.Op != "" {
		where = append(where, "op = ?")
		args = append(args, opts.Op)
	}

	q := `SELECT sequence, session_id, op, attempt_id, page, success, error_message, latency_ms, detail, created_at
		FROM journal_entries`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Sequence, &e.SessionID, &e.Op, &e.AttemptID, &e.Page,
			&e.Success, &e.ErrorMessage, &e.LatencyMs, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
