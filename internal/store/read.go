package store

import (
	"context"
	"fmt"

	"github.com/jlmalone/redo/internal/changelog"
)

// ReadAll returns every stored event, ordered lamport ASC with the
// content address as tie-break. Replay re-sorts anyway, but deterministic
// read order keeps exports and diffs stable.
func (s *Store) ReadAll(ctx context.Context) ([]changelog.Entry, error) {
	return s.readWhere(ctx, "", nil)
}

// ReadUser returns all events authored by one user identity, same
// ordering as ReadAll.
func (s *Store) ReadUser(ctx context.Context, userID string) ([]changelog.Entry, error) {
	return s.readWhere(ctx, "WHERE user_id = ?", []any{userID})
}

// ReadTask returns all events targeting one task aggregate.
func (s *Store) ReadTask(ctx context.Context, taskID string) ([]changelog.Entry, error) {
	return s.readWhere(ctx, "WHERE task_id = ?", []any{taskID})
}

func (s *Store) readWhere(ctx context.Context, where string, args []any) ([]changelog.Entry, error) {
	query := fmt.Sprintf(`
		SELECT body FROM events
		%s
		ORDER BY lamport ASC, id COLLATE BINARY ASC
	`, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	entries := []changelog.Entry{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e, err := changelog.UnmarshalEntry([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("decode event body: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return entries, nil
}

// LastLamport returns the highest Lamport counter in the log, 0 for an
// empty log. Authoring callers mint new events at LastLamport+1.
func (s *Store) LastLamport(ctx context.Context) (int64, error) {
	var max int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(lamport), 0) FROM events
	`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("last lamport: %w", err)
	}
	return max, nil
}

// Heads returns the content addresses of the entries carrying the highest
// Lamport counter. New local events record these as their parents.
func (s *Store) Heads(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM events
		WHERE lamport = (SELECT MAX(lamport) FROM events)
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query heads: %w", err)
	}
	defer rows.Close()

	var heads []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan head: %w", err)
		}
		heads = append(heads, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate heads: %w", err)
	}

	return heads, nil
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
