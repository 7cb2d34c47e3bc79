package store

import (
	"context"
	"fmt"

	"github.com/jlmalone/redo/internal/changelog"
)

// ErrInvalidEntry wraps the structural violations of an entry rejected at
// the persistence boundary.
type ErrInvalidEntry struct {
	EventID    string
	Violations []changelog.Violation
}

func (e *ErrInvalidEntry) Error() string {
	return fmt.Sprintf("entry %s failed validation (%d violations)", e.EventID, len(e.Violations))
}

// Append persists one entry, reporting whether a new row was inserted.
//
// Entries are validated against the wire contract before they touch disk;
// a rejected entry is an error here, not a diagnostic - the log stays
// clean and replay's soft-exclusion tier handles anything foreign that
// arrives through import instead.
//
// ON CONFLICT(id) DO NOTHING makes duplicate appends idempotent, so
// merging local and remote sets is a plain re-append of everything.
func (s *Store) Append(ctx context.Context, e changelog.Entry) (bool, error) {
	if violations := changelog.Validate(e); len(violations) > 0 {
		return false, &ErrInvalidEntry{EventID: e.ID, Violations: violations}
	}

	body, err := e.MarshalJSON()
	if err != nil {
		return false, fmt.Errorf("append event: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events
		(id, user_id, device_id, lamport, wall, action, task_id, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.Author.UserID,
		e.Author.DeviceID,
		e.Timestamp.Lamport,
		e.Timestamp.Wall,
		string(e.Action),
		e.TaskID,
		string(body),
	)
	if err != nil {
		return false, fmt.Errorf("append event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append event: %w", err)
	}
	return n > 0, nil
}

// ImportResult summarizes a bulk ingest.
type ImportResult struct {
	Inserted int
	Skipped  int // duplicates or structurally invalid entries
	Invalid  []changelog.Violation
}

// ImportEntries ingests a batch of entries, skipping duplicates by
// content address and excluding invalid entries instead of aborting.
// Importing the same batch twice inserts nothing the second time.
func (s *Store) ImportEntries(ctx context.Context, entries []changelog.Entry) (ImportResult, error) {
	var result ImportResult

	for _, e := range entries {
		if violations := changelog.Validate(e); len(violations) > 0 {
			result.Skipped++
			result.Invalid = append(result.Invalid, violations...)
			continue
		}
		inserted, err := s.Append(ctx, e)
		if err != nil {
			return result, fmt.Errorf("import entries: %w", err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}
