package replay

import (
	"errors"
	"fmt"

	"github.com/jlmalone/redo/internal/changelog"
)

// MissingTaskIDError is the hard tier of the replay error taxonomy: an
// entry whose action targets a task carries no taskId at all. Unlike a
// soft rejection this is a structural impossibility, so it is surfaced
// through Reconstruct's error return rather than folded into diagnostics.
type MissingTaskIDError struct {
	EventID string
	Action  changelog.Action
}

func (e *MissingTaskIDError) Error() string {
	return fmt.Sprintf("event %s: action %s requires a taskId", e.EventID, e.Action)
}

// IsMissingTaskID reports whether err is (or wraps) a MissingTaskIDError.
func IsMissingTaskID(err error) bool {
	var me *MissingTaskIDError
	return errors.As(err, &me)
}

// UnknownActionError is raised when the fold reaches an action outside
// the closed set. The structural gate screens these out beforehand, so
// hitting one means the gate was bypassed.
type UnknownActionError struct {
	EventID string
	Action  changelog.Action
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("event %s: unknown action %q", e.EventID, string(e.Action))
}

// Diagnostic records one soft rejection: an entry excluded from the fold
// together with the reason. Diagnostics replace side-channel warnings so
// callers can count, log, or display exclusions as they see fit.
type Diagnostic struct {
	EventID string
	Action  changelog.Action
	Reason  string
}

// Diagnostics collects the soft rejections of one reconstruction.
type Diagnostics struct {
	Excluded []Diagnostic
}

func (d *Diagnostics) add(e changelog.Entry, reason string) {
	d.Excluded = append(d.Excluded, Diagnostic{
		EventID: e.ID,
		Action:  e.Action,
		Reason:  reason,
	})
}

// Count returns the number of excluded entries.
func (d *Diagnostics) Count() int {
	return len(d.Excluded)
}
