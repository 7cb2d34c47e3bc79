package changelog

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jlmalone/redo/internal/canonical"
)

// Payload keys shared across actions.
const (
	KeyTitle         = "title"
	KeyDescription   = "description"
	KeyPriority      = "priority"
	KeyFrequencyDays = "frequencyDays"
	KeyStoryPoints   = "storyPoints"
	KeyPrivacy       = "privacy"
	KeyTodoTaskID    = "todoTaskId"
	KeyDeadline      = "deadline"
	KeyCompleted     = "completed"
	KeyNewDeadline   = "newDeadline"
	KeySnoozeDays    = "snoozeDays"
	KeyNotes         = "notes"
)

// ValidateActionPayload checks the action-specific required payload keys
// and their shapes. It is a separate, opt-in gate: the baseline
// structural validator does not consult the payload at all, so callers
// that only need wire-contract validity can skip this.
func ValidateActionPayload(e Entry) []Violation {
	data := e.Data
	if data == nil {
		data = canonical.Object{}
	}

	switch e.Action {
	case ActionCreate:
		return validateCreatePayload(data)
	case ActionUpdate:
		if len(data) == 0 {
			return []Violation{{Field: "data", Message: "UPDATE requires at least one payload key"}}
		}
		return nil
	case ActionCreateTodo:
		var errs []Violation
		errs = append(errs, requireTodoTaskID(data)...)
		errs = append(errs, requireWallString(data, KeyDeadline)...)
		return errs
	case ActionCompleteTodo:
		var errs []Violation
		errs = append(errs, requireTodoTaskID(data)...)
		errs = append(errs, requireWallString(data, KeyCompleted)...)
		return errs
	case ActionSnooze:
		return validateSnoozePayload(data)
	case ActionArchive, ActionUnarchive, ActionDelete:
		return nil
	default:
		return []Violation{{Field: "action", Message: fmt.Sprintf("unknown action %q", string(e.Action))}}
	}
}

func validateCreatePayload(data canonical.Object) []Violation {
	var errs []Violation

	if _, ok := canonical.AsString(data[KeyTitle]); !ok {
		errs = append(errs, Violation{Field: "data.title", Message: "required string"})
	}
	if _, present := data[KeyDescription]; !present {
		errs = append(errs, Violation{Field: "data.description", Message: "required"})
	}
	if _, ok := canonical.AsInt(data[KeyPriority]); !ok {
		errs = append(errs, Violation{Field: "data.priority", Message: "required integer"})
	}
	if _, ok := canonical.AsInt(data[KeyFrequencyDays]); !ok {
		errs = append(errs, Violation{Field: "data.frequencyDays", Message: "required integer"})
	}
	if _, present := data[KeyStoryPoints]; !present {
		errs = append(errs, Violation{Field: "data.storyPoints", Message: "required"})
	}

	return errs
}

func validateSnoozePayload(data canonical.Object) []Violation {
	errs := requireTodoTaskID(data)

	// Either a replacement deadline or a day count; one of the two must
	// be present and well-formed.
	if s, ok := canonical.AsString(data[KeyNewDeadline]); ok {
		if _, err := ParseWall(s); err != nil {
			errs = append(errs, Violation{Field: "data.newDeadline", Message: "must be a valid ISO-8601 timestamp"})
		}
		return errs
	}
	if _, ok := canonical.AsInt(data[KeySnoozeDays]); ok {
		return errs
	}

	return append(errs, Violation{
		Field:   "data",
		Message: "SNOOZE requires newDeadline (ISO-8601) or snoozeDays (integer)",
	})
}

func requireTodoTaskID(data canonical.Object) []Violation {
	s, ok := canonical.AsString(data[KeyTodoTaskID])
	if !ok || !IsUUID(s) {
		return []Violation{{Field: "data.todoTaskId", Message: "required UUID string"}}
	}
	return nil
}

func requireWallString(data canonical.Object, key string) []Violation {
	s, ok := canonical.AsString(data[key])
	if !ok {
		return []Violation{{Field: "data." + key, Message: "required ISO-8601 string"}}
	}
	if _, err := ParseWall(s); err != nil {
		return []Violation{{Field: "data." + key, Message: "must be a valid ISO-8601 timestamp"}}
	}
	return nil
}

// IsUUID reports whether s is a syntactically valid UUID in the canonical
// 36-character dashed form.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
