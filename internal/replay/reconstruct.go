package replay

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jlmalone/redo/internal/canonical"
	"github.com/jlmalone/redo/internal/changelog"
)

// recurrenceNamespace seeds the deterministic UUIDv5 derivation for
// regenerated sub-items. Every replica must derive the identical guid for
// the sub-item a COMPLETE_TODO spawns, so the guid is a pure function of
// the completing event, never a random draw.
var recurrenceNamespace = uuid.MustParse("8f0f42d1-6dd4-5a8b-9d8e-52a1c0a4f0b7")

// Reconstruct folds an unordered collection of change log entries into
// the current task state.
//
// The input slice is not mutated. Entries are ordered by Lamport counter
// with the content address as tie-break, screened by the structural gate,
// then applied in order. Soft failures land in the returned Diagnostics;
// hard failures are joined into the returned error while reconstruction
// continues, so the state map is always usable.
func Reconstruct(events []changelog.Entry) (map[string]*Task, *Diagnostics, error) {
	ordered := sortEntries(events)

	tasks := make(map[string]*Task)
	tombstones := make(map[string]bool)
	diags := &Diagnostics{}
	var hard []error

	for _, e := range ordered {
		if violations := changelog.Validate(e); len(violations) > 0 {
			diags.add(e, violationSummary(violations))
			continue
		}
		if err := apply(tasks, tombstones, diags, e); err != nil {
			hard = append(hard, err)
		}
	}

	// Delete is sticky: any tombstone removes the aggregate from the
	// output regardless of where other events for the task sorted.
	for guid := range tombstones {
		delete(tasks, guid)
	}

	return tasks, diags, errors.Join(hard...)
}

// sortEntries returns a copy of events in replay order. The Lamport
// counter gives the total order; equal counters fall back to the content
// address so that concurrent writes from independent devices still replay
// identically everywhere.
func sortEntries(events []changelog.Entry) []changelog.Entry {
	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, func(a, b changelog.Entry) int {
		if a.Timestamp.Lamport != b.Timestamp.Lamport {
			if a.Timestamp.Lamport < b.Timestamp.Lamport {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	return ordered
}

func apply(tasks map[string]*Task, tombstones map[string]bool, diags *Diagnostics, e changelog.Entry) error {
	if e.TaskID == "" {
		return &MissingTaskIDError{EventID: e.ID, Action: e.Action}
	}

	// The structural gate already guaranteed this parses.
	wall, err := changelog.ParseWall(e.Timestamp.Wall)
	if err != nil {
		diags.add(e, "unparseable wall time")
		return nil
	}

	switch e.Action {
	case changelog.ActionCreate:
		applyCreate(tasks, diags, e, wall)
	case changelog.ActionUpdate:
		applyUpdate(tasks, diags, e, wall)
	case changelog.ActionCreateTodo:
		applyCreateTodo(tasks, diags, e, wall)
	case changelog.ActionCompleteTodo:
		applyCompleteTodo(tasks, diags, e)
	case changelog.ActionSnooze:
		applySnooze(tasks, diags, e)
	case changelog.ActionArchive:
		applyArchiveFlag(tasks, diags, e, wall, true)
	case changelog.ActionUnarchive:
		applyArchiveFlag(tasks, diags, e, wall, false)
	case changelog.ActionDelete:
		tombstones[e.TaskID] = true
	default:
		return &UnknownActionError{EventID: e.ID, Action: e.Action}
	}
	return nil
}

func applyCreate(tasks map[string]*Task, diags *Diagnostics, e changelog.Entry, wall time.Time) {
	if _, exists := tasks[e.TaskID]; exists {
		// First CREATE wins; a duplicate is a no-op, not an error.
		diags.add(e, "duplicate CREATE for existing task")
		return
	}

	task := &Task{
		GUID:          e.TaskID,
		UserID:        e.Author.UserID,
		Priority:      DefaultPriority,
		FrequencyDays: DefaultFrequencyDays,
		StoryPoints:   DefaultStoryPoints,
		Created:       wall,
	}
	setTaskFields(task, e.Data)
	tasks[e.TaskID] = task
}

func applyUpdate(tasks map[string]*Task, diags *Diagnostics, e changelog.Entry, wall time.Time) {
	task, exists := tasks[e.TaskID]
	if !exists {
		diags.add(e, "UPDATE for unknown task")
		return
	}
	setTaskFields(task, e.Data)
	task.LastUpdated = &wall
}

// setTaskFields overwrites only the aggregate fields present in the
// payload. Wrong-typed values are left untouched.
func setTaskFields(task *Task, data canonical.Object) {
	if s, ok := canonical.AsString(data[changelog.KeyTitle]); ok {
		task.Title = s
	}
	if s, ok := canonical.AsString(data[changelog.KeyDescription]); ok {
		task.Description = s
	}
	if b, ok := canonical.AsBool(data[changelog.KeyPrivacy]); ok {
		task.Privacy = b
	}
	if n, ok := canonical.AsInt(data[changelog.KeyPriority]); ok {
		task.Priority = int(n)
	}
	if n, ok := canonical.AsInt(data[changelog.KeyFrequencyDays]); ok {
		task.FrequencyDays = int(n)
	}
	if f, ok := canonical.Num(data[changelog.KeyStoryPoints]); ok {
		task.StoryPoints = f
	}
}

func applyCreateTodo(tasks map[string]*Task, diags *Diagnostics, e changelog.Entry, wall time.Time) {
	task, exists := tasks[e.TaskID]
	if !exists {
		diags.add(e, "CREATE_TODO for unknown task")
		return
	}

	guid, ok := canonical.AsString(e.Data[changelog.KeyTodoTaskID])
	if !ok || !changelog.IsUUID(guid) {
		diags.add(e, "CREATE_TODO missing todoTaskId")
		return
	}
	deadlineStr, ok := canonical.AsString(e.Data[changelog.KeyDeadline])
	if !ok {
		diags.add(e, "CREATE_TODO missing deadline")
		return
	}
	deadline, err := changelog.ParseWall(deadlineStr)
	if err != nil {
		diags.add(e, "CREATE_TODO unparseable deadline")
		return
	}

	todo := &Todo{
		GUID:     guid,
		TaskGUID: task.GUID,
		Created:  wall,
		Deadline: deadline,
	}
	if notes, ok := canonical.AsString(e.Data[changelog.KeyNotes]); ok {
		todo.Notes = notes
	}
	task.Todos = append(task.Todos, todo)
}

func applyCompleteTodo(tasks map[string]*Task, diags *Diagnostics, e changelog.Entry) {
	task, todo := resolveTodo(tasks, diags, e)
	if todo == nil {
		return
	}

	completedStr, ok := canonical.AsString(e.Data[changelog.KeyCompleted])
	if !ok {
		diags.add(e, "COMPLETE_TODO missing completed")
		return
	}
	completed, err := changelog.ParseWall(completedStr)
	if err != nil {
		diags.add(e, "COMPLETE_TODO unparseable completed")
		return
	}

	todo.Completed = &completed
	if notes, ok := canonical.AsString(e.Data[changelog.KeyNotes]); ok {
		todo.AppendNotes(notes)
	}

	// Recurrence: an active recurring task regenerates exactly one fresh
	// sub-item, due one period after the completion.
	if !task.Archived && task.FrequencyDays > 0 {
		task.Todos = append(task.Todos, &Todo{
			GUID:     regeneratedGUID(task.GUID, completedStr),
			TaskGUID: task.GUID,
			Created:  completed,
			Deadline: completed.AddDate(0, 0, task.FrequencyDays),
		})
	}
}

func applySnooze(tasks map[string]*Task, diags *Diagnostics, e changelog.Entry) {
	_, todo := resolveTodo(tasks, diags, e)
	if todo == nil {
		return
	}

	if s, ok := canonical.AsString(e.Data[changelog.KeyNewDeadline]); ok {
		if deadline, err := changelog.ParseWall(s); err == nil {
			todo.Deadline = deadline
		} else {
			diags.add(e, "SNOOZE unparseable newDeadline")
			return
		}
	} else if days, ok := canonical.AsInt(e.Data[changelog.KeySnoozeDays]); ok {
		// Days are added to the current deadline, not to "now".
		todo.Deadline = todo.Deadline.AddDate(0, 0, int(days))
	} else {
		diags.add(e, "SNOOZE without newDeadline or snoozeDays")
		return
	}

	if notes, ok := canonical.AsString(e.Data[changelog.KeyNotes]); ok {
		todo.AppendNotes(notes)
	}
}

func applyArchiveFlag(tasks map[string]*Task, diags *Diagnostics, e changelog.Entry, wall time.Time, archived bool) {
	task, exists := tasks[e.TaskID]
	if !exists {
		diags.add(e, string(e.Action)+" for unknown task")
		return
	}
	task.Archived = archived
	task.LastUpdated = &wall
}

// resolveTodo looks up the entry's target task and sub-item, recording a
// diagnostic and returning nil when either is missing.
func resolveTodo(tasks map[string]*Task, diags *Diagnostics, e changelog.Entry) (*Task, *Todo) {
	task, exists := tasks[e.TaskID]
	if !exists {
		diags.add(e, string(e.Action)+" for unknown task")
		return nil, nil
	}
	guid, ok := canonical.AsString(e.Data[changelog.KeyTodoTaskID])
	if !ok {
		diags.add(e, string(e.Action)+" missing todoTaskId")
		return nil, nil
	}
	todo := task.FindTodo(guid)
	if todo == nil {
		diags.add(e, string(e.Action)+" for unknown todo")
		return nil, nil
	}
	return task, todo
}

// regeneratedGUID derives the guid of a recurrence-spawned sub-item from
// the task guid and the completing event's wall string. UUIDv5 keeps the
// derivation stable: same completion, same guid, on every replica.
func regeneratedGUID(taskGUID, completedWall string) string {
	return uuid.NewSHA1(recurrenceNamespace, []byte(taskGUID+"/"+completedWall)).String()
}
