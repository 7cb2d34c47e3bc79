package replay

import "time"

// Task is a reconstructed aggregate. It exists only as replay output and
// is discarded and rebuilt on every reconstruction.
type Task struct {
	GUID          string
	UserID        string
	Title         string
	Description   string
	Privacy       bool
	StoryPoints   float64
	Priority      int
	FrequencyDays int // 0 = one-time, >0 = recurrence period in days
	Created       time.Time
	Archived      bool
	LastUpdated   *time.Time
	Todos         []*Todo
}

// Todo is a task's sub-item. At most one todo per task is pending (has no
// completion) while the task has outstanding work.
type Todo struct {
	GUID      string
	TaskGUID  string
	Created   time.Time
	Notes     string // append-only, newline-joined
	Deadline  time.Time
	Completed *time.Time
}

// Defaults applied when a CREATE payload omits a field.
const (
	DefaultPriority      = 3
	DefaultFrequencyDays = 7
	DefaultStoryPoints   = 1.0
)

// Pending returns the task's open sub-item, or nil if all are completed.
func (t *Task) Pending() *Todo {
	for _, todo := range t.Todos {
		if todo.Completed == nil {
			return todo
		}
	}
	return nil
}

// FindTodo returns the sub-item with the given guid, or nil.
func (t *Task) FindTodo(guid string) *Todo {
	for _, todo := range t.Todos {
		if todo.GUID == guid {
			return todo
		}
	}
	return nil
}

// AppendNotes joins new note text onto the todo's existing notes,
// newline-separated. Empty new text never changes anything.
func (td *Todo) AppendNotes(notes string) {
	if notes == "" {
		return
	}
	if td.Notes == "" {
		td.Notes = notes
		return
	}
	td.Notes += "\n" + notes
}
