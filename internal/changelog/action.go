package changelog

// Action tags an entry with its transition rule. The set is closed by the
// v1 wire contract; anything else fails validation.
type Action string

const (
	ActionCreate       Action = "CREATE"
	ActionUpdate       Action = "UPDATE"
	ActionCreateTodo   Action = "CREATE_TODO"
	ActionCompleteTodo Action = "COMPLETE_TODO"
	ActionSnooze       Action = "SNOOZE"
	ActionArchive      Action = "ARCHIVE"
	ActionUnarchive    Action = "UNARCHIVE"
	ActionDelete       Action = "DELETE"
)

// ValidActions is the closed action set of the v1 contract.
var ValidActions = map[Action]bool{
	ActionCreate:       true,
	ActionUpdate:       true,
	ActionCreateTodo:   true,
	ActionCompleteTodo: true,
	ActionSnooze:       true,
	ActionArchive:      true,
	ActionUnarchive:    true,
	ActionDelete:       true,
}

// IsValid reports whether a is in the closed action set.
func (a Action) IsValid() bool {
	return ValidActions[a]
}

// String returns the wire form of the action.
func (a Action) String() string {
	return string(a)
}
