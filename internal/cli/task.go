package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jlmalone/redo/internal/canonical"
	"github.com/jlmalone/redo/internal/changelog"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Description   string
	Priority      int
	StoryPoints   float64
	FrequencyDays int
	Private       bool
}

// EventResult reports an authored event back to the caller.
type EventResult struct {
	EventID string `json:"event_id"`
	TaskID  string `json:"task_id"`
	Action  string `json:"action"`
	Lamport int64  `json:"lamport"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a new task",
		Long: `Author a CREATE event for a new task aggregate.

A task with --every 0 is one-time; any positive value makes it recur
with that period in days.

Examples:
  redo add "Water the plants" --every 3
  redo add "File taxes" --every 0 --priority 5 --points 8`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "task description")
	cmd.Flags().IntVarP(&opts.Priority, "priority", "p", 3, "priority 1-5")
	cmd.Flags().Float64Var(&opts.StoryPoints, "points", 1.0, "story points")
	cmd.Flags().IntVar(&opts.FrequencyDays, "every", 7, "recurrence period in days (0 = one-time)")
	cmd.Flags().BoolVar(&opts.Private, "private", false, "mark the task private")

	return cmd
}

func runAdd(opts *AddOptions, title string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := context.Background()

	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	data := canonical.Object{
		changelog.KeyTitle:         canonical.String(title),
		changelog.KeyDescription:   canonical.String(opts.Description),
		changelog.KeyPriority:      canonical.Int(opts.Priority),
		changelog.KeyFrequencyDays: canonical.Int(opts.FrequencyDays),
		changelog.KeyStoryPoints:   canonical.Float(opts.StoryPoints),
		changelog.KeyPrivacy:       canonical.Bool(opts.Private),
	}

	e, err := s.mint(ctx, changelog.ActionCreate, newTaskID(), data)
	if err != nil {
		return err
	}

	return formatter.Successf(eventResult(e), "created task %s (%s)", e.TaskID, e.ID)
}

// NewArchiveCommand creates the archive command.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	return newFlagEventCommand(rootOpts, "archive <task-id>",
		"Archive a task", changelog.ActionArchive)
}

// NewUnarchiveCommand creates the unarchive command.
func NewUnarchiveCommand(rootOpts *RootOptions) *cobra.Command {
	return newFlagEventCommand(rootOpts, "unarchive <task-id>",
		"Unarchive a task", changelog.ActionUnarchive)
}

// NewRemoveCommand creates the rm command. Deletion is a tombstone: the
// underlying events are never destroyed, the aggregate is just excluded
// from every future reconstruction.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return newFlagEventCommand(rootOpts, "rm <task-id>",
		"Delete a task (sticky tombstone)", changelog.ActionDelete)
}

// newFlagEventCommand builds the archive/unarchive/rm commands, which all
// author a payload-free event against one task.
func newFlagEventCommand(rootOpts *RootOptions, use, short string, action changelog.Action) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			ctx := context.Background()

			s, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			e, err := s.mint(ctx, action, args[0], canonical.Object{})
			if err != nil {
				return err
			}
			return formatter.Successf(eventResult(e), "%s %s (%s)", string(action), e.TaskID, e.ID)
		},
	}
	return cmd
}

func eventResult(e changelog.Entry) EventResult {
	return EventResult{
		EventID: e.ID,
		TaskID:  e.TaskID,
		Action:  string(e.Action),
		Lamport: e.Timestamp.Lamport,
	}
}
