package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jlmalone/redo/internal/canonical"
	"github.com/jlmalone/redo/internal/changelog"
)

// NewTodoCommand creates the todo command group.
func NewTodoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Work with a task's sub-items",
	}

	cmd.AddCommand(newTodoAddCommand(rootOpts))
	cmd.AddCommand(newTodoDoneCommand(rootOpts))
	cmd.AddCommand(newTodoSnoozeCommand(rootOpts))

	return cmd
}

func newTodoAddCommand(rootOpts *RootOptions) *cobra.Command {
	var deadline string
	var notes string

	cmd := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Add a pending sub-item to a task",
		Long: `Author a CREATE_TODO event. The sub-item gets a fresh guid and the
given deadline (default: one week out).`,
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

			if deadline == "" {
				deadline = changelog.FormatWall(time.Now().AddDate(0, 0, 7))
			} else if _, err := changelog.ParseWall(deadline); err != nil {
				return WrapExitError(ExitCommandError, "parse --deadline", err)
			}

			data := canonical.Object{
				changelog.KeyTodoTaskID: canonical.String(newTaskID()),
				changelog.KeyDeadline:   canonical.String(deadline),
			}
			if notes != "" {
				data[changelog.KeyNotes] = canonical.String(notes)
			}

			e, err := s.mint(ctx, changelog.ActionCreateTodo, args[0], data)
			if err != nil {
				return err
			}
			todoID, _ := canonical.AsString(data[changelog.KeyTodoTaskID])
			return formatter.Successf(eventResult(e), "added todo %s to task %s", todoID, e.TaskID)
		},
	}

	cmd.Flags().StringVar(&deadline, "deadline", "", "ISO-8601 deadline (default: +7 days)")
	cmd.Flags().StringVar(&notes, "notes", "", "initial notes")

	return cmd
}

func newTodoDoneCommand(rootOpts *RootOptions) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "done <task-id> <todo-id>",
		Short: "Complete a task's pending sub-item",
		Long: `Author a COMPLETE_TODO event. If the task recurs, replay will
regenerate a fresh sub-item due one period after this completion.`,
		Args:          cobra.ExactArgs(2),
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

			data := canonical.Object{
				changelog.KeyTodoTaskID: canonical.String(args[1]),
				changelog.KeyCompleted:  canonical.String(changelog.FormatWall(time.Now())),
			}
			if notes != "" {
				data[changelog.KeyNotes] = canonical.String(notes)
			}

			e, err := s.mint(ctx, changelog.ActionCompleteTodo, args[0], data)
			if err != nil {
				return err
			}
			return formatter.Successf(eventResult(e), "completed todo %s on task %s", args[1], e.TaskID)
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "notes to append to the sub-item")

	return cmd
}

func newTodoSnoozeCommand(rootOpts *RootOptions) *cobra.Command {
	var days int
	var until string
	var notes string

	cmd := &cobra.Command{
		Use:   "snooze <task-id> <todo-id>",
		Short: "Push out a sub-item's deadline",
		Long: `Author a SNOOZE event. --until sets a new absolute deadline;
--days pushes the current deadline out (not "now" - snoozing twice by
three days moves the deadline six days).`,
		Args:          cobra.ExactArgs(2),
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

			data := canonical.Object{
				changelog.KeyTodoTaskID: canonical.String(args[1]),
			}
			switch {
			case until != "":
				if _, err := changelog.ParseWall(until); err != nil {
					return WrapExitError(ExitCommandError, "parse --until", err)
				}
				data[changelog.KeyNewDeadline] = canonical.String(until)
			case days > 0:
				data[changelog.KeySnoozeDays] = canonical.Int(days)
			default:
				return NewExitError(ExitCommandError, "snooze requires --days or --until")
			}
			if notes != "" {
				data[changelog.KeyNotes] = canonical.String(notes)
			}

			e, err := s.mint(ctx, changelog.ActionSnooze, args[0], data)
			if err != nil {
				return err
			}
			return formatter.Successf(eventResult(e), "snoozed todo %s on task %s", args[1], e.TaskID)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "days to add to the current deadline")
	cmd.Flags().StringVar(&until, "until", "", "new ISO-8601 deadline")
	cmd.Flags().StringVar(&notes, "notes", "", "notes to append to the sub-item")

	return cmd
}
