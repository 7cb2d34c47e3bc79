package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jlmalone/redo/internal/changelog"
	"github.com/jlmalone/redo/internal/rank"
	"github.com/jlmalone/redo/internal/replay"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	All bool // include archived tasks
}

// ListedTask is one row of the list output.
type ListedTask struct {
	TaskID   string  `json:"task_id"`
	Title    string  `json:"title"`
	Priority int     `json:"priority"`
	Points   float64 `json:"points"`
	Every    int     `json:"every"`
	Deadline string  `json:"deadline,omitempty"`
	Score    float64 `json:"score"`
	Archived bool    `json:"archived"`
}

// ListResult holds the list command output.
type ListResult struct {
	Tasks    []ListedTask `json:"tasks"`
	Excluded int          `json:"excluded_events"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Reconstruct and list tasks, most urgent first",
		Long: `Replay the full change log and print the reconstructed tasks ordered
by urgency score (priority x logistic age curve x sqrt(points), with a
morning bonus).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "include archived tasks")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := context.Background()

	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	events, err := s.st.ReadAll(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "read change log", err)
	}

	tasks, diags, err := replay.Reconstruct(events)
	if err != nil {
		// Hard errors surface but the partial state is still usable.
		formatter.VerboseLog("replay reported errors: %v", err)
	}
	for _, d := range diags.Excluded {
		formatter.VerboseLog("excluded %s (%s): %s", d.EventID, d.Action, d.Reason)
	}

	now := time.Now()
	result := ListResult{Tasks: []ListedTask{}, Excluded: diags.Count()}
	for _, task := range tasks {
		if task.Archived && !opts.All {
			continue
		}
		row := ListedTask{
			TaskID:   task.GUID,
			Title:    task.Title,
			Priority: task.Priority,
			Points:   task.StoryPoints,
			Every:    task.FrequencyDays,
			Archived: task.Archived,
		}
		if pending := task.Pending(); pending != nil {
			row.Deadline = changelog.FormatWall(pending.Deadline)
			row.Score = rank.Score(task.Priority, task.StoryPoints, pending.Created, now)
		}
		result.Tasks = append(result.Tasks, row)
	}

	sort.Slice(result.Tasks, func(i, j int) bool {
		if result.Tasks[i].Score != result.Tasks[j].Score {
			return result.Tasks[i].Score > result.Tasks[j].Score
		}
		return result.Tasks[i].TaskID < result.Tasks[j].TaskID
	})

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	if len(result.Tasks) == 0 {
		fmt.Fprintln(formatter.Writer, "no tasks")
		return nil
	}

	rows := make([][]string, 0, len(result.Tasks))
	for _, t := range result.Tasks {
		flag := ""
		if t.Archived {
			flag = "archived"
		}
		rows = append(rows, []string{
			shortID(t.TaskID),
			t.Title,
			fmt.Sprintf("%d", t.Priority),
			fmt.Sprintf("%.1f", t.Points),
			fmt.Sprintf("%d", t.Every),
			t.Deadline,
			fmt.Sprintf("%.3f", t.Score),
			flag,
		})
	}
	fmt.Fprint(formatter.Writer,
		formatTable([]string{"ID", "TITLE", "PRI", "PTS", "EVERY", "DEADLINE", "SCORE", ""}, rows))
	if result.Excluded > 0 {
		fmt.Fprintf(formatter.Writer, "\n%d event(s) excluded from replay (use -v for details)\n", result.Excluded)
	}
	return nil
}

// shortID abbreviates a task guid for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
