package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jlmalone/redo/internal/changelog"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string // destination file, "-" for stdout
	User   string // restrict to one author
}

// ExportResult holds the export command output.
type ExportResult struct {
	Events int    `json:"events"`
	Output string `json:"output"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the change log as a JSON array",
		Long: `Write every stored event, in canonical form and log order, as a JSON
array. The output round-trips through import without loss: exporting,
importing into an empty database, and exporting again yields identical
bytes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "destination file (- for stdout)")
	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "export only events by this user id")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := context.Background()

	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	var events []changelog.Entry
	if opts.User != "" {
		events, err = s.st.ReadUser(ctx, opts.User)
	} else {
		events, err = s.st.ReadAll(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "read change log", err)
	}

	data, err := changelog.MarshalEntries(events)
	if err != nil {
		return WrapExitError(ExitCommandError, "marshal change log", err)
	}

	if opts.Output == "-" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if err := os.WriteFile(opts.Output, append(data, '\n'), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "write export file", err)
	}

	return formatter.Successf(ExportResult{Events: len(events), Output: opts.Output},
		"exported %d event(s) to %s", len(events), opts.Output)
}
