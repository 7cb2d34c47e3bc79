package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jlmalone/redo/internal/changelog"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Input string // source file, "-" for stdin
}

// ImportCmdResult holds the import command output.
type ImportCmdResult struct {
	Read     int `json:"read"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import events from a JSON array",
		Long: `Ingest events from an exported JSON array. Entries already present
(by content address) and entries that fail validation are skipped, so
importing the same file twice inserts nothing the second time.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Input = args[0]
			}
			return runImport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "-", "source file (- for stdin)")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := context.Background()

	var data []byte
	var err error
	if opts.Input == "" || opts.Input == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(opts.Input)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "read import input", err)
	}

	entries, err := changelog.UnmarshalEntries(data)
	if err != nil {
		return WrapExitError(ExitFailure, "parse import input", err)
	}

	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.st.ImportEntries(ctx, entries)
	if err != nil {
		return WrapExitError(ExitCommandError, "import events", err)
	}
	for _, v := range result.Invalid {
		formatter.VerboseLog("invalid entry: %s", v.Error())
	}

	return formatter.Successf(
		ImportCmdResult{Read: len(entries), Inserted: result.Inserted, Skipped: result.Skipped},
		"imported %d of %d event(s), %d skipped",
		result.Inserted, len(entries), result.Skipped)
}
