package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jlmalone/redo/internal/changelog"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Payload bool // also run the action-payload checks
	Verify  bool // also re-verify content addresses
}

// EntryReport holds validation results for one entry.
type EntryReport struct {
	EventID    string   `json:"event_id"`
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// ValidateResult holds the validate command output.
type ValidateResult struct {
	Total   int           `json:"total"`
	Valid   int           `json:"valid"`
	Invalid int           `json:"invalid"`
	Reports []EntryReport `json:"reports"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <events.json>",
		Short: "Validate a wire-format event file",
		Long: `Run the structural validator over a JSON array of events.

The baseline gate checks the fixed v1 wire contract only. --payload adds
the per-action payload checks; --id recomputes each entry's content
address and compares it with the presented one.

Exit codes:
  0 - every entry valid
  1 - one or more entries invalid
  2 - command error (file unreadable, malformed JSON, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Payload, "payload", false, "also check action-specific payload keys")
	cmd.Flags().BoolVar(&opts.Verify, "id", false, "also recompute and compare content addresses")

	return cmd
}

func runValidateFile(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "read events file", err)
	}

	entries, err := changelog.UnmarshalEntries(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse events file", err)
	}

	result := ValidateResult{Total: len(entries)}
	for _, e := range entries {
		report := EntryReport{EventID: e.ID}

		violations := changelog.Validate(e)
		if opts.Payload {
			violations = append(violations, changelog.ValidateActionPayload(e)...)
		}
		for _, v := range violations {
			report.Violations = append(report.Violations, v.Error())
		}
		if opts.Verify && len(violations) == 0 {
			ok, err := e.VerifyID()
			if err != nil {
				return WrapExitError(ExitCommandError, "recompute address", err)
			}
			if !ok {
				report.Violations = append(report.Violations, "id: does not match recomputed content address")
			}
		}

		report.Valid = len(report.Violations) == 0
		if report.Valid {
			result.Valid++
		} else {
			result.Invalid++
			formatter.VerboseLog("invalid %s: %v", e.ID, report.Violations)
		}
		result.Reports = append(result.Reports, report)
	}

	if result.Invalid > 0 {
		if err := formatter.Failure("validation failed", result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "validation failed")
	}
	return formatter.Successf(result, "%d event(s) valid", result.Valid)
}
