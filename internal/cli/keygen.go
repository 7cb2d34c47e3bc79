package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jlmalone/redo/internal/config"
	"github.com/jlmalone/redo/internal/signing"
)

// KeygenResult holds the keygen command output.
type KeygenResult struct {
	UserID    string `json:"user_id"`
	PublicKey string `json:"public_key"`
	KeyFile   string `json:"key_file"`
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new Ed25519 identity",
		Long: `Generate a new Ed25519 signing identity and write the seed to the
configured key file.

The user identity is derived from the public key and stamps every event
this device authors. An existing key file is never overwritten unless
--force is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(rootOpts, force, cmd)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key file")

	return cmd
}

func runKeygen(opts *RootOptions, force bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	if _, err := os.Stat(cfg.KeyFile); err == nil && !force {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("key file %s already exists (use --force to replace it)", cfg.KeyFile))
	}

	kp, err := signing.Generate()
	if err != nil {
		return WrapExitError(ExitCommandError, "generate keypair", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.KeyFile), 0o700); err != nil {
		return WrapExitError(ExitCommandError, "create key directory", err)
	}
	if err := os.WriteFile(cfg.KeyFile, []byte(kp.SeedHex()+"\n"), 0o600); err != nil {
		return WrapExitError(ExitCommandError, "write key file", err)
	}

	result := KeygenResult{
		UserID:    kp.UserID(),
		PublicKey: kp.PublicHex,
		KeyFile:   cfg.KeyFile,
	}
	return formatter.Successf(result, "generated identity %s\nkey file: %s", result.UserID, result.KeyFile)
}
