// Package main implements the redo CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/jlmalone/redo/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
