// Package main implements the kanban CLI.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kanban",
	Short: "A kanban board with undo, drag and drop, and participation requests",
	Long: `A kanban board with undo, drag and drop, and participation requests.

The board lives in a directory (default ./.kanban, or $KANBAN_DIR).
Every change is recorded so it can be undone and redone.`,
	SilenceUsage: true,
}

var (
	boardDirFlag string
	logLevelFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&boardDirFlag, "dir", "", "Board directory (default $KANBAN_DIR or ./.kanban)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (overrides [log] level in config)")
}
