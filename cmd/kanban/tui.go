package main

import (
	"github.com/amonks/kanban/internal/boardfile"
	"github.com/amonks/kanban/internal/boardtui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive board",
	Long: `Open the interactive board.

Drag cards and category headers with the mouse. Every change is written
to the board directory as soon as it is made. Press ? for keys.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := readBoard()
	if err != nil {
		return err
	}
	save := func() error {
		return s.dir.Save(&boardfile.Board{
			Snapshot: s.store.Snapshot(),
			Requests: s.requests.Pending(),
		})
	}
	return boardtui.Run(cmd.Context(), s.store, s.requests, save)
}
