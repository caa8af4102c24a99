package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/amonks/kanban/board"
	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the last change",
	Args:  cobra.NoArgs,
	RunE:  runUndo,
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Redo the last undone change",
	Args:  cobra.NoArgs,
	RunE:  runRedo,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the undo history",
	Long: `Show the undo history, oldest first.

The current entry is marked with '*'. Entries after it can be redone.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyJSON bool

func init() {
	rootCmd.AddCommand(undoCmd, redoCmd, historyCmd)
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
}

func runUndo(cmd *cobra.Command, args []string) error {
	return travel("Undid", "undo", func(s *board.Store) error { return s.Undo() }, func(s *board.Store) int { return s.HistoryIndex() + 1 })
}

func runRedo(cmd *cobra.Command, args []string) error {
	return travel("Redid", "redo", func(s *board.Store) error { return s.Redo() }, func(s *board.Store) int { return s.HistoryIndex() })
}

// travel moves through history. entryAfter names the entry that was
// undone or redone, given the store after the move.
func travel(verb, noun string, move func(*board.Store) error, entryAfter func(*board.Store) int) error {
	return updateBoard(func(s *boardSession) error {
		err := move(s.store)
		if errors.Is(err, board.ErrNoOp) {
			fmt.Printf("Nothing to %s.\n", noun)
			return nil
		}
		if err != nil {
			return err
		}
		entry := s.store.History()[entryAfter(s.store)]
		fmt.Printf("%s %s %s\n", verb, entry.Action, entry.Subject)
		return nil
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := readBoard()
	if err != nil {
		return err
	}

	entries := s.store.History()
	if historyJSON {
		type historyItem struct {
			Index   int              `json:"index"`
			Current bool             `json:"current"`
			Action  board.ActionType `json:"actionType"`
			Subject string           `json:"subject"`
			At      string           `json:"at"`
		}
		items := make([]historyItem, 0, len(entries))
		for i, entry := range entries {
			items = append(items, historyItem{
				Index:   i,
				Current: i == s.store.HistoryIndex(),
				Action:  entry.Action,
				Subject: entry.Subject,
				At:      entry.At.Format(time.RFC3339),
			})
		}
		return encodeJSONToStdout(items)
	}

	if len(entries) == 0 {
		fmt.Println("No history.")
		return nil
	}
	fmt.Print(formatHistoryTable(entries, s.store.HistoryIndex()))
	return nil
}
