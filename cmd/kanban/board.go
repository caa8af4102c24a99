package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/listflags"
	"github.com/amonks/kanban/internal/seed"
	"github.com/amonks/kanban/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a board in the board directory",
	Long: `Create a board in the board directory.

Use --seed to start from a YAML or JSON file of categories and tasks.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initSeed string

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the board",
	Args:  cobra.NoArgs,
	RunE:  runBoard,
}

var (
	boardFilter string
	boardWidth  int
)

var filterCmd = &cobra.Command{
	Use:   "filter [all|completed|pending|high]",
	Short: "Show or set the board's filter",
	Long: `Show or set the board's filter.

The filter only changes which tasks are shown. It is not part of the
undo history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(initCmd, boardCmd, filterCmd)

	initCmd.Flags().StringVar(&initSeed, "seed", "", "Seed file (.yaml, .yml or .json)")

	listflags.AddFilterFlag(boardCmd, &boardFilter)
	boardCmd.Flags().IntVar(&boardWidth, "width", ui.DefaultColumnWidth, "Column width")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, _, _, err := loadEnv()
	if err != nil {
		return err
	}

	snapshot := board.InitialSnapshot()
	if initSeed != "" {
		snapshot, err = seed.Load(initSeed)
		if err != nil {
			return err
		}
	}
	if err := dir.Init(snapshot); err != nil {
		return err
	}
	fmt.Printf("Initialized board in %s (%d categories, %d tasks)\n", dir.Path(), len(snapshot.Categories), len(snapshot.Tasks))
	return nil
}

func runBoard(cmd *cobra.Command, args []string) error {
	s, err := readBoard()
	if err != nil {
		return err
	}

	view, filter, err := renderSessionBoard(s, boardFilter, boardWidth)
	if err != nil {
		return err
	}
	if filter != board.FilterAll {
		fmt.Printf("Filter: %s\n\n", filter)
	}
	fmt.Print(view.Text)
	return nil
}

// renderSessionBoard renders the board under the named filter, or the
// board's own filter when the name is empty.
func renderSessionBoard(s *boardSession, filterName string, width int) (ui.BoardView, board.Filter, error) {
	filter, err := listflags.ResolveFilter(filterName, s.store.State().CurrentFilter)
	if err != nil {
		return ui.BoardView{}, "", err
	}
	prefixLengths, _ := s.highlighter()
	projection := board.NewProjector(s.store).Project(filter)
	view := ui.RenderBoard(projection, ui.BoardOptions{
		Statuses:      s.store.Statuses(),
		ColumnWidth:   width,
		PrefixLengths: prefixLengths,
		Now:           time.Now(),
	})
	return view, filter, nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		s, err := readBoard()
		if err != nil {
			return err
		}
		fmt.Println(s.store.State().CurrentFilter)
		return nil
	}

	filter := board.Filter(strings.ToLower(strings.TrimSpace(args[0])))
	return updateBoard(func(s *boardSession) error {
		if err := s.store.SetFilter(filter); err != nil {
			return err
		}
		fmt.Printf("Filter set to %s\n", filter)
		return nil
	})
}
