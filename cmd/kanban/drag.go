package main

import (
	"fmt"

	"github.com/amonks/kanban/dragdrop"
	"github.com/amonks/kanban/internal/listflags"
	"github.com/amonks/kanban/internal/ui"
	"github.com/spf13/cobra"
)

var dragCmd = &cobra.Command{
	Use:   "drag <task|category> <id> <x,y>",
	Short: "Drag a task or category to a point on the rendered board",
	Long: `Drag a task or category to a point on the rendered board.

Coordinates are zero-based columns and lines of the output of
'kanban board' with the same --filter and --width. Dropping outside
every column or category cancels the drag. Use --via to report where
the item would land at intermediate points.`,
	Args: cobra.ExactArgs(3),
	RunE: runDrag,
}

var (
	dragFilter string
	dragWidth  int
	dragVia    []string
)

func init() {
	rootCmd.AddCommand(dragCmd)

	listflags.AddFilterFlag(dragCmd, &dragFilter)
	dragCmd.Flags().IntVar(&dragWidth, "width", ui.DefaultColumnWidth, "Column width")
	dragCmd.Flags().StringArrayVar(&dragVia, "via", nil, "Hover over X,Y before dropping (repeatable)")
}

func runDrag(cmd *cobra.Command, args []string) error {
	kind := dragdrop.Kind(args[0])
	drop, err := parsePoint(args[2])
	if err != nil {
		return err
	}
	via := make([]dragdrop.Point, 0, len(dragVia))
	for _, value := range dragVia {
		p, err := parsePoint(value)
		if err != nil {
			return err
		}
		via = append(via, p)
	}

	return updateBoard(func(s *boardSession) error {
		var id string
		switch kind {
		case dragdrop.KindTask:
			task, err := s.resolveTask(args[1])
			if err != nil {
				return err
			}
			id = task.ID
		case dragdrop.KindCategory:
			category, err := s.resolveCategory(args[1])
			if err != nil {
				return err
			}
			id = category.ID
		default:
			return fmt.Errorf("%w: %q (use task or category)", dragdrop.ErrUnknownKind, args[0])
		}

		view, _, err := renderSessionBoard(s, dragFilter, dragWidth)
		if err != nil {
			return err
		}
		controller := dragdrop.New(s.store, view.Layout)
		if err := controller.Grab(kind, id); err != nil {
			return err
		}
		for _, p := range via {
			if candidate, ok := controller.Hover(p); ok {
				fmt.Printf("At %d,%d: %s\n", p.X, p.Y, describeLocation(s, candidate.Kind, candidate.Target))
			} else {
				fmt.Printf("At %d,%d: nowhere\n", p.X, p.Y)
			}
		}

		result, err := controller.Drop(drop)
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Println("Drag cancelled")
			return nil
		}
		fmt.Printf("Dropped %s %s at %s\n", kind, id, describeLocation(s, kind, result.Candidate.Target))
		return nil
	})
}

func describeLocation(s *boardSession, kind dragdrop.Kind, at dragdrop.Location) string {
	if kind == dragdrop.KindCategory {
		return fmt.Sprintf("#%d", at.Position)
	}
	name := at.CategoryID
	if category, err := s.store.Category(at.CategoryID); err == nil {
		name = category.Name
	}
	return fmt.Sprintf("%s / %s #%d", name, s.store.Statuses().Label(at.Status), at.Position)
}
