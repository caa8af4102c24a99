package main

import (
	"fmt"
	"strconv"

	"github.com/amonks/kanban/board"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
}

// category add
var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category at the end of the board",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryAdd,
}

var categoryAddColor string

// category delete
var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <category>",
	Short: "Delete a category and every task in it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryDelete,
}

// category toggle
var categoryToggleCmd = &cobra.Command{
	Use:   "toggle <category>",
	Short: "Expand or collapse a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryToggle,
}

// category move
var categoryMoveCmd = &cobra.Command{
	Use:   "move <category> <index>",
	Short: "Move a category to an index in the board order",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoryMove,
}

// category list
var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories in board order",
	Args:  cobra.NoArgs,
	RunE:  runCategoryList,
}

var categoryListJSON bool

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryAddCmd, categoryDeleteCmd, categoryToggleCmd, categoryMoveCmd, categoryListCmd)

	categoryAddCmd.Flags().StringVar(&categoryAddColor, "color", "", "Color as #rrggbb (default from the palette)")
	categoryListCmd.Flags().BoolVar(&categoryListJSON, "json", false, "Output as JSON")
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	return updateBoard(func(s *boardSession) error {
		created, err := s.store.AddCategory(board.CategoryFields{Name: args[0], Color: categoryAddColor})
		if err != nil {
			return err
		}
		_, highlight := s.highlighter()
		fmt.Printf("Created category %s: %s (%s)\n", highlight(created.ID), created.Name, created.Color)
		return nil
	})
}

func runCategoryDelete(cmd *cobra.Command, args []string) error {
	return updateBoard(func(s *boardSession) error {
		category, err := s.resolveCategory(args[0])
		if err != nil {
			return err
		}
		removed := 0
		for _, task := range s.store.State().Tasks {
			if task.Category == category.ID {
				removed++
			}
		}
		if err := s.store.DeleteCategory(category.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted category %s: %s (%d tasks)\n", category.ID, category.Name, removed)
		return nil
	})
}

func runCategoryToggle(cmd *cobra.Command, args []string) error {
	return updateBoard(func(s *boardSession) error {
		category, err := s.resolveCategory(args[0])
		if err != nil {
			return err
		}
		if err := s.store.ToggleCategory(category.ID); err != nil {
			return err
		}
		toggled, err := s.store.Category(category.ID)
		if err != nil {
			return err
		}
		state := "collapsed"
		if toggled.IsOpen {
			state = "expanded"
		}
		fmt.Printf("Category %s %s\n", toggled.Name, state)
		return nil
	})
}

func runCategoryMove(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: index must be a number, got %q", board.ErrInvalidArgument, args[1])
	}

	return updateBoard(func(s *boardSession) error {
		category, err := s.resolveCategory(args[0])
		if err != nil {
			return err
		}
		if err := s.store.ReorderCategory(category.ID, index); err != nil {
			return err
		}
		fmt.Printf("Moved category %s to #%d\n", category.Name, s.store.State().CategoryIndex(category.ID))
		return nil
	})
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	s, err := readBoard()
	if err != nil {
		return err
	}

	categories := s.store.State().OrderedCategories()
	if categoryListJSON {
		return encodeJSONToStdout(categories)
	}
	if len(categories) == 0 {
		fmt.Println("No categories found.")
		return nil
	}
	fmt.Print(formatCategoryTable(s))
	return nil
}
