// Package listflags registers the flags shared by commands that show tasks.
package listflags

import (
	"fmt"
	"strings"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/validation"
	"github.com/spf13/cobra"
)

// FilterFlag is the name of the filter flag.
const FilterFlag = "filter"

// AddFilterFlag adds a shared --filter flag. An empty value means the
// board's stored filter.
func AddFilterFlag(cmd *cobra.Command, target *string) {
	usage := fmt.Sprintf("Filter tasks (%s); defaults to the board's filter", validation.ValueList(board.ValidFilters()))
	cmd.Flags().StringVar(target, FilterFlag, "", usage)
}

// ResolveFilter returns the filter named by the flag, or fallback when the
// flag is empty.
func ResolveFilter(value string, fallback board.Filter) (board.Filter, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback, nil
	}
	filter := board.Filter(value)
	if err := board.ValidateFilter(filter); err != nil {
		return "", err
	}
	return filter, nil
}
