package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/dragdrop"
	internalstrings "github.com/amonks/kanban/internal/strings"
)

const dateLayout = "2006-01-02"

func logHighlighter(prefixLengths map[string]int, highlight func(string, int) string) func(string) string {
	if prefixLengths == nil {
		prefixLengths = map[string]int{}
	}
	return func(id string) string {
		if id == "" {
			return id
		}
		prefixLen, ok := prefixLengths[strings.ToLower(id)]
		if !ok {
			return highlight(id, 0)
		}
		return highlight(id, prefixLen)
	}
}

func encodeJSONToStdout(value any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func resolveDescriptionFromStdin(description string, reader io.Reader) (string, error) {
	if description != "-" {
		return description, nil
	}

	input, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read description from stdin: %w", err)
	}

	return strings.TrimRight(internalstrings.NormalizeNewlines(string(input)), "\n"), nil
}

// parseUser parses "ID" or "ID:Name". A missing name defaults to the ID.
func parseUser(value string) (board.User, error) {
	id, name, _ := strings.Cut(value, ":")
	id = strings.TrimSpace(id)
	name = internalstrings.NormalizeWhitespace(name)
	if id == "" {
		return board.User{}, fmt.Errorf("%w: user id cannot be empty", board.ErrInvalidArgument)
	}
	if name == "" {
		name = id
	}
	return board.User{ID: id, Name: name}, nil
}

func parseDue(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	due, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: due date must be YYYY-MM-DD, got %q", board.ErrInvalidArgument, value)
	}
	return &due, nil
}

func parsePriority(value string) (board.Priority, error) {
	priority := board.Priority(internalstrings.NormalizeLowerTrimSpace(value))
	if err := board.ValidatePriority(priority); err != nil {
		return "", err
	}
	return priority, nil
}

func parseStatus(value string) (board.Status, error) {
	status := board.Status(internalstrings.NormalizeLowerTrimSpace(value))
	if err := board.ValidateStatus(status); err != nil {
		return "", err
	}
	return status, nil
}

// parsePoint parses "X,Y" screen coordinates.
func parsePoint(value string) (dragdrop.Point, error) {
	xs, ys, ok := strings.Cut(value, ",")
	if !ok {
		return dragdrop.Point{}, fmt.Errorf("%w: point must be X,Y, got %q", board.ErrInvalidArgument, value)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return dragdrop.Point{}, fmt.Errorf("%w: point must be X,Y, got %q", board.ErrInvalidArgument, value)
	}
	return dragdrop.Point{X: x, Y: y}, nil
}

func formatUser(u *board.User) string {
	if u == nil {
		return "-"
	}
	if u.Name == "" || u.Name == u.ID {
		return u.ID
	}
	return fmt.Sprintf("%s (%s)", u.Name, u.ID)
}
