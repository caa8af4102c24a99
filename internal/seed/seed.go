// Package seed reads hand-written starting boards for `kanban init --seed`.
//
// A seed is YAML (or JSON, by extension) in the shape of an exported board,
// except that ids, colors, positions and timestamps may be left out:
//
//	currentFilter: all
//	categories:
//	  - name: Backend
//	tasks:
//	  - title: Write docs
//	    category: Backend
//	    priority: high
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/ids"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a seed file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// File is the decoded seed document.
type File struct {
	CurrentFilter board.Filter `yaml:"currentFilter" json:"currentFilter"`
	Categories    []Category   `yaml:"categories" json:"categories"`
	Tasks         []Task       `yaml:"tasks" json:"tasks"`
}

// Category is a seed category. IsOpen defaults to true.
type Category struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Color  string `yaml:"color" json:"color"`
	IsOpen *bool  `yaml:"isOpen" json:"isOpen"`
}

// Task is a seed task. Category may be a category ID or name.
type Task struct {
	ID          string         `yaml:"id" json:"id"`
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Category    string         `yaml:"category" json:"category"`
	Status      board.Status   `yaml:"status" json:"status"`
	Priority    board.Priority `yaml:"priority" json:"priority"`
	Progress    int            `yaml:"progress" json:"progress"`
	DueDate     string         `yaml:"dueDate" json:"dueDate"`
	AssignedTo  *board.User    `yaml:"assignedTo" json:"assignedTo"`
	Position    *int           `yaml:"position" json:"position"`
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads a seed file and returns the board it describes.
func Load(path string) (board.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("read seed file: %w", err)
	}
	snap, err := Parse(data, FormatForPath(path), time.Now())
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("seed %s: %w", path, err)
	}
	return snap, nil
}

// Parse decodes a seed and fills in missing fields. Generated timestamps are now.
func Parse(data []byte, format Format, now time.Time) (board.Snapshot, error) {
	var file File
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &file); err != nil {
			return board.Snapshot{}, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return board.Snapshot{}, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return file.Snapshot(now)
}

// Snapshot converts the seed into a board snapshot with no history.
func (f File) Snapshot(now time.Time) (board.Snapshot, error) {
	snap := board.InitialSnapshot()
	if f.CurrentFilter != "" {
		snap.CurrentFilter = f.CurrentFilter
	}

	taken := map[string]bool{}
	isTaken := func(id string) bool { return taken[id] }
	palette := board.DefaultPalette()
	byName := map[string]string{}
	categoryIDs := map[string]bool{}

	for i, c := range f.Categories {
		id := c.ID
		if id == "" {
			id = ids.GenerateUnique(c.Name, now, ids.DefaultLength, isTaken)
		}
		if taken[id] {
			return board.Snapshot{}, fmt.Errorf("category %d: duplicate id %q", i+1, id)
		}
		taken[id] = true

		color := c.Color
		if color == "" {
			color = palette[i%len(palette)]
		}
		open := true
		if c.IsOpen != nil {
			open = *c.IsOpen
		}
		snap.Categories = append(snap.Categories, board.Category{ID: id, Name: c.Name, Color: color, IsOpen: open})
		byName[strings.ToLower(c.Name)] = id
		categoryIDs[id] = true
	}

	next := map[string]int{}
	for i, t := range f.Tasks {
		categoryID, ok := resolveCategory(t.Category, categoryIDs, byName)
		if !ok {
			return board.Snapshot{}, fmt.Errorf("task %d (%q): %w: %q", i+1, t.Title, board.ErrInvalidCategory, t.Category)
		}

		id := t.ID
		if id == "" {
			id = ids.GenerateUnique(t.Title, now, ids.DefaultLength, isTaken)
		}
		if taken[id] {
			return board.Snapshot{}, fmt.Errorf("task %d: duplicate id %q", i+1, id)
		}
		taken[id] = true

		status := t.Status
		if status == "" {
			status = board.StatusTodo
		}
		priority := t.Priority
		if priority == "" {
			priority = board.PriorityMedium
		}

		key := categoryID + "/" + string(status)
		position := next[key]
		if t.Position != nil {
			position = *t.Position
		}
		next[key] = position + 1

		task := board.Task{
			ID:          id,
			Title:       t.Title,
			Description: t.Description,
			Status:      status,
			Priority:    priority,
			Progress:    t.Progress,
			Category:    categoryID,
			CreatedAt:   now,
			Position:    position,
		}
		if t.DueDate != "" {
			due, err := parseDate(t.DueDate)
			if err != nil {
				return board.Snapshot{}, fmt.Errorf("task %d (%q): %w", i+1, t.Title, err)
			}
			task.DueDate = &due
		}
		if t.AssignedTo != nil {
			user := *t.AssignedTo
			task.AssignedTo = &user
		}
		snap.Tasks = append(snap.Tasks, task)
	}

	return snap, nil
}

func resolveCategory(ref string, categoryIDs map[string]bool, byName map[string]string) (string, bool) {
	if categoryIDs[ref] {
		return ref, true
	}
	if id, ok := byName[strings.ToLower(ref)]; ok {
		return id, true
	}
	return "", false
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q (want YYYY-MM-DD or RFC 3339)", value)
}
