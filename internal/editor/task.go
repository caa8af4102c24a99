package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/amonks/kanban/board"
)

// DateLayout is the format of due dates in the editor template.
const DateLayout = "2006-01-02"

// TaskData represents the data used to render the TOML template.
type TaskData struct {
	// IsUpdate is true when editing an existing task.
	IsUpdate bool
	// ID is the task ID (only for updates).
	ID string
	// Location describes the task's category and status (only for updates).
	Location string
	Title    string
	Priority string
	Progress int
	// Due is a YYYY-MM-DD date, or empty.
	Due         string
	Description string
}

// DefaultCreateData returns TaskData with default values for creating a new task.
func DefaultCreateData() TaskData {
	return TaskData{Priority: string(board.PriorityMedium)}
}

// DataFromTask creates TaskData from an existing task for editing.
func DataFromTask(t board.Task) TaskData {
	data := TaskData{
		IsUpdate:    true,
		ID:          t.ID,
		Location:    fmt.Sprintf("%s/%s", t.Category, t.Status),
		Title:       t.Title,
		Priority:    string(t.Priority),
		Progress:    t.Progress,
		Description: t.Description,
	}
	if t.DueDate != nil {
		data.Due = t.DueDate.Format(DateLayout)
	}
	return data
}

var taskTemplate = template.Must(template.New("task").Parse(`{{- if .IsUpdate -}}
# task {{ .ID }} in {{ .Location }}
{{ end -}}
title = {{ printf "%q" .Title }}
priority = {{ printf "%q" .Priority }} # low, medium, high
progress = {{ .Progress }} # 0-100
due = {{ printf "%q" .Due }} # YYYY-MM-DD, empty for none
---
{{ .Description }}
`))

// RenderTaskTOML renders the task data as a TOML string for editing.
func RenderTaskTOML(data TaskData) (string, error) {
	var buf bytes.Buffer
	if err := taskTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedTask represents the parsed result from the TOML editor output.
type ParsedTask struct {
	Title       string `toml:"title"`
	Priority    string `toml:"priority"`
	Progress    int    `toml:"progress"`
	Due         string `toml:"due"`
	DueDate     *time.Time
	Description string
}

// ParseTaskTOML parses the TOML content from the editor.
func ParseTaskTOML(content string) (*ParsedTask, error) {
	frontmatter, body := splitFrontmatter(content)

	var parsed ParsedTask
	if _, err := toml.Decode(frontmatter, &parsed); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	parsed.Description = strings.TrimRight(strings.TrimLeft(body, "\n"), "\n")
	parsed.Priority = strings.ToLower(strings.TrimSpace(parsed.Priority))
	if parsed.Priority == "" {
		parsed.Priority = string(board.PriorityMedium)
	}

	if err := board.ValidateTitle(parsed.Title); err != nil {
		return nil, err
	}
	if err := board.ValidatePriority(board.Priority(parsed.Priority)); err != nil {
		return nil, err
	}
	if err := board.ValidateProgress(parsed.Progress); err != nil {
		return nil, err
	}
	if due := strings.TrimSpace(parsed.Due); due != "" {
		at, err := time.Parse(DateLayout, due)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid due date %q", board.ErrInvalidArgument, due)
		}
		parsed.DueDate = &at
	}

	return &parsed, nil
}

func splitFrontmatter(content string) (string, string) {
	content = strings.TrimLeft(content, "\n")
	if content == "" {
		return "", ""
	}

	lines := strings.Split(content, "\n")
	separatorIndex := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			separatorIndex = i
			break
		}
	}
	if separatorIndex == -1 {
		return content, ""
	}

	return strings.Join(lines[:separatorIndex], "\n"), strings.Join(lines[separatorIndex+1:], "\n")
}

// EditTask opens the editor for a task and returns the parsed result.
// Pass nil to start from an empty task.
func EditTask(existing *board.Task) (*ParsedTask, error) {
	data := DefaultCreateData()
	if existing != nil {
		data = DataFromTask(*existing)
	}
	return EditTaskWithData(data)
}

// EditTaskWithData opens the editor with pre-populated data and returns the parsed result.
func EditTaskWithData(data TaskData) (*ParsedTask, error) {
	content, err := RenderTaskTOML(data)
	if err != nil {
		return nil, err
	}

	tmpfile, err := os.CreateTemp("", "kanban-task-*.md")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}
	return ParseTaskTOML(string(edited))
}

// ToFields converts a ParsedTask to the fields of a new task.
func (p *ParsedTask) ToFields() board.TaskFields {
	return board.TaskFields{
		Title:       p.Title,
		Description: p.Description,
		Priority:    board.Priority(p.Priority),
		Progress:    p.Progress,
		DueDate:     p.DueDate,
	}
}

// ToPatch converts a ParsedTask to a patch over every editable field.
func (p *ParsedTask) ToPatch() board.TaskPatch {
	priority := board.Priority(p.Priority)
	patch := board.TaskPatch{
		Title:       &p.Title,
		Description: &p.Description,
		Priority:    &priority,
		Progress:    &p.Progress,
	}
	if p.DueDate != nil {
		patch.DueDate = p.DueDate
	} else {
		patch.ClearDueDate = true
	}
	return patch
}
