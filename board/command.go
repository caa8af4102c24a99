package board

import (
	"fmt"
	"strings"
	"time"
)

// Command is a single atomic mutation accepted by Store.Dispatch.
//
// The set of commands is closed: every implementation lives in this package.
type Command interface {
	// Action returns the history action type the command records.
	Action() ActionType

	// apply mutates s in place and returns the ID of the task or category it
	// touched. s is a private copy; on error it is discarded.
	apply(s *State, env *applyEnv) (subject string, err error)
}

// applyEnv carries the store services a command may need.
type applyEnv struct {
	now     time.Time
	newID   func(seed string, taken func(string) bool) string
	palette []string
}

// AddTask creates a task in the todo bucket of a category.
type AddTask struct {
	CategoryID string
	Fields     TaskFields
}

// UpdateTask merges a patch into an existing task.
type UpdateTask struct {
	TaskID string
	Patch  TaskPatch
}

// DeleteTask removes a task.
type DeleteTask struct {
	TaskID string
}

// MoveTask moves a task to a position in a (category, status) bucket.
// Position is clamped to the end of the destination bucket.
type MoveTask struct {
	TaskID     string
	CategoryID string
	Status     Status
	Position   int
}

// AddCategory appends a category to the board.
type AddCategory struct {
	Fields CategoryFields
}

// DeleteCategory removes a category and every task in it.
type DeleteCategory struct {
	CategoryID string
}

// ToggleCategory flips whether a category is expanded.
type ToggleCategory struct {
	CategoryID string
}

// ReorderCategory moves a category to an index in the display order.
// Index is clamped to the last slot.
type ReorderCategory struct {
	CategoryID string
	Index      int
}

func (AddTask) Action() ActionType         { return ActionAddTask }
func (UpdateTask) Action() ActionType      { return ActionUpdateTask }
func (DeleteTask) Action() ActionType      { return ActionDeleteTask }
func (MoveTask) Action() ActionType        { return ActionMoveTask }
func (AddCategory) Action() ActionType     { return ActionAddCategory }
func (DeleteCategory) Action() ActionType  { return ActionDeleteCategory }
func (ToggleCategory) Action() ActionType  { return ActionToggleCategory }
func (ReorderCategory) Action() ActionType { return ActionReorderCategory }

func (c AddTask) apply(s *State, env *applyEnv) (string, error) {
	if _, ok := s.Categories[c.CategoryID]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, c.CategoryID)
	}
	if err := validateFields(c.Fields); err != nil {
		return "", err
	}

	priority := c.Fields.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	task := Task{
		ID:          env.newID(c.Fields.Title, s.taken),
		Title:       c.Fields.Title,
		Description: c.Fields.Description,
		Status:      StatusTodo,
		Priority:    priority,
		Progress:    c.Fields.Progress,
		Category:    c.CategoryID,
		CreatedAt:   env.now,
		Position:    len(s.Bucket(c.CategoryID, StatusTodo)),
	}
	if c.Fields.DueDate != nil {
		due := *c.Fields.DueDate
		task.DueDate = &due
	}
	if c.Fields.AssignedTo != nil {
		user := *c.Fields.AssignedTo
		task.AssignedTo = &user
	}

	s.Tasks[task.ID] = task
	return task.ID, nil
}

func (c UpdateTask) apply(s *State, env *applyEnv) (string, error) {
	task, ok := s.Tasks[c.TaskID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTaskNotFound, c.TaskID)
	}
	if err := validatePatch(c.Patch); err != nil {
		return "", err
	}

	p := c.Patch
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.Progress != nil {
		task.Progress = *p.Progress
	}
	if p.DueDate != nil {
		due := *p.DueDate
		task.DueDate = &due
	}
	if p.ClearDueDate {
		task.DueDate = nil
	}
	if p.AssignedTo != nil {
		user := *p.AssignedTo
		task.AssignedTo = &user
	}
	if p.ClearAssignee {
		task.AssignedTo = nil
	}
	if p.Comments != nil {
		comments := make([]Comment, len(*p.Comments))
		copy(comments, *p.Comments)
		task.Comments = comments
	}

	s.Tasks[task.ID] = task
	return task.ID, nil
}

func (c DeleteTask) apply(s *State, env *applyEnv) (string, error) {
	task, ok := s.Tasks[c.TaskID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTaskNotFound, c.TaskID)
	}
	delete(s.Tasks, task.ID)
	shiftBucket(s, task.Category, task.Status, task.Position+1, -1)
	return task.ID, nil
}

func (c MoveTask) apply(s *State, env *applyEnv) (string, error) {
	task, ok := s.Tasks[c.TaskID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTaskNotFound, c.TaskID)
	}
	if _, ok := s.Categories[c.CategoryID]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, c.CategoryID)
	}
	if err := ValidateStatus(c.Status); err != nil {
		return "", err
	}
	if c.Position < 0 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidPosition, c.Position)
	}

	sameBucket := task.Category == c.CategoryID && task.Status == c.Status

	// Size of the destination bucket once the task has left it.
	size := len(s.Bucket(c.CategoryID, c.Status))
	if sameBucket {
		size--
	}
	target := c.Position
	if target > size {
		target = size
	}
	if sameBucket && target == task.Position {
		return task.ID, errUnchanged
	}

	delete(s.Tasks, task.ID)
	shiftBucket(s, task.Category, task.Status, task.Position+1, -1)
	shiftBucket(s, c.CategoryID, c.Status, target, +1)

	task.Category = c.CategoryID
	task.Status = c.Status
	task.Position = target
	s.Tasks[task.ID] = task
	return task.ID, nil
}

func (c AddCategory) apply(s *State, env *applyEnv) (string, error) {
	name := strings.TrimSpace(c.Fields.Name)
	if name == "" {
		return "", ErrEmptyName
	}

	color := c.Fields.Color
	if color == "" {
		color = paletteColor(env.palette, len(s.CategoryOrder))
	}
	if err := ValidateColor(color); err != nil {
		return "", err
	}

	category := Category{
		ID:     env.newID(name, s.taken),
		Name:   name,
		Color:  color,
		IsOpen: true,
	}
	s.Categories[category.ID] = category
	s.CategoryOrder = append(s.CategoryOrder, category.ID)
	return category.ID, nil
}

func (c DeleteCategory) apply(s *State, env *applyEnv) (string, error) {
	if _, ok := s.Categories[c.CategoryID]; !ok {
		return "", fmt.Errorf("%w: %q", ErrCategoryNotFound, c.CategoryID)
	}
	for id, task := range s.Tasks {
		if task.Category == c.CategoryID {
			delete(s.Tasks, id)
		}
	}
	delete(s.Categories, c.CategoryID)
	s.CategoryOrder = removeString(s.CategoryOrder, c.CategoryID)
	return c.CategoryID, nil
}

func (c ToggleCategory) apply(s *State, env *applyEnv) (string, error) {
	category, ok := s.Categories[c.CategoryID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrCategoryNotFound, c.CategoryID)
	}
	category.IsOpen = !category.IsOpen
	s.Categories[category.ID] = category
	return category.ID, nil
}

func (c ReorderCategory) apply(s *State, env *applyEnv) (string, error) {
	from := s.CategoryIndex(c.CategoryID)
	if from < 0 {
		return "", fmt.Errorf("%w: %q", ErrCategoryNotFound, c.CategoryID)
	}
	if c.Index < 0 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidPosition, c.Index)
	}
	to := c.Index
	if last := len(s.CategoryOrder) - 1; to > last {
		to = last
	}
	if to == from {
		return c.CategoryID, errUnchanged
	}

	order := removeString(s.CategoryOrder, c.CategoryID)
	order = append(order, "")
	copy(order[to+1:], order[to:])
	order[to] = c.CategoryID
	s.CategoryOrder = order
	return c.CategoryID, nil
}

// shiftBucket adds delta to the position of every task in the bucket whose
// position is at least from.
func shiftBucket(s *State, categoryID string, status Status, from, delta int) {
	for id, task := range s.Tasks {
		if task.Category != categoryID || task.Status != status || task.Position < from {
			continue
		}
		task.Position += delta
		s.Tasks[id] = task
	}
}

func removeString(values []string, value string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

// taken reports whether an ID is already used by a task or category.
func (s *State) taken(id string) bool {
	if _, ok := s.Tasks[id]; ok {
		return true
	}
	_, ok := s.Categories[id]
	return ok
}
