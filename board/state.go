package board

import (
	"fmt"
	"sort"
)

// State is the board aggregate: every task and category plus the active filter.
type State struct {
	Tasks         map[string]Task     `json:"tasks"`
	Categories    map[string]Category `json:"categories"`
	CategoryOrder []string            `json:"categoryOrder"`
	CurrentFilter Filter              `json:"currentFilter"`
}

// NewState returns an empty board showing all tasks.
func NewState() State {
	return State{
		Tasks:         map[string]Task{},
		Categories:    map[string]Category{},
		CategoryOrder: []string{},
		CurrentFilter: FilterAll,
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{
		Tasks:         make(map[string]Task, len(s.Tasks)),
		Categories:    make(map[string]Category, len(s.Categories)),
		CurrentFilter: s.CurrentFilter,
	}
	for id, task := range s.Tasks {
		out.Tasks[id] = task.Clone()
	}
	for id, category := range s.Categories {
		out.Categories[id] = category
	}
	if s.CategoryOrder != nil {
		out.CategoryOrder = make([]string, len(s.CategoryOrder))
		copy(out.CategoryOrder, s.CategoryOrder)
	}
	return out
}

// Bucket returns the tasks in a (category, status) bucket ordered by position.
func (s State) Bucket(categoryID string, status Status) []Task {
	var tasks []Task
	for _, task := range s.Tasks {
		if task.Category == categoryID && task.Status == status {
			tasks = append(tasks, task)
		}
	}
	sortByPosition(tasks)
	return tasks
}

// OrderedCategories returns the categories in display order.
func (s State) OrderedCategories() []Category {
	out := make([]Category, 0, len(s.CategoryOrder))
	for _, id := range s.CategoryOrder {
		if category, ok := s.Categories[id]; ok {
			out = append(out, category)
		}
	}
	return out
}

// CategoryIndex returns the display index of a category, or -1.
func (s State) CategoryIndex(categoryID string) int {
	for i, id := range s.CategoryOrder {
		if id == categoryID {
			return i
		}
	}
	return -1
}

// sortByPosition orders tasks by position, breaking ties by creation time
// and then ID so that loading a board with duplicate ranks is deterministic.
func sortByPosition(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// compact renumbers a bucket to 0..n-1, keeping the existing relative order.
func (s *State) compact(categoryID string, status Status) {
	for i, task := range s.Bucket(categoryID, status) {
		if task.Position != i {
			task.Position = i
			s.Tasks[task.ID] = task
		}
	}
}

// compactAll renumbers every bucket.
func (s *State) compactAll() {
	type bucketKey struct {
		category string
		status   Status
	}
	seen := map[bucketKey]bool{}
	for _, task := range s.Tasks {
		key := bucketKey{task.Category, task.Status}
		if seen[key] {
			continue
		}
		seen[key] = true
		s.compact(key.category, key.status)
	}
}

// checkInvariants verifies the structural invariants every committed state
// must satisfy. A failure here means a command is buggy.
func (s State) checkInvariants() error {
	if len(s.CategoryOrder) != len(s.Categories) {
		return fmt.Errorf("%w: category order has %d entries for %d categories", ErrInvariantViolation, len(s.CategoryOrder), len(s.Categories))
	}
	ordered := make(map[string]bool, len(s.CategoryOrder))
	for _, id := range s.CategoryOrder {
		if _, ok := s.Categories[id]; !ok || ordered[id] {
			return fmt.Errorf("%w: category order entry %q is dangling or duplicated", ErrInvariantViolation, id)
		}
		ordered[id] = true
	}
	for id, category := range s.Categories {
		if category.ID != id {
			return fmt.Errorf("%w: category keyed %q has id %q", ErrInvariantViolation, id, category.ID)
		}
	}

	type bucketKey struct {
		category string
		status   Status
	}
	buckets := map[bucketKey][]int{}
	for id, task := range s.Tasks {
		if task.ID != id {
			return fmt.Errorf("%w: task keyed %q has id %q", ErrInvariantViolation, id, task.ID)
		}
		if _, ok := s.Categories[task.Category]; !ok {
			return fmt.Errorf("%w: task %s references missing category %q", ErrInvariantViolation, id, task.Category)
		}
		if !task.Status.IsValid() {
			return fmt.Errorf("%w: task %s has status %q", ErrInvariantViolation, id, task.Status)
		}
		key := bucketKey{task.Category, task.Status}
		buckets[key] = append(buckets[key], task.Position)
	}
	for key, positions := range buckets {
		sort.Ints(positions)
		for i, position := range positions {
			if position != i {
				return fmt.Errorf("%w: bucket (%s, %s) has positions %v", ErrInvariantViolation, key.category, key.status, positions)
			}
		}
	}
	return nil
}
