// Package board implements the kanban board state engine.
//
// A Store owns the categories and tasks of one board. Every mutation is a
// Command applied atomically: the command runs against a copy of the state,
// the copy is checked for structural invariants, and only then is it
// committed and recorded in the undo/redo History.
//
// Tasks are kept in buckets, one per (category, status) pair. Within a
// bucket, task positions always form the sequence 0..n-1.
package board

// Status represents the column a task is in.
type Status string

const (
	// StatusTodo is the initial status of every new task.
	StatusTodo Status = "todo"

	// StatusDoing indicates the task is being worked on.
	StatusDoing Status = "doing"

	// StatusDone indicates the task is complete.
	StatusDone Status = "done"
)

// StatusOrder returns the statuses in column display order.
func StatusOrder() []Status {
	return []Status{StatusTodo, StatusDoing, StatusDone}
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns the column index of the status, or -1 if unknown.
func (s Status) Rank() int {
	for i, status := range StatusOrder() {
		if s == status {
			return i
		}
	}
	return -1
}

// Priority represents the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium" // default
	PriorityHigh   Priority = "high"
)

// ValidPriorities returns all valid priority values, lowest first.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// IsValid returns true if the priority is a known value.
func (p Priority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// Filter selects which tasks a projection shows. Filters never change data.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
	FilterHigh      Filter = "high"
)

// ValidFilters returns all valid filter values.
func ValidFilters() []Filter {
	return []Filter{FilterAll, FilterCompleted, FilterPending, FilterHigh}
}

// IsValid returns true if the filter is a known value.
func (f Filter) IsValid() bool {
	for _, valid := range ValidFilters() {
		if f == valid {
			return true
		}
	}
	return false
}

// Matches reports whether the task is visible under the filter.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterCompleted:
		return t.Status == StatusDone
	case FilterPending:
		return t.Status != StatusDone
	case FilterHigh:
		return t.Priority == PriorityHigh
	default:
		return true
	}
}

// ActionType names the command recorded in a history entry.
type ActionType string

const (
	ActionAddTask         ActionType = "ADD_TASK"
	ActionUpdateTask      ActionType = "UPDATE_TASK"
	ActionDeleteTask      ActionType = "DELETE_TASK"
	ActionMoveTask        ActionType = "MOVE_TASK"
	ActionAddCategory     ActionType = "ADD_CATEGORY"
	ActionDeleteCategory  ActionType = "DELETE_CATEGORY"
	ActionToggleCategory  ActionType = "TOGGLE_CATEGORY"
	ActionReorderCategory ActionType = "REORDER_CATEGORY"
)

// ValidActionTypes returns all action types.
func ValidActionTypes() []ActionType {
	return []ActionType{
		ActionAddTask, ActionUpdateTask, ActionDeleteTask, ActionMoveTask,
		ActionAddCategory, ActionDeleteCategory, ActionToggleCategory, ActionReorderCategory,
	}
}

// IsValid returns true if the action type is a known value.
func (a ActionType) IsValid() bool {
	for _, valid := range ValidActionTypes() {
		if a == valid {
			return true
		}
	}
	return false
}
