package board

import (
	"fmt"
)

// Snapshot is the serializable form of a board: tasks, categories in display
// order, the filter, and the undo/redo log.
type Snapshot struct {
	Tasks         []Task     `json:"tasks"`
	Categories    []Category `json:"categories"`
	CurrentFilter Filter     `json:"currentFilter"`
	History       []Entry    `json:"history"`
	HistoryIndex  int        `json:"historyIndex"`
}

// InitialSnapshot returns an empty board with no history.
func InitialSnapshot() Snapshot {
	return Snapshot{
		Tasks:         []Task{},
		Categories:    []Category{},
		CurrentFilter: FilterAll,
		History:       []Entry{},
		HistoryIndex:  -1,
	}
}

func newSnapshot(s State, entries []Entry, index int) Snapshot {
	snap := Snapshot{
		Tasks:         make([]Task, 0, len(s.Tasks)),
		Categories:    s.OrderedCategories(),
		CurrentFilter: s.CurrentFilter,
		History:       entries,
		HistoryIndex:  index,
	}
	for _, category := range snap.Categories {
		for _, status := range StatusOrder() {
			for _, task := range s.Bucket(category.ID, status) {
				snap.Tasks = append(snap.Tasks, task.Clone())
			}
		}
	}
	if snap.History == nil {
		snap.History = []Entry{}
	}
	return snap
}

// state validates the snapshot and builds the State it describes.
// Bucket positions are compacted so gaps and duplicate ranks are tolerated.
func (snap Snapshot) state() (State, error) {
	state := NewState()

	filter := snap.CurrentFilter
	if filter == "" {
		filter = FilterAll
	}
	if err := ValidateFilter(filter); err != nil {
		return State{}, err
	}
	state.CurrentFilter = filter

	for i := range snap.Categories {
		category := snap.Categories[i]
		if err := ValidateCategory(&category); err != nil {
			return State{}, fmt.Errorf("category %q: %w", category.ID, err)
		}
		if _, dup := state.Categories[category.ID]; dup {
			return State{}, fmt.Errorf("%w: duplicate category id %q", ErrInvalidArgument, category.ID)
		}
		state.Categories[category.ID] = category
		state.CategoryOrder = append(state.CategoryOrder, category.ID)
	}

	for i := range snap.Tasks {
		task := snap.Tasks[i].Clone()
		if err := ValidateTask(&task); err != nil {
			return State{}, fmt.Errorf("task %q: %w", task.ID, err)
		}
		if _, ok := state.Categories[task.Category]; !ok {
			return State{}, fmt.Errorf("task %q: %w: %q", task.ID, ErrInvalidCategory, task.Category)
		}
		if _, dup := state.Tasks[task.ID]; dup {
			return State{}, fmt.Errorf("%w: duplicate task id %q", ErrInvalidArgument, task.ID)
		}
		state.Tasks[task.ID] = task
	}

	state.compactAll()
	if err := state.checkInvariants(); err != nil {
		return State{}, err
	}
	return state, nil
}

// history validates the undo/redo log.
func (snap Snapshot) history() ([]Entry, int, error) {
	index := snap.HistoryIndex
	if len(snap.History) == 0 {
		if index > 0 {
			return nil, 0, fmt.Errorf("%w: history index %d with empty history", ErrInvalidArgument, index)
		}
		return nil, -1, nil
	}
	if index < -1 || index >= len(snap.History) {
		return nil, 0, fmt.Errorf("%w: history index %d out of range for %d entries", ErrInvalidArgument, index, len(snap.History))
	}
	for i, entry := range snap.History {
		if !entry.Action.IsValid() {
			return nil, 0, fmt.Errorf("%w: history entry %d has action %q", ErrInvalidArgument, i, entry.Action)
		}
		if err := entry.Before.checkInvariants(); err != nil {
			return nil, 0, fmt.Errorf("history entry %d before state: %w", i, err)
		}
		if err := entry.After.checkInvariants(); err != nil {
			return nil, 0, fmt.Errorf("history entry %d after state: %w", i, err)
		}
	}
	return snap.History, index, nil
}
