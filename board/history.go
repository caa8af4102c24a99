package board

import "time"

// Entry records one committed command.
type Entry struct {
	Action  ActionType `json:"actionType"`
	Subject string     `json:"subject"`
	Before  State      `json:"beforeState"`
	After   State      `json:"afterState"`
	At      time.Time  `json:"at"`
}

// History is a linear undo/redo log of state snapshots.
//
// index points at the entry whose After state is current; -1 means every
// recorded entry has been undone. Entries are never mutated once recorded,
// except when toggle coalescing folds a repeated toggle into the tail.
type History struct {
	entries         []Entry
	index           int
	limit           int
	coalesceToggles bool
}

// NewHistory returns an empty history. A limit of zero or less keeps every entry.
func NewHistory(limit int, coalesceToggles bool) *History {
	return &History{index: -1, limit: limit, coalesceToggles: coalesceToggles}
}

// Record appends an entry, discarding any entries after the current index.
func (h *History) Record(action ActionType, subject string, before, after State, at time.Time) {
	h.entries = h.entries[:h.index+1]

	if h.coalesceToggles && action == ActionToggleCategory && len(h.entries) > 0 {
		tail := &h.entries[len(h.entries)-1]
		if tail.Action == ActionToggleCategory && tail.Subject == subject {
			tail.After = after.Clone()
			tail.At = at
			return
		}
	}

	h.entries = append(h.entries, Entry{
		Action:  action,
		Subject: subject,
		Before:  before.Clone(),
		After:   after.Clone(),
		At:      at,
	})
	h.index = len(h.entries) - 1

	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append([]Entry(nil), h.entries[drop:]...)
		h.index -= drop
	}
}

// Undo steps back one entry and returns the state to restore.
func (h *History) Undo() (Entry, State, error) {
	if !h.CanUndo() {
		return Entry{}, State{}, ErrNothingToUndo
	}
	entry := h.entries[h.index]
	h.index--
	return entry, entry.Before.Clone(), nil
}

// Redo steps forward one entry and returns the state to restore.
func (h *History) Redo() (Entry, State, error) {
	if !h.CanRedo() {
		return Entry{}, State{}, ErrNothingToRedo
	}
	h.index++
	entry := h.entries[h.index]
	return entry, entry.After.Clone(), nil
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	return h.index >= 0
}

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool {
	return h.index < len(h.entries)-1
}

// Index returns the index of the current entry, or -1.
func (h *History) Index() int {
	return h.index
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns copies of every recorded entry, oldest first.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	for i, entry := range h.entries {
		entry.Before = entry.Before.Clone()
		entry.After = entry.After.Clone()
		out[i] = entry
	}
	return out
}

// restore replaces the log, e.g. when loading a persisted board.
func (h *History) restore(entries []Entry, index int) {
	h.entries = make([]Entry, len(entries))
	for i, entry := range entries {
		entry.Before = entry.Before.Clone()
		entry.After = entry.After.Clone()
		h.entries[i] = entry
	}
	h.index = index
}
