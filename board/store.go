package board

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/amonks/kanban/internal/ids"
	"github.com/sirupsen/logrus"
)

// Options configures a Store. The zero value is usable.
type Options struct {
	// Logger receives command logs. If nil, logs are discarded.
	Logger logrus.FieldLogger

	// Clock returns the current time. If nil, time.Now is used.
	Clock func() time.Time

	// NewID generates IDs for new tasks, categories and comments from a seed
	// (the title or name) and the current time. If nil, IDs are 8-character
	// base32 hashes. Colliding IDs are salted until unique.
	NewID func(seed string, at time.Time) string

	// HistoryLimit caps the number of history entries. Zero keeps every entry.
	HistoryLimit int

	// CoalesceToggles folds consecutive toggles of the same category into one
	// history entry.
	CoalesceToggles bool

	// Palette supplies colors for categories created without one.
	Palette []string

	// Statuses drives AdvanceTask and RetreatTask. If nil, DefaultStatusTable is used.
	Statuses StatusTable
}

// ChangeKind says what produced a Change.
type ChangeKind string

const (
	ChangeCommand ChangeKind = "command"
	ChangeUndo    ChangeKind = "undo"
	ChangeRedo    ChangeKind = "redo"
	ChangeFilter  ChangeKind = "filter"
)

// Change is delivered to subscribers after every state change.
type Change struct {
	Kind    ChangeKind
	Action  ActionType
	Subject string
	Version uint64
}

// Store is the single source of truth for one board.
//
// Store is meant to be driven by one event loop; its methods are also safe
// to call from multiple goroutines. Subscribers run after the store's lock
// is released and may call back into the store.
type Store struct {
	mu       sync.Mutex
	state    State
	history  *History
	version  uint64
	log      logrus.FieldLogger
	clock    func() time.Time
	newID    func(seed string, at time.Time) string
	palette  []string
	statuses StatusTable

	subscribers map[int]func(Change)
	nextSub     int
}

// NewStore builds a store from a snapshot, typically InitialSnapshot() or
// one loaded from disk.
func NewStore(snapshot Snapshot, opts Options) (*Store, error) {
	state, err := snapshot.state()
	if err != nil {
		return nil, err
	}
	entries, index, err := snapshot.history()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	statuses := opts.Statuses
	if statuses == nil {
		statuses = DefaultStatusTable()
	}

	history := NewHistory(opts.HistoryLimit, opts.CoalesceToggles)
	history.restore(entries, index)

	return &Store{
		state:       state,
		history:     history,
		log:         logger,
		clock:       clock,
		newID:       opts.NewID,
		palette:     append([]string(nil), opts.Palette...),
		statuses:    statuses,
		subscribers: map[int]func(Change){},
	}, nil
}

// Dispatch applies a command atomically and records it in the history.
// Commands that would not change the board, such as dropping a task onto
// its own position, succeed without recording anything.
func (s *Store) Dispatch(cmd Command) error {
	_, err := s.dispatch(cmd)
	return err
}

func (s *Store) dispatch(cmd Command) (string, error) {
	if cmd == nil {
		return "", fmt.Errorf("%w: nil command", ErrInvalidArgument)
	}

	s.mu.Lock()
	subject, change, err := s.dispatchLocked(cmd)
	s.mu.Unlock()

	if change != nil {
		s.notify(*change)
	}
	return subject, err
}

func (s *Store) dispatchLocked(cmd Command) (string, *Change, error) {
	action := cmd.Action()
	now := s.clock()
	env := &applyEnv{now: now, newID: s.idGenerator(now), palette: s.palette}

	next := s.state.Clone()
	subject, err := cmd.apply(&next, env)
	if errors.Is(err, errUnchanged) {
		s.log.WithFields(logrus.Fields{"action": action, "subject": subject}).Debug("command left board unchanged")
		return subject, nil, nil
	}
	if err != nil {
		s.log.WithError(err).WithField("action", action).Debug("command rejected")
		return "", nil, err
	}
	if err := next.checkInvariants(); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"action": action, "subject": subject}).Error("command aborted")
		return "", nil, err
	}

	before := s.state
	s.state = next
	s.history.Record(action, subject, before, next, now)
	s.version++

	s.log.WithFields(logrus.Fields{
		"action":        action,
		"subject":       subject,
		"version":       s.version,
		"history_index": s.history.Index(),
	}).Debug("command committed")

	return subject, &Change{Kind: ChangeCommand, Action: action, Subject: subject, Version: s.version}, nil
}

func (s *Store) idGenerator(now time.Time) func(string, func(string) bool) string {
	return func(seed string, taken func(string) bool) string {
		if s.newID == nil {
			return ids.GenerateUnique(seed, now, ids.DefaultLength, taken)
		}
		id := s.newID(seed, now)
		base := id
		for n := 2; taken(id); n++ {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		return id
	}
}

// AddTask creates a task in the todo bucket of a category.
func (s *Store) AddTask(categoryID string, fields TaskFields) (Task, error) {
	id, err := s.dispatch(AddTask{CategoryID: categoryID, Fields: fields})
	if err != nil {
		return Task{}, err
	}
	return s.Task(id)
}

// UpdateTask merges a patch into a task.
func (s *Store) UpdateTask(taskID string, patch TaskPatch) error {
	return s.Dispatch(UpdateTask{TaskID: taskID, Patch: patch})
}

// DeleteTask removes a task and compacts its bucket.
func (s *Store) DeleteTask(taskID string) error {
	return s.Dispatch(DeleteTask{TaskID: taskID})
}

// MoveTask moves a task to a position in a (category, status) bucket.
func (s *Store) MoveTask(taskID, categoryID string, status Status, position int) error {
	return s.Dispatch(MoveTask{TaskID: taskID, CategoryID: categoryID, Status: status, Position: position})
}

// AddCategory appends a category.
func (s *Store) AddCategory(fields CategoryFields) (Category, error) {
	id, err := s.dispatch(AddCategory{Fields: fields})
	if err != nil {
		return Category{}, err
	}
	return s.Category(id)
}

// DeleteCategory removes a category and all of its tasks.
func (s *Store) DeleteCategory(categoryID string) error {
	return s.Dispatch(DeleteCategory{CategoryID: categoryID})
}

// ToggleCategory flips whether a category is expanded.
func (s *Store) ToggleCategory(categoryID string) error {
	return s.Dispatch(ToggleCategory{CategoryID: categoryID})
}

// ReorderCategory moves a category to an index in the display order.
func (s *Store) ReorderCategory(categoryID string, index int) error {
	return s.Dispatch(ReorderCategory{CategoryID: categoryID, Index: index})
}

// AdvanceTask moves a task to the next status, at the end of that bucket.
func (s *Store) AdvanceTask(taskID string) error {
	return s.step(taskID, s.statuses.NextStatus)
}

// RetreatTask moves a task to the previous status, at the end of that bucket.
func (s *Store) RetreatTask(taskID string) error {
	return s.step(taskID, s.statuses.PrevStatus)
}

func (s *Store) step(taskID string, lookup func(Status) (Status, bool)) error {
	task, err := s.Task(taskID)
	if err != nil {
		return err
	}
	status, ok := lookup(task.Status)
	if !ok {
		return fmt.Errorf("%w: task %s is %s", ErrNoTransition, task.ID, task.Status)
	}
	// Past the last slot; MoveTask clamps it to the end of the bucket.
	end := len(s.State().Bucket(task.Category, status))
	return s.MoveTask(task.ID, task.Category, status, end)
}

// AddComment appends a comment to a task. It is recorded as an UPDATE_TASK.
func (s *Store) AddComment(taskID string, author User, text string) (Comment, error) {
	if text == "" {
		return Comment{}, fmt.Errorf("%w: comment text cannot be empty", ErrInvalidArgument)
	}
	task, err := s.Task(taskID)
	if err != nil {
		return Comment{}, err
	}

	now := s.clock()
	taken := map[string]bool{}
	for _, existing := range task.Comments {
		taken[existing.ID] = true
	}
	comment := Comment{
		ID:        s.idGenerator(now)(text, func(id string) bool { return taken[id] }),
		Author:    author,
		Text:      text,
		CreatedAt: now,
	}
	comments := append(task.Comments, comment)
	if err := s.UpdateTask(task.ID, TaskPatch{Comments: &comments}); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// SetFilter changes the filter used by projections. It does not touch
// tasks or categories and is not recorded in the history.
func (s *Store) SetFilter(filter Filter) error {
	if err := ValidateFilter(filter); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state.CurrentFilter == filter {
		s.mu.Unlock()
		return nil
	}
	s.state.CurrentFilter = filter
	s.version++
	change := Change{Kind: ChangeFilter, Version: s.version}
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// Undo restores the state from before the current history entry.
// The current filter is kept.
func (s *Store) Undo() error {
	return s.travel(ChangeUndo, s.history.Undo)
}

// Redo re-applies the next history entry. The current filter is kept.
func (s *Store) Redo() error {
	return s.travel(ChangeRedo, s.history.Redo)
}

func (s *Store) travel(kind ChangeKind, move func() (Entry, State, error)) error {
	s.mu.Lock()
	index := s.history.Index()
	entry, restored, err := move()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := restored.checkInvariants(); err != nil {
		s.history.index = index
		s.log.WithError(err).WithField("action", entry.Action).Errorf("%s rejected", kind)
		s.mu.Unlock()
		return err
	}
	restored.CurrentFilter = s.state.CurrentFilter
	s.state = restored
	s.version++
	change := Change{Kind: kind, Action: entry.Action, Subject: entry.Subject, Version: s.version}
	s.log.WithFields(logrus.Fields{
		"action":        entry.Action,
		"subject":       entry.Subject,
		"version":       s.version,
		"history_index": s.history.Index(),
	}).Debugf("%s applied", kind)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// CanUndo reports whether Undo would succeed.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// HistoryIndex returns the index of the current history entry, or -1.
func (s *Store) HistoryIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Index()
}

// History returns copies of all history entries, oldest first.
func (s *Store) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Version increases by one on every change, including filter changes.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// VersionedFilter returns the current version and filter.
func (s *Store) VersionedFilter() (uint64, Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, s.state.CurrentFilter
}

// VersionedState returns the current version together with a copy of the state.
func (s *Store) VersionedState() (uint64, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, s.state.Clone()
}

// Task returns a copy of a task.
func (s *Store) Task(taskID string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.state.Tasks[taskID]
	if !ok {
		return Task{}, fmt.Errorf("%w: %q", ErrTaskNotFound, taskID)
	}
	return task.Clone(), nil
}

// Category returns a category.
func (s *Store) Category(categoryID string) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category, ok := s.state.Categories[categoryID]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, categoryID)
	}
	return category, nil
}

// Statuses returns the status table the store advances tasks with.
func (s *Store) Statuses() StatusTable {
	return s.statuses
}

// Subscribe registers fn to run after every change. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) notify(change Change) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subscribers))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subscribers[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

// Snapshot exports the state and history in the INITIAL_KANBAN_STATE shape.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newSnapshot(s.state, s.history.Entries(), s.history.Index())
}
