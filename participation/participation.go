// Package participation queues requests from users who want to take on a
// task. The task owner accepts or rejects them one at a time, oldest first.
package participation

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/amonks/kanban/board"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrRequestNotFound is returned when no pending request matches.
var ErrRequestNotFound = fmt.Errorf("participation request %w", board.ErrNoOp)

// Request is one user asking to be assigned to a task.
type Request struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"taskId"`
	Requester   board.User `json:"requester"`
	RequestedAt time.Time  `json:"requestedAt"`
}

// Assigner is the part of the store the manager needs. *board.Store implements it.
type Assigner interface {
	Task(taskID string) (board.Task, error)
	UpdateTask(taskID string, patch board.TaskPatch) error
}

// Options configures a Manager.
type Options struct {
	// Clock returns the current time. If nil, time.Now is used.
	Clock func() time.Time

	// Logger receives queue events. If nil, logs are discarded.
	Logger logrus.FieldLogger

	// Dedupe makes a repeated (task, requester) pair return the pending
	// request instead of queueing a second one.
	Dedupe bool

	// NewID generates request IDs. If nil, random UUIDs are used.
	NewID func() string
}

// Manager owns the FIFO queue of pending requests. The head of the queue is
// the active request shown to the task owner.
type Manager struct {
	store  Assigner
	clock  func() time.Time
	log    logrus.FieldLogger
	dedupe bool
	newID  func() string

	mu          sync.Mutex
	queue       []Request
	subscribers map[int]func(Request, bool)
	nextSub     int
}

// New returns an empty manager that assigns accepted requesters through store.
func New(store Assigner, opts Options) *Manager {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Manager{
		store:       store,
		clock:       clock,
		log:         logger,
		dedupe:      opts.Dedupe,
		newID:       newID,
		subscribers: map[int]func(Request, bool){},
	}
}

// Enqueue adds a request for taskID to the back of the queue.
func (m *Manager) Enqueue(taskID string, requester board.User) (Request, error) {
	if requester.ID == "" {
		return Request{}, fmt.Errorf("%w: requester id cannot be empty", board.ErrInvalidArgument)
	}
	if _, err := m.store.Task(taskID); err != nil {
		return Request{}, err
	}

	m.mu.Lock()
	if m.dedupe {
		if i := m.find(taskID, requester.ID); i >= 0 {
			existing := m.queue[i]
			m.mu.Unlock()
			return existing, nil
		}
	}
	req := Request{
		ID:          m.newID(),
		TaskID:      taskID,
		Requester:   requester,
		RequestedAt: m.clock(),
	}
	m.queue = append(m.queue, req)
	headChanged := len(m.queue) == 1
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"request":   req.ID,
		"task":      taskID,
		"requester": requester.ID,
	}).Info("participation requested")

	if headChanged {
		m.notify()
	}
	return req, nil
}

// PeekActive returns the oldest pending request.
func (m *Manager) PeekActive() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return Request{}, false
	}
	return m.queue[0], true
}

// Accept assigns the requester to the task and removes the oldest matching
// request. If the store rejects the assignment the queue is left as it was.
// It returns the new active request.
func (m *Manager) Accept(taskID, requesterID string) (Request, bool, error) {
	m.mu.Lock()
	i := m.find(taskID, requesterID)
	if i < 0 {
		m.mu.Unlock()
		return Request{}, false, fmt.Errorf("%w: task %s, requester %s", ErrRequestNotFound, taskID, requesterID)
	}
	req := m.queue[i]
	m.mu.Unlock()

	requester := req.Requester
	if err := m.store.UpdateTask(taskID, board.TaskPatch{AssignedTo: &requester}); err != nil {
		m.log.WithError(err).WithField("request", req.ID).Warn("participation accept failed")
		return Request{}, false, err
	}

	next, ok, headChanged := m.remove(req.ID)
	m.log.WithFields(logrus.Fields{
		"request":   req.ID,
		"task":      taskID,
		"requester": requesterID,
	}).Info("participation accepted")
	if headChanged {
		m.notify()
	}
	return next, ok, nil
}

// Reject removes the oldest matching request without touching the board.
// It returns the new active request.
func (m *Manager) Reject(taskID, requesterID string) (Request, bool, error) {
	m.mu.Lock()
	i := m.find(taskID, requesterID)
	if i < 0 {
		m.mu.Unlock()
		return Request{}, false, fmt.Errorf("%w: task %s, requester %s", ErrRequestNotFound, taskID, requesterID)
	}
	id := m.queue[i].ID
	m.mu.Unlock()

	next, ok, headChanged := m.remove(id)
	m.log.WithFields(logrus.Fields{
		"request":   id,
		"task":      taskID,
		"requester": requesterID,
	}).Info("participation rejected")
	if headChanged {
		m.notify()
	}
	return next, ok, nil
}

// Pending returns a copy of the queue, oldest first.
func (m *Manager) Pending() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.queue...)
}

// Len returns the number of pending requests.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// PruneTask drops every request for taskID and returns how many were dropped.
func (m *Manager) PruneTask(taskID string) int {
	m.mu.Lock()
	var head string
	if len(m.queue) > 0 {
		head = m.queue[0].ID
	}
	kept := m.queue[:0:0]
	for _, req := range m.queue {
		if req.TaskID != taskID {
			kept = append(kept, req)
		}
	}
	dropped := len(m.queue) - len(kept)
	m.queue = kept
	headChanged := dropped > 0 && (len(kept) == 0 || kept[0].ID != head)
	m.mu.Unlock()

	if dropped > 0 {
		m.log.WithFields(logrus.Fields{"task": taskID, "dropped": dropped}).Info("participation requests pruned")
	}
	if headChanged {
		m.notify()
	}
	return dropped
}

// Restore replaces the queue, e.g. with one loaded from disk.
func (m *Manager) Restore(requests []Request) {
	m.mu.Lock()
	m.queue = append([]Request(nil), requests...)
	m.mu.Unlock()
	m.notify()
}

// Subscribe registers fn to run whenever the active request changes. fn
// receives the new active request, or false when the queue is empty.
func (m *Manager) Subscribe(fn func(Request, bool)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// Watch prunes requests for tasks that disappear from the store, whether by
// deletion, cascade or undo.
func (m *Manager) Watch(store *board.Store) (unsubscribe func()) {
	return store.Subscribe(func(board.Change) {
		state := store.State()
		for _, taskID := range m.taskIDs() {
			if _, ok := state.Tasks[taskID]; !ok {
				m.PruneTask(taskID)
			}
		}
	})
}

func (m *Manager) taskIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var ids []string
	for _, req := range m.queue {
		if !seen[req.TaskID] {
			seen[req.TaskID] = true
			ids = append(ids, req.TaskID)
		}
	}
	return ids
}

// find returns the index of the oldest request matching the pair, or -1.
// The caller must hold m.mu.
func (m *Manager) find(taskID, requesterID string) int {
	for i, req := range m.queue {
		if req.TaskID == taskID && req.Requester.ID == requesterID {
			return i
		}
	}
	return -1
}

// remove deletes the request with the given ID and reports the new head and
// whether the head changed.
func (m *Manager) remove(id string) (Request, bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, req := range m.queue {
		if req.ID != id {
			continue
		}
		queue := make([]Request, 0, len(m.queue)-1)
		queue = append(queue, m.queue[:i]...)
		m.queue = append(queue, m.queue[i+1:]...)
		if len(m.queue) == 0 {
			return Request{}, false, true
		}
		return m.queue[0], true, i == 0
	}
	if len(m.queue) == 0 {
		return Request{}, false, false
	}
	return m.queue[0], true, false
}

func (m *Manager) notify() {
	m.mu.Lock()
	var head Request
	ok := len(m.queue) > 0
	if ok {
		head = m.queue[0]
	}
	fns := make([]func(Request, bool), 0, len(m.subscribers))
	for id := 0; id < m.nextSub; id++ {
		if fn, found := m.subscribers[id]; found {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(head, ok)
	}
}
