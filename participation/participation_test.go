package participation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/amonks/kanban/board"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

var (
	ada   = board.User{ID: "U1", Name: "Ada"}
	grace = board.User{ID: "U2", Name: "Grace"}
)

func newStore(t *testing.T) *board.Store {
	t.Helper()
	snap := board.InitialSnapshot()
	snap.Categories = []board.Category{{ID: "C1", Name: "Backend", Color: "#3b82f6", IsOpen: true}}
	snap.Tasks = []board.Task{
		{ID: "T8", Title: "Eight", Status: board.StatusTodo, Priority: board.PriorityMedium, Category: "C1", CreatedAt: epoch, Position: 0},
		{ID: "T9", Title: "Nine", Status: board.StatusTodo, Priority: board.PriorityMedium, Category: "C1", CreatedAt: epoch, Position: 1},
	}
	store, err := board.NewStore(snap, board.Options{Clock: func() time.Time { return epoch }})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
}

func newManager(store Assigner, opts Options) *Manager {
	if opts.NewID == nil {
		opts.NewID = sequentialIDs()
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return epoch }
	}
	return New(store, opts)
}

func TestAccept_AssignsRequester(t *testing.T) {
	store := newStore(t)
	m := newManager(store, Options{})

	if _, err := m.Enqueue("T9", grace); err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}
	if _, ok, err := m.Accept("T9", "U2"); err != nil || ok {
		t.Fatalf("expected empty queue after accept, got ok=%v err=%v", ok, err)
	}

	task, _ := store.Task("T9")
	if task.AssignedTo == nil || task.AssignedTo.ID != "U2" {
		t.Errorf("expected T9 assigned to U2, got %v", task.AssignedTo)
	}
	if m.Len() != 0 {
		t.Errorf("expected request to be removed, got %d pending", m.Len())
	}
	if entries := store.History(); len(entries) != 1 || entries[0].Action != board.ActionUpdateTask {
		t.Errorf("expected one UPDATE_TASK entry, got %v", entries)
	}
}

func TestEnqueue_FIFO(t *testing.T) {
	m := newManager(newStore(t), Options{})

	first, _ := m.Enqueue("T9", ada)
	second, _ := m.Enqueue("T8", grace)

	head, ok := m.PeekActive()
	if !ok || head.ID != first.ID {
		t.Errorf("expected %s active, got %+v", first.ID, head)
	}
	if head.RequestedAt != epoch || head.ID != "req-1" {
		t.Errorf("unexpected request %+v", head)
	}

	next, ok, err := m.Reject("T9", "U1")
	if err != nil {
		t.Fatalf("failed to reject: %v", err)
	}
	if !ok || next.ID != second.ID {
		t.Errorf("expected %s to become active, got %+v", second.ID, next)
	}
}

func TestEnqueue_Errors(t *testing.T) {
	m := newManager(newStore(t), Options{})

	if _, err := m.Enqueue("T0", ada); !errors.Is(err, board.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := m.Enqueue("T9", board.User{}); !errors.Is(err, board.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty queue, got %d", m.Len())
	}
}

func TestEnqueue_Duplicates(t *testing.T) {
	m := newManager(newStore(t), Options{})
	m.Enqueue("T9", ada)
	m.Enqueue("T9", ada)
	if m.Len() != 2 {
		t.Errorf("expected duplicates to queue independently, got %d", m.Len())
	}

	deduped := newManager(newStore(t), Options{Dedupe: true})
	first, _ := deduped.Enqueue("T9", ada)
	again, _ := deduped.Enqueue("T9", ada)
	if deduped.Len() != 1 || again.ID != first.ID {
		t.Errorf("expected dedupe to return the pending request, got %d pending", deduped.Len())
	}
}

func TestAccept_RemovesOldestMatch(t *testing.T) {
	store := newStore(t)
	m := newManager(store, Options{})
	first, _ := m.Enqueue("T9", ada)
	m.Enqueue("T8", grace)
	third, _ := m.Enqueue("T9", ada)

	if _, _, err := m.Accept("T9", "U1"); err != nil {
		t.Fatalf("failed to accept: %v", err)
	}
	pending := m.Pending()
	if len(pending) != 2 || pending[1].ID != third.ID {
		t.Errorf("expected the oldest match %s to be removed, got %v", first.ID, pending)
	}
}

func TestAccept_NotFound(t *testing.T) {
	m := newManager(newStore(t), Options{})
	_, _, err := m.Accept("T9", "U2")
	if !errors.Is(err, ErrRequestNotFound) || !errors.Is(err, board.ErrNoOp) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
	if _, _, err := m.Reject("T9", "U2"); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}

type failingStore struct {
	*board.Store
}

func (failingStore) UpdateTask(string, board.TaskPatch) error {
	return board.ErrInvariantViolation
}

func TestAccept_StoreFailureKeepsQueue(t *testing.T) {
	m := newManager(failingStore{newStore(t)}, Options{})
	req, _ := m.Enqueue("T9", grace)

	if _, _, err := m.Accept("T9", "U2"); !errors.Is(err, board.ErrInvariantViolation) {
		t.Fatalf("expected store error, got %v", err)
	}
	head, ok := m.PeekActive()
	if !ok || head.ID != req.ID || m.Len() != 1 {
		t.Errorf("expected queue to be unchanged, got %v", m.Pending())
	}
}

func TestSubscribe_ActiveChanges(t *testing.T) {
	m := newManager(newStore(t), Options{})

	var seen []string
	unsubscribe := m.Subscribe(func(req Request, ok bool) {
		if ok {
			seen = append(seen, req.ID)
		} else {
			seen = append(seen, "empty")
		}
	})
	defer unsubscribe()

	m.Enqueue("T9", ada)
	m.Enqueue("T8", grace)
	m.Reject("T9", "U1")
	m.Reject("T8", "U2")

	want := []string{"req-1", "req-2", "empty"}
	if fmt.Sprint(seen) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, seen)
	}
}

func TestWatch_PrunesDeletedTasks(t *testing.T) {
	store := newStore(t)
	m := newManager(store, Options{})
	unwatch := m.Watch(store)
	defer unwatch()

	m.Enqueue("T9", ada)
	m.Enqueue("T8", grace)
	m.Enqueue("T9", grace)

	if err := store.DeleteTask("T9"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	pending := m.Pending()
	if len(pending) != 1 || pending[0].TaskID != "T8" {
		t.Errorf("expected only T8 requests to remain, got %v", pending)
	}
}

func TestPruneTask(t *testing.T) {
	m := newManager(newStore(t), Options{})
	m.Enqueue("T9", ada)
	m.Enqueue("T9", grace)

	if n := m.PruneTask("T9"); n != 2 {
		t.Errorf("expected 2 pruned, got %d", n)
	}
	if n := m.PruneTask("T9"); n != 0 {
		t.Errorf("expected 0 pruned, got %d", n)
	}
}

func TestRestore(t *testing.T) {
	m := newManager(newStore(t), Options{})
	m.Restore([]Request{{ID: "saved", TaskID: "T8", Requester: ada, RequestedAt: epoch}})

	head, ok := m.PeekActive()
	if !ok || head.ID != "saved" {
		t.Errorf("expected restored request to be active, got %+v", head)
	}
}

func TestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := newManager(newStore(t), Options{Logger: logger})

	m.Enqueue("T9", grace)

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.InfoLevel {
		t.Fatalf("expected an info entry, got %v", entry)
	}
	if entry.Data["task"] != "T9" || entry.Data["requester"] != "U2" {
		t.Errorf("unexpected fields %v", entry.Data)
	}
}

func TestDefaultIDsAreUUIDs(t *testing.T) {
	m := New(newStore(t), Options{})
	req, err := m.Enqueue("T9", ada)
	if err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}
	if len(req.ID) != 36 {
		t.Errorf("expected a UUID, got %q", req.ID)
	}
}
