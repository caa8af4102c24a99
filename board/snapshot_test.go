package board

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestInitialSnapshot_JSONShape(t *testing.T) {
	data, err := json.Marshal(InitialSnapshot())
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	want := `{"tasks":[],"categories":[],"currentFilter":"all","history":[],"historyIndex":-1}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestNewStore_CompactsPositions(t *testing.T) {
	snap := twoTaskSnapshot()
	snap.Tasks[0].Position = 4
	snap.Tasks[1].Position = 9
	snap.Tasks = append(snap.Tasks, Task{
		ID: "T3", Title: "Third", Status: StatusTodo, Priority: PriorityLow,
		Category: "C1", CreatedAt: testEpoch.Add(-1), Position: 4,
	})

	store := newTestStoreFrom(t, snap, Options{})

	got := bucketIDs(store.State(), "C1", StatusTodo)
	want := []string{"T3", "T1", "T2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	assertPlacement(t, store, "T2", "C1", StatusTodo, 2)
}

func TestNewStore_RejectsInvalidSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		want   error
	}{
		{"dangling category", func(s *Snapshot) { s.Tasks[0].Category = "C9" }, ErrInvalidCategory},
		{"unknown status", func(s *Snapshot) { s.Tasks[0].Status = "blocked" }, ErrInvalidStatus},
		{"unknown priority", func(s *Snapshot) { s.Tasks[0].Priority = "urgent" }, ErrInvalidPriority},
		{"bad color", func(s *Snapshot) { s.Categories[0].Color = "blue" }, ErrInvalidColor},
		{"unknown filter", func(s *Snapshot) { s.CurrentFilter = "mine" }, ErrInvalidFilter},
		{"duplicate task", func(s *Snapshot) { s.Tasks[1].ID = "T1" }, ErrInvalidArgument},
		{"history index out of range", func(s *Snapshot) { s.HistoryIndex = 3 }, ErrInvalidArgument},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := twoTaskSnapshot()
			tc.mutate(&snap)
			_, err := NewStore(snap, Options{})
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	mustAddTask(t, store, "C1", "X")
	if err := store.MoveTask("T1", "C1", StatusDone, 0); err != nil {
		t.Fatalf("failed to move: %v", err)
	}
	if err := store.Undo(); err != nil {
		t.Fatalf("failed to undo: %v", err)
	}

	data, err := json.Marshal(store.Snapshot())
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	reloaded := newTestStoreFrom(t, decoded, Options{})
	if reloaded.HistoryIndex() != 0 || len(reloaded.History()) != 2 {
		t.Errorf("expected index 0 of 2 entries, got %d of %d", reloaded.HistoryIndex(), len(reloaded.History()))
	}
	if !reloaded.CanRedo() {
		t.Fatal("expected redo to survive a reload")
	}
	if err := reloaded.Redo(); err != nil {
		t.Fatalf("failed to redo: %v", err)
	}
	assertPlacement(t, reloaded, "T1", "C1", StatusDone, 0)
}

func TestStore_SnapshotOrdersCategories(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	other := mustAddCategory(t, store, "Other")
	if err := store.ReorderCategory(other.ID, 0); err != nil {
		t.Fatalf("failed to reorder: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Categories) != 2 || snap.Categories[0].ID != other.ID {
		t.Errorf("expected %s first, got %v", other.ID, snap.Categories)
	}
	if len(snap.Tasks) != 2 || snap.Tasks[0].ID != "T1" {
		t.Errorf("expected tasks in board order, got %v", snap.Tasks)
	}
}

// corruptBefore points T1 in the first history entry's Before state at a
// category that does not exist.
func corruptBefore(entry *Entry) {
	before := entry.Before.Clone()
	task := before.Tasks["T1"]
	task.Category = "ghost"
	task.Position = 5
	before.Tasks["T1"] = task
	entry.Before = before
}

func TestNewStore_RejectsBrokenHistoryStates(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	if err := store.MoveTask("T1", "C1", StatusDone, 0); err != nil {
		t.Fatalf("failed to move: %v", err)
	}

	snap := store.Snapshot()
	corruptBefore(&snap.History[0])
	if _, err := NewStore(snap, Options{}); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected invariant violation for broken before state, got %v", err)
	}

	snap = store.Snapshot()
	after := snap.History[0].After.Clone()
	task := after.Tasks["T2"]
	task.Position = 3
	after.Tasks["T2"] = task
	snap.History[0].After = after
	if _, err := NewStore(snap, Options{}); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected invariant violation for position gap, got %v", err)
	}
}

func TestUndo_RefusesBrokenHistoryState(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	if err := store.MoveTask("T1", "C1", StatusDone, 0); err != nil {
		t.Fatalf("failed to move: %v", err)
	}
	corruptBefore(&store.history.entries[0])
	version := store.Version()

	err := store.Undo()
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
	if store.HistoryIndex() != 0 {
		t.Errorf("expected history index to stay at 0, got %d", store.HistoryIndex())
	}
	if store.Version() != version {
		t.Errorf("expected version %d, got %d", version, store.Version())
	}
	assertPlacement(t, store, "T1", "C1", StatusDone, 0)
	if err := store.State().checkInvariants(); err != nil {
		t.Fatalf("state broken after refused undo: %v", err)
	}
}
