package board

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestStore_AddTask(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	task, err := store.AddTask("C1", TaskFields{Title: "X"})
	if err != nil {
		t.Fatalf("failed to add task: %v", err)
	}

	if task.Status != StatusTodo {
		t.Errorf("expected status todo, got %q", task.Status)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("expected priority medium, got %q", task.Priority)
	}
	if task.Position != 2 {
		t.Errorf("expected position 2, got %d", task.Position)
	}
	if task.Progress != 0 || len(task.Comments) != 0 {
		t.Errorf("expected no progress and no comments, got %d and %v", task.Progress, task.Comments)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected createdAt to be set")
	}
}

func TestStore_AddTask_Rejects(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	_, err := store.AddTask("C1", TaskFields{Title: "   "})
	if !errors.Is(err, ErrEmptyTitle) || !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}

	_, err = store.AddTask("missing", TaskFields{Title: "X"})
	if !errors.Is(err, ErrInvalidCategory) || !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}

	_, err = store.AddTask("C1", TaskFields{Title: "X", Progress: 101})
	if !errors.Is(err, ErrInvalidProgress) {
		t.Errorf("expected ErrInvalidProgress, got %v", err)
	}

	_, err = store.AddTask("C1", TaskFields{Title: strings.Repeat("a", MaxTitleLength+1)})
	if !errors.Is(err, ErrTitleTooLong) {
		t.Errorf("expected ErrTitleTooLong, got %v", err)
	}

	if store.Version() != 0 || store.CanUndo() {
		t.Error("expected rejected commands to leave no trace")
	}
}

func TestStore_UpdateTask(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	assignee := User{ID: "U1", Name: "Ada"}
	err := store.UpdateTask("T1", TaskPatch{
		Title:      StringPtr("First, renamed"),
		Priority:   PriorityPtr(PriorityHigh),
		Progress:   IntPtr(40),
		AssignedTo: &assignee,
	})
	if err != nil {
		t.Fatalf("failed to update task: %v", err)
	}

	task, _ := store.Task("T1")
	if task.Title != "First, renamed" {
		t.Errorf("expected updated title, got %q", task.Title)
	}
	if task.Priority != PriorityHigh || task.Progress != 40 {
		t.Errorf("expected high/40, got %s/%d", task.Priority, task.Progress)
	}
	if task.AssignedTo == nil || task.AssignedTo.ID != "U1" {
		t.Errorf("expected assignee U1, got %v", task.AssignedTo)
	}
	if task.Description != "" {
		t.Errorf("expected untouched description, got %q", task.Description)
	}

	if err := store.UpdateTask("T1", TaskPatch{ClearAssignee: true}); err != nil {
		t.Fatalf("failed to clear assignee: %v", err)
	}
	task, _ = store.Task("T1")
	if task.AssignedTo != nil {
		t.Errorf("expected no assignee, got %v", task.AssignedTo)
	}
}

func TestStore_UpdateTask_ImmutableFields(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	doing := StatusDoing

	patches := map[string]TaskPatch{
		"id":       {ID: StringPtr("T9")},
		"category": {Category: StringPtr("C2")},
		"status":   {Status: &doing},
		"position": {Position: IntPtr(0)},
	}
	for name, patch := range patches {
		err := store.UpdateTask("T1", patch)
		if !errors.Is(err, ErrImmutableField) {
			t.Errorf("%s: expected ErrImmutableField, got %v", name, err)
		}
	}

	err := store.UpdateTask("nope", TaskPatch{Title: StringPtr("x")})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestStore_DeleteTask_CompactsBucket(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	x := mustAddTask(t, store, "C1", "X")

	if err := store.DeleteTask("T1"); err != nil {
		t.Fatalf("failed to delete task: %v", err)
	}

	if _, err := store.Task("T1"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected T1 to be gone, got %v", err)
	}
	assertPlacement(t, store, "T2", "C1", StatusTodo, 0)
	assertPlacement(t, store, x.ID, "C1", StatusTodo, 1)
}

func TestStore_MoveTask_BasicMove(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	if err := store.MoveTask("T2", "C1", StatusDoing, 0); err != nil {
		t.Fatalf("failed to move task: %v", err)
	}

	assertPlacement(t, store, "T2", "C1", StatusDoing, 0)
	assertPlacement(t, store, "T1", "C1", StatusTodo, 0)
	if store.HistoryIndex() != 0 {
		t.Errorf("expected history index 0, got %d", store.HistoryIndex())
	}
}

func TestStore_MoveTask_WithinBucket(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	x := mustAddTask(t, store, "C1", "X")

	if err := store.MoveTask(x.ID, "C1", StatusTodo, 0); err != nil {
		t.Fatalf("failed to move task: %v", err)
	}

	got := bucketIDs(store.State(), "C1", StatusTodo)
	want := []string{x.ID, "T1", "T2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}

	if err := store.MoveTask(x.ID, "C1", StatusTodo, 1); err != nil {
		t.Fatalf("failed to move task: %v", err)
	}
	got = bucketIDs(store.State(), "C1", StatusTodo)
	want = []string{"T1", x.ID, "T2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
}

func TestStore_MoveTask_ClampsPosition(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	if err := store.MoveTask("T1", "C1", StatusDone, 99); err != nil {
		t.Fatalf("failed to move task: %v", err)
	}
	assertPlacement(t, store, "T1", "C1", StatusDone, 0)

	if err := store.MoveTask("T2", "C1", StatusTodo, 99); err != nil {
		t.Fatalf("failed to move task: %v", err)
	}
	assertPlacement(t, store, "T2", "C1", StatusTodo, 0)
}

func TestStore_MoveTask_Rejects(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	if err := store.MoveTask("T1", "C1", StatusDoing, -1); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("expected ErrInvalidPosition, got %v", err)
	}
	if err := store.MoveTask("T1", "C9", StatusDoing, 0); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
	if err := store.MoveTask("T1", "C1", Status("blocked"), 0); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	if err := store.MoveTask("T9", "C1", StatusDoing, 0); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestStore_MoveTask_NoOpDrop(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	before := store.State()

	if err := store.MoveTask("T2", "C1", StatusTodo, 1); err != nil {
		t.Fatalf("expected no-op move to succeed, got %v", err)
	}
	// Past the end of its own bucket clamps back onto the same slot.
	if err := store.MoveTask("T2", "C1", StatusTodo, 5); err != nil {
		t.Fatalf("expected no-op move to succeed, got %v", err)
	}

	if !reflect.DeepEqual(before, store.State()) {
		t.Error("expected state to be unchanged")
	}
	if len(store.History()) != 0 || store.HistoryIndex() != -1 {
		t.Errorf("expected no history entry, got %d entries", len(store.History()))
	}
	if store.Version() != 0 {
		t.Errorf("expected version 0, got %d", store.Version())
	}
}

func TestStore_AddCategory(t *testing.T) {
	store := newTestStore(t, Options{Palette: []string{"#111111", "#222222"}})

	first := mustAddCategory(t, store, "Backend")
	second := mustAddCategory(t, store, "Frontend")
	third := mustAddCategory(t, store, "Ops")

	if !first.IsOpen {
		t.Error("expected new category to be open")
	}
	colors := []string{first.Color, second.Color, third.Color}
	want := []string{"#111111", "#222222", "#111111"}
	if !reflect.DeepEqual(colors, want) {
		t.Errorf("expected palette colors %v, got %v", want, colors)
	}

	explicit, err := store.AddCategory(CategoryFields{Name: "Design", Color: "#abcdef"})
	if err != nil {
		t.Fatalf("failed to add category: %v", err)
	}
	if explicit.Color != "#abcdef" {
		t.Errorf("expected explicit color, got %q", explicit.Color)
	}

	if _, err := store.AddCategory(CategoryFields{Name: "Bad", Color: "red"}); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("expected ErrInvalidColor, got %v", err)
	}
	if _, err := store.AddCategory(CategoryFields{Name: " "}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}

	order := store.State().CategoryOrder
	wantOrder := []string{first.ID, second.ID, third.ID, explicit.ID}
	if !reflect.DeepEqual(order, wantOrder) {
		t.Errorf("expected order %v, got %v", wantOrder, order)
	}
}

func TestStore_DeleteCategory_Cascades(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	other := mustAddCategory(t, store, "Other")
	kept := mustAddTask(t, store, other.ID, "Kept")

	if err := store.DeleteCategory("C1"); err != nil {
		t.Fatalf("failed to delete category: %v", err)
	}

	state := store.State()
	if len(state.Tasks) != 1 {
		t.Errorf("expected 1 remaining task, got %d", len(state.Tasks))
	}
	if _, ok := state.Tasks[kept.ID]; !ok {
		t.Error("expected task in other category to survive")
	}
	if !reflect.DeepEqual(state.CategoryOrder, []string{other.ID}) {
		t.Errorf("expected category order [%s], got %v", other.ID, state.CategoryOrder)
	}

	if err := store.DeleteCategory("C1"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}

	if err := store.Undo(); err != nil {
		t.Fatalf("failed to undo: %v", err)
	}
	if len(store.State().Tasks) != 3 {
		t.Errorf("expected undo to restore cascaded tasks, got %d", len(store.State().Tasks))
	}
}

func TestStore_ToggleCategory(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	if err := store.ToggleCategory("C1"); err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	category, _ := store.Category("C1")
	if category.IsOpen {
		t.Error("expected category to be closed")
	}
	if len(store.History()) != 1 || store.History()[0].Action != ActionToggleCategory {
		t.Errorf("expected one TOGGLE_CATEGORY entry, got %v", store.History())
	}
	if err := store.ToggleCategory("C9"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestStore_ReorderCategory(t *testing.T) {
	store := newTestStore(t, Options{})
	a := mustAddCategory(t, store, "A")
	b := mustAddCategory(t, store, "B")
	c := mustAddCategory(t, store, "C")

	if err := store.ReorderCategory(c.ID, 0); err != nil {
		t.Fatalf("failed to reorder: %v", err)
	}
	want := []string{c.ID, a.ID, b.ID}
	if got := store.State().CategoryOrder; !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}

	if err := store.ReorderCategory(c.ID, 10); err != nil {
		t.Fatalf("failed to reorder: %v", err)
	}
	want = []string{a.ID, b.ID, c.ID}
	if got := store.State().CategoryOrder; !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}

	entries := len(store.History())
	if err := store.ReorderCategory(c.ID, 2); err != nil {
		t.Fatalf("expected same-index reorder to succeed, got %v", err)
	}
	if len(store.History()) != entries {
		t.Error("expected same-index reorder to record nothing")
	}
	if err := store.ReorderCategory(a.ID, -1); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestStore_AdvanceAndRetreat(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	if err := store.AdvanceTask("T1"); err != nil {
		t.Fatalf("failed to advance: %v", err)
	}
	assertPlacement(t, store, "T1", "C1", StatusDoing, 0)
	assertPlacement(t, store, "T2", "C1", StatusTodo, 0)

	if err := store.AdvanceTask("T2"); err != nil {
		t.Fatalf("failed to advance: %v", err)
	}
	assertPlacement(t, store, "T2", "C1", StatusDoing, 1)

	if err := store.AdvanceTask("T1"); err != nil {
		t.Fatalf("failed to advance: %v", err)
	}
	if err := store.AdvanceTask("T1"); !errors.Is(err, ErrNoTransition) || !errors.Is(err, ErrNoOp) {
		t.Errorf("expected ErrNoTransition, got %v", err)
	}

	if err := store.RetreatTask("T1"); err != nil {
		t.Fatalf("failed to retreat: %v", err)
	}
	assertPlacement(t, store, "T1", "C1", StatusDoing, 1)
}

func TestStore_AddComment(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	author := User{ID: "U1", Name: "Ada"}

	comment, err := store.AddComment("T1", author, "Looks good")
	if err != nil {
		t.Fatalf("failed to comment: %v", err)
	}
	if comment.ID == "" || comment.Author != author || comment.Text != "Looks good" {
		t.Errorf("unexpected comment %+v", comment)
	}

	task, _ := store.Task("T1")
	if len(task.Comments) != 1 || task.Comments[0].ID != comment.ID {
		t.Errorf("expected comment on task, got %v", task.Comments)
	}
	if got := store.History()[0].Action; got != ActionUpdateTask {
		t.Errorf("expected UPDATE_TASK entry, got %s", got)
	}

	if _, err := store.AddComment("T1", author, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestStore_SetFilter(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	var changes []Change
	unsubscribe := store.Subscribe(func(c Change) { changes = append(changes, c) })
	defer unsubscribe()

	if err := store.SetFilter(FilterHigh); err != nil {
		t.Fatalf("failed to set filter: %v", err)
	}
	if store.State().CurrentFilter != FilterHigh {
		t.Errorf("expected filter high, got %q", store.State().CurrentFilter)
	}
	if store.CanUndo() {
		t.Error("expected filter change not to be recorded")
	}
	if len(changes) != 1 || changes[0].Kind != ChangeFilter {
		t.Errorf("expected one filter change notification, got %v", changes)
	}

	if err := store.SetFilter(Filter("everything")); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestStore_UndoKeepsFilter(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	mustAddTask(t, store, "C1", "X")

	if err := store.SetFilter(FilterPending); err != nil {
		t.Fatalf("failed to set filter: %v", err)
	}
	if err := store.Undo(); err != nil {
		t.Fatalf("failed to undo: %v", err)
	}
	if got := store.State().CurrentFilter; got != FilterPending {
		t.Errorf("expected filter to survive undo, got %q", got)
	}
}

func TestStore_UndoAnAdd(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})
	prior := store.HistoryIndex()

	x := mustAddTask(t, store, "C1", "X")
	if x.Position != 2 {
		t.Errorf("expected position 2, got %d", x.Position)
	}

	if err := store.Undo(); err != nil {
		t.Fatalf("failed to undo: %v", err)
	}
	if _, err := store.Task(x.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected task to be removed, got %v", err)
	}
	if store.HistoryIndex() != prior {
		t.Errorf("expected history index %d, got %d", prior, store.HistoryIndex())
	}
	if !store.CanRedo() {
		t.Error("expected redo to be available")
	}

	if err := store.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestStore_Subscribe(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	var changes []Change
	unsubscribe := store.Subscribe(func(c Change) {
		// Subscribers may read from the store.
		_ = store.State()
		changes = append(changes, c)
	})

	if err := store.MoveTask("T1", "C1", StatusDone, 0); err != nil {
		t.Fatalf("failed to move: %v", err)
	}
	if err := store.Undo(); err != nil {
		t.Fatalf("failed to undo: %v", err)
	}
	if err := store.Redo(); err != nil {
		t.Fatalf("failed to redo: %v", err)
	}

	kinds := []ChangeKind{}
	for _, c := range changes {
		kinds = append(kinds, c.Kind)
	}
	want := []ChangeKind{ChangeCommand, ChangeUndo, ChangeRedo}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("expected %v, got %v", want, kinds)
	}
	if changes[0].Action != ActionMoveTask || changes[0].Subject != "T1" {
		t.Errorf("unexpected change %+v", changes[0])
	}
	if changes[2].Version != 3 {
		t.Errorf("expected version 3, got %d", changes[2].Version)
	}

	unsubscribe()
	if err := store.MoveTask("T2", "C1", StatusDone, 0); err != nil {
		t.Fatalf("failed to move: %v", err)
	}
	if len(changes) != 3 {
		t.Errorf("expected no notifications after unsubscribe, got %d", len(changes))
	}
}

func TestStore_Logging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{Logger: logger})

	if err := store.MoveTask("T1", "C1", StatusDoing, 0); err != nil {
		t.Fatalf("failed to move: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", entry.Level)
	}
	if entry.Data["action"] != ActionMoveTask || entry.Data["subject"] != "T1" {
		t.Errorf("unexpected fields %v", entry.Data)
	}
	if entry.Data["version"] != uint64(1) || entry.Data["history_index"] != 0 {
		t.Errorf("unexpected version fields %v", entry.Data)
	}

	hook.Reset()
	_ = store.MoveTask("T1", "C1", StatusDoing, -3)
	if entry := hook.LastEntry(); entry == nil || entry.Data[logrus.ErrorKey] == nil {
		t.Error("expected rejected command to be logged with its error")
	}
}

func TestStore_CustomIDsStayUnique(t *testing.T) {
	store := newTestStore(t, Options{
		NewID: func(seed string, _ time.Time) string { return "same" },
	})

	first := mustAddCategory(t, store, "A")
	second := mustAddCategory(t, store, "B")
	task := mustAddTask(t, store, first.ID, "X")

	if first.ID != "same" || second.ID != "same-2" || task.ID != "same-3" {
		t.Errorf("expected salted IDs, got %q %q %q", first.ID, second.ID, task.ID)
	}
}

func TestStore_DefaultIDs(t *testing.T) {
	store, err := NewStore(InitialSnapshot(), Options{Clock: testClock()})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	category, err := store.AddCategory(CategoryFields{Name: "Backend"})
	if err != nil {
		t.Fatalf("failed to add category: %v", err)
	}
	if len(category.ID) != 8 {
		t.Errorf("expected 8-char ID, got %q", category.ID)
	}
}

func TestStore_StateIsACopy(t *testing.T) {
	store := newTestStoreFrom(t, twoTaskSnapshot(), Options{})

	state := store.State()
	task := state.Tasks["T1"]
	task.Title = "mutated"
	state.Tasks["T1"] = task
	state.CategoryOrder[0] = "mutated"

	fresh := store.State()
	if fresh.Tasks["T1"].Title != "First" || fresh.CategoryOrder[0] != "C1" {
		t.Error("expected store state to be isolated from callers")
	}
}
