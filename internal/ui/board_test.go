package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/dragdrop"
)

var boardNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func boardFixture(t *testing.T) *board.Store {
	t.Helper()
	snap := board.InitialSnapshot()
	snap.Categories = []board.Category{
		{ID: "be", Name: "Backend", Color: "#3b82f6", IsOpen: true},
		{ID: "fe", Name: "Frontend", Color: "#10b981", IsOpen: false},
	}
	due := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	snap.Tasks = []board.Task{
		{ID: "t1", Title: "Write docs", Status: board.StatusTodo, Priority: board.PriorityHigh, Category: "be", Position: 0, DueDate: &due},
		{ID: "t2", Title: "Fix login", Status: board.StatusTodo, Priority: board.PriorityMedium, Category: "be", Position: 1, Progress: 40},
		{ID: "t3", Title: "Ship header", Status: board.StatusDone, Priority: board.PriorityLow, Category: "fe", Position: 0},
	}
	store, err := board.NewStore(snap, board.Options{Clock: func() time.Time { return boardNow }})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestRenderBoard_Text(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	store := boardFixture(t)

	view := RenderBoard(board.Project(store.State(), board.FilterAll), BoardOptions{Now: boardNow})

	for _, want := range []string{
		"[-] be Backend (2)",
		"[+] fe Frontend (1)",
		"To Do (2)",
		"In Progress (0)",
		"t1 Write docs",
		"high in 2d",
		"medium 40%",
	} {
		if !strings.Contains(view.Text, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, view.Text)
		}
	}
	if strings.Contains(view.Text, "Ship header") {
		t.Error("expected closed category to hide its tasks")
	}
	if strings.Index(view.Text, "Write docs") > strings.Index(view.Text, "Fix login") {
		t.Error("expected tasks in position order")
	}
}

func TestRenderBoard_Empty(t *testing.T) {
	view := RenderBoard(&board.Projection{}, BoardOptions{})
	if !strings.Contains(view.Text, "No categories") {
		t.Fatalf("unexpected output %q", view.Text)
	}
}

func TestRenderBoard_Layout(t *testing.T) {
	store := boardFixture(t)
	view := RenderBoard(board.Project(store.State(), board.FilterAll), BoardOptions{ColumnWidth: 20, Now: boardNow})

	if len(view.Layout.Slots) != 2 || len(view.Layout.Targets) != 3 {
		t.Fatalf("expected 2 slots and 3 targets, got %d and %d", len(view.Layout.Slots), len(view.Layout.Targets))
	}

	todo := view.Layout.Targets[0]
	if todo.Status != board.StatusTodo || todo.Rect.X != 0 || todo.Rect.Width != 22 {
		t.Errorf("unexpected todo target %+v", todo)
	}
	if len(todo.Cards) != 2 || todo.Cards[0].Rect.Y != 3 || todo.Cards[1].Rect.Y != 5 {
		t.Errorf("unexpected cards %+v", todo.Cards)
	}
	doing := view.Layout.Targets[1]
	if doing.Rect.X != 22 {
		t.Errorf("expected doing column at x=22, got %d", doing.Rect.X)
	}

	// Header, border, label, two cards, border, blank line.
	frontend := view.Layout.Slots[1]
	if frontend.Rect.Y != 9 || frontend.Rect.Height != 1 {
		t.Errorf("unexpected frontend slot %+v", frontend.Rect)
	}
}

func TestRenderBoard_LayoutDrivesDragDrop(t *testing.T) {
	store := boardFixture(t)
	view := RenderBoard(board.Project(store.State(), board.FilterAll), BoardOptions{ColumnWidth: 20, Now: boardNow})
	controller := dragdrop.New(store, view.Layout)

	if err := controller.Grab(dragdrop.KindTask, "t2"); err != nil {
		t.Fatalf("failed to grab: %v", err)
	}
	// Inside the doing column, below its label.
	if _, err := controller.Drop(dragdrop.Point{X: 25, Y: 3}); err != nil {
		t.Fatalf("failed to drop: %v", err)
	}

	task, _ := store.Task("t2")
	if task.Status != board.StatusDoing || task.Position != 0 {
		t.Errorf("expected t2 at (doing, 0), got (%s, %d)", task.Status, task.Position)
	}
}

func TestRenderBoard_Selected(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	store := boardFixture(t)

	view := RenderBoard(board.Project(store.State(), board.FilterAll), BoardOptions{Now: boardNow, Selected: "t2"})
	if !strings.Contains(view.Text, "> t2 Fix login") {
		t.Fatalf("expected selected card marker, got:\n%s", view.Text)
	}
	if strings.Contains(view.Text, "> t1") {
		t.Fatalf("expected only the selected card marked, got:\n%s", view.Text)
	}
}

func TestRenderBoard_FilteredDropKeepsHiddenNeighbours(t *testing.T) {
	snap := board.InitialSnapshot()
	snap.Categories = []board.Category{{ID: "c", Name: "Core", Color: "#3b82f6", IsOpen: true}}
	snap.Tasks = []board.Task{
		{ID: "l0", Title: "Low first", Status: board.StatusTodo, Priority: board.PriorityLow, Category: "c", Position: 0},
		{ID: "h1", Title: "High", Status: board.StatusTodo, Priority: board.PriorityHigh, Category: "c", Position: 1},
		{ID: "l2", Title: "Low last", Status: board.StatusTodo, Priority: board.PriorityLow, Category: "c", Position: 2},
		{ID: "x", Title: "Moving", Status: board.StatusDoing, Priority: board.PriorityHigh, Category: "c", Position: 0},
	}
	store, err := board.NewStore(snap, board.Options{Clock: func() time.Time { return boardNow }})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	view := RenderBoard(board.Project(store.State(), board.FilterHigh), BoardOptions{Now: boardNow})
	c := dragdrop.New(store, view.Layout)
	if err := c.Grab(dragdrop.KindTask, "x"); err != nil {
		t.Fatalf("failed to grab: %v", err)
	}

	// h1 is the only todo card drawn, on rows 3 and 4.
	if candidate, ok := c.Hover(dragdrop.Point{X: 5, Y: 3}); !ok || candidate.Target.Position != 1 {
		t.Errorf("expected upper line of h1 to land at 1, got %+v (%v)", candidate, ok)
	}
	result, err := c.Drop(dragdrop.Point{X: 5, Y: 4})
	if err != nil {
		t.Fatalf("failed to drop: %v", err)
	}
	if result.Cancelled || result.Candidate.Target.Position != 2 {
		t.Fatalf("expected drop at todo #2, got %+v", result)
	}

	var got []string
	for _, task := range store.State().Bucket("c", board.StatusTodo) {
		got = append(got, task.ID)
	}
	if strings.Join(got, ",") != "l0,h1,x,l2" {
		t.Errorf("expected l0,h1,x,l2, got %v", got)
	}
}
