// Package dragdrop turns pointer gestures over a rendered board into board
// commands. A gesture issues no command until it is dropped.
package dragdrop

import (
	"errors"
	"fmt"

	"github.com/amonks/kanban/board"
)

var (
	// ErrGestureActive is returned by Grab while another gesture is in flight.
	ErrGestureActive = fmt.Errorf("a drag is already in progress: %w", board.ErrInvalidArgument)

	// ErrNoGesture is returned by Drop when nothing is being dragged.
	ErrNoGesture = fmt.Errorf("nothing is being dragged: %w", board.ErrNoOp)

	// ErrUnknownKind is returned by Grab for kinds other than KindTask and KindCategory.
	ErrUnknownKind = errors.New("unknown drag kind")
)

// Kind is what is being dragged.
type Kind string

const (
	KindTask     Kind = "task"
	KindCategory Kind = "category"
)

// Board is the part of the store the controller needs. *board.Store implements it.
type Board interface {
	State() board.State
	MoveTask(taskID, categoryID string, status board.Status, position int) error
	ReorderCategory(categoryID string, index int) error
}

// Layout reports where the render layer drew things.
type Layout interface {
	// TaskTargets returns one target per visible (category, status) column.
	TaskTargets() []TaskTarget

	// CategorySlots returns the category headers in display order.
	CategorySlots() []CategorySlot
}

// Location is a slot on the board. For categories only Position is used,
// as the index in the category order.
type Location struct {
	CategoryID string
	Status     board.Status
	Position   int
}

// Gesture is an in-flight drag.
type Gesture struct {
	Kind   Kind
	ID     string
	Origin Location
}

// Candidate is where the dragged item would land if dropped now.
type Candidate struct {
	Kind   Kind
	ID     string
	Target Location
}

// Result describes a finished gesture.
type Result struct {
	// Cancelled is set when the drop landed outside every target.
	Cancelled bool

	// Candidate is the committed location when Cancelled is false.
	Candidate Candidate
}

// Controller tracks at most one drag gesture.
//
// Controller is not safe for concurrent use; it belongs to the UI loop.
type Controller struct {
	board  Board
	layout Layout
	active *Gesture
}

// New returns a controller that commits drops to b using layout for hit tests.
func New(b Board, layout Layout) *Controller {
	return &Controller{board: b, layout: layout}
}

// SetLayout replaces the layout used for hit tests, e.g. after a redraw.
func (c *Controller) SetLayout(layout Layout) {
	c.layout = layout
}

// Grab starts dragging a task or category.
func (c *Controller) Grab(kind Kind, id string) error {
	if c.active != nil {
		return ErrGestureActive
	}
	state := c.board.State()

	var origin Location
	switch kind {
	case KindTask:
		task, ok := state.Tasks[id]
		if !ok {
			return fmt.Errorf("%w: %q", board.ErrTaskNotFound, id)
		}
		origin = Location{CategoryID: task.Category, Status: task.Status, Position: task.Position}
	case KindCategory:
		index := state.CategoryIndex(id)
		if index < 0 {
			return fmt.Errorf("%w: %q", board.ErrCategoryNotFound, id)
		}
		origin = Location{CategoryID: id, Position: index}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	c.active = &Gesture{Kind: kind, ID: id, Origin: origin}
	return nil
}

// Hover returns the drop candidate under p without changing anything.
// Pointing at the upper line of a card lands before it and the lower line
// lands after it. Tasks the layout does not show keep their place relative
// to the cards around the drop.
func (c *Controller) Hover(p Point) (Candidate, bool) {
	if c.active == nil {
		return Candidate{}, false
	}
	switch c.active.Kind {
	case KindTask:
		return c.taskCandidate(p)
	case KindCategory:
		return c.categoryCandidate(p)
	}
	return Candidate{}, false
}

// Drop ends the gesture at p. A drop outside every target is cancelled and
// issues no command; otherwise exactly one command is sent to the board.
// The gesture is cleared either way.
func (c *Controller) Drop(p Point) (Result, error) {
	if c.active == nil {
		return Result{}, ErrNoGesture
	}
	candidate, ok := c.Hover(p)
	kind := c.active.Kind
	c.active = nil

	if !ok {
		return Result{Cancelled: true}, nil
	}

	var err error
	switch kind {
	case KindTask:
		err = c.board.MoveTask(candidate.ID, candidate.Target.CategoryID, candidate.Target.Status, candidate.Target.Position)
	case KindCategory:
		err = c.board.ReorderCategory(candidate.ID, candidate.Target.Position)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Candidate: candidate}, nil
}

// Cancel abandons the current gesture, if any.
func (c *Controller) Cancel() {
	c.active = nil
}

// Active returns the in-flight gesture.
func (c *Controller) Active() (Gesture, bool) {
	if c.active == nil {
		return Gesture{}, false
	}
	return *c.active, true
}

func (c *Controller) taskCandidate(p Point) (Candidate, bool) {
	state := c.board.State()
	for _, target := range c.layout.TaskTargets() {
		if !target.Rect.Contains(p) {
			continue
		}
		if _, ok := state.Categories[target.CategoryID]; !ok {
			return Candidate{}, false
		}
		return Candidate{
			Kind:   KindTask,
			ID:     c.active.ID,
			Target: Location{CategoryID: target.CategoryID, Status: target.Status, Position: c.bucketPosition(state, target, p)},
		}, true
	}
	return Candidate{}, false
}

// bucketPosition maps p to a rank in the full (category, status) bucket.
// The layout may show only some of the bucket's tasks, so the rank is taken
// from the nearest drawn card: just after the last card p has passed, or
// just before the first card when p has passed none.
func (c *Controller) bucketPosition(state board.State, target TaskTarget, p Point) int {
	rank := map[string]int{}
	for _, task := range state.Bucket(target.CategoryID, target.Status) {
		if task.ID != c.active.ID {
			rank[task.ID] = len(rank)
		}
	}

	var before, after string
	for _, card := range target.Cards {
		if _, ok := rank[card.TaskID]; !ok {
			continue
		}
		if card.Rect.Passed(p) {
			before = card.TaskID
			continue
		}
		after = card.TaskID
		break
	}
	switch {
	case before != "":
		return rank[before] + 1
	case after != "":
		return rank[after]
	}
	return len(rank)
}

func (c *Controller) categoryCandidate(p Point) (Candidate, bool) {
	slots := c.layout.CategorySlots()
	hit := false
	for _, slot := range slots {
		if slot.Rect.Contains(p) {
			hit = true
			break
		}
	}
	if !hit {
		return Candidate{}, false
	}

	index := 0
	for _, slot := range slots {
		if slot.CategoryID == c.active.ID {
			continue
		}
		if slot.Rect.Passed(p) {
			index++
		}
	}
	return Candidate{
		Kind:   KindCategory,
		ID:     c.active.ID,
		Target: Location{CategoryID: c.active.ID, Position: index},
	}, true
}
