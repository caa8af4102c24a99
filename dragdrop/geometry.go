package dragdrop

import "github.com/amonks/kanban/board"

// Point is a pointer position in cells.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned rectangle. The right and bottom edges are exclusive.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Passed reports whether the row p.Y lies wholly below r's vertical
// midpoint. Rows are compared in half cells, so the lower line of a
// two-line card is past it and the upper line is not.
func (r Rect) Passed(p Point) bool {
	return 2*r.Y+r.Height <= 2*p.Y
}

// Card is a rendered task card.
type Card struct {
	TaskID string
	Rect   Rect
}

// TaskTarget is a rendered (category, status) column. Cards are in display order.
type TaskTarget struct {
	CategoryID string
	Status     board.Status
	Rect       Rect
	Cards      []Card
}

// CategorySlot is a rendered category header.
type CategorySlot struct {
	CategoryID string
	Rect       Rect
}

// StaticLayout is a Layout with fixed contents, for renderers that rebuild
// it each frame.
type StaticLayout struct {
	Targets []TaskTarget
	Slots   []CategorySlot
}

func (l StaticLayout) TaskTargets() []TaskTarget     { return l.Targets }
func (l StaticLayout) CategorySlots() []CategorySlot { return l.Slots }
