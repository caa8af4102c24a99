package board

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the board wraps exactly one of these,
// so callers can decide how to surface it with errors.Is.
var (
	// ErrNotFound is the kind for references to tasks or categories that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is the kind for malformed command payloads.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvariantViolation is the kind for engine bugs caught before commit.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrNoOp is the kind for benign boundary conditions such as undo at the start of history.
	ErrNoOp = errors.New("no-op")
)

var (
	// ErrTaskNotFound is returned when a task with the given ID doesn't exist.
	ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)

	// ErrCategoryNotFound is returned when a category with the given ID doesn't exist.
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)

	// ErrInvalidCategory is returned when a task command targets a category that doesn't exist.
	ErrInvalidCategory = fmt.Errorf("invalid category: %w", ErrNotFound)

	// ErrEmptyTitle is returned when a task title is empty.
	ErrEmptyTitle = fmt.Errorf("%w: title cannot be empty", ErrInvalidArgument)

	// ErrTitleTooLong is returned when a task title exceeds MaxTitleLength.
	ErrTitleTooLong = fmt.Errorf("%w: title exceeds maximum length", ErrInvalidArgument)

	// ErrEmptyName is returned when a category name is empty.
	ErrEmptyName = fmt.Errorf("%w: category name cannot be empty", ErrInvalidArgument)

	// ErrInvalidStatus is returned when an unknown status is provided.
	ErrInvalidStatus = fmt.Errorf("%w: invalid status", ErrInvalidArgument)

	// ErrInvalidPriority is returned when an unknown priority is provided.
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", ErrInvalidArgument)

	// ErrInvalidProgress is returned when progress is outside 0-100.
	ErrInvalidProgress = fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidArgument)

	// ErrInvalidColor is returned when a category color is not a #rrggbb hex value.
	ErrInvalidColor = fmt.Errorf("%w: color must be a #rrggbb hex value", ErrInvalidArgument)

	// ErrInvalidPosition is returned when a target position or index is negative.
	ErrInvalidPosition = fmt.Errorf("%w: position cannot be negative", ErrInvalidArgument)

	// ErrInvalidFilter is returned when an unknown filter is provided.
	ErrInvalidFilter = fmt.Errorf("%w: invalid filter", ErrInvalidArgument)

	// ErrImmutableField is returned when an update tries to change id, createdAt,
	// category, status or position.
	ErrImmutableField = fmt.Errorf("%w: field cannot be changed by update", ErrInvalidArgument)

	// ErrNothingToUndo is returned by Undo at the start of history.
	ErrNothingToUndo = fmt.Errorf("nothing to undo: %w", ErrNoOp)

	// ErrNothingToRedo is returned by Redo at the tail of history.
	ErrNothingToRedo = fmt.Errorf("nothing to redo: %w", ErrNoOp)

	// ErrNoTransition is returned by AdvanceTask and RetreatTask at the ends of the status chain.
	ErrNoTransition = fmt.Errorf("no status transition: %w", ErrNoOp)
)

// errUnchanged is returned by commands that would leave the state as it is,
// such as dropping a task onto its own position. Dispatch swallows it.
var errUnchanged = errors.New("unchanged")
