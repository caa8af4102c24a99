package board

import (
	"fmt"
	"strings"

	"github.com/amonks/kanban/internal/validation"
)

// ValidateTitle checks if the title is valid.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, len(title), MaxTitleLength)
	}
	return nil
}

// ValidateProgress checks if the progress percentage is within 0-100.
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidProgress, progress)
	}
	return nil
}

// ValidatePriority checks if the priority is a known value.
func ValidatePriority(p Priority) error {
	if !p.IsValid() {
		return validation.InvalidValue(ErrInvalidPriority, p, ValidPriorities())
	}
	return nil
}

// ValidateStatus checks if the status is a known value.
func ValidateStatus(s Status) error {
	if !s.IsValid() {
		return validation.InvalidValue(ErrInvalidStatus, s, StatusOrder())
	}
	return nil
}

// ValidateFilter checks if the filter is a known value.
func ValidateFilter(f Filter) error {
	if !f.IsValid() {
		return validation.InvalidValue(ErrInvalidFilter, f, ValidFilters())
	}
	return nil
}

// ValidateColor checks if the color is a #rrggbb hex value.
func ValidateColor(color string) error {
	if len(color) != 7 || color[0] != '#' {
		return fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	for _, c := range color[1:] {
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		if !isHex {
			return fmt.Errorf("%w: %q", ErrInvalidColor, color)
		}
	}
	return nil
}

// ValidateTask checks the fields of a task that do not depend on the rest of the board.
func ValidateTask(t *Task) error {
	if t.ID == "" {
		return fmt.Errorf("%w: task id cannot be empty", ErrInvalidArgument)
	}
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if err := ValidateStatus(t.Status); err != nil {
		return err
	}
	if err := ValidatePriority(t.Priority); err != nil {
		return err
	}
	if err := ValidateProgress(t.Progress); err != nil {
		return err
	}
	if t.Position < 0 {
		return fmt.Errorf("%w: task %s has position %d", ErrInvalidPosition, t.ID, t.Position)
	}
	return nil
}

// ValidateCategory checks the fields of a category.
func ValidateCategory(c *Category) error {
	if c.ID == "" {
		return fmt.Errorf("%w: category id cannot be empty", ErrInvalidArgument)
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return ValidateColor(c.Color)
}

func validateFields(f TaskFields) error {
	if err := ValidateTitle(f.Title); err != nil {
		return err
	}
	if f.Priority != "" {
		if err := ValidatePriority(f.Priority); err != nil {
			return err
		}
	}
	return ValidateProgress(f.Progress)
}

func validatePatch(p TaskPatch) error {
	switch {
	case p.ID != nil:
		return fmt.Errorf("%w: id", ErrImmutableField)
	case p.CreatedAt != nil:
		return fmt.Errorf("%w: createdAt", ErrImmutableField)
	case p.Category != nil:
		return fmt.Errorf("%w: category (use MoveTask)", ErrImmutableField)
	case p.Status != nil:
		return fmt.Errorf("%w: status (use MoveTask)", ErrImmutableField)
	case p.Position != nil:
		return fmt.Errorf("%w: position (use MoveTask)", ErrImmutableField)
	}
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if err := ValidatePriority(*p.Priority); err != nil {
			return err
		}
	}
	if p.Progress != nil {
		if err := ValidateProgress(*p.Progress); err != nil {
			return err
		}
	}
	return nil
}
