// Package validation builds errors for string enums such as statuses,
// priorities and filters.
package validation

import (
	"fmt"
	"strings"
)

// ValueList joins enum values for messages and flag help.
func ValueList[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = string(value)
	}
	return strings.Join(out, ", ")
}

// InvalidValue wraps base with the rejected value and the accepted ones.
func InvalidValue[T ~string](base error, value T, valid []T) error {
	return fmt.Errorf("%w: %q (valid: %s)", base, value, ValueList(valid))
}
