package registry

import (
	"errors"
	"fmt"
)

// Registry sources named in errors and logs.
const (
	SourceCanonical = "canonical"
	SourceSecondary = "secondary"
)

// SchemaError reports a row that does not fit the expected schema.
type SchemaError struct {
	// Source is SourceCanonical or SourceSecondary.
	Source string

	// Line is the 1-based line of the offending row (0 if unknown).
	Line int

	// Message describes the violation.
	Message string
}

func (e *SchemaError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s registry line %d: %s", e.Source, e.Line, e.Message)
	}
	return fmt.Sprintf("%s registry: %s", e.Source, e.Message)
}

// IsSchemaError reports whether err wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

func widthError(source string, line, got, want int) *SchemaError {
	return &SchemaError{
		Source:  source,
		Line:    line,
		Message: fmt.Sprintf("row has %d cells, need at least %d", got, want),
	}
}
