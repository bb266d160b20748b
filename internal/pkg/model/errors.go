package model

import "fmt"

// ValidationError reports a required field missing when a record is built.
type ValidationError struct {
	Entity string
	Field  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s is required", e.Entity, e.Field)
}
