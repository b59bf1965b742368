package webform

import "fmt"

// FieldNotVisibleError indicates a field never became visible within the
// polling window.
type FieldNotVisibleError struct {
	Field string
}

func (e *FieldNotVisibleError) Error() string {
	return fmt.Sprintf("field %q did not become visible", e.Field)
}

// FieldValidationError indicates the form rejected a filled value. It aborts
// the row: submitting a rejected row would waste an attempt.
type FieldValidationError struct {
	Field   string
	Message string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("field %q failed validation: %s", e.Field, e.Message)
}

// SubmitButtonNotFoundError indicates none of the submit selector candidates
// matched a visible element.
type SubmitButtonNotFoundError struct{}

func (e *SubmitButtonNotFoundError) Error() string {
	return "submit button not found"
}
