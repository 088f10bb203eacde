package leads

import "errors"

// ErrInvalidLead is returned when a submission fails field validation.
var ErrInvalidLead = errors.New("lead failed validation")

// ValidationError carries the per-field warnings behind ErrInvalidLead.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return ErrInvalidLead.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidLead
}
