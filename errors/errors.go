package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrMissingRequiredField = fmt.Errorf("missing required field")
	ErrUnknownField         = fmt.Errorf("unknown field")
	ErrImmutableField       = fmt.Errorf("immutable field")
	ErrInvalidCalc          = fmt.Errorf("invalid calc")
	ErrInvalidFilter        = fmt.Errorf("invalid filter options")
	ErrUnknownComponent     = fmt.Errorf("unknown component")
	ErrEmptyWords           = fmt.Errorf("no words have been found")
	ErrUnsupportedSchema    = fmt.Errorf("unsupported location schema")
)

// FieldError ties a message field to the reason it was rejected.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func MissingRequiredFieldError(field string) error {
	return &FieldError{Field: field, Err: ErrMissingRequiredField}
}

func UnknownFieldError(field string) error {
	return &FieldError{Field: field, Err: ErrUnknownField}
}

func ImmutableFieldError(field string) error {
	return &FieldError{Field: field, Err: ErrImmutableField}
}
