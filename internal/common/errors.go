package common

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
)

// Error kinds surfaced by the services. Wrap them with fmt.Errorf("...: %w")
// and classify with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidValue = errors.New("invalid value")
	ErrInvalidState = errors.New("invalid state")
)

// NotFound reports a missing resource, e.g. NotFound("table", id)
func NotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// NotFoundError names the resource that could not be found
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Resource, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// InvalidValue reports malformed input for field
func InvalidValue(field, format string, args ...any) error {
	return &FieldError{Field: field, err: fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidValue)}
}

// InvalidState reports an operation that is illegal for the current status
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidState)
}

// FieldError carries the name of the offending request field
type FieldError struct {
	Field string
	err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.err
}

// RespondError writes the error envelope matching err's kind. resource names
// the entity in logs and in not found messages that do not carry their own.
func RespondError(c echo.Context, resource string, err error) error {
	var fieldErr *FieldError
	var notFound *NotFoundError
	switch {
	case errors.As(err, &notFound):
		return SendNotFoundError(c, notFound.Resource)
	case errors.Is(err, ErrNotFound):
		return SendNotFoundError(c, resource)
	case errors.As(err, &fieldErr):
		return SendValidationError(c, fieldErr.Field, fieldErr.err.Error())
	case errors.Is(err, ErrInvalidValue):
		return SendValidationError(c, resource, err.Error())
	case errors.Is(err, ErrInvalidState):
		return SendClientError(c, err.Error())
	default:
		c.Logger().Errorf("%s request failed: %v", resource, err)
		return SendServerError(c, "Internal server error")
	}
}
