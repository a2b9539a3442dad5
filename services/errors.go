// services/errors.go - Service error taxonomy
package services

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error carries an HTTP status alongside a user-facing message.
// Handlers translate it into a {"message": ...} body without inspecting
// the failure further.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Invalid(format string, args ...interface{}) *Error {
	return &Error{Status: fiber.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Status: fiber.StatusUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Status: fiber.StatusForbidden, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Status: fiber.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict maps to 400: uniqueness violations, non-empty dependencies
// and already-processed requests surface as bad requests.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Status: fiber.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Storage covers record/disk divergence: the row exists but the file
// behind it does not.
func Storage(format string, args ...interface{}) *Error {
	return &Error{Status: fiber.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func Internal(format string, args ...interface{}) *Error {
	return &Error{Status: fiber.StatusInternalServerError, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a *Error when err carries one.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
