// Package apierrors defines the error taxonomy the service layer raises and
// the global Fiber error handler that renders every error as a structured
// JSON response.
package apierrors

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Error is an HTTP-mapped error raised by services, handlers and middleware.
type Error struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with an arbitrary status code.
func New(statusCode int, message string) *Error {
	return &Error{StatusCode: statusCode, Message: message}
}

// BadRequest signals malformed or missing required input.
func BadRequest(message string) *Error {
	return New(fiber.StatusBadRequest, message)
}

// Unauthorized signals an authentication or authorization failure.
func Unauthorized(message string) *Error {
	return New(fiber.StatusUnauthorized, message)
}

// NotFound signals that no matching record exists.
func NotFound(message string) *Error {
	return New(fiber.StatusNotFound, message)
}

// Conflict signals a uniqueness violation.
func Conflict(message string) *Error {
	return New(fiber.StatusConflict, message)
}

// Internal wraps an unexpected failure, preserving the original message.
func Internal(message string) *Error {
	return New(fiber.StatusInternalServerError, message)
}

// FromError passes structured errors through unchanged and wraps anything
// else into an Internal error carrying the original message.
func FromError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err.Error())
}

// ErrorHandler is the global Fiber error handler. Every error returned from
// a handler or middleware ends up here and is rendered as
// {statusCode, timestamp, path, message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	var apiErr *Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.StatusCode
		message = apiErr.Message
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(status).JSON(fiber.Map{
		"statusCode": status,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"path":       c.Path(),
		"message":    message,
	})
}
