package http

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// classify maps a service error onto an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return 404, "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return 400, "bad_request"
	case errors.Is(err, domain.ErrInvalidTransition):
		return 409, "conflict"
	case errors.Is(err, context.DeadlineExceeded):
		return 504, "timeout"
	default:
		return 500, "internal_error"
	}
}

// mapError writes err as an APIError. Internal errors are logged and their
// detail withheld from the client.
func mapError(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	switch status {
	case 404:
		return errNotFound(c, err.Error())
	case 400:
		return errBadRequest(c, err.Error())
	case 409:
		return errConflict(c, err.Error())
	case 500:
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
		return errInternal(c, "internal error")
	default:
		slog.Warn("request failed", "path", c.Path(), "status", status, "error", err)
		return newError(c, status, code, err.Error())
	}
}
