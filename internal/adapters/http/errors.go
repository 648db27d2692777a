package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/marinewx/seatemp/internal/core/domain"
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
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// respondError maps a service error onto the REST envelope. Causes of
// internal failures are logged, never returned.
func respondError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return errBadRequest(c, ve.Message)
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "report not found")
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return errInternal(c, "internal error")
	}
}
