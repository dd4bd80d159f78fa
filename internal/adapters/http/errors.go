package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/refpoint/internal/core/domain"
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
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: requestID(c),
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errConflict returns a 409 error with a specific code.
func errConflict(c *fiber.Ctx, code, msg string) error {
	return newError(c, 409, code, msg)
}

// errUnavailable returns a 503 error with a specific code.
func errUnavailable(c *fiber.Ctx, code, msg string) error {
	return newError(c, 503, code, msg)
}

// domainError maps a domain failure that aborts the request to an APIError.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate), errors.Is(err, domain.ErrInvalidSession):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrMissingReferencePoint):
		return errConflict(c, "missing_reference_point", err.Error())
	case errors.Is(err, domain.ErrNoPickTarget):
		return errConflict(c, "no_pick_target", err.Error())
	case errors.Is(err, domain.ErrPositioningUnavailable):
		return errUnavailable(c, "positioning_unavailable", err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
		return errInternal(c, err.Error())
	}
}
