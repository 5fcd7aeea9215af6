package serverutils

import (
	"errors"

	"formhive-be/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates domain errors to HTTP statuses.
// Anything unrecognized becomes a 500 so webhook providers and clients
// retry; storage details never reach the response body.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		code := fiber.StatusInternalServerError
		message := "internal server error"

		switch {
		case errors.Is(err, apperr.ErrNotFound):
			code = fiber.StatusNotFound
			message = err.Error()
		case errors.Is(err, apperr.ErrAlreadyCancelled),
			errors.Is(err, apperr.ErrConflict):
			code = fiber.StatusConflict
			message = err.Error()
		case errors.Is(err, apperr.ErrInvalidSignature):
			code = fiber.StatusBadRequest
			message = "invalid signature"
		case errors.Is(err, apperr.ErrInvariantViolation):
			code = fiber.StatusUnprocessableEntity
			message = err.Error()
		case errors.Is(err, apperr.ErrTransientProvider):
			code = fiber.StatusServiceUnavailable
			message = "payment provider unavailable, retry later"
		case errors.Is(err, apperr.ErrLimitExceeded):
			code = fiber.StatusForbidden
			message = err.Error()
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
