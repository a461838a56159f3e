package serverutils

import (
	"errors"

	"clara-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFromError maps the service error taxonomy to HTTP statuses in one
// place. Anything unrecognized is a 500.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrAlreadyExists):
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperror.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperror.ErrUpstream):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into the response
// envelope, so controllers can just return service errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"code":    fiberErr.Code,
				"message": fiberErr.Message,
			})
		}

		status := StatusFromError(err)
		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    status,
			"message": err.Error(),
		})
	}
}
