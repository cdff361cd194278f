package serverutils

import (
	"errors"

	"arcana-be/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors returned by controllers into
// the JSON error envelope, mapping taxonomy kinds to status codes.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		status := apperr.HTTPStatus(err)
		message := err.Error()
		if kind := apperr.KindOf(err); kind == apperr.KindAuthExpired {
			message = "reconnect-required"
		}

		return c.Status(status).JSON(ErrorResponse(status, message))
	}
}
