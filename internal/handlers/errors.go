package handlers

import (
	"errors"

	"tanam/internal/repositories"
	"tanam/internal/services"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps the service error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrCancellationFailed):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, repositories.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, message string, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
