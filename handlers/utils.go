package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"flashdeck/services"
	"flashdeck/validator"

	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, data fiber.Map) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func accepted(c *fiber.Ctx, data fiber.Map) error {
	return c.Status(fiber.StatusAccepted).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

func serverErrorWithDetails(c *fiber.Ctx, message string, err error) error {
	requestID := ""
	if id, ok := c.Locals("requestID").(string); ok {
		requestID = id
	}

	slog.Error("server error",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"message", message,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

// validationError renders validator output as a 400 with field details.
func validationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": verrs,
		})
	}
	return badRequest(c, err.Error())
}

// idParam parses the :id route parameter.
func idParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// deckError maps service sentinels onto HTTP statuses; anything else is a
// storage error.
func deckError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, services.ErrDeckNotFound):
		return notFound(c, "Deck not found")
	case errors.Is(err, services.ErrCardNotFound):
		return notFound(c, "Card not found")
	default:
		return serverErrorWithDetails(c, message, err)
	}
}
