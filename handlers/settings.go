package handlers

import (
	"flashdeck/app"
	"flashdeck/models"

	"github.com/gofiber/fiber/v2"
)

// GetSettings returns the current user preferences.
func GetSettings(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return success(c, fiber.Map{"settings": a.Settings.Get()})
	}
}

// UpdateSettings replaces the user preferences.
func UpdateSettings(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.Settings
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationError(c, err)
		}

		if err := a.Settings.Update(req); err != nil {
			return serverErrorWithDetails(c, "Failed to save settings", err)
		}

		return success(c, fiber.Map{"settings": req})
	}
}
