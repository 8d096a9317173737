package handlers

import (
	"errors"

	"flashdeck/app"
	"flashdeck/models"
	"flashdeck/services"

	"github.com/gofiber/fiber/v2"
)

// GetQuiz returns the current session state: empty, or the presented card.
func GetQuiz(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return success(c, fiber.Map{"quiz": a.Quiz.Current()})
	}
}

// SubmitAnswer checks an answer against the presented card and returns the
// feedback plus the next session state.
func SubmitAnswer(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SubmitAnswerRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		feedback, err := a.Quiz.Submit(req.Answer)
		if errors.Is(err, services.ErrQuizEmpty) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "No card is being presented"})
		}
		if err != nil {
			return serverErrorWithDetails(c, "Failed to submit answer", err)
		}

		return success(c, fiber.Map{"feedback": feedback})
	}
}

// RevealHint shows the pronunciation of the presented card. Valid only while
// a card is presented; the hint hides again when the card changes.
func RevealHint(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := a.Quiz.RevealHint()
		if errors.Is(err, services.ErrQuizEmpty) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "No card is being presented"})
		}
		if err != nil {
			return serverErrorWithDetails(c, "Failed to reveal hint", err)
		}

		return success(c, fiber.Map{"quiz": view})
	}
}
