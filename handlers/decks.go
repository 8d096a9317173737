package handlers

import (
	"flashdeck/app"
	"flashdeck/models"

	"github.com/gofiber/fiber/v2"
)

// GetDecks lists every deck along with the deck counts and the current change
// revision; clients re-request when the events endpoint reports a newer one.
func GetDecks(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decks, err := a.Decks.List()
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list decks", err)
		}
		total, active, err := a.Decks.Counts()
		if err != nil {
			return serverErrorWithDetails(c, "Failed to count decks", err)
		}

		return success(c, fiber.Map{
			"decks":             decks,
			"deck_count":        total,
			"active_deck_count": active,
			"revision":          a.Repo.Notifier().Revision(),
		})
	}
}

// CreateDeck adds a new deck, activated by default.
func CreateDeck(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateDeckRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationError(c, err)
		}

		id, err := a.Decks.Create(req.Name)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to create deck", err)
		}

		return created(c, fiber.Map{"id": id})
	}
}

// UpdateDeck renames a deck, toggles its activation, or both.
func UpdateDeck(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return badRequest(c, "Invalid deck id")
		}

		var req models.UpdateDeckRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationError(c, err)
		}
		if req.Name == nil && req.Activated == nil {
			return badRequest(c, "Nothing to update")
		}

		if req.Name != nil {
			if err := a.Decks.Rename(id, *req.Name); err != nil {
				return deckError(c, err, "Failed to rename deck")
			}
		}
		if req.Activated != nil {
			if err := a.Decks.SetActivated(id, *req.Activated); err != nil {
				return deckError(c, err, "Failed to update deck activation")
			}
		}

		return success(c, fiber.Map{"updated": true})
	}
}

// DeleteDeck removes a deck and, through the cascade, all of its cards.
func DeleteDeck(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return badRequest(c, "Invalid deck id")
		}

		if err := a.Decks.Delete(id); err != nil {
			return deckError(c, err, "Failed to delete deck")
		}

		return success(c, fiber.Map{"deleted": true})
	}
}
