package handlers

import (
	"flashdeck/app"
	"flashdeck/models"

	"github.com/gofiber/fiber/v2"
)

// GetDeckCards lists the cards of one deck.
func GetDeckCards(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deckID, err := idParam(c)
		if err != nil {
			return badRequest(c, "Invalid deck id")
		}

		cards, err := a.Cards.ListForDeck(deckID)
		if err != nil {
			return deckError(c, err, "Failed to list cards")
		}

		return success(c, fiber.Map{"cards": cards})
	}
}

// CreateCard adds a card to an existing deck.
func CreateCard(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateCardRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationError(c, err)
		}

		id, err := a.Cards.Create(req.DeckID, req.Word, req.Pronunciation)
		if err != nil {
			return deckError(c, err, "Failed to create card")
		}

		return created(c, fiber.Map{"id": id})
	}
}

// UpdateCard rewrites a card's word and pronunciation.
func UpdateCard(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return badRequest(c, "Invalid card id")
		}

		var req models.UpdateCardRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationError(c, err)
		}

		if err := a.Cards.Update(id, req.Word, req.Pronunciation); err != nil {
			return deckError(c, err, "Failed to update card")
		}

		return success(c, fiber.Map{"updated": true})
	}
}

// DeleteCard removes a single card.
func DeleteCard(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return badRequest(c, "Invalid card id")
		}

		if err := a.Cards.Delete(id); err != nil {
			return deckError(c, err, "Failed to delete card")
		}

		return success(c, fiber.Map{"deleted": true})
	}
}

// SearchCards matches a keyword case-insensitively against word and
// pronunciation across all decks.
func SearchCards(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		keyword := c.Query("q")
		if keyword == "" {
			return badRequest(c, "q is required")
		}

		cards, err := a.Cards.Search(keyword)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to search cards", err)
		}

		return success(c, fiber.Map{"cards": cards})
	}
}
