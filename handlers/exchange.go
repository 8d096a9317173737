package handlers

import (
	"bytes"
	"errors"

	"flashdeck/app"
	"flashdeck/config"
	"flashdeck/models"
	"flashdeck/services"

	"github.com/gofiber/fiber/v2"
)

// ExportDeck streams a deck as an interchange document. The read is a
// point-in-time snapshot, not a subscription.
func ExportDeck(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deckID, err := idParam(c)
		if err != nil {
			return badRequest(c, "Invalid deck id")
		}

		var buf bytes.Buffer
		if err := a.Exchange.Export(&buf, deckID); err != nil {
			return deckError(c, err, "Failed to export deck")
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="deck.json"`)
		return c.Send(buf.Bytes())
	}
}

// ImportDeck accepts an interchange document and imports it as a background
// job; the response carries the job id to poll.
func ImportDeck(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := make([]byte, len(c.Body()))
		copy(body, c.Body())
		if len(body) == 0 {
			return badRequest(c, "Request body is required")
		}

		job := a.Jobs.Enqueue("import", func() (int64, error) {
			return a.Exchange.Import(bytes.NewReader(body))
		})

		return accepted(c, fiber.Map{"job": job})
	}
}

// GetJob reports the state of a background exchange job.
func GetJob(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, ok := a.Jobs.Job(c.Params("id"))
		if !ok {
			return notFound(c, "Job not found")
		}
		return success(c, fiber.Map{"job": job})
	}
}

// BrowseCatalog fetches the configured remote deck catalog. A fetch or parse
// failure degrades to an explicit error payload rather than a crash.
func BrowseCatalog(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		catalog, err := a.Exchange.FetchCatalog(config.AppConfig.CatalogURL)
		if err != nil {
			return exchangeError(c, err)
		}
		return success(c, fiber.Map{"catalog": catalog})
	}
}

// ImportFromURL fetches a catalog entry's deck document and imports it, as a
// background job.
func ImportFromURL(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ImportFromURLRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationError(c, err)
		}

		job := a.Jobs.Enqueue("import-url", func() (int64, error) {
			return a.Exchange.ImportFromURL(req.URL)
		})

		return accepted(c, fiber.Map{"job": job})
	}
}

func exchangeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrMalformedDeck):
		return badRequest(c, err.Error())
	case errors.Is(err, services.ErrDeckFetch):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	default:
		return serverErrorWithDetails(c, "Exchange operation failed", err)
	}
}
