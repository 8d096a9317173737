package handlers

import (
	"context"
	"errors"
	"time"

	"flashdeck/app"

	"github.com/gofiber/fiber/v2"
)

// longPollTimeout bounds how long an events request may hang before the
// client should retry.
const longPollTimeout = 25 * time.Second

// Events is the HTTP face of the reactive-query contract: clients pass the
// last revision they rendered and block until the data changes (or the poll
// times out). On a new revision they refetch whichever lists they display and
// must tolerate those snapshots differing arbitrarily from the previous ones.
func Events(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		since := uint64(c.QueryInt("since", 0))

		ctx, cancel := context.WithTimeout(c.Context(), longPollTimeout)
		defer cancel()

		rev, err := a.Repo.Notifier().AwaitChange(ctx, since)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			// Client went away; nothing to report.
			return nil
		}

		return success(c, fiber.Map{
			"revision": rev,
			"changed":  rev > since,
		})
	}
}
