package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"flashdeck/app"
	"flashdeck/database"
	"flashdeck/notify"
	"flashdeck/services"
	"flashdeck/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// setupTestApp wires the whole API over a throwaway database, mirroring the
// route table the server registers.
func setupTestApp(t *testing.T) (*fiber.App, *app.App) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	repo := database.NewRepository(db)

	store, err := settings.NewStore(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	exchange := services.NewExchangeService(repo, &notify.Recorder{}, nil)

	jobs := services.NewExchangeWorker(logger)
	jobs.Start()
	t.Cleanup(jobs.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	quiz := services.NewQuizService(repo, store)
	quiz.Start(ctx, repo.Notifier(), logger)

	application := app.New(repo, quiz, exchange, jobs, store, logger)

	fiberApp := fiber.New()
	api := fiberApp.Group("/api")
	api.Get("/decks", GetDecks(application))
	api.Post("/decks", CreateDeck(application))
	api.Put("/decks/:id", UpdateDeck(application))
	api.Delete("/decks/:id", DeleteDeck(application))
	api.Get("/decks/:id/cards", GetDeckCards(application))
	api.Get("/decks/:id/export", ExportDeck(application))
	api.Post("/cards", CreateCard(application))
	api.Put("/cards/:id", UpdateCard(application))
	api.Delete("/cards/:id", DeleteCard(application))
	api.Get("/cards/search", SearchCards(application))
	api.Get("/quiz", GetQuiz(application))
	api.Post("/quiz/answer", SubmitAnswer(application))
	api.Post("/quiz/hint", RevealHint(application))
	api.Post("/import", ImportDeck(application))
	api.Get("/jobs/:id", GetJob(application))
	api.Get("/browse", BrowseCatalog(application))
	api.Post("/browse/import", ImportFromURL(application))
	api.Get("/settings", GetSettings(application))
	api.Put("/settings", UpdateSettings(application))
	api.Get("/events", Events(application))

	return fiberApp, application
}

// request performs one API call and decodes the JSON response, if any.
func request(t *testing.T, fiberApp *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp.StatusCode, payload
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// createDeck is a shortcut for tests that need an existing deck.
func createDeck(t *testing.T, fiberApp *fiber.App, name string) int64 {
	t.Helper()

	status, payload := request(t, fiberApp, http.MethodPost, "/api/decks", fiber.Map{"name": name})
	require.Equal(t, http.StatusCreated, status)
	return int64(payload["id"].(float64))
}

// createCard is a shortcut for tests that need an existing card.
func createCard(t *testing.T, fiberApp *fiber.App, deckID int64, word, pronunciation string) int64 {
	t.Helper()

	status, payload := request(t, fiberApp, http.MethodPost, "/api/cards", fiber.Map{
		"deck_id":       deckID,
		"word":          word,
		"pronunciation": pronunciation,
	})
	require.Equal(t, http.StatusCreated, status)
	return int64(payload["id"].(float64))
}
