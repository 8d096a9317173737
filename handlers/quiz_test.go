package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// awaitPresenting polls the quiz endpoint until the session picks up the pool;
// the refresh happens on the change feed, not inline with the write.
func awaitPresenting(t *testing.T, fiberApp *fiber.App) map[string]any {
	t.Helper()

	var quiz map[string]any
	require.Eventually(t, func() bool {
		status, payload := request(t, fiberApp, http.MethodGet, "/api/quiz", nil)
		if status != http.StatusOK {
			return false
		}
		quiz = payload["quiz"].(map[string]any)
		return quiz["state"] == "presenting"
	}, 2*time.Second, 10*time.Millisecond)
	return quiz
}

func TestGetQuiz_Empty(t *testing.T) {
	fiberApp, _ := setupTestApp(t)

	status, payload := request(t, fiberApp, http.MethodGet, "/api/quiz", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "empty", payload["quiz"].(map[string]any)["state"])
}

func TestSubmitAnswer_EmptySession(t *testing.T) {
	fiberApp, _ := setupTestApp(t)

	status, _ := request(t, fiberApp, http.MethodPost, "/api/quiz/answer", fiber.Map{"answer": "neko"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = request(t, fiberApp, http.MethodPost, "/api/quiz/hint", nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestSubmitAnswer(t *testing.T) {
	fiberApp, _ := setupTestApp(t)
	deckID := createDeck(t, fiberApp, "animals")
	createCard(t, fiberApp, deckID, "猫", "neko")

	quiz := awaitPresenting(t, fiberApp)
	assert.Equal(t, "猫", quiz["word"])

	status, payload := request(t, fiberApp, http.MethodPost, "/api/quiz/answer", fiber.Map{"answer": "wrong"})
	require.Equal(t, http.StatusOK, status)
	feedback := payload["feedback"].(map[string]any)
	assert.Equal(t, false, feedback["correct"])

	status, payload = request(t, fiberApp, http.MethodPost, "/api/quiz/answer", fiber.Map{"answer": " neko "})
	require.Equal(t, http.StatusOK, status)
	feedback = payload["feedback"].(map[string]any)
	assert.Equal(t, true, feedback["correct"])
	assert.Equal(t, "presenting", feedback["next"].(map[string]any)["state"])
}

func TestRevealHint(t *testing.T) {
	fiberApp, _ := setupTestApp(t)
	deckID := createDeck(t, fiberApp, "animals")
	createCard(t, fiberApp, deckID, "猫", "neko")
	awaitPresenting(t, fiberApp)

	status, payload := request(t, fiberApp, http.MethodPost, "/api/quiz/hint", nil)
	require.Equal(t, http.StatusOK, status)

	quiz := payload["quiz"].(map[string]any)
	assert.Equal(t, true, quiz["hint_shown"])
	assert.Equal(t, "neko", quiz["hint"])
}

func TestQuiz_FollowsDeckDeactivation(t *testing.T) {
	fiberApp, _ := setupTestApp(t)
	deckID := createDeck(t, fiberApp, "animals")
	createCard(t, fiberApp, deckID, "猫", "neko")
	awaitPresenting(t, fiberApp)

	status, _ := request(t, fiberApp, http.MethodPut, deckPath(deckID), fiber.Map{"activated": false})
	require.Equal(t, http.StatusOK, status)

	require.Eventually(t, func() bool {
		_, payload := request(t, fiberApp, http.MethodGet, "/api/quiz", nil)
		return payload["quiz"].(map[string]any)["state"] == "empty"
	}, 2*time.Second, 10*time.Millisecond)
}
