package services

import (
	"bytes"
	"path/filepath"
	"testing"

	"flashdeck/database"
	"flashdeck/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Export then import against a real store: the copy carries the same name and
// cards, with fresh ids and activation on.
func TestExchange_RoundTrip(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	repo := database.NewRepository(db)
	es := NewExchangeService(repo, &notify.Recorder{}, nil)

	deckID, err := repo.CreateDeck("Animals")
	require.NoError(t, err)
	_, err = repo.CreateCard(deckID, "猫", "neko")
	require.NoError(t, err)
	_, err = repo.CreateCard(deckID, "犬", "inu")
	require.NoError(t, err)
	require.NoError(t, repo.SetDeckActivated(deckID, false))

	var buf bytes.Buffer
	require.NoError(t, es.Export(&buf, deckID))

	copyID, err := es.Import(&buf)
	require.NoError(t, err)
	require.NotEqual(t, deckID, copyID)

	copied, err := repo.GetDeck(copyID)
	require.NoError(t, err)
	assert.Equal(t, "Animals", copied.Name)
	assert.True(t, copied.Activated, "activation is not part of the interchange format")

	original, err := repo.ListCards(deckID)
	require.NoError(t, err)
	cards, err := repo.ListCards(copyID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for i := range cards {
		assert.Equal(t, original[i].Word, cards[i].Word)
		assert.Equal(t, original[i].Pronunciation, cards[i].Pronunciation)
		assert.NotEqual(t, original[i].ID, cards[i].ID)
	}
}
