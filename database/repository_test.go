package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"flashdeck/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate())
	return NewRepository(db)
}

func TestRepository_DeckCRUD(t *testing.T) {
	repo := setupTestRepo(t)

	id, err := repo.CreateDeck("JLPT N5")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	deck, err := repo.GetDeck(id)
	require.NoError(t, err)
	require.NotNil(t, deck)
	assert.Equal(t, "JLPT N5", deck.Name)
	assert.True(t, deck.Activated, "new decks start activated")

	require.NoError(t, repo.RenameDeck(id, "JLPT N4"))
	require.NoError(t, repo.SetDeckActivated(id, false))

	deck, err = repo.GetDeck(id)
	require.NoError(t, err)
	assert.Equal(t, "JLPT N4", deck.Name)
	assert.False(t, deck.Activated)

	require.NoError(t, repo.DeleteDeck(id))
	deck, err = repo.GetDeck(id)
	require.NoError(t, err)
	assert.Nil(t, deck)
}

func TestRepository_BlankDeckNameAllowed(t *testing.T) {
	repo := setupTestRepo(t)

	id, err := repo.CreateDeck("")
	require.NoError(t, err)

	deck, err := repo.GetDeck(id)
	require.NoError(t, err)
	assert.Equal(t, "", deck.Name)
}

func TestRepository_MissingIdsReportNoRows(t *testing.T) {
	repo := setupTestRepo(t)

	assert.ErrorIs(t, repo.RenameDeck(999, "x"), sql.ErrNoRows)
	assert.ErrorIs(t, repo.SetDeckActivated(999, true), sql.ErrNoRows)
	assert.ErrorIs(t, repo.DeleteDeck(999), sql.ErrNoRows)
	assert.ErrorIs(t, repo.UpdateCard(999, "x", "y"), sql.ErrNoRows)
	assert.ErrorIs(t, repo.DeleteCard(999), sql.ErrNoRows)
}

func TestRepository_CascadeDeletesExactly(t *testing.T) {
	repo := setupTestRepo(t)

	keep, err := repo.CreateDeck("keep")
	require.NoError(t, err)
	doomed, err := repo.CreateDeck("doomed")
	require.NoError(t, err)

	keptCard, err := repo.CreateCard(keep, "猫", "neko")
	require.NoError(t, err)
	_, err = repo.CreateCard(doomed, "犬", "inu")
	require.NoError(t, err)
	_, err = repo.CreateCard(doomed, "鳥", "tori")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteDeck(doomed))

	// Exactly the doomed deck's cards are gone; the other deck is intact.
	cards, err := repo.ListCards(doomed)
	require.NoError(t, err)
	assert.Empty(t, cards)

	cards, err = repo.ListCards(keep)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, keptCard, cards[0].ID)
}

func TestRepository_CardForeignKeyEnforced(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.CreateCard(12345, "猫", "neko")
	assert.Error(t, err, "a card cannot exist without a parent deck")
}

func TestRepository_ActivePool(t *testing.T) {
	repo := setupTestRepo(t)

	on, err := repo.CreateDeck("on")
	require.NoError(t, err)
	off, err := repo.CreateDeck("off")
	require.NoError(t, err)

	_, err = repo.CreateCard(on, "猫", "neko")
	require.NoError(t, err)
	_, err = repo.CreateCard(off, "犬", "inu")
	require.NoError(t, err)

	require.NoError(t, repo.SetDeckActivated(off, false))

	active, err := repo.ListActiveCards()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "猫", active[0].Word)

	// Reactivation grows the pool again.
	require.NoError(t, repo.SetDeckActivated(off, true))
	active, err = repo.ListActiveCards()
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestRepository_Counts(t *testing.T) {
	repo := setupTestRepo(t)

	a, err := repo.CreateDeck("a")
	require.NoError(t, err)
	_, err = repo.CreateDeck("b")
	require.NoError(t, err)
	require.NoError(t, repo.SetDeckActivated(a, false))

	total, err := repo.DeckCount()
	require.NoError(t, err)
	active, err := repo.ActiveDeckCount()
	require.NoError(t, err)

	assert.Equal(t, 2, total)
	assert.Equal(t, 1, active)
}

func TestRepository_SearchCards(t *testing.T) {
	repo := setupTestRepo(t)

	deckID, err := repo.CreateDeck("animals")
	require.NoError(t, err)
	_, err = repo.CreateCard(deckID, "猫", "neko")
	require.NoError(t, err)
	_, err = repo.CreateCard(deckID, "犬", "inu")
	require.NoError(t, err)

	// Substring match against the pronunciation side.
	cards, err := repo.SearchCards("ne")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "猫", cards[0].Word)

	// Match against the word side.
	cards, err = repo.SearchCards("犬")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "inu", cards[0].Pronunciation)

	// Case-insensitive.
	cards, err = repo.SearchCards("NEKO")
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	cards, err = repo.SearchCards("zzz")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestRepository_DeckWithCardsSnapshot(t *testing.T) {
	repo := setupTestRepo(t)

	deckID, err := repo.CreateDeck("snapshot")
	require.NoError(t, err)
	_, err = repo.CreateCard(deckID, "猫", "neko")
	require.NoError(t, err)

	deck, cards, err := repo.DeckWithCards(deckID)
	require.NoError(t, err)
	require.NotNil(t, deck)
	assert.Equal(t, "snapshot", deck.Name)
	require.Len(t, cards, 1)

	deck, cards, err = repo.DeckWithCards(999)
	require.NoError(t, err)
	assert.Nil(t, deck)
	assert.Nil(t, cards)
}

func TestRepository_ImportDeck(t *testing.T) {
	repo := setupTestRepo(t)

	deckID, err := repo.ImportDeck("Animals", []models.ExportedCard{
		{Word: "猫", Pronunciation: "neko"},
		{Word: "犬", Pronunciation: "inu"},
	})
	require.NoError(t, err)

	deck, err := repo.GetDeck(deckID)
	require.NoError(t, err)
	assert.Equal(t, "Animals", deck.Name)
	assert.True(t, deck.Activated)

	cards, err := repo.ListCards(deckID)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestRepository_ImportDeckNoDeduplication(t *testing.T) {
	repo := setupTestRepo(t)

	first, err := repo.ImportDeck("Animals", []models.ExportedCard{{Word: "猫", Pronunciation: "neko"}})
	require.NoError(t, err)
	second, err := repo.ImportDeck("Animals", []models.ExportedCard{{Word: "猫", Pronunciation: "neko"}})
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "importing never merges into an existing deck")

	total, err := repo.DeckCount()
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestRepository_WritesBroadcastChanges(t *testing.T) {
	repo := setupTestRepo(t)
	notifier := repo.Notifier()

	before := notifier.Revision()
	deckID, err := repo.CreateDeck("watched")
	require.NoError(t, err)
	assert.Greater(t, notifier.Revision(), before)

	// A subscriber waiting on the feed wakes up on the next write.
	done := make(chan uint64, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rev, _ := notifier.AwaitChange(ctx, notifier.Revision())
		done <- rev
	}()

	time.Sleep(20 * time.Millisecond)
	_, err = repo.CreateCard(deckID, "猫", "neko")
	require.NoError(t, err)

	select {
	case rev := <-done:
		assert.Equal(t, notifier.Revision(), rev)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber was not notified of the write")
	}
}
