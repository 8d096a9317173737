package database

import (
	"database/sql"
	"fmt"

	"flashdeck/models"
)

// Repository is the single point through which all other components read and
// write persisted state. Every successful write broadcasts a change
// notification so reactive consumers can refetch their snapshots.
type Repository struct {
	db       *DB
	notifier *Notifier
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db, notifier: NewNotifier()}
}

// Notifier exposes the change feed for subscription-style queries.
func (r *Repository) Notifier() *Notifier {
	return r.notifier
}

// ==================== DECKS ====================

// CreateDeck inserts a deck with activated=true and returns its id.
func (r *Repository) CreateDeck(name string) (int64, error) {
	res, err := r.db.Exec("INSERT INTO decks (name, activated) VALUES (?, 1)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to create deck: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new deck id: %w", err)
	}
	r.notifier.Broadcast()
	return id, nil
}

func (r *Repository) GetDeck(id int64) (*models.Deck, error) {
	var deck models.Deck
	err := r.db.Get(&deck, "SELECT id, name, activated FROM decks WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return &deck, nil
}

func (r *Repository) ListDecks() ([]models.Deck, error) {
	decks := make([]models.Deck, 0)
	err := r.db.Select(&decks, "SELECT id, name, activated FROM decks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

func (r *Repository) RenameDeck(id int64, name string) error {
	res, err := r.db.Exec("UPDATE decks SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("failed to rename deck: %w", err)
	}
	return r.finishWrite(res)
}

func (r *Repository) SetDeckActivated(id int64, activated bool) error {
	res, err := r.db.Exec("UPDATE decks SET activated = ? WHERE id = ?", activated, id)
	if err != nil {
		return fmt.Errorf("failed to update deck activation: %w", err)
	}
	return r.finishWrite(res)
}

// DeleteDeck removes a deck; the foreign key cascades the delete to every
// card whose deckId references it, atomically.
func (r *Repository) DeleteDeck(id int64) error {
	res, err := r.db.Exec("DELETE FROM decks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return r.finishWrite(res)
}

func (r *Repository) DeckCount() (int, error) {
	var count int
	if err := r.db.Get(&count, "SELECT COUNT(*) FROM decks"); err != nil {
		return 0, fmt.Errorf("failed to count decks: %w", err)
	}
	return count, nil
}

func (r *Repository) ActiveDeckCount() (int, error) {
	var count int
	if err := r.db.Get(&count, "SELECT COUNT(*) FROM decks WHERE activated = 1"); err != nil {
		return 0, fmt.Errorf("failed to count active decks: %w", err)
	}
	return count, nil
}

// ==================== CARDS ====================

func (r *Repository) CreateCard(deckID int64, word, pronunciation string) (int64, error) {
	res, err := r.db.Exec(
		"INSERT INTO cards (deckId, word, pronunciation) VALUES (?, ?, ?)",
		deckID, word, pronunciation,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new card id: %w", err)
	}
	r.notifier.Broadcast()
	return id, nil
}

func (r *Repository) GetCard(id int64) (*models.Card, error) {
	var card models.Card
	err := r.db.Get(&card, "SELECT id, deckId, word, pronunciation FROM cards WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

func (r *Repository) UpdateCard(id int64, word, pronunciation string) error {
	res, err := r.db.Exec(
		"UPDATE cards SET word = ?, pronunciation = ? WHERE id = ?",
		word, pronunciation, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return r.finishWrite(res)
}

func (r *Repository) DeleteCard(id int64) error {
	res, err := r.db.Exec("DELETE FROM cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return r.finishWrite(res)
}

func (r *Repository) ListCards(deckID int64) ([]models.Card, error) {
	cards := make([]models.Card, 0)
	err := r.db.Select(&cards,
		"SELECT id, deckId, word, pronunciation FROM cards WHERE deckId = ? ORDER BY id", deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// ListActiveCards returns the quiz pool: every card whose parent deck is
// activated.
func (r *Repository) ListActiveCards() ([]models.Card, error) {
	cards := make([]models.Card, 0)
	err := r.db.Select(&cards, `
		SELECT cards.id, cards.deckId, cards.word, cards.pronunciation
		FROM cards
		JOIN decks ON cards.deckId = decks.id
		WHERE decks.activated = 1
		ORDER BY cards.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active cards: %w", err)
	}
	return cards, nil
}

// SearchCards matches the keyword as a case-insensitive substring of either
// the word or the pronunciation.
func (r *Repository) SearchCards(keyword string) ([]models.Card, error) {
	cards := make([]models.Card, 0)
	pattern := "%" + keyword + "%"
	err := r.db.Select(&cards, `
		SELECT id, deckId, word, pronunciation FROM cards
		WHERE LOWER(word) LIKE LOWER(?) OR LOWER(pronunciation) LIKE LOWER(?)
		ORDER BY id`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	return cards, nil
}

// ==================== EXCHANGE ====================

// DeckWithCards reads a deck and its cards in one transaction, giving export a
// consistent point-in-time snapshot rather than a subscription.
func (r *Repository) DeckWithCards(deckID int64) (*models.Deck, []models.Card, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin snapshot read: %w", err)
	}
	defer tx.Rollback()

	var deck models.Deck
	err = tx.Get(&deck, "SELECT id, name, activated FROM decks WHERE id = ?", deckID)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read deck: %w", err)
	}

	cards := make([]models.Card, 0)
	err = tx.Select(&cards,
		"SELECT id, deckId, word, pronunciation FROM cards WHERE deckId = ? ORDER BY id", deckID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read deck cards: %w", err)
	}
	return &deck, cards, nil
}

// ImportDeck creates a new deck with the given cards, all or nothing. A
// failure part-way promotes no state.
func (r *Repository) ImportDeck(name string, cards []models.ExportedCard) (int64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("INSERT INTO decks (name, activated) VALUES (?, 1)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to create imported deck: %w", err)
	}
	deckID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read imported deck id: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO cards (deckId, word, pronunciation) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare card insert: %w", err)
	}
	defer stmt.Close()

	for _, card := range cards {
		if _, err := stmt.Exec(deckID, card.Word, card.Pronunciation); err != nil {
			return 0, fmt.Errorf("failed to import card %q: %w", card.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	r.notifier.Broadcast()
	return deckID, nil
}

// finishWrite converts a zero-row update or delete into sql.ErrNoRows and
// broadcasts otherwise. The service layer maps ErrNoRows to its NotFound
// sentinels.
func (r *Repository) finishWrite(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	r.notifier.Broadcast()
	return nil
}
