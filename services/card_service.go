package services

import (
	"database/sql"
	"errors"

	"flashdeck/models"
)

// CardService handles business logic for cards
type CardService struct {
	repo CardRepository
}

// NewCardService creates a new card service
func NewCardService(repo CardRepository) *CardService {
	return &CardService{repo: repo}
}

// Create adds a card to an existing deck.
func (cs *CardService) Create(deckID int64, word, pronunciation string) (int64, error) {
	deck, err := cs.repo.GetDeck(deckID)
	if err != nil {
		return 0, err
	}
	if deck == nil {
		return 0, ErrDeckNotFound
	}
	return cs.repo.CreateCard(deckID, word, pronunciation)
}

// Update rewrites a card's word and pronunciation.
func (cs *CardService) Update(id int64, word, pronunciation string) error {
	return mapCardErr(cs.repo.UpdateCard(id, word, pronunciation))
}

// Delete removes a single card.
func (cs *CardService) Delete(id int64) error {
	return mapCardErr(cs.repo.DeleteCard(id))
}

// ListForDeck returns all cards in a deck, or ErrDeckNotFound.
func (cs *CardService) ListForDeck(deckID int64) ([]models.Card, error) {
	deck, err := cs.repo.GetDeck(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	return cs.repo.ListCards(deckID)
}

// Search matches the keyword case-insensitively against either side of every
// card.
func (cs *CardService) Search(keyword string) ([]models.Card, error) {
	return cs.repo.SearchCards(keyword)
}

func mapCardErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCardNotFound
	}
	return err
}
