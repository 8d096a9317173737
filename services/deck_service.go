package services

import (
	"database/sql"
	"errors"

	"flashdeck/models"
)

// DeckService handles business logic for decks
type DeckService struct {
	repo DeckRepository
}

// NewDeckService creates a new deck service
func NewDeckService(repo DeckRepository) *DeckService {
	return &DeckService{repo: repo}
}

// Create inserts a new deck, activated by default. A blank name is allowed;
// surfaces render it as "Unnamed".
func (ds *DeckService) Create(name string) (int64, error) {
	return ds.repo.CreateDeck(name)
}

// Get returns a deck or ErrDeckNotFound.
func (ds *DeckService) Get(id int64) (*models.Deck, error) {
	deck, err := ds.repo.GetDeck(id)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	return deck, nil
}

// List returns all decks.
func (ds *DeckService) List() ([]models.Deck, error) {
	return ds.repo.ListDecks()
}

// Counts returns the total and activated deck counts.
func (ds *DeckService) Counts() (total int, active int, err error) {
	total, err = ds.repo.DeckCount()
	if err != nil {
		return 0, 0, err
	}
	active, err = ds.repo.ActiveDeckCount()
	if err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

// Rename changes a deck's name.
func (ds *DeckService) Rename(id int64, name string) error {
	return mapDeckErr(ds.repo.RenameDeck(id, name))
}

// SetActivated toggles whether a deck's cards take part in quiz sessions.
func (ds *DeckService) SetActivated(id int64, activated bool) error {
	return mapDeckErr(ds.repo.SetDeckActivated(id, activated))
}

// Delete removes a deck and, through the cascade, every card in it.
func (ds *DeckService) Delete(id int64) error {
	return mapDeckErr(ds.repo.DeleteDeck(id))
}

func mapDeckErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDeckNotFound
	}
	return err
}
