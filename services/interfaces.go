package services

import "flashdeck/models"

// DeckRepository defines the interface for deck data access
type DeckRepository interface {
	CreateDeck(name string) (int64, error)
	GetDeck(id int64) (*models.Deck, error)
	ListDecks() ([]models.Deck, error)
	RenameDeck(id int64, name string) error
	SetDeckActivated(id int64, activated bool) error
	DeleteDeck(id int64) error
	DeckCount() (int, error)
	ActiveDeckCount() (int, error)
}

// CardRepository defines the interface for card data access
type CardRepository interface {
	GetDeck(id int64) (*models.Deck, error)
	CreateCard(deckID int64, word, pronunciation string) (int64, error)
	GetCard(id int64) (*models.Card, error)
	UpdateCard(id int64, word, pronunciation string) error
	DeleteCard(id int64) error
	ListCards(deckID int64) ([]models.Card, error)
	SearchCards(keyword string) ([]models.Card, error)
}

// ActivePool supplies the quiz session's card pool: every card whose parent
// deck is activated.
type ActivePool interface {
	ListActiveCards() ([]models.Card, error)
}

// ExchangeRepository defines the persistence operations export and import need
type ExchangeRepository interface {
	DeckWithCards(deckID int64) (*models.Deck, []models.Card, error)
	ImportDeck(name string, cards []models.ExportedCard) (int64, error)
}

// VibrationSettings reports whether feedback events should request haptics.
// The quiz session reads this; it never writes settings.
type VibrationSettings interface {
	ShouldVibrate() bool
}
