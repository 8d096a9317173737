package models

// Deck is a named, independently activatable collection of cards.
// Deactivated decks are excluded from the quiz pool.
type Deck struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Activated bool   `db:"activated" json:"activated"`
}

// Card is a single word/pronunciation pair belonging to exactly one deck.
// The pronunciation column went through two historical renames
// (answer -> furigana -> pronunciation); the meaning never changed.
type Card struct {
	ID            int64  `db:"id" json:"id"`
	DeckID        int64  `db:"deckId" json:"deck_id"`
	Word          string `db:"word" json:"word"`
	Pronunciation string `db:"pronunciation" json:"pronunciation"`
}

// ExportedDeck is the portable interchange format for a deck and its cards.
// Field names are the wire contract shared with other installations.
type ExportedDeck struct {
	Name  string         `json:"name"`
	Cards []ExportedCard `json:"cards"`
}

type ExportedCard struct {
	Word          string `json:"word" validate:"required"`
	Pronunciation string `json:"pronunciation" validate:"required"`
}

// BrowseCatalog is the remote deck catalog format. Each entry's URL points to
// a document in the interchange format, fetched and imported on demand.
type BrowseCatalog struct {
	Decks []BrowseDeck `json:"decks"`
}

type BrowseDeck struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Settings holds the user preferences the core consumes. The quiz session
// reads ShouldVibrate only; it never writes settings.
type Settings struct {
	Theme         string `json:"theme" validate:"required,theme"`
	ShouldVibrate bool   `json:"should_vibrate"`
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{Theme: "system", ShouldVibrate: true}
}

type CreateDeckRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// UpdateDeckRequest carries a rename, an activation toggle, or both.
// Nil fields are left untouched.
type UpdateDeckRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Activated *bool   `json:"activated,omitempty"`
}

type CreateCardRequest struct {
	DeckID        int64  `json:"deck_id" validate:"required"`
	Word          string `json:"word" validate:"required,max=500"`
	Pronunciation string `json:"pronunciation" validate:"required,max=500"`
}

type UpdateCardRequest struct {
	Word          string `json:"word" validate:"required,max=500"`
	Pronunciation string `json:"pronunciation" validate:"required,max=500"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

type ImportFromURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}
