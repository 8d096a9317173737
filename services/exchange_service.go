package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"flashdeck/models"
	"flashdeck/notify"
)

// ExchangeService converts between persisted decks and the portable
// interchange format, locally (export/import streams) and remotely (deck
// catalog + deck documents fetched over HTTP). Completion and failure are
// reported through the notification sink; nothing here is retried
// automatically.
type ExchangeService struct {
	repo   ExchangeRepository
	sink   notify.Sink
	client *http.Client
}

// NewExchangeService creates a new exchange service. A nil client falls back
// to http.DefaultClient; remote fetches are bounded only by the client's own
// defaults.
func NewExchangeService(repo ExchangeRepository, sink notify.Sink, client *http.Client) *ExchangeService {
	if client == nil {
		client = http.DefaultClient
	}
	return &ExchangeService{repo: repo, sink: sink, client: client}
}

// Export writes a deck and its cards as an interchange document. The cards
// are read at one point in time; the export does not follow later changes.
func (es *ExchangeService) Export(w io.Writer, deckID int64) error {
	deck, cards, err := es.repo.DeckWithCards(deckID)
	if err != nil {
		return err
	}
	if deck == nil {
		return ErrDeckNotFound
	}

	exported := models.ExportedDeck{
		Name:  deck.Name,
		Cards: make([]models.ExportedCard, 0, len(cards)),
	}
	for _, card := range cards {
		exported.Cards = append(exported.Cards, models.ExportedCard{
			Word:          card.Word,
			Pronunciation: card.Pronunciation,
		})
	}

	if err := json.NewEncoder(w).Encode(exported); err != nil {
		return fmt.Errorf("failed to encode deck: %w", err)
	}

	es.sink.Notify("Deck exported")
	return nil
}

// Import decodes an interchange document and creates a new deck from it, in
// one transaction. A deck with the same name may already exist; no merging or
// de-duplication happens.
func (es *ExchangeService) Import(r io.Reader) (int64, error) {
	es.sink.Notify("Deck importing...")

	var imported models.ExportedDeck
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		es.sink.Notify("Deck import failed: invalid file")
		return 0, fmt.Errorf("%w: %v", ErrMalformedDeck, err)
	}

	deckID, err := es.repo.ImportDeck(imported.Name, imported.Cards)
	if err != nil {
		es.sink.Notify("Deck import failed")
		return 0, err
	}

	es.sink.Notify("Deck imported")
	return deckID, nil
}

// FetchDeck GETs a remote interchange document and decodes it. Turning the
// result into persisted state goes through the same path as Import.
func (es *ExchangeService) FetchDeck(url string) (*models.ExportedDeck, error) {
	var deck models.ExportedDeck
	if err := es.fetchJSON(url, &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

// FetchCatalog GETs the remote deck catalog. Each entry's URL points to an
// interchange document importable on demand.
func (es *ExchangeService) FetchCatalog(url string) (*models.BrowseCatalog, error) {
	var catalog models.BrowseCatalog
	if err := es.fetchJSON(url, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// ImportFromURL fetches a remote deck and persists it like a local import.
func (es *ExchangeService) ImportFromURL(url string) (int64, error) {
	es.sink.Notify("Deck importing...")

	imported, err := es.FetchDeck(url)
	if err != nil {
		es.sink.Notify("Deck import failed")
		return 0, err
	}

	deckID, err := es.repo.ImportDeck(imported.Name, imported.Cards)
	if err != nil {
		es.sink.Notify("Deck import failed")
		return 0, err
	}

	es.sink.Notify("Deck imported")
	return deckID, nil
}

func (es *ExchangeService) fetchJSON(url string, out any) error {
	resp, err := es.client.Get(url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeckFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %s", ErrDeckFetch, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDeck, err)
	}
	return nil
}
