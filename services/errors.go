package services

import "errors"

// Common service-level errors
var (
	// Not-found errors: operating on an id that no longer exists is
	// surfaced, never a crash.
	ErrDeckNotFound = errors.New("deck not found")
	ErrCardNotFound = errors.New("card not found")

	// Exchange errors
	ErrMalformedDeck = errors.New("malformed deck data")
	ErrDeckFetch     = errors.New("failed to fetch remote deck")

	// Quiz errors
	ErrQuizEmpty = errors.New("no cards in the active pool")
)
