package quiz

import "errors"

// Sentinel errors for the quiz engine.
var (
	ErrEmptyPool       = errors.New("quiz: no cards in pool")
	ErrSessionNotFound = errors.New("quiz: session not found")
)
