package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for the card store.
// Use errors.Is to check: errors.Is(err, store.ErrNotFound)
var (
	ErrValidation  = errors.New("store: japanese, english and genre are required")
	ErrNotFound    = errors.New("store: card not found")
	ErrFormat      = errors.New("store: import payload must be a JSON array of cards")
	ErrPersistence = errors.New("store: persistence failure")
)

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func formatError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}
