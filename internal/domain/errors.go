package domain

import "errors"

// Error classes surfaced by the stores. Anything else is a store failure.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)
