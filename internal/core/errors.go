package core

import "errors"

var (
	ErrInvalidQuery       = errors.New("invalid query")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrPotNotFound        = errors.New("pot not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidName        = errors.New("invalid pot name")
	ErrInvalidTarget      = errors.New("invalid pot target")
	ErrPotIDExhausted     = errors.New("pot id space exhausted")
	ErrEmptyName          = errors.New("empty transaction name")
	ErrMissingCategory    = errors.New("missing category")
	ErrMissingDate        = errors.New("missing date")
	ErrFutureDate         = errors.New("future date")
	ErrDateTooOld         = errors.New("date too old")
	ErrInvalidSeed        = errors.New("invalid seed")
	ErrAlreadyInitialized = errors.New("store already initialized")
	ErrNotInitialized     = errors.New("store not initialized")
)
