package domain

import "errors"

var (
	// ErrInvalidAmount is returned for a logged amount <= 0.
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrInvalidNorm is returned for a daily norm <= 0.
	ErrInvalidNorm = errors.New("norm must be a positive number")
)
