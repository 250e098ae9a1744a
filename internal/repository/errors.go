package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInsufficientSeats is returned when a conditional seat decrement
	// finds fewer seats than requested.
	ErrInsufficientSeats = errors.New("not enough seats available")

	// ErrSettled is returned when a wallet-release claim finds one already
	// recorded for the booking.
	ErrSettled = errors.New("booking already settled")
)
