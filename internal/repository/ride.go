package repository

import (
	"context"
	"time"

	"carpool/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetAll retrieves all rides.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// GetByDriverID retrieves all rides posted by a driver.
	GetByDriverID(ctx context.Context, driverID string) ([]*domain.Ride, error)

	// GetDepartedActive retrieves rides whose departure time is before the
	// given instant and whose status is not terminal.
	GetDepartedActive(ctx context.Context, before time.Time) ([]*domain.Ride, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error

	// ReserveSeats atomically decrements available seats by n.
	// Returns ErrInsufficientSeats if fewer than n seats remain.
	// The check-then-decrement happens in a single conditional update.
	ReserveSeats(ctx context.Context, id string, n int) error

	// ReleaseSeats atomically increments available seats by n, clamped at
	// the ride's total capacity.
	ReleaseSeats(ctx context.Context, id string, n int) error
}
