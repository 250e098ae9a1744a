package repository

import (
	"context"

	"carpool/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByRideID retrieves all bookings on a ride.
	GetByRideID(ctx context.Context, rideID string) ([]*domain.Booking, error)

	// GetByPassengerID retrieves all bookings made by a passenger.
	GetByPassengerID(ctx context.Context, passengerID string) ([]*domain.Booking, error)

	// HasActiveBooking reports whether the passenger holds a non-cancelled,
	// non-rejected booking on the ride.
	HasActiveBooking(ctx context.Context, passengerID, rideID string) (bool, error)

	// Update updates an existing booking.
	Update(ctx context.Context, booking *domain.Booking) error
}
