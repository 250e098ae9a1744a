package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, ride_id, passenger_id, seats, status, fare_amount, payment_method, payment_status, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, distance_km, created_at`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.RideID,
		booking.PassengerID,
		booking.Seats,
		booking.Status,
		booking.FareAmount,
		booking.PaymentMethod,
		booking.PaymentStatus,
		nullFloat(booking.PickupLat),
		nullFloat(booking.PickupLng),
		nullFloat(booking.DropoffLat),
		nullFloat(booking.DropoffLng),
		booking.DistanceKm,
		booking.CreatedAt,
	)

	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return booking, nil
}

// GetByRideID retrieves all bookings on a ride.
func (r *BookingRepository) GetByRideID(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ride_id = $1 ORDER BY created_at`
	return r.queryBookings(ctx, query, rideID)
}

// GetByPassengerID retrieves all bookings made by a passenger.
func (r *BookingRepository) GetByPassengerID(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE passenger_id = $1 ORDER BY created_at DESC`
	return r.queryBookings(ctx, query, passengerID)
}

// HasActiveBooking reports whether the passenger holds a non-cancelled,
// non-rejected booking on the ride.
func (r *BookingRepository) HasActiveBooking(ctx context.Context, passengerID, rideID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE passenger_id = $1 AND ride_id = $2 AND status NOT IN ($3, $4)
		)
	`

	var exists bool
	err := r.q.QueryRowContext(ctx, query,
		passengerID, rideID, domain.BookingStatusCancelled, domain.BookingStatusRejected,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Update updates an existing booking.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, fare_amount = $2, payment_method = $3, payment_status = $4,
		    pickup_lat = $5, pickup_lng = $6, dropoff_lat = $7, dropoff_lng = $8, distance_km = $9
		WHERE id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		booking.Status,
		booking.FareAmount,
		booking.PaymentMethod,
		booking.PaymentStatus,
		nullFloat(booking.PickupLat),
		nullFloat(booking.PickupLng),
		nullFloat(booking.DropoffLat),
		nullFloat(booking.DropoffLng),
		booking.DistanceKm,
		booking.ID,
	)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var pickupLat, pickupLng, dropoffLat, dropoffLng sql.NullFloat64

	err := row.Scan(
		&booking.ID,
		&booking.RideID,
		&booking.PassengerID,
		&booking.Seats,
		&booking.Status,
		&booking.FareAmount,
		&booking.PaymentMethod,
		&booking.PaymentStatus,
		&pickupLat,
		&pickupLng,
		&dropoffLat,
		&dropoffLng,
		&booking.DistanceKm,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.PickupLat = floatPtr(pickupLat)
	booking.PickupLng = floatPtr(pickupLng)
	booking.DropoffLat = floatPtr(dropoffLat)
	booking.DropoffLng = floatPtr(dropoffLng)

	return &booking, nil
}
