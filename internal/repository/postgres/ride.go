package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, driver_id, source, destination, source_lat, source_lng, dest_lat, dest_lng, departure_time, total_seats, available_seats, fare_per_seat, distance_km, status, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	status := ride.Status
	if status == "" {
		status = domain.RideStatusPlanned
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.DriverID,
		ride.Source,
		ride.Destination,
		nullFloat(ride.SourceLat),
		nullFloat(ride.SourceLng),
		nullFloat(ride.DestLat),
		nullFloat(ride.DestLng),
		ride.DepartureTime,
		ride.TotalSeats,
		ride.AvailableSeats,
		ride.FarePerSeat,
		ride.DistanceKm,
		status,
		ride.CreatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetAll retrieves all rides.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY departure_time DESC LIMIT 200`
	return r.queryRides(ctx, query)
}

// GetByDriverID retrieves all rides posted by a driver.
func (r *RideRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE driver_id = $1 ORDER BY departure_time DESC`
	return r.queryRides(ctx, query, driverID)
}

// GetDepartedActive retrieves rides that departed before the given instant
// and are still in a non-terminal state.
func (r *RideRepository) GetDepartedActive(ctx context.Context, before time.Time) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE departure_time < $1 AND status IN ($2, $3)
	`
	return r.queryRides(ctx, query, before, domain.RideStatusPlanned, domain.RideStatusAvailable)
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET source = $1, destination = $2, source_lat = $3, source_lng = $4, dest_lat = $5, dest_lng = $6,
		    departure_time = $7, available_seats = $8, fare_per_seat = $9, distance_km = $10, status = $11
		WHERE id = $12
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.Source,
		ride.Destination,
		nullFloat(ride.SourceLat),
		nullFloat(ride.SourceLng),
		nullFloat(ride.DestLat),
		nullFloat(ride.DestLng),
		ride.DepartureTime,
		ride.AvailableSeats,
		ride.FarePerSeat,
		ride.DistanceKm,
		ride.Status,
		ride.ID,
	)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// ReserveSeats atomically decrements available seats by n. The availability
// check and the decrement are a single conditional update, so two concurrent
// reservations cannot both take the last seat.
func (r *RideRepository) ReserveSeats(ctx context.Context, id string, n int) error {
	query := `
		UPDATE rides
		SET available_seats = available_seats - $1
		WHERE id = $2 AND available_seats >= $1
	`

	result, err := r.q.ExecContext(ctx, query, n, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrInsufficientSeats
	}

	return nil
}

// ReleaseSeats atomically increments available seats by n, clamped at the
// ride's total capacity so a replayed release cannot oversupply the ride.
func (r *RideRepository) ReleaseSeats(ctx context.Context, id string, n int) error {
	query := `
		UPDATE rides
		SET available_seats = LEAST(available_seats + $1, total_seats)
		WHERE id = $2
	`

	result, err := r.q.ExecContext(ctx, query, n, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (r *RideRepository) queryRides(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var srcLat, srcLng, dstLat, dstLng sql.NullFloat64

	err := row.Scan(
		&ride.ID,
		&ride.DriverID,
		&ride.Source,
		&ride.Destination,
		&srcLat,
		&srcLng,
		&dstLat,
		&dstLng,
		&ride.DepartureTime,
		&ride.TotalSeats,
		&ride.AvailableSeats,
		&ride.FarePerSeat,
		&ride.DistanceKm,
		&ride.Status,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ride.SourceLat = floatPtr(srcLat)
	ride.SourceLng = floatPtr(srcLng)
	ride.DestLat = floatPtr(dstLat)
	ride.DestLng = floatPtr(dstLng)

	return &ride, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
