package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPlanned   RideStatus = "PLANNED"
	RideStatusAvailable RideStatus = "AVAILABLE"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// IsTerminal reports whether the status is a final one.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// IsOpen reports whether the ride can still take bookings. PLANNED and
// AVAILABLE are both open states; the seat count, not the status, gates
// individual bookings.
func (s RideStatus) IsOpen() bool {
	return s == RideStatusPlanned || s == RideStatusAvailable
}

// Ride represents a driver-posted trip offering seats between two locations.
type Ride struct {
	ID             string
	DriverID       string
	Source         string
	Destination    string
	SourceLat      *float64
	SourceLng      *float64
	DestLat        *float64
	DestLng        *float64
	DepartureTime  time.Time
	TotalSeats     int
	AvailableSeats int
	FarePerSeat    float64
	DistanceKm     float64
	Status         RideStatus
	CreatedAt      time.Time
}

// HasRoute reports whether both endpoints of the ride carry coordinates.
func (r *Ride) HasRoute() bool {
	return r.SourceLat != nil && r.SourceLng != nil && r.DestLat != nil && r.DestLng != nil
}
