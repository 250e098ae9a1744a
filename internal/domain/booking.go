package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusApproved  BookingStatus = "APPROVED"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// IsActive reports whether the booking still holds seats on its ride.
// REJECTED and CANCELLED bookings have released their seats; COMPLETED
// bookings consumed them.
func (s BookingStatus) IsActive() bool {
	return s != BookingStatusRejected && s != BookingStatusCancelled
}

// IsTerminal reports whether the status is a final one.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCancelled || s == BookingStatusCompleted
}

// CanTransitionTo reports whether the booking lifecycle allows moving from s
// to next. Transition validity is enforced here, centrally, rather than at
// each call site.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusApproved || next == BookingStatusRejected ||
			next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusApproved:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCompleted || next == BookingStatusCancelled
	default:
		return false
	}
}

// PaymentMethod represents how a passenger pays for a booking.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodUPI  PaymentMethod = "UPI"
)

// Booking represents a passenger's claim on one or more seats of a ride.
// FareAmount and the pickup/dropoff snapshot are computed once at creation
// and never change afterwards.
type Booking struct {
	ID            string
	RideID        string
	PassengerID   string
	Seats         int
	Status        BookingStatus
	FareAmount    float64
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus // mirror of the latest booking payment
	PickupLat     *float64
	PickupLng     *float64
	DropoffLat    *float64
	DropoffLng    *float64
	DistanceKm    float64
	CreatedAt     time.Time
}
