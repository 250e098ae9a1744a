package service

import "errors"

var (
	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidPassengerID is returned when passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidSeatCount is returned when a booking requests zero or
	// negative seats.
	ErrInvalidSeatCount = errors.New("seat count must be positive")

	// ErrInsufficientSeats is returned when a ride has fewer available
	// seats than requested.
	ErrInsufficientSeats = errors.New("not enough seats available")

	// ErrAlreadyBooked is returned when the passenger already holds an
	// active booking on the ride.
	ErrAlreadyBooked = errors.New("ride already booked by passenger")

	// ErrNotRideDriver is returned when the acting user does not own the
	// ride.
	ErrNotRideDriver = errors.New("user is not the ride's driver")

	// ErrNotBookingPassenger is returned when the acting user does not own
	// the booking.
	ErrNotBookingPassenger = errors.New("user is not the booking's passenger")

	// ErrInvalidBookingState is returned when an operation is attempted
	// from the wrong lifecycle state.
	ErrInvalidBookingState = errors.New("operation not allowed in current booking state")

	// ErrBookingAlreadyCancelled is returned when cancelling an already
	// cancelled booking.
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")

	// ErrInvalidDecision is returned when a driver response is neither
	// approval nor rejection.
	ErrInvalidDecision = errors.New("decision must be APPROVED or REJECTED")

	// ErrRideAlreadyCompleted is returned when completing an already
	// completed ride.
	ErrRideAlreadyCompleted = errors.New("ride already completed")

	// ErrRideAlreadyCancelled is returned when operating on a cancelled
	// ride.
	ErrRideAlreadyCancelled = errors.New("ride already cancelled")

	// ErrRideNotOpen is returned when booking a ride that is not open for
	// bookings.
	ErrRideNotOpen = errors.New("ride is not open for booking")

	// ErrAlreadySettled is returned when settling a booking that already
	// has a wallet release recorded.
	ErrAlreadySettled = errors.New("booking already settled")

	// ErrInvalidPaymentMethod is returned when the payment method is not
	// recognised.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidTransactionRef is returned when a payment confirmation
	// carries no transaction reference.
	ErrInvalidTransactionRef = errors.New("transaction reference is required")

	// ErrNotBookingPayment is returned when a confirmation reference
	// resolves to a payment that is not a booking payment.
	ErrNotBookingPayment = errors.New("transaction reference does not belong to a booking payment")

	// ErrInvalidDeparture is returned when a ride is posted with a
	// departure time in the past.
	ErrInvalidDeparture = errors.New("departure time must be in the future")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidEmail is returned when a registration carries no usable
	// email address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrEmailTaken is returned when registering an email that already has
	// an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidRole is returned when the user role is not recognised.
	ErrInvalidRole = errors.New("role must be PASSENGER or DRIVER")
)
