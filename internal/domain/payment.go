package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusUnpaid      PaymentStatus = "UNPAID"
	PaymentStatusPending     PaymentStatus = "PENDING"
	PaymentStatusPaid        PaymentStatus = "PAID"
	PaymentStatusRefunded    PaymentStatus = "REFUNDED"
	PaymentStatusTransferred PaymentStatus = "TRANSFERRED"
)

// PaymentType distinguishes passenger charges from driver wallet credits.
type PaymentType string

const (
	// PaymentTypeBooking is the passenger-side charge for a booking.
	PaymentTypeBooking PaymentType = "BOOKING_PAYMENT"
	// PaymentTypeWalletRelease is the driver-side credit created on
	// settlement. At most one exists per booking.
	PaymentTypeWalletRelease PaymentType = "WALLET_RELEASE"
)

// Payment represents a money movement tied to exactly one booking.
type Payment struct {
	ID             string
	BookingID      string
	Amount         float64
	Type           PaymentType
	Status         PaymentStatus
	TransactionRef string
	CreatedAt      time.Time
}
