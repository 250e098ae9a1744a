package repository

import (
	"context"

	"carpool/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByTransactionRef retrieves a payment by its external transaction
	// reference. Returns ErrNotFound if no payment carries the reference.
	GetByTransactionRef(ctx context.Context, ref string) (*domain.Payment, error)

	// GetByBookingAndType retrieves the payment of the given type for a
	// booking. Returns nil if none exists.
	GetByBookingAndType(ctx context.Context, bookingID string, typ domain.PaymentType) (*domain.Payment, error)

	// GetByDriverID retrieves all payments on bookings of the driver's rides.
	GetByDriverID(ctx context.Context, driverID string) ([]*domain.Payment, error)

	// CreateWalletRelease atomically records the wallet-release payment for a
	// booking. Returns ErrSettled if one already exists; the existence check
	// and the insert happen in a single statement.
	CreateWalletRelease(ctx context.Context, payment *domain.Payment) error

	// UpdateStatus updates the status of a payment.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error
}
