package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, booking_id, amount, type, status, transaction_ref, created_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.Amount,
		payment.Type,
		payment.Status,
		payment.TransactionRef,
		payment.CreatedAt,
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByTransactionRef retrieves a payment by its external transaction reference.
func (r *PaymentRepository) GetByTransactionRef(ctx context.Context, ref string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_ref = $1`
	return r.getOne(ctx, query, ref)
}

// GetByBookingAndType retrieves the payment of the given type for a booking.
// Returns nil if none exists.
func (r *PaymentRepository) GetByBookingAndType(ctx context.Context, bookingID string, typ domain.PaymentType) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 AND type = $2`

	payment, err := r.getOne(ctx, query, bookingID, typ)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return payment, err
}

// GetByDriverID retrieves all payments on bookings of the driver's rides.
func (r *PaymentRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Payment, error) {
	query := `
		SELECT p.id, p.booking_id, p.amount, p.type, p.status, p.transaction_ref, p.created_at
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		JOIN rides r ON r.id = b.ride_id
		WHERE r.driver_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.BookingID,
			&payment.Amount,
			&payment.Type,
			&payment.Status,
			&payment.TransactionRef,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, &payment)
	}
	return payments, rows.Err()
}

// CreateWalletRelease records the wallet-release payment for a booking. The
// insert claims the payments_booking_type_key unique index (schema.sql), so
// two settlements racing in separate transactions cannot both record a
// release for the same booking; the loser sees zero affected rows.
func (r *PaymentRepository) CreateWalletRelease(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (booking_id, type) DO NOTHING
	`

	result, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.Amount,
		domain.PaymentTypeWalletRelease,
		payment.Status,
		payment.TransactionRef,
		payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrSettled
	}

	return nil
}

// UpdateStatus updates the status of a payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (r *PaymentRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.q.QueryRowContext(ctx, query, args...).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.Type,
		&payment.Status,
		&payment.TransactionRef,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}
