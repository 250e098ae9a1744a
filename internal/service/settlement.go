package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
	"carpool/internal/repository/postgres"
)

// SettlementService credits driver wallets for paid bookings. Settlement is
// idempotent: the wallet-release payment row is the claim, and only the
// caller that wins the claim credits the wallet.
type SettlementService struct {
	db          *sql.DB
	rideRepo    repository.RideRepository
	bookingRepo repository.BookingRepository
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
}

// NewSettlementService creates a new SettlementService. db may be nil in
// tests; the steps then run non-transactionally against the injected
// repositories, and the wallet-release claim alone keeps settlement
// exactly-once.
func NewSettlementService(
	db *sql.DB,
	rideRepo repository.RideRepository,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
) *SettlementService {
	return &SettlementService{
		db:          db,
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
	}
}

// Settle records the wallet release for a booking, credits the driver's
// wallet with the booking fare, and marks the booking COMPLETED. Returns
// ErrAlreadySettled if a wallet release already exists for the booking.
func (s *SettlementService) Settle(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if !booking.Status.IsActive() {
		return ErrInvalidBookingState
	}

	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return err
	}

	if s.db == nil {
		return s.settle(ctx, booking, ride, s.bookingRepo, s.paymentRepo, s.userRepo)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Transaction-scoped repositories.
	txBookingRepo := postgres.NewBookingRepositoryWithTx(tx)
	txPaymentRepo := postgres.NewPaymentRepositoryWithTx(tx)
	txUserRepo := postgres.NewUserRepositoryWithTx(tx)

	if err = s.settle(ctx, booking, ride, txBookingRepo, txPaymentRepo, txUserRepo); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// settle performs the settlement steps against the given repositories. The
// wallet-release insert is the atomic claim: a second caller loses the claim
// and gets ErrAlreadySettled before any money moves.
func (s *SettlementService) settle(
	ctx context.Context,
	booking *domain.Booking,
	ride *domain.Ride,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
) error {
	release := &domain.Payment{
		ID:             uuid.New().String(),
		BookingID:      booking.ID,
		Amount:         booking.FareAmount,
		Type:           domain.PaymentTypeWalletRelease,
		Status:         domain.PaymentStatusTransferred,
		TransactionRef: walletTransactionRef(booking.ID),
		CreatedAt:      time.Now(),
	}

	if err := paymentRepo.CreateWalletRelease(ctx, release); err != nil {
		if errors.Is(err, repository.ErrSettled) {
			return ErrAlreadySettled
		}
		return err
	}

	if err := userRepo.CreditWallet(ctx, ride.DriverID, booking.FareAmount); err != nil {
		return err
	}

	if booking.Status != domain.BookingStatusCompleted {
		booking.Status = domain.BookingStatusCompleted
		if err := bookingRepo.Update(ctx, booking); err != nil {
			return err
		}
	}

	return nil
}
