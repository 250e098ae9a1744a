package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// PaymentGateway is the interface for an external payment provider.
type PaymentGateway interface {
	// CreateIntent registers an intended charge with the provider and
	// returns the provider's intent ID and client secret.
	CreateIntent(ctx context.Context, amount float64, currency string) (string, string, error)
}

// MockGateway is a mock implementation of PaymentGateway for environments
// without provider credentials.
type MockGateway struct{}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// CreateIntent simulates intent creation. Always succeeds.
func (g *MockGateway) CreateIntent(ctx context.Context, amount float64, currency string) (string, string, error) {
	id := fmt.Sprintf("pi_mock_%d", time.Now().UnixMilli())
	return id, id + "_secret", nil
}

// PaymentService records and confirms booking payments.
type PaymentService struct {
	paymentRepo         repository.PaymentRepository
	bookingRepo         repository.BookingRepository
	gateway             PaymentGateway
	settlementService   *SettlementService
	notificationService *NotificationService
	currency            string
	settleOnPayment     bool
}

// NewPaymentService creates a new PaymentService. settlementService may be
// nil when settleOnPayment is false.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	gateway PaymentGateway,
	settlementService *SettlementService,
	notificationService *NotificationService,
	currency string,
	settleOnPayment bool,
) *PaymentService {
	return &PaymentService{
		paymentRepo:         paymentRepo,
		bookingRepo:         bookingRepo,
		gateway:             gateway,
		settlementService:   settlementService,
		notificationService: notificationService,
		currency:            currency,
		settleOnPayment:     settleOnPayment,
	}
}

// RecordPaymentRequest contains the parameters for recording a payment.
type RecordPaymentRequest struct {
	Booking *domain.Booking
	Status  domain.PaymentStatus
}

// RecordPaymentResponse contains the recorded payment and, for gateway
// payments, the provider handles the client needs to complete the charge.
type RecordPaymentResponse struct {
	Payment      *domain.Payment
	IntentID     string
	ClientSecret string
}

// Record creates the booking payment row. A booking has at most one
// BOOKING_PAYMENT; if one already exists it is returned unchanged, so
// repeated payment attempts never double-charge.
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	if req.Booking == nil {
		return nil, ErrInvalidBookingID
	}

	existing, err := s.paymentRepo.GetByBookingAndType(ctx, req.Booking.ID, domain.PaymentTypeBooking)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &RecordPaymentResponse{Payment: existing}, nil
	}

	payment := &domain.Payment{
		ID:             uuid.New().String(),
		BookingID:      req.Booking.ID,
		Amount:         req.Booking.FareAmount,
		Type:           domain.PaymentTypeBooking,
		Status:         req.Status,
		TransactionRef: bookingTransactionRef(req.Booking.ID),
		CreatedAt:      time.Now(),
	}

	resp := &RecordPaymentResponse{Payment: payment}

	// Gateway payments get a provider intent before they are stored, and the
	// intent ID becomes the transaction reference so the out-of-band
	// confirmation callback can find the payment. Cash payments keep the
	// internal reference and are collected in person.
	if req.Booking.PaymentMethod != domain.PaymentMethodCash {
		intentID, secret, err := s.gateway.CreateIntent(ctx, payment.Amount, s.currency)
		if err != nil {
			return nil, err
		}
		payment.TransactionRef = intentID
		resp.IntentID = intentID
		resp.ClientSecret = secret
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return resp, nil
}

// Confirm marks the payment with the given transaction reference as PAID and
// moves its booking to CONFIRMED. When the service is configured to settle on
// payment, the driver's wallet is credited immediately; settlement stays
// idempotent so a later ride completion cannot credit twice.
func (s *PaymentService) Confirm(ctx context.Context, transactionRef string) (*domain.Payment, error) {
	if transactionRef == "" {
		return nil, ErrInvalidTransactionRef
	}

	payment, err := s.paymentRepo.GetByTransactionRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}

	// Only booking payments are confirmable; wallet releases carry their own
	// refs and must never be rewritten by a confirmation callback.
	if payment.Type != domain.PaymentTypeBooking {
		return nil, ErrNotBookingPayment
	}

	booking, err := s.bookingRepo.GetByID(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusConfirmed && !booking.Status.CanTransitionTo(domain.BookingStatusConfirmed) {
		return nil, ErrInvalidBookingState
	}

	if payment.Status != domain.PaymentStatusPaid {
		if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusPaid); err != nil {
			return nil, err
		}
		payment.Status = domain.PaymentStatusPaid
	}

	if booking.Status != domain.BookingStatusConfirmed {
		booking.Status = domain.BookingStatusConfirmed
		booking.PaymentStatus = domain.PaymentStatusPaid
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}
	} else if booking.PaymentStatus != domain.PaymentStatusPaid {
		booking.PaymentStatus = domain.PaymentStatusPaid
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyPaymentSuccess(ctx, payment, booking.PassengerID)
	}

	if s.settleOnPayment && s.settlementService != nil {
		if err := s.settlementService.Settle(ctx, booking.ID); err != nil && err != ErrAlreadySettled {
			return nil, err
		}
	}

	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	return s.paymentRepo.GetByID(ctx, paymentID)
}

// DriverEarnings summarises a driver's settled income.
type DriverEarnings struct {
	DriverID      string
	TotalEarnings float64
	RideCount     int
	Payments      []*domain.Payment
}

// EarningsForDriver sums the wallet releases recorded against the driver's
// rides.
func (s *PaymentService) EarningsForDriver(ctx context.Context, driverID string) (*DriverEarnings, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	payments, err := s.paymentRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	earnings := &DriverEarnings{DriverID: driverID, Payments: payments}
	for _, p := range payments {
		if p.Type == domain.PaymentTypeWalletRelease && p.Status == domain.PaymentStatusTransferred {
			earnings.TotalEarnings += p.Amount
			earnings.RideCount++
		}
	}

	return earnings, nil
}

// bookingTransactionRef derives the reference for a booking charge.
func bookingTransactionRef(bookingID string) string {
	return fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), bookingID)
}

// walletTransactionRef derives the reference for a wallet release.
func walletTransactionRef(bookingID string) string {
	return fmt.Sprintf("WLT-%d-%s", time.Now().UnixMilli(), bookingID)
}
