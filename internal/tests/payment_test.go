package tests

import (
	"context"
	"errors"
	"strings"
	"testing"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 3. PAYMENT AND CANCELLATION
// ──────────────────────────────────────────────

func TestPayment_CashConfirmsImmediately(t *testing.T) {
	t.Parallel()

	f := newFixture(true, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:        "ride-1",
		PassengerID:   "passenger-1",
		Seats:         1,
		PaymentMethod: domain.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if _, err := f.bookingService.RespondToBooking(context.Background(), service.RespondToBookingRequest{
		BookingID: booking.ID,
		DriverID:  "driver-1",
		Decision:  domain.BookingStatusApproved,
	}); err != nil {
		t.Fatalf("approval failed: %v", err)
	}

	result, err := f.bookingService.PayForBooking(context.Background(), service.PayForBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	})
	if err != nil {
		t.Fatalf("PayForBooking failed: %v", err)
	}

	if result.Booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("booking status = %s, want CONFIRMED", result.Booking.Status)
	}
	// Cash is collected in person; the payment row tracks it as UNPAID.
	if result.Payment.Status != domain.PaymentStatusUnpaid {
		t.Errorf("payment status = %s, want UNPAID", result.Payment.Status)
	}
	if !strings.HasPrefix(result.Payment.TransactionRef, "TXN-") {
		t.Errorf("transaction ref = %q, want TXN- prefix", result.Payment.TransactionRef)
	}
	if result.Ticket == nil {
		t.Error("expected a ticket for the confirmed cash booking")
	}
}

func TestPayment_CardCreatesPendingIntent(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:        "ride-1",
		PassengerID:   "passenger-1",
		Seats:         2,
		PaymentMethod: domain.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	result, err := f.bookingService.PayForBooking(context.Background(), service.PayForBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	})
	if err != nil {
		t.Fatalf("PayForBooking failed: %v", err)
	}

	if result.Payment.Status != domain.PaymentStatusPending {
		t.Errorf("payment status = %s, want PENDING", result.Payment.Status)
	}
	if result.IntentID == "" || result.ClientSecret == "" {
		t.Error("expected gateway intent id and client secret")
	}
	if result.Payment.Amount != 260.00 {
		t.Errorf("payment amount = %v, want 260.00", result.Payment.Amount)
	}
}

func TestPayment_PayTwiceReturnsSamePayment(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:        "ride-1",
		PassengerID:   "passenger-1",
		Seats:         1,
		PaymentMethod: domain.PaymentMethodUPI,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	first, err := f.bookingService.PayForBooking(context.Background(), service.PayForBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	})
	if err != nil {
		t.Fatalf("first pay failed: %v", err)
	}

	second, err := f.bookingService.PayForBooking(context.Background(), service.PayForBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	})
	if err != nil {
		t.Fatalf("second pay failed: %v", err)
	}

	if first.Payment.ID != second.Payment.ID {
		t.Errorf("payment ids differ: %s vs %s, want one payment per booking", first.Payment.ID, second.Payment.ID)
	}
	if n := f.paymentRepo.CountByType(domain.PaymentTypeBooking); n != 1 {
		t.Errorf("booking payment count = %d, want 1", n)
	}
}

func TestPayment_OnlyPassengerMayPay(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:      "ride-1",
		PassengerID: "passenger-1",
		Seats:       1,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	_, err = f.bookingService.PayForBooking(context.Background(), service.PayForBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-2",
	})
	if !errors.Is(err, service.ErrNotBookingPassenger) {
		t.Errorf("err = %v, want ErrNotBookingPassenger", err)
	}
}

func TestPayment_PendingBookingCannotPay(t *testing.T) {
	t.Parallel()

	f := newFixture(true, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:      "ride-1",
		PassengerID: "passenger-1",
		Seats:       1,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	// Still PENDING: the driver has not approved yet.
	_, err = f.bookingService.PayForBooking(context.Background(), service.PayForBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	})
	if !errors.Is(err, service.ErrInvalidBookingState) {
		t.Errorf("err = %v, want ErrInvalidBookingState", err)
	}
}

func TestPayment_ConfirmMarksPaidAndConfirmsBooking(t *testing.T) {
	t.Parallel()

	f := newFixture(true, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:        "ride-1",
		PassengerID:   "passenger-1",
		Seats:         1,
		PaymentMethod: domain.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if _, err := f.bookingService.RespondToBooking(context.Background(), service.RespondToBookingRequest{
		BookingID: booking.ID,
		DriverID:  "driver-1",
		Decision:  domain.BookingStatusApproved,
	}); err != nil {
		t.Fatalf("approval failed: %v", err)
	}

	paid, err := f.bookingService.PayForBooking(context.Background(), service.PayForBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	})
	if err != nil {
		t.Fatalf("PayForBooking failed: %v", err)
	}

	payment, err := f.paymentService.Confirm(context.Background(), paid.Payment.TransactionRef)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	if payment.Status != domain.PaymentStatusPaid {
		t.Errorf("payment status = %s, want PAID", payment.Status)
	}
	stored := f.bookingRepo.GetBooking(booking.ID)
	if stored.Status != domain.BookingStatusConfirmed {
		t.Errorf("booking status = %s, want CONFIRMED", stored.Status)
	}
	if stored.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("booking payment status = %s, want PAID", stored.PaymentStatus)
	}
}

func TestPayment_ConfirmByGatewayIntentID(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:        "ride-1",
		PassengerID:   "passenger-1",
		Seats:         1,
		PaymentMethod: domain.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	paid, err := f.bookingService.PayForBooking(context.Background(), service.PayForBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	})
	if err != nil {
		t.Fatalf("PayForBooking failed: %v", err)
	}

	// The gateway intent ID is the stored transaction reference; the
	// provider's confirmation callback knows nothing else.
	if paid.Payment.TransactionRef != paid.IntentID {
		t.Errorf("stored ref = %q, want intent id %q", paid.Payment.TransactionRef, paid.IntentID)
	}

	payment, err := f.paymentService.Confirm(context.Background(), paid.IntentID)
	if err != nil {
		t.Fatalf("Confirm by intent id failed: %v", err)
	}

	if payment.Status != domain.PaymentStatusPaid {
		t.Errorf("payment status = %s, want PAID", payment.Status)
	}
	if got := f.bookingRepo.GetBooking(booking.ID).Status; got != domain.BookingStatusConfirmed {
		t.Errorf("booking status = %s, want CONFIRMED", got)
	}
}

func TestPayment_ConfirmRejectsWalletReleaseRef(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)
	f.addDriver("driver-1")
	f.confirmBooking("booking-1", "ride-1", 130.00)

	if err := f.settlementService.Settle(context.Background(), "booking-1"); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	release := f.paymentRepo.PaymentForBooking("booking-1", domain.PaymentTypeWalletRelease)
	if release == nil {
		t.Fatal("expected a wallet release payment")
	}

	_, err := f.paymentService.Confirm(context.Background(), release.TransactionRef)
	if !errors.Is(err, service.ErrNotBookingPayment) {
		t.Errorf("err = %v, want ErrNotBookingPayment", err)
	}

	// The release must stay TRANSFERRED or the driver's earnings lose it.
	if got := f.paymentRepo.PaymentForBooking("booking-1", domain.PaymentTypeWalletRelease).Status; got != domain.PaymentStatusTransferred {
		t.Errorf("release status = %s, want TRANSFERRED", got)
	}
}

func TestPayment_ConfirmRequiresTransactionRef(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)

	_, err := f.paymentService.Confirm(context.Background(), "")
	if !errors.Is(err, service.ErrInvalidTransactionRef) {
		t.Errorf("err = %v, want ErrInvalidTransactionRef", err)
	}
}

func TestPayment_CancelAfterConfirmRefundsAndRestoresSeats(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:        "ride-1",
		PassengerID:   "passenger-1",
		Seats:         2,
		PaymentMethod: domain.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	paid, err := f.bookingService.PayForBooking(context.Background(), service.PayForBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	})
	if err != nil {
		t.Fatalf("PayForBooking failed: %v", err)
	}

	if _, err := f.paymentService.Confirm(context.Background(), paid.Payment.TransactionRef); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	cancelled, err := f.bookingService.CancelBooking(context.Background(), service.CancelBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	})
	if err != nil {
		t.Fatalf("CancelBooking failed: %v", err)
	}

	if cancelled.Status != domain.BookingStatusCancelled {
		t.Errorf("booking status = %s, want CANCELLED", cancelled.Status)
	}
	payment := f.paymentRepo.PaymentForBooking(booking.ID, domain.PaymentTypeBooking)
	if payment == nil || payment.Status != domain.PaymentStatusRefunded {
		t.Errorf("payment = %+v, want REFUNDED", payment)
	}
	if got := f.rideRepo.GetRide("ride-1").AvailableSeats; got != 4 {
		t.Errorf("available seats = %d, want 4 restored", got)
	}
}

func TestPayment_CancelTwiceFails(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:      "ride-1",
		PassengerID: "passenger-1",
		Seats:       1,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if _, err := f.bookingService.CancelBooking(context.Background(), service.CancelBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	}); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	_, err = f.bookingService.CancelBooking(context.Background(), service.CancelBookingRequest{
		BookingID:   booking.ID,
		PassengerID: "passenger-1",
	})
	if !errors.Is(err, service.ErrBookingAlreadyCancelled) {
		t.Errorf("err = %v, want ErrBookingAlreadyCancelled", err)
	}

	// Seats released exactly once.
	if got := f.rideRepo.GetRide("ride-1").AvailableSeats; got != 4 {
		t.Errorf("available seats = %d, want 4", got)
	}
}

func TestPayment_EarningsSumTransferredReleases(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)

	f.paymentRepo.AddPayment(&domain.Payment{
		ID: "p1", BookingID: "b1", Amount: 130,
		Type: domain.PaymentTypeWalletRelease, Status: domain.PaymentStatusTransferred,
	})
	f.paymentRepo.AddPayment(&domain.Payment{
		ID: "p2", BookingID: "b2", Amount: 260,
		Type: domain.PaymentTypeWalletRelease, Status: domain.PaymentStatusTransferred,
	})
	f.paymentRepo.AddPayment(&domain.Payment{
		ID: "p3", BookingID: "b3", Amount: 90,
		Type: domain.PaymentTypeBooking, Status: domain.PaymentStatusPaid,
	})

	earnings, err := f.paymentService.EarningsForDriver(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("EarningsForDriver failed: %v", err)
	}

	if earnings.TotalEarnings != 390 {
		t.Errorf("total earnings = %v, want 390", earnings.TotalEarnings)
	}
	if earnings.RideCount != 2 {
		t.Errorf("ride count = %d, want 2", earnings.RideCount)
	}
}
