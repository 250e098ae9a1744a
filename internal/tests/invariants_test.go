package tests

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 6. INVARIANTS UNDER CONCURRENT LOAD
// ──────────────────────────────────────────────

func TestInvariant_SeatsStayWithinCapacity(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 6)

	// Passengers book and immediately cancel in parallel. Whatever the
	// interleaving, the seat count must end inside [0, capacity].
	const workers = 12
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			passengerID := "passenger-" + string(rune('a'+i))
			seats := 1 + rand.Intn(2)

			booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
				RideID:      "ride-1",
				PassengerID: passengerID,
				Seats:       seats,
			})
			if err != nil {
				if !errors.Is(err, service.ErrInsufficientSeats) {
					t.Errorf("unexpected booking error: %v", err)
				}
				return
			}

			if rand.Intn(2) == 0 {
				_, err := f.bookingService.CancelBooking(context.Background(), service.CancelBookingRequest{
					BookingID:   booking.ID,
					PassengerID: passengerID,
				})
				if err != nil {
					t.Errorf("unexpected cancel error: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	ride := f.rideRepo.GetRide("ride-1")
	if ride.AvailableSeats < 0 || ride.AvailableSeats > ride.TotalSeats {
		t.Fatalf("available seats = %d, outside [0, %d]", ride.AvailableSeats, ride.TotalSeats)
	}

	// Seats held by active bookings plus free seats must equal capacity.
	held := 0
	bookings, _ := f.bookingRepo.GetByRideID(context.Background(), "ride-1")
	for _, b := range bookings {
		if b.Status.IsActive() {
			held += b.Seats
		}
	}
	if held+ride.AvailableSeats != ride.TotalSeats {
		t.Errorf("held %d + free %d != capacity %d", held, ride.AvailableSeats, ride.TotalSeats)
	}
}

func TestInvariant_SeatReleaseClampedAtCapacity(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	// A double release must not push the seat count past capacity.
	if err := f.rideRepo.ReleaseSeats(context.Background(), "ride-1", 3); err != nil {
		t.Fatalf("ReleaseSeats failed: %v", err)
	}

	if got := f.rideRepo.GetRide("ride-1").AvailableSeats; got != 4 {
		t.Errorf("available seats = %d, want clamped at 4", got)
	}
}

func TestInvariant_BookingTransitionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from    domain.BookingStatus
		to      domain.BookingStatus
		allowed bool
	}{
		{domain.BookingStatusPending, domain.BookingStatusApproved, true},
		{domain.BookingStatusPending, domain.BookingStatusRejected, true},
		{domain.BookingStatusPending, domain.BookingStatusConfirmed, true},
		{domain.BookingStatusPending, domain.BookingStatusCancelled, true},
		{domain.BookingStatusPending, domain.BookingStatusCompleted, false},
		{domain.BookingStatusApproved, domain.BookingStatusConfirmed, true},
		{domain.BookingStatusApproved, domain.BookingStatusCancelled, true},
		{domain.BookingStatusApproved, domain.BookingStatusRejected, false},
		{domain.BookingStatusConfirmed, domain.BookingStatusCompleted, true},
		{domain.BookingStatusConfirmed, domain.BookingStatusCancelled, true},
		{domain.BookingStatusConfirmed, domain.BookingStatusApproved, false},
		{domain.BookingStatusRejected, domain.BookingStatusConfirmed, false},
		{domain.BookingStatusCancelled, domain.BookingStatusConfirmed, false},
		{domain.BookingStatusCompleted, domain.BookingStatusCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestInvariant_CancellationAndCompletionRace(t *testing.T) {
	t.Parallel()

	// A booking cancellation racing its ride's completion must never
	// settle and refund the same booking twice over repeated runs.
	for run := 0; run < 20; run++ {
		f := newFixture(false, false)
		f.addRide("ride-1", 4)
		f.addDriver("driver-1")
		booking := f.confirmBooking("booking-1", "ride-1", 130.00)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.rideService.CompleteRide(context.Background(), "ride-1", "driver-1")
		}()
		go func() {
			defer wg.Done()
			_, _ = f.bookingService.CancelBooking(context.Background(), service.CancelBookingRequest{
				BookingID:   booking.ID,
				PassengerID: booking.PassengerID,
			})
		}()
		wg.Wait()

		if n := f.paymentRepo.CountByType(domain.PaymentTypeWalletRelease); n > 1 {
			t.Fatalf("run %d: %d wallet releases, want at most 1", run, n)
		}
		balance := f.userRepo.GetUser("driver-1").WalletBalance
		if balance != 0 && balance != 130.00 {
			t.Fatalf("run %d: wallet balance = %v, want 0 or 130.00", run, balance)
		}
	}
}
