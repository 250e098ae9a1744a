package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 2. BOOKING CREATION AND APPROVAL
// ──────────────────────────────────────────────

// fixture wires the service graph against mock repositories.
type fixture struct {
	rideRepo          *MockRideRepository
	bookingRepo       *MockBookingRepository
	paymentRepo       *MockPaymentRepository
	userRepo          *MockUserRepository
	bookingService    *service.BookingService
	paymentService    *service.PaymentService
	settlementService *service.SettlementService
	rideService       *service.RideService
}

func newFixture(approvalRequired, settleOnPayment bool) *fixture {
	rideRepo := NewMockRideRepository()
	bookingRepo := NewMockBookingRepository()
	paymentRepo := NewMockPaymentRepository()
	userRepo := NewMockUserRepository()

	notificationService := service.NewNotificationService()
	ticketService := service.NewTicketService(notificationService)
	fareCalculator := service.NewFareCalculator(50, 8)
	settlementService := service.NewSettlementService(nil, rideRepo, bookingRepo, paymentRepo, userRepo)
	paymentService := service.NewPaymentService(
		paymentRepo, bookingRepo, service.NewMockGateway(), settlementService,
		notificationService, "inr", settleOnPayment,
	)
	bookingService := service.NewBookingService(
		rideRepo, bookingRepo, paymentRepo, fareCalculator, paymentService,
		ticketService, notificationService, &MockRouter{Distance: 10},
		NewMockLockStore(), approvalRequired,
	)
	rideService := service.NewRideService(
		rideRepo, bookingRepo, paymentRepo, fareCalculator, settlementService,
		notificationService, &MockRouter{Distance: 10}, &MockGeocoder{}, nil,
	)

	return &fixture{
		rideRepo:          rideRepo,
		bookingRepo:       bookingRepo,
		paymentRepo:       paymentRepo,
		userRepo:          userRepo,
		bookingService:    bookingService,
		paymentService:    paymentService,
		settlementService: settlementService,
		rideService:       rideService,
	}
}

// addRide seeds an open ride with the given seats and a 10km route priced at
// 130.00 per seat.
func (f *fixture) addRide(id string, seats int) *domain.Ride {
	ride := &domain.Ride{
		ID:             id,
		DriverID:       "driver-1",
		Source:         "Kochi",
		Destination:    "Bangalore",
		DepartureTime:  time.Now().Add(24 * time.Hour),
		TotalSeats:     seats,
		AvailableSeats: seats,
		FarePerSeat:    130.00,
		DistanceKm:     10,
		Status:         domain.RideStatusPlanned,
	}
	f.rideRepo.AddRide(ride)
	return ride
}

func TestBooking_DirectWorkflowConfirmsAtCreation(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:        "ride-1",
		PassengerID:   "passenger-1",
		Seats:         2,
		PaymentMethod: domain.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", booking.Status)
	}
	if booking.FareAmount != 260.00 {
		t.Errorf("fare = %v, want 260.00 (130.00 x 2 seats)", booking.FareAmount)
	}
	if got := f.rideRepo.GetRide("ride-1").AvailableSeats; got != 2 {
		t.Errorf("available seats = %d, want 2", got)
	}
}

func TestBooking_ApprovalWorkflowStartsPending(t *testing.T) {
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

	if booking.Status != domain.BookingStatusPending {
		t.Errorf("status = %s, want PENDING", booking.Status)
	}
	// Seats are held while the driver decides.
	if got := f.rideRepo.GetRide("ride-1").AvailableSeats; got != 3 {
		t.Errorf("available seats = %d, want 3", got)
	}
}

func TestBooking_RejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	tests := []struct {
		name    string
		req     service.CreateBookingRequest
		wantErr error
	}{
		{
			"empty ride id",
			service.CreateBookingRequest{PassengerID: "p1", Seats: 1},
			service.ErrInvalidRideID,
		},
		{
			"empty passenger id",
			service.CreateBookingRequest{RideID: "ride-1", Seats: 1},
			service.ErrInvalidPassengerID,
		},
		{
			"zero seats",
			service.CreateBookingRequest{RideID: "ride-1", PassengerID: "p1", Seats: 0},
			service.ErrInvalidSeatCount,
		},
		{
			"negative seats",
			service.CreateBookingRequest{RideID: "ride-1", PassengerID: "p1", Seats: -2},
			service.ErrInvalidSeatCount,
		},
		{
			"unknown payment method",
			service.CreateBookingRequest{RideID: "ride-1", PassengerID: "p1", Seats: 1, PaymentMethod: "CHEQUE"},
			service.ErrInvalidPaymentMethod,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := f.bookingService.CreateBooking(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBooking_TooManySeatsFails(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 2)

	_, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:      "ride-1",
		PassengerID: "passenger-1",
		Seats:       3,
	})
	if !errors.Is(err, service.ErrInsufficientSeats) {
		t.Fatalf("err = %v, want ErrInsufficientSeats", err)
	}

	if got := f.rideRepo.GetRide("ride-1").AvailableSeats; got != 2 {
		t.Errorf("available seats = %d, want 2 (unchanged)", got)
	}
}

func TestBooking_DuplicateActiveBookingRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	_, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:      "ride-1",
		PassengerID: "passenger-1",
		Seats:       1,
	})
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err = f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:      "ride-1",
		PassengerID: "passenger-1",
		Seats:       1,
	})
	if !errors.Is(err, service.ErrAlreadyBooked) {
		t.Errorf("err = %v, want ErrAlreadyBooked", err)
	}
}

func TestBooking_SeatsReleasedWhenPersistFails(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)
	f.bookingRepo.CreateError = errors.New("db down")

	_, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:      "ride-1",
		PassengerID: "passenger-1",
		Seats:       2,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	// The reservation must not outlive the failed booking.
	if got := f.rideRepo.GetRide("ride-1").AvailableSeats; got != 4 {
		t.Errorf("available seats = %d, want 4 after compensation", got)
	}
}

func TestBooking_ConcurrentLastSeat(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
				RideID:      "ride-1",
				PassengerID: []string{"passenger-1", "passenger-2"}[i],
				Seats:       1,
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	succeeded, insufficient := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrInsufficientSeats):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 || insufficient != 1 {
		t.Errorf("got %d successes and %d seat failures, want exactly 1 of each", succeeded, insufficient)
	}
	if got := f.rideRepo.GetRide("ride-1").AvailableSeats; got != 0 {
		t.Errorf("available seats = %d, want 0", got)
	}
}

func TestBooking_DriverRejectionRestoresSeats(t *testing.T) {
	t.Parallel()

	f := newFixture(true, false)
	f.addRide("ride-1", 4)

	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:      "ride-1",
		PassengerID: "passenger-1",
		Seats:       2,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	rejected, err := f.bookingService.RespondToBooking(context.Background(), service.RespondToBookingRequest{
		BookingID: booking.ID,
		DriverID:  "driver-1",
		Decision:  domain.BookingStatusRejected,
	})
	if err != nil {
		t.Fatalf("RespondToBooking failed: %v", err)
	}

	if rejected.Status != domain.BookingStatusRejected {
		t.Errorf("status = %s, want REJECTED", rejected.Status)
	}
	if got := f.rideRepo.GetRide("ride-1").AvailableSeats; got != 4 {
		t.Errorf("available seats = %d, want 4 restored", got)
	}
	if n := f.paymentRepo.CountByType(domain.PaymentTypeBooking); n != 0 {
		t.Errorf("payment count = %d, want 0 for rejected booking", n)
	}
}

func TestBooking_OnlyRideDriverMayRespond(t *testing.T) {
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

	_, err = f.bookingService.RespondToBooking(context.Background(), service.RespondToBookingRequest{
		BookingID: booking.ID,
		DriverID:  "driver-2",
		Decision:  domain.BookingStatusApproved,
	})
	if !errors.Is(err, service.ErrNotRideDriver) {
		t.Errorf("err = %v, want ErrNotRideDriver", err)
	}
}

func TestBooking_DecisionMustBeApproveOrReject(t *testing.T) {
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

	_, err = f.bookingService.RespondToBooking(context.Background(), service.RespondToBookingRequest{
		BookingID: booking.ID,
		DriverID:  "driver-1",
		Decision:  domain.BookingStatusCompleted,
	})
	if !errors.Is(err, service.ErrInvalidDecision) {
		t.Errorf("err = %v, want ErrInvalidDecision", err)
	}
}

func TestBooking_RespondTwiceFails(t *testing.T) {
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

	if _, err := f.bookingService.RespondToBooking(context.Background(), service.RespondToBookingRequest{
		BookingID: booking.ID,
		DriverID:  "driver-1",
		Decision:  domain.BookingStatusApproved,
	}); err != nil {
		t.Fatalf("first response failed: %v", err)
	}

	_, err = f.bookingService.RespondToBooking(context.Background(), service.RespondToBookingRequest{
		BookingID: booking.ID,
		DriverID:  "driver-1",
		Decision:  domain.BookingStatusRejected,
	})
	if !errors.Is(err, service.ErrInvalidBookingState) {
		t.Errorf("err = %v, want ErrInvalidBookingState", err)
	}
}

func TestBooking_CustomRouteRepricesFare(t *testing.T) {
	t.Parallel()

	f := newFixture(false, false)
	f.addRide("ride-1", 4)

	lat1, lng1 := 9.93, 76.26
	lat2, lng2 := 12.97, 77.59
	booking, err := f.bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		RideID:      "ride-1",
		PassengerID: "passenger-1",
		Seats:       1,
		PickupLat:   &lat1,
		PickupLng:   &lng1,
		DropoffLat:  &lat2,
		DropoffLng:  &lng2,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	// MockRouter reports 10km, so the repriced fare matches the ride's.
	if booking.FareAmount != 130.00 {
		t.Errorf("fare = %v, want 130.00 from custom route", booking.FareAmount)
	}
	if booking.DistanceKm != 10 {
		t.Errorf("distance = %v, want 10", booking.DistanceKm)
	}
}
