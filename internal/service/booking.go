package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// Router resolves road distances between coordinate pairs. Satisfied by
// *geo.Client.
type Router interface {
	DistanceKm(ctx context.Context, lat1, lng1, lat2, lng2 float64) (float64, error)
}

// BookingService handles the passenger side of the booking lifecycle.
type BookingService struct {
	rideRepo            repository.RideRepository
	bookingRepo         repository.BookingRepository
	paymentRepo         repository.PaymentRepository
	fareCalculator      *FareCalculator
	paymentService      *PaymentService
	ticketService       *TicketService
	notificationService *NotificationService
	router              Router
	lockStore           redis.LockStoreInterface
	approvalRequired    bool
}

// NewBookingService creates a new BookingService. router and lockStore may
// be nil; bookings then fall back to the ride's route distance and skip the
// per-ride creation lock.
func NewBookingService(
	rideRepo repository.RideRepository,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	fareCalculator *FareCalculator,
	paymentService *PaymentService,
	ticketService *TicketService,
	notificationService *NotificationService,
	router Router,
	lockStore redis.LockStoreInterface,
	approvalRequired bool,
) *BookingService {
	return &BookingService{
		rideRepo:            rideRepo,
		bookingRepo:         bookingRepo,
		paymentRepo:         paymentRepo,
		fareCalculator:      fareCalculator,
		paymentService:      paymentService,
		ticketService:       ticketService,
		notificationService: notificationService,
		router:              router,
		lockStore:           lockStore,
		approvalRequired:    approvalRequired,
	}
}

// CreateBookingRequest contains the parameters for creating a booking.
type CreateBookingRequest struct {
	RideID        string
	PassengerID   string
	Seats         int
	PaymentMethod domain.PaymentMethod
	// Optional pickup/dropoff override. Used for fare distance only when
	// all four coordinates are present and non-zero; otherwise the ride's
	// own route prices the booking.
	PickupLat  *float64
	PickupLng  *float64
	DropoffLat *float64
	DropoffLng *float64
}

// CreateBooking reserves seats on a ride and prices the booking. The seat
// reservation is a conditional decrement, so two passengers racing for the
// last seat cannot both win; every failure after the reservation releases
// the seats again.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if req.Seats <= 0 {
		return nil, ErrInvalidSeatCount
	}

	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCash
	}
	if method != domain.PaymentMethodCash && method != domain.PaymentMethodCard && method != domain.PaymentMethodUPI {
		return nil, ErrInvalidPaymentMethod
	}

	// Serialize booking creation per ride. The lock is an optimization to
	// reduce conflicting reservations; correctness comes from the
	// conditional seat decrement below.
	if s.lockStore != nil {
		acquired, err := s.lockStore.AcquireRideLock(ctx, req.RideID, 10*time.Second)
		if err == nil && acquired {
			defer func() { _ = s.lockStore.ReleaseRideLock(ctx, req.RideID) }()
		}
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if !ride.Status.IsOpen() {
		return nil, ErrRideNotOpen
	}
	if ride.DriverID == req.PassengerID {
		return nil, ErrAlreadyBooked
	}

	alreadyBooked, err := s.bookingRepo.HasActiveBooking(ctx, req.PassengerID, req.RideID)
	if err != nil {
		return nil, err
	}
	if alreadyBooked {
		return nil, ErrAlreadyBooked
	}

	if err := s.rideRepo.ReserveSeats(ctx, req.RideID, req.Seats); err != nil {
		if err == repository.ErrInsufficientSeats {
			return nil, ErrInsufficientSeats
		}
		return nil, err
	}

	booking, err := s.buildBooking(ctx, req, ride, method)
	if err != nil {
		// Give the seats back; the reservation must not outlive a failed
		// booking.
		_ = s.rideRepo.ReleaseSeats(ctx, req.RideID, req.Seats)
		return nil, err
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		_ = s.rideRepo.ReleaseSeats(ctx, req.RideID, req.Seats)
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyNewBooking(ctx, booking, ride)
	}

	return booking, nil
}

// buildBooking prices the request and assembles the booking row.
func (s *BookingService) buildBooking(ctx context.Context, req CreateBookingRequest, ride *domain.Ride, method domain.PaymentMethod) (*domain.Booking, error) {
	distanceKm := ride.DistanceKm
	perSeat := ride.FarePerSeat

	if custom, lat1, lng1, lat2, lng2 := customRoute(req); custom {
		if s.router != nil {
			km, err := s.router.DistanceKm(ctx, lat1, lng1, lat2, lng2)
			if err != nil {
				return nil, err
			}
			distanceKm = km
		}
		perSeat = s.fareCalculator.PerSeat(distanceKm)
	} else if perSeat <= 0 {
		perSeat = s.fareCalculator.PerSeat(distanceKm)
	}

	status := domain.BookingStatusConfirmed
	if s.approvalRequired {
		status = domain.BookingStatusPending
	}

	return &domain.Booking{
		ID:            uuid.New().String(),
		RideID:        req.RideID,
		PassengerID:   req.PassengerID,
		Seats:         req.Seats,
		Status:        status,
		FareAmount:    s.fareCalculator.Total(perSeat, req.Seats),
		PaymentMethod: method,
		PaymentStatus: domain.PaymentStatusUnpaid,
		PickupLat:     req.PickupLat,
		PickupLng:     req.PickupLng,
		DropoffLat:    req.DropoffLat,
		DropoffLng:    req.DropoffLng,
		DistanceKm:    distanceKm,
		CreatedAt:     time.Now(),
	}, nil
}

// customRoute reports whether the request carries a usable pickup/dropoff
// override. A zero coordinate means "not set".
func customRoute(req CreateBookingRequest) (bool, float64, float64, float64, float64) {
	coords := []*float64{req.PickupLat, req.PickupLng, req.DropoffLat, req.DropoffLng}
	for _, c := range coords {
		if c == nil || *c == 0 {
			return false, 0, 0, 0, 0
		}
	}
	return true, *req.PickupLat, *req.PickupLng, *req.DropoffLat, *req.DropoffLng
}

// RespondToBookingRequest contains the driver's decision on a pending
// booking.
type RespondToBookingRequest struct {
	BookingID string
	DriverID  string
	Decision  domain.BookingStatus
}

// RespondToBooking applies the driver's APPROVED/REJECTED decision to a
// pending booking. Rejection releases the reserved seats.
func (s *BookingService) RespondToBooking(ctx context.Context, req RespondToBookingRequest) (*domain.Booking, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.Decision != domain.BookingStatusApproved && req.Decision != domain.BookingStatusRejected {
		return nil, ErrInvalidDecision
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID != req.DriverID {
		return nil, ErrNotRideDriver
	}

	if !booking.Status.CanTransitionTo(req.Decision) {
		return nil, ErrInvalidBookingState
	}

	booking.Status = req.Decision
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	if req.Decision == domain.BookingStatusRejected {
		if err := s.rideRepo.ReleaseSeats(ctx, booking.RideID, booking.Seats); err != nil {
			return nil, err
		}
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyBookingDecision(ctx, booking, ride, req.Decision == domain.BookingStatusApproved)
	}

	return booking, nil
}

// PayForBookingRequest contains the parameters for paying a booking.
type PayForBookingRequest struct {
	BookingID   string
	PassengerID string
}

// PayForBookingResponse contains the booking, the payment row, and for card
// payments the provider handles needed to complete the charge client-side.
type PayForBookingResponse struct {
	Booking      *domain.Booking
	Payment      *domain.Payment
	IntentID     string
	ClientSecret string
	Ticket       *Ticket
}

// PayForBooking records payment for a booking the passenger is allowed to
// pay. Cash bookings confirm immediately with an UNPAID payment collected in
// person; card/UPI bookings get a PENDING payment and a gateway intent, and
// confirm on the payment callback.
func (s *BookingService) PayForBooking(ctx context.Context, req PayForBookingRequest) (*PayForBookingResponse, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.PassengerID != req.PassengerID {
		return nil, ErrNotBookingPassenger
	}

	switch booking.Status {
	case domain.BookingStatusApproved:
		// Gated workflow: approved bookings pay to confirm.
	case domain.BookingStatusConfirmed:
		// Direct workflow: bookings confirm at creation and pay afterwards.
	default:
		return nil, ErrInvalidBookingState
	}

	ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentMethod == domain.PaymentMethodCash {
		return s.payCash(ctx, booking, ride)
	}

	recorded, err := s.paymentService.Record(ctx, RecordPaymentRequest{
		Booking: booking,
		Status:  domain.PaymentStatusPending,
	})
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus != domain.PaymentStatusPending {
		booking.PaymentStatus = domain.PaymentStatusPending
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}
	}

	return &PayForBookingResponse{
		Booking:      booking,
		Payment:      recorded.Payment,
		IntentID:     recorded.IntentID,
		ClientSecret: recorded.ClientSecret,
	}, nil
}

// payCash records the in-person payment and confirms the booking outright.
func (s *BookingService) payCash(ctx context.Context, booking *domain.Booking, ride *domain.Ride) (*PayForBookingResponse, error) {
	recorded, err := s.paymentService.Record(ctx, RecordPaymentRequest{
		Booking: booking,
		Status:  domain.PaymentStatusUnpaid,
	})
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusConfirmed {
		booking.Status = domain.BookingStatusConfirmed
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}
	}

	resp := &PayForBookingResponse{Booking: booking, Payment: recorded.Payment}

	if s.ticketService != nil {
		ticket, err := s.ticketService.Issue(ctx, booking, ride, recorded.Payment)
		if err == nil {
			resp.Ticket = ticket
		}
	}

	return resp, nil
}

// CancelBookingRequest contains the parameters for cancelling a booking.
type CancelBookingRequest struct {
	BookingID   string
	PassengerID string
}

// CancelBooking cancels the passenger's booking, releases its seats, and
// refunds any recorded payment. Cancelling twice returns
// ErrBookingAlreadyCancelled.
func (s *BookingService) CancelBooking(ctx context.Context, req CancelBookingRequest) (*domain.Booking, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.PassengerID != req.PassengerID {
		return nil, ErrNotBookingPassenger
	}

	if booking.Status == domain.BookingStatusCancelled {
		return nil, ErrBookingAlreadyCancelled
	}

	if !booking.Status.CanTransitionTo(domain.BookingStatusCancelled) {
		return nil, ErrInvalidBookingState
	}

	wasHoldingSeats := booking.Status.IsActive()

	booking.Status = domain.BookingStatusCancelled
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	if wasHoldingSeats {
		if err := s.rideRepo.ReleaseSeats(ctx, booking.RideID, booking.Seats); err != nil {
			return nil, err
		}
	}

	payment, err := s.paymentRepo.GetByBookingAndType(ctx, booking.ID, domain.PaymentTypeBooking)
	if err != nil {
		return nil, err
	}
	if payment != nil && payment.Status != domain.PaymentStatusRefunded {
		if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusRefunded); err != nil {
			return nil, err
		}
		booking.PaymentStatus = domain.PaymentStatusRefunded
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}
	}

	if s.notificationService != nil {
		ride, rideErr := s.rideRepo.GetByID(ctx, booking.RideID)
		if rideErr == nil {
			_ = s.notificationService.NotifyBookingCancelled(ctx, booking, ride)
		}
	}

	return booking, nil
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	return s.bookingRepo.GetByID(ctx, bookingID)
}

// GetBookingsForPassenger retrieves all bookings made by a passenger.
func (s *BookingService) GetBookingsForPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}

	return s.bookingRepo.GetByPassengerID(ctx, passengerID)
}

// GetBookingsForRide retrieves all bookings on a ride, for its driver.
func (s *BookingService) GetBookingsForRide(ctx context.Context, rideID, driverID string) ([]*domain.Booking, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID != driverID {
		return nil, ErrNotRideDriver
	}

	return s.bookingRepo.GetByRideID(ctx, rideID)
}
