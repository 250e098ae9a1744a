package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/geo"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// Geocoder resolves place names to coordinates. Satisfied by *geo.Client.
type Geocoder interface {
	Coordinates(ctx context.Context, place string) (float64, float64, bool, error)
}

// searchRadiusKm bounds how far a ride endpoint may be from the searched
// endpoint to count as a match.
const searchRadiusKm = 5.0

// RideService handles the driver side of the ride lifecycle.
type RideService struct {
	rideRepo            repository.RideRepository
	bookingRepo         repository.BookingRepository
	paymentRepo         repository.PaymentRepository
	fareCalculator      *FareCalculator
	settlementService   *SettlementService
	notificationService *NotificationService
	router              Router
	geocoder            Geocoder
	cacheStore          *redis.CacheStore
}

// NewRideService creates a new RideService. router, geocoder, and cacheStore
// may be nil; rides then keep whatever coordinates and fares the driver
// supplied and reads always hit the database.
func NewRideService(
	rideRepo repository.RideRepository,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	fareCalculator *FareCalculator,
	settlementService *SettlementService,
	notificationService *NotificationService,
	router Router,
	geocoder Geocoder,
	cacheStore *redis.CacheStore,
) *RideService {
	return &RideService{
		rideRepo:            rideRepo,
		bookingRepo:         bookingRepo,
		paymentRepo:         paymentRepo,
		fareCalculator:      fareCalculator,
		settlementService:   settlementService,
		notificationService: notificationService,
		router:              router,
		geocoder:            geocoder,
		cacheStore:          cacheStore,
	}
}

// PostRideRequest contains the parameters for posting a ride.
type PostRideRequest struct {
	DriverID      string
	Source        string
	Destination   string
	SourceLat     *float64
	SourceLng     *float64
	DestLat       *float64
	DestLng       *float64
	DepartureTime time.Time
	Seats         int
	// FarePerSeat is optional; zero or negative means "compute from the
	// route distance".
	FarePerSeat float64
}

// PostRide creates a ride. Missing endpoint coordinates are geocoded from
// the labels on a best-effort basis, the route distance is computed when
// both endpoints resolve, and the per-seat fare is derived from the distance
// unless the driver supplied one.
func (s *RideService) PostRide(ctx context.Context, req PostRideRequest) (*domain.Ride, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.Seats <= 0 {
		return nil, ErrInvalidSeatCount
	}
	if req.DepartureTime.Before(time.Now()) {
		return nil, ErrInvalidDeparture
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		DriverID:       req.DriverID,
		Source:         strings.TrimSpace(req.Source),
		Destination:    strings.TrimSpace(req.Destination),
		SourceLat:      req.SourceLat,
		SourceLng:      req.SourceLng,
		DestLat:        req.DestLat,
		DestLng:        req.DestLng,
		DepartureTime:  req.DepartureTime,
		TotalSeats:     req.Seats,
		AvailableSeats: req.Seats,
		FarePerSeat:    req.FarePerSeat,
		Status:         domain.RideStatusPlanned,
		CreatedAt:      time.Now(),
	}

	s.resolveRoute(ctx, ride)

	if ride.FarePerSeat <= 0 {
		ride.FarePerSeat = s.fareCalculator.PerSeat(ride.DistanceKm)
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	return ride, nil
}

// resolveRoute fills missing endpoint coordinates from the labels and
// computes the route distance. Geocoding and routing failures leave the ride
// as the driver posted it.
func (s *RideService) resolveRoute(ctx context.Context, ride *domain.Ride) {
	if s.geocoder != nil {
		if (ride.SourceLat == nil || ride.SourceLng == nil) && ride.Source != "" {
			if lat, lng, ok, err := s.geocoder.Coordinates(ctx, ride.Source); err == nil && ok {
				ride.SourceLat = &lat
				ride.SourceLng = &lng
			}
		}
		if (ride.DestLat == nil || ride.DestLng == nil) && ride.Destination != "" {
			if lat, lng, ok, err := s.geocoder.Coordinates(ctx, ride.Destination); err == nil && ok {
				ride.DestLat = &lat
				ride.DestLng = &lng
			}
		}
	}

	if !ride.HasRoute() {
		return
	}

	if s.router != nil {
		if km, err := s.router.DistanceKm(ctx, *ride.SourceLat, *ride.SourceLng, *ride.DestLat, *ride.DestLng); err == nil {
			ride.DistanceKm = km
			return
		}
	}

	ride.DistanceKm = geo.Haversine(*ride.SourceLat, *ride.SourceLng, *ride.DestLat, *ride.DestLng)
}

// SearchRidesRequest contains the ride search filters.
type SearchRidesRequest struct {
	Source      string
	Destination string
	SourceLat   *float64
	SourceLng   *float64
	DestLat     *float64
	DestLng     *float64
	Date        *time.Time
	MinFare     *float64
	MaxFare     *float64
}

// SearchRides returns open rides matching the filters. When the query
// carries coordinates, rides whose endpoints lie within 5 km of the queried
// endpoints match; otherwise matching falls back to a case-insensitive label
// comparison.
func (s *RideService) SearchRides(ctx context.Context, req SearchRidesRequest) ([]*domain.Ride, error) {
	rides, err := s.rideRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.Ride
	for _, ride := range rides {
		if !ride.Status.IsOpen() {
			continue
		}
		if !s.matchesEndpoints(req, ride) {
			continue
		}
		if req.Date != nil {
			y1, m1, d1 := req.Date.Date()
			y2, m2, d2 := ride.DepartureTime.Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		}
		if req.MinFare != nil && ride.FarePerSeat < *req.MinFare {
			continue
		}
		if req.MaxFare != nil && ride.FarePerSeat > *req.MaxFare {
			continue
		}
		matched = append(matched, ride)
	}

	return matched, nil
}

// matchesEndpoints applies the radius match when both the query and the ride
// carry coordinates for an endpoint, and the text match otherwise.
func (s *RideService) matchesEndpoints(req SearchRidesRequest, ride *domain.Ride) bool {
	if req.SourceLat != nil && req.SourceLng != nil && ride.SourceLat != nil && ride.SourceLng != nil {
		if geo.Haversine(*req.SourceLat, *req.SourceLng, *ride.SourceLat, *ride.SourceLng) > searchRadiusKm {
			return false
		}
	} else if req.Source != "" && !strings.EqualFold(strings.TrimSpace(req.Source), ride.Source) {
		return false
	}

	if req.DestLat != nil && req.DestLng != nil && ride.DestLat != nil && ride.DestLng != nil {
		if geo.Haversine(*req.DestLat, *req.DestLng, *ride.DestLat, *ride.DestLng) > searchRadiusKm {
			return false
		}
	} else if req.Destination != "" && !strings.EqualFold(strings.TrimSpace(req.Destination), ride.Destination) {
		return false
	}

	return true
}

// GetRide retrieves a ride by ID, serving recent reads from the cache.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetRide(ctx, &redis.CachedRide{
			ID:             ride.ID,
			DriverID:       ride.DriverID,
			Source:         ride.Source,
			Destination:    ride.Destination,
			Status:         string(ride.Status),
			AvailableSeats: ride.AvailableSeats,
			FarePerSeat:    ride.FarePerSeat,
		})
	}

	return ride, nil
}

// GetRideSnapshot serves the lightweight cached view of a ride, falling back
// to the database on a miss.
func (s *RideService) GetRideSnapshot(ctx context.Context, rideID string) (*redis.CachedRide, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetRide(ctx, rideID); err == nil && cached != nil {
			return cached, nil
		}
	}

	ride, err := s.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	return &redis.CachedRide{
		ID:             ride.ID,
		DriverID:       ride.DriverID,
		Source:         ride.Source,
		Destination:    ride.Destination,
		Status:         string(ride.Status),
		AvailableSeats: ride.AvailableSeats,
		FarePerSeat:    ride.FarePerSeat,
	}, nil
}

// GetRidesForDriver retrieves all rides posted by a driver.
func (s *RideService) GetRidesForDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.rideRepo.GetByDriverID(ctx, driverID)
}

// CancelRide cancels a ride and cascades the cancellation: every booking
// still holding seats moves to CANCELLED, its payment is refunded, and its
// passenger is notified. The ride row is kept as an archive rather than
// deleted.
func (s *RideService) CancelRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID != driverID {
		return nil, ErrNotRideDriver
	}

	if ride.Status == domain.RideStatusCancelled {
		return nil, ErrRideAlreadyCancelled
	}
	if ride.Status == domain.RideStatusCompleted {
		return nil, ErrRideAlreadyCompleted
	}

	ride.Status = domain.RideStatusCancelled
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.GetByRideID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	for _, booking := range bookings {
		if booking.Status.IsTerminal() {
			continue
		}

		booking.Status = domain.BookingStatusCancelled
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}

		payment, err := s.paymentRepo.GetByBookingAndType(ctx, booking.ID, domain.PaymentTypeBooking)
		if err != nil {
			return nil, err
		}
		if payment != nil && payment.Status != domain.PaymentStatusRefunded {
			if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusRefunded); err != nil {
				return nil, err
			}
		}

		if s.notificationService != nil {
			_ = s.notificationService.NotifyRideCancelled(ctx, booking, ride)
		}
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateRide(ctx, rideID)
	}

	return ride, nil
}

// CompleteRide marks a ride COMPLETED and settles every CONFIRMED booking
// through the wallet settlement. Settlement is idempotent, so bookings
// already settled on the payment path are skipped rather than credited
// twice.
func (s *RideService) CompleteRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID != driverID {
		return nil, ErrNotRideDriver
	}

	if ride.Status == domain.RideStatusCompleted {
		return nil, ErrRideAlreadyCompleted
	}
	if ride.Status == domain.RideStatusCancelled {
		return nil, ErrRideAlreadyCancelled
	}

	ride.Status = domain.RideStatusCompleted
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if err := s.settleBookings(ctx, ride); err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateRide(ctx, rideID)
	}

	return ride, nil
}

// settleBookings settles every CONFIRMED booking of a completed ride.
func (s *RideService) settleBookings(ctx context.Context, ride *domain.Ride) error {
	bookings, err := s.bookingRepo.GetByRideID(ctx, ride.ID)
	if err != nil {
		return err
	}

	for _, booking := range bookings {
		if booking.Status != domain.BookingStatusConfirmed {
			continue
		}

		if err := s.settlementService.Settle(ctx, booking.ID); err != nil && err != ErrAlreadySettled {
			return err
		}

		if s.notificationService != nil {
			_ = s.notificationService.NotifyRideCompleted(ctx, booking, ride)
		}
	}

	return nil
}

// CompleteDeparted completes every ride whose departure time has passed and
// that is still in an open state, settling bookings the same way an explicit
// completion does. Returns the number of rides completed. Run periodically
// from the sweep loop.
func (s *RideService) CompleteDeparted(ctx context.Context, now time.Time) (int, error) {
	rides, err := s.rideRepo.GetDepartedActive(ctx, now)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, ride := range rides {
		if !ride.Status.IsOpen() {
			continue
		}

		ride.Status = domain.RideStatusCompleted
		if err := s.rideRepo.Update(ctx, ride); err != nil {
			return completed, err
		}

		if err := s.settleBookings(ctx, ride); err != nil {
			return completed, err
		}

		if s.cacheStore != nil {
			_ = s.cacheStore.InvalidateRide(ctx, ride.ID)
		}

		completed++
	}

	return completed, nil
}
