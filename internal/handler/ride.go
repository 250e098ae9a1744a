package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService    *service.RideService
	bookingService *service.BookingService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService, bookingService *service.BookingService) *RideHandler {
	return &RideHandler{
		rideService:    rideService,
		bookingService: bookingService,
	}
}

// PostRideRequest is the HTTP request body for posting a ride.
type PostRideRequest struct {
	DriverID      string   `json:"driver_id"`
	Source        string   `json:"source"`
	Destination   string   `json:"destination"`
	SourceLat     *float64 `json:"source_lat,omitempty"`
	SourceLng     *float64 `json:"source_lng,omitempty"`
	DestLat       *float64 `json:"dest_lat,omitempty"`
	DestLng       *float64 `json:"dest_lng,omitempty"`
	DepartureTime string   `json:"departure_time"`
	Seats         int      `json:"seats"`
	FarePerSeat   float64  `json:"fare_per_seat,omitempty"`
}

// RideResponse is the HTTP response for ride data.
type RideResponse struct {
	ID             string   `json:"id"`
	DriverID       string   `json:"driver_id"`
	Source         string   `json:"source"`
	Destination    string   `json:"destination"`
	SourceLat      *float64 `json:"source_lat,omitempty"`
	SourceLng      *float64 `json:"source_lng,omitempty"`
	DestLat        *float64 `json:"dest_lat,omitempty"`
	DestLng        *float64 `json:"dest_lng,omitempty"`
	DepartureTime  string   `json:"departure_time"`
	TotalSeats     int      `json:"total_seats"`
	AvailableSeats int      `json:"available_seats"`
	FarePerSeat    float64  `json:"fare_per_seat"`
	DistanceKm     float64  `json:"distance_km"`
	Status         string   `json:"status"`
}

func toRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:             r.ID,
		DriverID:       r.DriverID,
		Source:         r.Source,
		Destination:    r.Destination,
		SourceLat:      r.SourceLat,
		SourceLng:      r.SourceLng,
		DestLat:        r.DestLat,
		DestLng:        r.DestLng,
		DepartureTime:  r.DepartureTime.Format(time.RFC3339),
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.AvailableSeats,
		FarePerSeat:    r.FarePerSeat,
		DistanceKm:     r.DistanceKm,
		Status:         string(r.Status),
	}
}

// PostRide handles POST /v1/rides
func (h *RideHandler) PostRide(c *gin.Context) {
	var req PostRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "departure_time must be RFC3339"})
		return
	}

	ride, err := h.rideService.PostRide(c.Request.Context(), service.PostRideRequest{
		DriverID:      req.DriverID,
		Source:        req.Source,
		Destination:   req.Destination,
		SourceLat:     req.SourceLat,
		SourceLng:     req.SourceLng,
		DestLat:       req.DestLat,
		DestLng:       req.DestLng,
		DepartureTime: departure,
		Seats:         req.Seats,
		FarePerSeat:   req.FarePerSeat,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// RideSnapshotResponse is the lightweight ride view served from the cache.
type RideSnapshotResponse struct {
	ID             string  `json:"id"`
	DriverID       string  `json:"driver_id"`
	Source         string  `json:"source"`
	Destination    string  `json:"destination"`
	Status         string  `json:"status"`
	AvailableSeats int     `json:"available_seats"`
	FarePerSeat    float64 `json:"fare_per_seat"`
}

// GetRideSnapshot handles GET /v1/rides/:id/snapshot
func (h *RideHandler) GetRideSnapshot(c *gin.Context) {
	snapshot, err := h.rideService.GetRideSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, RideSnapshotResponse{
		ID:             snapshot.ID,
		DriverID:       snapshot.DriverID,
		Source:         snapshot.Source,
		Destination:    snapshot.Destination,
		Status:         snapshot.Status,
		AvailableSeats: snapshot.AvailableSeats,
		FarePerSeat:    snapshot.FarePerSeat,
	})
}

// SearchRides handles GET /v1/rides/search
func (h *RideHandler) SearchRides(c *gin.Context) {
	req := service.SearchRidesRequest{
		Source:      c.Query("source"),
		Destination: c.Query("destination"),
	}

	if lat, lng, ok := queryCoords(c, "source_lat", "source_lng"); ok {
		req.SourceLat = &lat
		req.SourceLng = &lng
	}
	if lat, lng, ok := queryCoords(c, "dest_lat", "dest_lng"); ok {
		req.DestLat = &lat
		req.DestLng = &lng
	}
	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		req.Date = &parsed
	}
	if v, ok := queryFloat(c, "min_fare"); ok {
		req.MinFare = &v
	}
	if v, ok := queryFloat(c, "max_fare"); ok {
		req.MaxFare = &v
	}

	rides, err := h.rideService.SearchRides(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetDriverRides handles GET /v1/drivers/:id/rides
func (h *RideHandler) GetDriverRides(c *gin.Context) {
	rides, err := h.rideService.GetRidesForDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}

	respondJSON(c, http.StatusOK, response)
}

// DriverActionRequest is the HTTP request body for driver-owned ride
// transitions.
type DriverActionRequest struct {
	DriverID string `json:"driver_id"`
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CancelRide(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CompleteRide(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetRideBookings handles GET /v1/rides/:id/bookings?driver_id=...
func (h *RideHandler) GetRideBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetBookingsForRide(c.Request.Context(), c.Param("id"), c.Query("driver_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b))
	}

	respondJSON(c, http.StatusOK, response)
}
