package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest is the HTTP request body for creating a booking.
type CreateBookingRequest struct {
	RideID        string   `json:"ride_id"`
	PassengerID   string   `json:"passenger_id"`
	Seats         int      `json:"seats"`
	PaymentMethod string   `json:"payment_method,omitempty"` // CASH, CARD, UPI
	PickupLat     *float64 `json:"pickup_lat,omitempty"`
	PickupLng     *float64 `json:"pickup_lng,omitempty"`
	DropoffLat    *float64 `json:"dropoff_lat,omitempty"`
	DropoffLng    *float64 `json:"dropoff_lng,omitempty"`
}

// BookingResponse is the HTTP response for booking data.
type BookingResponse struct {
	ID            string  `json:"id"`
	RideID        string  `json:"ride_id"`
	PassengerID   string  `json:"passenger_id"`
	Seats         int     `json:"seats"`
	Status        string  `json:"status"`
	FareAmount    float64 `json:"fare_amount"`
	PaymentMethod string  `json:"payment_method"`
	PaymentStatus string  `json:"payment_status"`
	DistanceKm    float64 `json:"distance_km"`
	CreatedAt     string  `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		RideID:        b.RideID,
		PassengerID:   b.PassengerID,
		Seats:         b.Seats,
		Status:        string(b.Status),
		FareAmount:    b.FareAmount,
		PaymentMethod: string(b.PaymentMethod),
		PaymentStatus: string(b.PaymentStatus),
		DistanceKm:    b.DistanceKm,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}

// CreateBooking handles POST /v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), service.CreateBookingRequest{
		RideID:        req.RideID,
		PassengerID:   req.PassengerID,
		Seats:         req.Seats,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		PickupLat:     req.PickupLat,
		PickupLng:     req.PickupLng,
		DropoffLat:    req.DropoffLat,
		DropoffLng:    req.DropoffLng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// RespondToBookingRequest is the HTTP request body for the driver decision.
type RespondToBookingRequest struct {
	DriverID string `json:"driver_id"`
	Decision string `json:"decision"` // APPROVED or REJECTED
}

// RespondToBooking handles POST /v1/bookings/:id/respond
func (h *BookingHandler) RespondToBooking(c *gin.Context) {
	var req RespondToBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.RespondToBooking(c.Request.Context(), service.RespondToBookingRequest{
		BookingID: c.Param("id"),
		DriverID:  req.DriverID,
		Decision:  domain.BookingStatus(req.Decision),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// PayForBookingRequest is the HTTP request body for paying a booking.
type PayForBookingRequest struct {
	PassengerID string `json:"passenger_id"`
}

// PayForBookingResponse is the HTTP response for paying a booking.
type PayForBookingResponse struct {
	Booking      BookingResponse `json:"booking"`
	Payment      PaymentResponse `json:"payment"`
	IntentID     string          `json:"intent_id,omitempty"`
	ClientSecret string          `json:"client_secret,omitempty"`
	Ticket       string          `json:"ticket,omitempty"`
}

// PayForBooking handles POST /v1/bookings/:id/pay
func (h *BookingHandler) PayForBooking(c *gin.Context) {
	var req PayForBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.bookingService.PayForBooking(c.Request.Context(), service.PayForBookingRequest{
		BookingID:   c.Param("id"),
		PassengerID: req.PassengerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := PayForBookingResponse{
		Booking:      toBookingResponse(result.Booking),
		Payment:      toPaymentResponse(result.Payment),
		IntentID:     result.IntentID,
		ClientSecret: result.ClientSecret,
	}
	if result.Ticket != nil {
		response.Ticket = result.Ticket.ID
	}

	respondJSON(c, http.StatusOK, response)
}

// CancelBookingRequest is the HTTP request body for cancelling a booking.
type CancelBookingRequest struct {
	PassengerID string `json:"passenger_id"`
}

// CancelBooking handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), service.CancelBookingRequest{
		BookingID:   c.Param("id"),
		PassengerID: req.PassengerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// GetPassengerBookings handles GET /v1/passengers/:id/bookings
func (h *BookingHandler) GetPassengerBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetBookingsForPassenger(c.Request.Context(), c.Param("id"))
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
