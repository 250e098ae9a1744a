package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carpool/internal/repository"
	"carpool/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidSeatCount),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidTransactionRef),
		errors.Is(err, service.ErrNotBookingPayment),
		errors.Is(err, service.ErrInvalidDecision),
		errors.Is(err, service.ErrInvalidDeparture),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInsufficientSeats),
		errors.Is(err, service.ErrAlreadyBooked):
		return http.StatusBadRequest

	// Unauthorized - actor is not the ride's driver
	case errors.Is(err, service.ErrNotRideDriver):
		return http.StatusUnauthorized

	// Forbidden - actor is not the booking's passenger
	case errors.Is(err, service.ErrNotBookingPassenger):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrInvalidBookingState),
		errors.Is(err, service.ErrBookingAlreadyCancelled),
		errors.Is(err, service.ErrRideAlreadyCompleted),
		errors.Is(err, service.ErrRideAlreadyCancelled),
		errors.Is(err, service.ErrRideNotOpen),
		errors.Is(err, service.ErrAlreadySettled),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// queryFloat parses an optional float query parameter.
func queryFloat(c *gin.Context, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryCoords parses an optional coordinate pair; both halves must parse for
// the pair to count.
func queryCoords(c *gin.Context, latKey, lngKey string) (float64, float64, bool) {
	lat, okLat := queryFloat(c, latKey)
	lng, okLng := queryFloat(c, lngKey)
	if !okLat || !okLng {
		return 0, 0, false
	}
	return lat, lng, true
}
