package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentResponse is the HTTP response for payment data.
type PaymentResponse struct {
	ID             string  `json:"id"`
	BookingID      string  `json:"booking_id"`
	Amount         float64 `json:"amount"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	TransactionRef string  `json:"transaction_ref"`
	CreatedAt      string  `json:"created_at"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		BookingID:      p.BookingID,
		Amount:         p.Amount,
		Type:           string(p.Type),
		Status:         string(p.Status),
		TransactionRef: p.TransactionRef,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

// ConfirmPaymentRequest is the HTTP request body for confirming a payment.
type ConfirmPaymentRequest struct {
	TransactionRef string `json:"transaction_ref"`
}

// ConfirmPayment handles POST /v1/payments/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.paymentService.Confirm(c.Request.Context(), req.TransactionRef)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// DriverEarningsResponse is the HTTP response for a driver earnings summary.
type DriverEarningsResponse struct {
	DriverID      string            `json:"driver_id"`
	TotalEarnings float64           `json:"total_earnings"`
	RideCount     int               `json:"ride_count"`
	Payments      []PaymentResponse `json:"payments"`
}

// GetDriverEarnings handles GET /v1/drivers/:id/earnings
func (h *PaymentHandler) GetDriverEarnings(c *gin.Context) {
	earnings, err := h.paymentService.EarningsForDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := DriverEarningsResponse{
		DriverID:      earnings.DriverID,
		TotalEarnings: earnings.TotalEarnings,
		RideCount:     earnings.RideCount,
		Payments:      make([]PaymentResponse, 0, len(earnings.Payments)),
	}
	for _, p := range earnings.Payments {
		response.Payments = append(response.Payments, toPaymentResponse(p))
	}

	respondJSON(c, http.StatusOK, response)
}
