package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest is the HTTP request body for user registration.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role,omitempty"` // PASSENGER or DRIVER
	VehicleCapacity int    `json:"vehicle_capacity,omitempty"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	WalletBalance   float64 `json:"wallet_balance"`
	Verified        bool    `json:"verified"`
	VehicleCapacity int     `json:"vehicle_capacity,omitempty"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            string(u.Role),
		WalletBalance:   u.WalletBalance,
		Verified:        u.Verified,
		VehicleCapacity: u.VehicleCapacity,
	}
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterUserRequest{
		Name:            req.Name,
		Email:           req.Email,
		Role:            domain.UserRole(req.Role),
		VehicleCapacity: req.VehicleCapacity,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toUserResponse(user))
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// GetWallet handles GET /v1/users/:id/wallet
func (h *UserHandler) GetWallet(c *gin.Context) {
	balance, err := h.userService.WalletBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"user_id":        c.Param("id"),
		"wallet_balance": balance,
	})
}
