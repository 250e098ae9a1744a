package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// UserService handles registration and account lookups.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// RegisterUserRequest contains the parameters for registering a user.
type RegisterUserRequest struct {
	Name            string
	Email           string
	Role            domain.UserRole
	VehicleCapacity int
}

// Register creates a new user account. Email addresses are unique across
// accounts; drivers start unverified with an empty wallet.
func (s *UserService) Register(ctx context.Context, req RegisterUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	role := req.Role
	if role == "" {
		role = domain.RolePassenger
	}
	if role != domain.RolePassenger && role != domain.RoleDriver {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	user := &domain.User{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		Role:            role,
		WalletBalance:   0,
		Verified:        false,
		VehicleCapacity: req.VehicleCapacity,
		CreatedAt:       time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	return s.userRepo.GetByID(ctx, userID)
}

// WalletBalance returns the user's current wallet balance.
func (s *UserService) WalletBalance(ctx context.Context, userID string) (float64, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	return user.WalletBalance, nil
}
