package tests

import (
	"context"
	"errors"
	"testing"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 7. USER REGISTRATION
// ──────────────────────────────────────────────

func TestUser_RegisterDriver(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userService := service.NewUserService(userRepo)

	user, err := userService.Register(context.Background(), service.RegisterUserRequest{
		Name:            "Anita",
		Email:           "Anita@Example.com",
		Role:            domain.RoleDriver,
		VehicleCapacity: 4,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.Email != "anita@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.Role != domain.RoleDriver {
		t.Errorf("role = %s, want DRIVER", user.Role)
	}
	if user.WalletBalance != 0 {
		t.Errorf("wallet balance = %v, want 0", user.WalletBalance)
	}
	if user.Verified {
		t.Error("new drivers must start unverified")
	}
}

func TestUser_RegisterDefaultsToPassenger(t *testing.T) {
	t.Parallel()

	userService := service.NewUserService(NewMockUserRepository())

	user, err := userService.Register(context.Background(), service.RegisterUserRequest{
		Name:  "Ravi",
		Email: "ravi@example.com",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.Role != domain.RolePassenger {
		t.Errorf("role = %s, want PASSENGER", user.Role)
	}
}

func TestUser_RegisterValidation(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userService := service.NewUserService(userRepo)

	if _, err := userService.Register(context.Background(), service.RegisterUserRequest{
		Name: "No Email",
	}); !errors.Is(err, service.ErrInvalidEmail) {
		t.Errorf("err = %v, want ErrInvalidEmail", err)
	}

	if _, err := userService.Register(context.Background(), service.RegisterUserRequest{
		Name:  "Bad Role",
		Email: "x@example.com",
		Role:  "ADMIN",
	}); !errors.Is(err, service.ErrInvalidRole) {
		t.Errorf("err = %v, want ErrInvalidRole", err)
	}

	if _, err := userService.Register(context.Background(), service.RegisterUserRequest{
		Name:  "First",
		Email: "dup@example.com",
	}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := userService.Register(context.Background(), service.RegisterUserRequest{
		Name:  "Second",
		Email: "DUP@example.com",
	}); !errors.Is(err, service.ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}
