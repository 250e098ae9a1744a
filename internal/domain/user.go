package domain

import "time"

// UserRole represents the role of a user.
type UserRole string

const (
	RolePassenger UserRole = "PASSENGER"
	RoleDriver    UserRole = "DRIVER"
)

// User represents a passenger or driver in the system.
// WalletBalance is mutated only by wallet settlement and is never negative.
type User struct {
	ID              string
	Name            string
	Email           string
	Role            UserRole
	WalletBalance   float64
	Verified        bool
	VehicleCapacity int
	CreatedAt       time.Time
}
