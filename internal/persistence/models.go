package persistence

import (
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/lifecycle"
	"github.com/DTMaciejM/pracosfera-main/internal/shift"
)

// Role identifies the account type of a user.
type Role string

const (
	// RoleAdmin manages accounts, shifts and the global reservation table.
	RoleAdmin Role = "admin"
	// RoleFranchisee creates and owns reservations.
	RoleFranchisee Role = "franchisee"
	// RoleWorker accepts reservations matching their shift.
	RoleWorker Role = "worker"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleFranchisee || r == RoleWorker
}

// User represents an account in the shift-booking domain.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	Phone        string
	Role         Role
	PasswordHash string
	// Franchisee profile fields; empty for other roles.
	MPKNumber    string
	StoreAddress string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reservation represents a booked work interval stored in persistence.
// Duration is always derived from the clock strings, never stored.
type Reservation struct {
	ID           string
	Number       string // human-facing reservation number
	FranchiseeID string
	WorkerID     *string
	Date         string // civil date, YYYY-MM-DD
	StartTime    string // HH:MM
	EndTime      string // HH:MM, exclusive
	Status       lifecycle.Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WorkerShift is a worker's configured working window for one calendar date.
// At most one shift exists per worker per date.
type WorkerShift struct {
	ID          string
	WorkerID    string
	Date        string // civil date, YYYY-MM-DD
	Type        shift.Type
	CustomHours *shift.Hours // set only for custom shifts
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
