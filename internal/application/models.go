package application

import (
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/lifecycle"
	"github.com/DTMaciejM/pracosfera-main/internal/persistence"
	"github.com/DTMaciejM/pracosfera-main/internal/shift"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   persistence.Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == persistence.RoleAdmin
}

// Reservation is the service view of a reservation. Hours is derived from
// the clock strings on the way out of persistence and never stored.
type Reservation struct {
	ID           string
	Number       string
	FranchiseeID string
	WorkerID     string // empty when unassigned
	Date         string
	StartTime    string
	EndTime      string
	Hours        float64
	Status       lifecycle.Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReservationInput captures caller provided reservation fields.
type ReservationInput struct {
	Date      string
	StartTime string
	EndTime   string
}

// CreateReservationParams wraps the data required to create a reservation.
type CreateReservationParams struct {
	Principal Principal
	// FranchiseeID defaults to the principal; admins may create on behalf
	// of a franchisee.
	FranchiseeID string
	Input        ReservationInput
}

// ListReservationsParams wraps the data required to list reservations.
// Results are scoped to the principal's role before the filter applies.
type ListReservationsParams struct {
	Principal Principal
	Statuses  []lifecycle.Status
	DateFrom  string
	DateTo    string
}

// WorkerShift is the service view of a configured shift.
type WorkerShift struct {
	WorkerID    string
	Date        string
	Type        shift.Type
	CustomHours *shift.Hours
}

// SetWorkerShiftParams wraps the data required to configure a worker's day.
type SetWorkerShiftParams struct {
	Principal Principal
	WorkerID  string
	Date      string
	Type      shift.Type
	// CustomHours is required when Type is custom.
	CustomHours *shift.Hours
}

// User represents an account exposed by the application services.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	Phone        string
	Role         persistence.Role
	MPKNumber    string
	StoreAddress string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserInput captures caller provided account attributes.
type UserInput struct {
	Email        string
	DisplayName  string
	Phone        string
	Role         persistence.Role
	Password     string
	MPKNumber    string
	StoreAddress string
}

// CreateUserParams wraps the data required to create an account.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update an account.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	User    User
	Session Session
}

func reservationView(r persistence.Reservation) Reservation {
	hours, err := lifecycle.Hours(r.StartTime, r.EndTime)
	if err != nil {
		hours = 0
	}
	view := Reservation{
		ID:           r.ID,
		Number:       r.Number,
		FranchiseeID: r.FranchiseeID,
		Date:         r.Date,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Hours:        hours,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.WorkerID != nil {
		view.WorkerID = *r.WorkerID
	}
	return view
}

func userView(u persistence.User) User {
	return User{
		ID:           u.ID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		Phone:        u.Phone,
		Role:         u.Role,
		MPKNumber:    u.MPKNumber,
		StoreAddress: u.StoreAddress,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
