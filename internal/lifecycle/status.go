package lifecycle

// Status is the closed set of reservation lifecycle states. Ad hoc status
// strings from storage must be parsed through ParseStatus so typos surface
// instead of silently falling through switches.
type Status string

const (
	// StatusUnassigned is the initial state of a freshly created reservation.
	StatusUnassigned Status = "unassigned"
	// StatusAssigned means a worker accepted or was assigned the reservation.
	StatusAssigned Status = "assigned"
	// StatusInProgress means the reservation window is currently running.
	StatusInProgress Status = "in_progress"
	// StatusPendingVerification is the grace period after a worked shift ends.
	StatusPendingVerification Status = "pending_verification"
	// StatusCompleted is a terminal state.
	StatusCompleted Status = "completed"
	// StatusCancelled is a terminal state.
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a stored status string.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusUnassigned, StatusAssigned, StatusInProgress,
		StatusPendingVerification, StatusCompleted, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// Terminal reports whether no further automatic transition applies.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Statuses returns all valid states in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusUnassigned,
		StatusAssigned,
		StatusInProgress,
		StatusPendingVerification,
		StatusCompleted,
		StatusCancelled,
	}
}
