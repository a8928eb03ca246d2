package appointment

import "github.com/wizmedik/booking-api/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// BlockingStatuses occupy the provider's time and are fed to the
// availability engine as booked slots.
var BlockingStatuses = []string{
	string(StatusScheduled),
	string(StatusCompleted),
}

// ===============================
// Validations
// ===============================

// CanCancel allows cancelling scheduled appointments only.
func CanCancel(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}
