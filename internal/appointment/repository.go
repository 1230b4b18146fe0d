package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medical-appointment-scheduling/internal/apperr"
)

var (
	ErrAppointmentNotFound = apperr.NotFound("appointment")
	ErrSlotAlreadyBooked   = apperr.Conflict("slot already booked for this doctor")
	ErrSlotBeingBooked     = apperr.Conflict("slot is currently being booked, please retry")

	ErrInvalidStatus    = apperr.Invalid("status must be one of Scheduled, Confirmed, Cancelled, Completed, NoShow")
	ErrPlanMismatch     = apperr.Invalid("insurance plan does not match the patient's plan")
	ErrNoMatchingWindow = apperr.Invalid("no availability window admits the requested time")
	ErrDateTimeRequired = apperr.Invalid("date_time is required")
)

// Repository contains all DB interactions needed by the scheduler.
type Repository interface {
	// For conflict checks
	FindByDoctorAt(ctx context.Context, doctorID uuid.UUID, at time.Time) (*Appointment, error)
	ListBooked(ctx context.Context, doctorIDs []uuid.UUID, from, to time.Time) ([]Booked, error)

	// Creation and updates
	Create(ctx context.Context, a Appointment) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error)

	Get(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, q ListQuery) ([]Appointment, error)

	// No-show sweep
	MarkNoShows(ctx context.Context, before time.Time) ([]uuid.UUID, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
