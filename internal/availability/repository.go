package availability

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/medical-appointment-scheduling/internal/apperr"
)

var (
	ErrWindowNotFound = apperr.NotFound("availability window")

	ErrWindowOverlap      = apperr.Conflict("availability window overlaps an existing window for this doctor and day")
	ErrWindowBeingDefined = apperr.Conflict("availability for this doctor and day is being changed, please retry")

	ErrInvalidDayOfWeek     = apperr.Invalid("day of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidTime          = apperr.Invalid("start and end must be valid HH:mm times")
	ErrSlotDuration         = apperr.Invalid("slot duration out of allowed range")
	ErrDoctorLacksSpecialty = apperr.Invalid("doctor does not have this specialty")
	ErrTimeOrder            = apperr.Invalid("start time must be before end time")
)

// Repository contains all DB interactions needed by the store.
type Repository interface {
	// ListWindows orders by day, start time, creation time and id, so the
	// first window admitting a time is stable across calls.
	ListWindows(ctx context.Context, f Filter) ([]Window, error)
	CreateWindow(ctx context.Context, in WindowInput) (*Window, error)
	DeleteWindow(ctx context.Context, id uuid.UUID) error
}
