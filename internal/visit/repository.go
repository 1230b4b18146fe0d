package visit

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/medical-appointment-scheduling/internal/apperr"
)

var ErrVisitAlreadyRecorded = apperr.Conflict("a visit is already recorded for this appointment")

type Repository interface {
	// Record stores the visit and marks the appointment Completed in one
	// transaction.
	Record(ctx context.Context, appointmentID uuid.UUID, notes string) (*Visit, error)
	List(ctx context.Context, f Filter) ([]Visit, error)
}
