package visit

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medical-appointment-scheduling/internal/appointment"
)

// Visit records that the patient was seen ("atendimento").
type Visit struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	AttendedAt    time.Time
	Notes         string
	Appointment   appointment.Appointment
}

// Filter narrows List. From and To bound AttendedAt inclusively.
type Filter struct {
	From        *time.Time
	To          *time.Time
	PatientName string
}
