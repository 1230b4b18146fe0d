package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
	StatusNoShow    Status = "NoShow"
)

// Statuses lists every accepted status. Any status may follow any other.
var Statuses = []Status{StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus matches s against the status names ignoring case and
// surrounding spaces.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, v := range Statuses {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", ErrInvalidStatus
}

// Appointment is a booked slot. DateTime is naive clinic time stored in a
// UTC time.Time. Names are denormalized for display.
type Appointment struct {
	ID                uuid.UUID
	PatientID         uuid.UUID
	PatientName       string
	DoctorID          uuid.UUID
	DoctorName        string
	SpecialtyID       uuid.UUID
	SpecialtyName     string
	InsurancePlanID   uuid.UUID
	InsurancePlanName string
	DateTime          time.Time
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Booked is the slice of an appointment the slot listing needs.
type Booked struct {
	AppointmentID uuid.UUID
	DoctorID      uuid.UUID
	DateTime      time.Time
	Status        Status
	PatientName   string
}

// Slot is a read-time projection of one fixed-length piece of a window.
type Slot struct {
	DoctorID      uuid.UUID
	DoctorName    string
	SpecialtyID   uuid.UUID
	WindowID      uuid.UUID
	Start         time.Time
	End           time.Time
	Available     bool
	AppointmentID *uuid.UUID
	PatientName   string
}

type BookingRequest struct {
	PatientID       uuid.UUID
	InsurancePlanID uuid.UUID
	SpecialtyID     uuid.UUID
	DateTime        time.Time
	// Status is optional and defaults to Scheduled.
	Status string
}

// ListFilter is the caller-facing filter. Bounds are inclusive.
type ListFilter struct {
	From        *time.Time
	To          *time.Time
	PatientName string
	Status      string
}

// ListQuery is a resolved ListFilter handed to the repository.
type ListQuery struct {
	From        *time.Time
	To          *time.Time
	PatientName string
	Status      *Status
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
