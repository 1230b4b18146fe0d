package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medical-appointment-scheduling/internal/appointment"
	"github.com/hackgods/medical-appointment-scheduling/internal/availability"
	"github.com/hackgods/medical-appointment-scheduling/internal/catalog"
	"github.com/hackgods/medical-appointment-scheduling/internal/clock"
	"github.com/hackgods/medical-appointment-scheduling/internal/visit"
)

// Naive clinic datetimes go out without an offset.
const dateTimeLayout = "2006-01-02T15:04:05"

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Catalog

type NameRequest struct {
	Name string `json:"name"`
}

type SpecialtyResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type InsurancePlanResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type CreateDoctorRequest struct {
	Name         string   `json:"name"`
	SpecialtyIDs []string `json:"specialty_ids"`
}

type SetSpecialtiesRequest struct {
	SpecialtyIDs []string `json:"specialty_ids"`
}

type DoctorResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Specialties []SpecialtyResponse `json:"specialties"`
}

type CreatePatientRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	InsurancePlanID string `json:"insurance_plan_id"`
}

type UpdatePatientRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	InsurancePlanID *string `json:"insurance_plan_id"`
}

type PatientResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	InsurancePlanID   uuid.UUID `json:"insurance_plan_id"`
	InsurancePlanName string    `json:"insurance_plan_name"`
}

// Availability

type DefineAvailabilityRequest struct {
	DoctorID            string `json:"doctor_id"`
	SpecialtyID         string `json:"specialty_id"`
	DayOfWeek           *int   `json:"day_of_week"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
}

type AvailabilityResponse struct {
	ID                  uuid.UUID       `json:"id"`
	DoctorID            uuid.UUID       `json:"doctor_id"`
	DoctorName          string          `json:"doctor_name"`
	SpecialtyID         uuid.UUID       `json:"specialty_id"`
	SpecialtyName       string          `json:"specialty_name"`
	DayOfWeek           int             `json:"day_of_week"`
	StartTime           clock.TimeOfDay `json:"start_time"`
	EndTime             clock.TimeOfDay `json:"end_time"`
	SlotDurationMinutes int             `json:"slot_duration_minutes"`
}

type SlotResponse struct {
	DoctorID      uuid.UUID  `json:"doctor_id"`
	DoctorName    string     `json:"doctor_name,omitempty"`
	SpecialtyID   uuid.UUID  `json:"specialty_id"`
	Start         string     `json:"start"`
	End           string     `json:"end"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	Available     bool       `json:"available"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	PatientName   string     `json:"patient_name,omitempty"`
}

// Appointments

type BookAppointmentRequest struct {
	PatientID       string `json:"patient_id"`
	InsurancePlanID string `json:"insurance_plan_id"`
	SpecialtyID     string `json:"specialty_id"`
	DateTime        string `json:"date_time"`
	Status          string `json:"status,omitempty"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID                uuid.UUID `json:"id"`
	PatientID         uuid.UUID `json:"patient_id"`
	PatientName       string    `json:"patient_name"`
	DoctorID          uuid.UUID `json:"doctor_id"`
	DoctorName        string    `json:"doctor_name"`
	SpecialtyID       uuid.UUID `json:"specialty_id"`
	SpecialtyName     string    `json:"specialty_name"`
	InsurancePlanID   uuid.UUID `json:"insurance_plan_id"`
	InsurancePlanName string    `json:"insurance_plan_name"`
	DateTime          string    `json:"date_time"`
	Status            string    `json:"status"`
}

// Visits

type RecordVisitRequest struct {
	AppointmentID string `json:"appointment_id"`
	Notes         string `json:"notes"`
}

type VisitResponse struct {
	ID            uuid.UUID           `json:"id"`
	AppointmentID uuid.UUID           `json:"appointment_id"`
	AttendedAt    time.Time           `json:"attended_at"`
	Notes         string              `json:"notes"`
	Appointment   AppointmentResponse `json:"appointment"`
}

// Mapping

func toSpecialtyResponse(s catalog.Specialty) SpecialtyResponse {
	return SpecialtyResponse{ID: s.ID, Name: s.Name}
}

func toPlanResponse(p catalog.InsurancePlan) InsurancePlanResponse {
	return InsurancePlanResponse{ID: p.ID, Name: p.Name}
}

func toDoctorResponse(d catalog.Doctor) DoctorResponse {
	specialties := make([]SpecialtyResponse, 0, len(d.Specialties))
	for _, s := range d.Specialties {
		specialties = append(specialties, toSpecialtyResponse(s))
	}
	return DoctorResponse{ID: d.ID, Name: d.Name, Specialties: specialties}
}

func toPatientResponse(p catalog.Patient) PatientResponse {
	return PatientResponse{
		ID:                p.ID,
		Name:              p.Name,
		Email:             p.Email,
		Phone:             p.Phone,
		InsurancePlanID:   p.InsurancePlanID,
		InsurancePlanName: p.InsurancePlanName,
	}
}

func toAvailabilityResponse(w availability.Window) AvailabilityResponse {
	return AvailabilityResponse{
		ID:                  w.ID,
		DoctorID:            w.DoctorID,
		DoctorName:          w.DoctorName,
		SpecialtyID:         w.SpecialtyID,
		SpecialtyName:       w.SpecialtyName,
		DayOfWeek:           w.DayOfWeek,
		StartTime:           w.StartTime,
		EndTime:             w.EndTime,
		SlotDurationMinutes: w.SlotMinutes,
	}
}

func toSlotResponse(s appointment.Slot) SlotResponse {
	return SlotResponse{
		DoctorID:      s.DoctorID,
		DoctorName:    s.DoctorName,
		SpecialtyID:   s.SpecialtyID,
		Start:         s.Start.Format(dateTimeLayout),
		End:           s.End.Format(dateTimeLayout),
		StartTime:     clock.Of(s.Start).String(),
		EndTime:       clock.Of(s.Start).Add(int(s.End.Sub(s.Start) / time.Minute)).String(),
		Available:     s.Available,
		AppointmentID: s.AppointmentID,
		PatientName:   s.PatientName,
	}
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                a.ID,
		PatientID:         a.PatientID,
		PatientName:       a.PatientName,
		DoctorID:          a.DoctorID,
		DoctorName:        a.DoctorName,
		SpecialtyID:       a.SpecialtyID,
		SpecialtyName:     a.SpecialtyName,
		InsurancePlanID:   a.InsurancePlanID,
		InsurancePlanName: a.InsurancePlanName,
		DateTime:          a.DateTime.Format(dateTimeLayout),
		Status:            string(a.Status),
	}
}

func toVisitResponse(v visit.Visit) VisitResponse {
	return VisitResponse{
		ID:            v.ID,
		AppointmentID: v.AppointmentID,
		AttendedAt:    v.AttendedAt,
		Notes:         v.Notes,
		Appointment:   toAppointmentResponse(v.Appointment),
	}
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
