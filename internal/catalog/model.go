package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Specialty struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// InsurancePlan is a health insurance agreement ("convênio") a patient is
// registered under.
type InsurancePlan struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type Doctor struct {
	ID          uuid.UUID
	Name        string
	Specialties []Specialty
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasSpecialty reports membership using the already loaded specialties.
func (d *Doctor) HasSpecialty(id uuid.UUID) bool {
	for _, s := range d.Specialties {
		if s.ID == id {
			return true
		}
	}
	return false
}

type Patient struct {
	ID                uuid.UUID
	Name              string
	Email             string
	Phone             string
	InsurancePlanID   uuid.UUID
	InsurancePlanName string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PatientUpdate carries a partial update; nil fields are left untouched.
type PatientUpdate struct {
	Name            *string
	Email           *string
	Phone           *string
	InsurancePlanID *uuid.UUID
}
