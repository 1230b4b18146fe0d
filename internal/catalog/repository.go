package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/medical-appointment-scheduling/internal/apperr"
)

var (
	ErrSpecialtyNotFound = apperr.NotFound("specialty")
	ErrPlanNotFound      = apperr.NotFound("insurance plan")
	ErrDoctorNotFound    = apperr.NotFound("doctor")
	ErrPatientNotFound   = apperr.NotFound("patient")

	ErrSpecialtyExists = apperr.Conflict("specialty name already registered")
	ErrPlanExists      = apperr.Conflict("insurance plan name already registered")
	ErrPlanInUse       = apperr.Conflict("insurance plan still has patients")
	ErrDoctorInUse     = apperr.Conflict("doctor still has availability windows or appointments")
	ErrPatientInUse    = apperr.Conflict("patient still has appointments")

	ErrNameRequired     = apperr.Invalid("name is required")
	ErrDoctorNameLength = apperr.Invalid("doctor name must have between 5 and 125 characters")
	ErrUnknownSpecialty = apperr.Invalid("one or more specialties do not exist")
)

// Repository contains all DB interactions needed by the catalog service.
type Repository interface {
	CreateSpecialty(ctx context.Context, name string) (*Specialty, error)
	ListSpecialties(ctx context.Context) ([]Specialty, error)
	GetSpecialty(ctx context.Context, id uuid.UUID) (*Specialty, error)
	CountSpecialties(ctx context.Context, ids []uuid.UUID) (int, error)

	CreatePlan(ctx context.Context, name string) (*InsurancePlan, error)
	ListPlans(ctx context.Context) ([]InsurancePlan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*InsurancePlan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error

	CreateDoctor(ctx context.Context, name string, specialtyIDs []uuid.UUID) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	SetDoctorSpecialties(ctx context.Context, id uuid.UUID, specialtyIDs []uuid.UUID) error
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
	DoctorHasSpecialty(ctx context.Context, doctorID, specialtyID uuid.UUID) (bool, error)

	CreatePatient(ctx context.Context, p Patient) (*Patient, error)
	ListPatients(ctx context.Context, nameContains string) ([]Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, upd PatientUpdate) (*Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
}
