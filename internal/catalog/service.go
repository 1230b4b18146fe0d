package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	minDoctorName = 5
	maxDoctorName = 125
)

// Service manages the reference data the scheduler works with: specialties,
// insurance plans, doctors and patients.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	return name, nil
}

// Specialties

func (s *Service) CreateSpecialty(ctx context.Context, name string) (*Specialty, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	sp, err := s.repo.CreateSpecialty(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("specialty_id", sp.ID.String()).Str("name", sp.Name).Msg("specialty created")
	return sp, nil
}

func (s *Service) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	return s.repo.ListSpecialties(ctx)
}

func (s *Service) GetSpecialty(ctx context.Context, id uuid.UUID) (*Specialty, error) {
	return s.repo.GetSpecialty(ctx, id)
}

// Insurance plans

func (s *Service) CreatePlan(ctx context.Context, name string) (*InsurancePlan, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.CreatePlan(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("insurance_plan_id", p.ID.String()).Str("name", p.Name).Msg("insurance plan created")
	return p, nil
}

func (s *Service) ListPlans(ctx context.Context) ([]InsurancePlan, error) {
	return s.repo.ListPlans(ctx)
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*InsurancePlan, error) {
	return s.repo.GetPlan(ctx, id)
}

// DeletePlan refuses while patients are still registered under the plan.
func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("insurance_plan_id", id.String()).Msg("insurance plan deleted")
	return nil
}

// Doctors

func (s *Service) CreateDoctor(ctx context.Context, name string, specialtyIDs []uuid.UUID) (*Doctor, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < minDoctorName || n > maxDoctorName {
		return nil, ErrDoctorNameLength
	}

	ids, err := s.checkSpecialties(ctx, specialtyIDs)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.CreateDoctor(ctx, name, ids)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("doctor_id", d.ID.String()).Int("specialties", len(ids)).Msg("doctor created")
	return d, nil
}

// checkSpecialties drops duplicates and makes sure every id exists.
func (s *Service) checkSpecialties(ctx context.Context, specialtyIDs []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(specialtyIDs))
	ids := make([]uuid.UUID, 0, len(specialtyIDs))
	for _, id := range specialtyIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	n, err := s.repo.CountSpecialties(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check specialties: %w", err)
	}
	if n != len(ids) {
		return nil, ErrUnknownSpecialty
	}
	return ids, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return s.repo.ListDoctors(ctx)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctor(ctx, id)
}

func (s *Service) SetDoctorSpecialties(ctx context.Context, id uuid.UUID, specialtyIDs []uuid.UUID) (*Doctor, error) {
	ids, err := s.checkSpecialties(ctx, specialtyIDs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetDoctorSpecialties(ctx, id, ids); err != nil {
		return nil, err
	}
	s.logger.Info().Str("doctor_id", id.String()).Int("specialties", len(ids)).Msg("doctor specialties replaced")
	return s.repo.GetDoctor(ctx, id)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDoctor(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("doctor_id", id.String()).Msg("doctor deleted")
	return nil
}

func (s *Service) DoctorHasSpecialty(ctx context.Context, doctorID, specialtyID uuid.UUID) (bool, error) {
	return s.repo.DoctorHasSpecialty(ctx, doctorID, specialtyID)
}

// Patients

type PatientInput struct {
	Name            string
	Email           string
	Phone           string
	InsurancePlanID uuid.UUID
}

func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (*Patient, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetPlan(ctx, in.InsurancePlanID); err != nil {
		return nil, err
	}

	p, err := s.repo.CreatePatient(ctx, Patient{
		Name:            name,
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		InsurancePlanID: in.InsurancePlanID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", p.ID.String()).Msg("patient created")
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, nameContains string) ([]Patient, error) {
	return s.repo.ListPatients(ctx, strings.TrimSpace(nameContains))
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatient(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, upd PatientUpdate) (*Patient, error) {
	if upd.Name != nil {
		name, err := normalizeName(*upd.Name)
		if err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	if upd.InsurancePlanID != nil {
		if _, err := s.repo.GetPlan(ctx, *upd.InsurancePlanID); err != nil {
			return nil, err
		}
	}

	p, err := s.repo.UpdatePatient(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", p.ID.String()).Msg("patient updated")
	return p, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePatient(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("patient_id", id.String()).Msg("patient deleted")
	return nil
}
