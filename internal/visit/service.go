package visit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/medical-appointment-scheduling/internal/appointment"
	"github.com/hackgods/medical-appointment-scheduling/internal/config"
)

// Appointments loads the appointment a visit points at and records the
// completion a visit implies.
type Appointments interface {
	Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	RecordCompletion(ctx context.Context, id uuid.UUID)
}

type Service struct {
	repo         Repository
	appointments Appointments
	cfg          config.Config
	logger       zerolog.Logger
}

func NewService(repo Repository, appointments Appointments, cfg config.Config, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		cfg:          cfg,
		logger:       logger.With().Str("component", "visits").Logger(),
	}
}

// Record registers the visit for an appointment and completes it.
func (s *Service) Record(ctx context.Context, appointmentID uuid.UUID, notes string) (*Visit, error) {
	if _, err := s.appointments.Get(ctx, appointmentID); err != nil {
		return nil, err
	}

	v, err := s.repo.Record(ctx, appointmentID, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}
	s.appointments.RecordCompletion(ctx, appointmentID)

	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	v.Appointment = *appt

	s.logger.Info().
		Str("visit_id", v.ID.String()).
		Str("appointment_id", appointmentID.String()).
		Msg("visit recorded")

	return v, nil
}

// List returns visits, most recent first. Date bounds are naive clinic
// times and are placed in the clinic timezone before comparing.
func (s *Service) List(ctx context.Context, f Filter) ([]Visit, error) {
	q := Filter{PatientName: strings.TrimSpace(f.PatientName)}
	if f.From != nil {
		from := s.inClinic(*f.From)
		q.From = &from
	}
	if f.To != nil {
		to := s.inClinic(*f.To)
		q.To = &to
	}

	visits, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if visits == nil {
		visits = []Visit{}
	}
	return visits, nil
}

func (s *Service) inClinic(naive time.Time) time.Time {
	loc := s.cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Date(naive.Year(), naive.Month(), naive.Day(), naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), loc)
}
