package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/medical-appointment-scheduling/internal/catalog"
	"github.com/hackgods/medical-appointment-scheduling/internal/clock"
	"github.com/hackgods/medical-appointment-scheduling/internal/config"
	"github.com/hackgods/medical-appointment-scheduling/internal/metrics"
	redisclient "github.com/hackgods/medical-appointment-scheduling/internal/redis"
)

// Directory is the catalog lookup the store validates references against.
type Directory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*catalog.Doctor, error)
	GetSpecialty(ctx context.Context, id uuid.UUID) (*catalog.Specialty, error)
	DoctorHasSpecialty(ctx context.Context, doctorID, specialtyID uuid.UUID) (bool, error)
}

// Store owns the availability windows and keeps them free of overlaps per
// doctor and weekday.
type Store struct {
	repo    Repository
	dir     Directory
	locker  redisclient.Locker
	cfg     config.Config
	metrics *metrics.Scheduling
	logger  zerolog.Logger
}

func NewStore(repo Repository, dir Directory, locker redisclient.Locker, cfg config.Config, m *metrics.Scheduling, logger zerolog.Logger) *Store {
	return &Store{
		repo:    repo,
		dir:     dir,
		locker:  locker,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With().Str("component", "availability").Logger(),
	}
}

// Define validates and persists a new window. Checks run in a fixed order
// and the first failure is returned: request shape, doctor, specialty,
// doctor-specialty membership, time order, overlap.
func (s *Store) Define(ctx context.Context, in WindowInput) (w *Window, err error) {
	defer func() { s.metrics.ObserveWindowDefinition(err) }()

	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		return nil, ErrInvalidDayOfWeek
	}
	if !in.StartTime.Valid() || !in.EndTime.ValidEnd() {
		return nil, ErrInvalidTime
	}
	if in.SlotMinutes < s.cfg.MinSlotMinutes || in.SlotMinutes > s.cfg.MaxSlotMinutes {
		return nil, fmt.Errorf("%w: must be between %d and %d minutes", ErrSlotDuration, s.cfg.MinSlotMinutes, s.cfg.MaxSlotMinutes)
	}

	doctor, err := s.dir.GetDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	specialty, err := s.dir.GetSpecialty(ctx, in.SpecialtyID)
	if err != nil {
		return nil, err
	}
	ok, err := s.dir.DoctorHasSpecialty(ctx, doctor.ID, specialty.ID)
	if err != nil {
		return nil, fmt.Errorf("check doctor specialty: %w", err)
	}
	if !ok {
		return nil, ErrDoctorLacksSpecialty
	}
	if in.StartTime >= in.EndTime {
		return nil, ErrTimeOrder
	}

	var created *Window
	key := redisclient.AvailabilityKey(in.DoctorID, in.DayOfWeek)
	err = s.locker.WithLock(ctx, key, func(lockCtx context.Context) error {
		day := in.DayOfWeek
		existing, err := s.repo.ListWindows(lockCtx, Filter{DoctorID: &in.DoctorID, DayOfWeek: &day})
		if err != nil {
			return fmt.Errorf("load existing windows: %w", err)
		}
		for _, old := range existing {
			if clock.Overlaps(in.StartTime, in.EndTime, old.StartTime, old.EndTime) {
				return ErrWindowOverlap
			}
		}

		created, err = s.repo.CreateWindow(lockCtx, in)
		return err
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrWindowBeingDefined
		}
		return nil, err
	}

	created.DoctorName = doctor.Name
	created.SpecialtyName = specialty.Name

	s.logger.Info().
		Str("window_id", created.ID.String()).
		Str("doctor_id", created.DoctorID.String()).
		Int("day_of_week", created.DayOfWeek).
		Stringer("start", created.StartTime).
		Stringer("end", created.EndTime).
		Int("slot_minutes", created.SlotMinutes).
		Msg("availability window defined")

	return created, nil
}

func (s *Store) List(ctx context.Context, f Filter) ([]Window, error) {
	return s.repo.ListWindows(ctx, f)
}

// Remove deletes a window. Appointments already booked inside it stay valid.
func (s *Store) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteWindow(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("window_id", id.String()).Msg("availability window removed")
	return nil
}
