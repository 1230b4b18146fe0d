package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/medical-appointment-scheduling/internal/availability"
	"github.com/hackgods/medical-appointment-scheduling/internal/catalog"
	"github.com/hackgods/medical-appointment-scheduling/internal/clock"
	"github.com/hackgods/medical-appointment-scheduling/internal/config"
	"github.com/hackgods/medical-appointment-scheduling/internal/metrics"
	redisclient "github.com/hackgods/medical-appointment-scheduling/internal/redis"
)

const (
	EventAppointmentCreated = "APPOINTMENT_CREATED"
	EventStatusChanged      = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentNoShow  = "APPOINTMENT_NO_SHOW"
)

// Directory resolves the catalog entities a booking references.
type Directory interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*catalog.Patient, error)
	GetSpecialty(ctx context.Context, id uuid.UUID) (*catalog.Specialty, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*catalog.InsurancePlan, error)
}

// WindowSource returns availability windows in a stable order.
type WindowSource interface {
	List(ctx context.Context, f availability.Filter) ([]availability.Window, error)
}

// Scheduler projects bookable slots from availability windows and books
// appointments into them.
type Scheduler struct {
	repo    Repository
	dir     Directory
	windows WindowSource
	locker  redisclient.Locker
	cfg     config.Config
	metrics *metrics.Scheduling
	logger  zerolog.Logger
	now     func() time.Time
}

func NewScheduler(repo Repository, dir Directory, windows WindowSource, locker redisclient.Locker, cfg config.Config, m *metrics.Scheduling, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		repo:    repo,
		dir:     dir,
		windows: windows,
		locker:  locker,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		now:     time.Now,
	}
}

type slotKey struct {
	doctorID uuid.UUID
	start    int64
}

// ListSlots slices every window of the specialty on date's weekday into
// slots and marks the ones already taken. Order follows the windows, then
// time within a window.
func (s *Scheduler) ListSlots(ctx context.Context, specialtyID uuid.UUID, date time.Time, doctorID *uuid.UUID) ([]Slot, error) {
	day := clock.StartOfDay(date)
	dow := clock.Weekday(day)

	windows, err := s.windows.List(ctx, availability.Filter{
		SpecialtyID: &specialtyID,
		DayOfWeek:   &dow,
		DoctorID:    doctorID,
	})
	if err != nil {
		return nil, fmt.Errorf("load windows: %w", err)
	}

	slots := []Slot{}
	if len(windows) == 0 {
		s.metrics.ObserveSlotListing(0)
		return slots, nil
	}

	var doctorIDs []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, w := range windows {
		if !seen[w.DoctorID] {
			seen[w.DoctorID] = true
			doctorIDs = append(doctorIDs, w.DoctorID)
		}
	}

	booked, err := s.repo.ListBooked(ctx, doctorIDs, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("load booked appointments: %w", err)
	}
	taken := make(map[slotKey]Booked, len(booked))
	for _, b := range booked {
		taken[slotKey{b.DoctorID, b.DateTime.Unix()}] = b
	}

	for _, w := range windows {
		length := time.Duration(w.SlotMinutes) * time.Minute
		for _, tod := range w.SlotStarts() {
			start := clock.On(day, tod)
			slot := Slot{
				DoctorID:    w.DoctorID,
				DoctorName:  w.DoctorName,
				SpecialtyID: w.SpecialtyID,
				WindowID:    w.ID,
				Start:       start,
				End:         start.Add(length),
				Available:   true,
			}
			if b, ok := taken[slotKey{w.DoctorID, start.Unix()}]; ok {
				id := b.AppointmentID
				slot.Available = false
				slot.AppointmentID = &id
				slot.PatientName = b.PatientName
			}
			slots = append(slots, slot)
		}
	}

	s.metrics.ObserveSlotListing(len(slots))
	return slots, nil
}

// Book validates a booking request and creates the appointment. The first
// failing check wins: status, date, patient, plan match, specialty, plan,
// matching window, then the slot being free.
func (s *Scheduler) Book(ctx context.Context, req BookingRequest) (appt *Appointment, err error) {
	defer func() { s.metrics.ObserveBooking(err) }()

	status := StatusScheduled
	if req.Status != "" {
		if status, err = ParseStatus(req.Status); err != nil {
			return nil, err
		}
	}
	if req.DateTime.IsZero() {
		return nil, ErrDateTimeRequired
	}
	at := clock.Naive(req.DateTime).Truncate(time.Minute)

	patient, err := s.dir.GetPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if patient.InsurancePlanID != req.InsurancePlanID {
		return nil, ErrPlanMismatch
	}
	specialty, err := s.dir.GetSpecialty(ctx, req.SpecialtyID)
	if err != nil {
		return nil, err
	}
	plan, err := s.dir.GetPlan(ctx, req.InsurancePlanID)
	if err != nil {
		return nil, err
	}

	window, err := s.findWindow(ctx, specialty.ID, at)
	if err != nil {
		return nil, err
	}

	var created *Appointment

	err = s.locker.WithLock(ctx, redisclient.BookingKey(window.DoctorID, at), func(lockCtx context.Context) error {
		// Inside the critical section re-check the slot
		existing, err := s.repo.FindByDoctorAt(lockCtx, window.DoctorID, at)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check existing appointment: %w", err)
		}
		if existing != nil {
			return ErrSlotAlreadyBooked
		}

		created, err = s.repo.Create(lockCtx, Appointment{
			PatientID:         patient.ID,
			PatientName:       patient.Name,
			DoctorID:          window.DoctorID,
			DoctorName:        window.DoctorName,
			SpecialtyID:       specialty.ID,
			SpecialtyName:     specialty.Name,
			InsurancePlanID:   plan.ID,
			InsurancePlanName: plan.Name,
			DateTime:          at,
			Status:            status,
		})
		if err != nil {
			return err
		}

		s.logEvent(lockCtx, created.ID, EventAppointmentCreated, map[string]any{
			"patient_id": patient.ID.String(),
			"doctor_id":  window.DoctorID.String(),
			"window_id":  window.ID.String(),
			"date_time":  at.Format("2006-01-02T15:04"),
			"status":     status,
		})
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", created.ID.String()).
		Str("doctor_id", created.DoctorID.String()).
		Time("date_time", created.DateTime).
		Msg("appointment booked")

	return created, nil
}

// findWindow returns the first window of the specialty, in listing order,
// that fits a full slot starting at at.
func (s *Scheduler) findWindow(ctx context.Context, specialtyID uuid.UUID, at time.Time) (*availability.Window, error) {
	dow := clock.Weekday(at)
	windows, err := s.windows.List(ctx, availability.Filter{SpecialtyID: &specialtyID, DayOfWeek: &dow})
	if err != nil {
		return nil, fmt.Errorf("load windows: %w", err)
	}

	tod := clock.Of(at)
	for i := range windows {
		if windows[i].Admits(tod) {
			return &windows[i], nil
		}
	}
	return nil, ErrNoMatchingWindow
}

// ChangeStatus overwrites the status. There is no transition graph.
func (s *Scheduler) ChangeStatus(ctx context.Context, id uuid.UUID, raw string) (*Appointment, error) {
	status, err := ParseStatus(raw)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveStatusChange(string(status))
	s.logEvent(ctx, updated.ID, EventStatusChanged, map[string]any{"status": status})

	return updated, nil
}

// RecordCompletion logs the status change of an appointment completed by a
// recorded visit, which updates the row outside ChangeStatus.
func (s *Scheduler) RecordCompletion(ctx context.Context, id uuid.UUID) {
	s.metrics.ObserveStatusChange(string(StatusCompleted))
	s.logEvent(ctx, id, EventStatusChanged, map[string]any{"status": StatusCompleted, "reason": "visit"})
}

func (s *Scheduler) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

// List applies the filter conjunctively, ordered by date and time. Without
// any date or name filter only appointments from today on are returned.
func (s *Scheduler) List(ctx context.Context, f ListFilter) ([]Appointment, error) {
	q := ListQuery{
		From:        f.From,
		To:          f.To,
		PatientName: f.PatientName,
	}
	if f.Status != "" {
		st, err := ParseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		q.Status = &st
	}
	if q.From == nil && q.To == nil && q.PatientName == "" {
		today := clock.Today(s.now(), s.cfg.Location)
		q.From = &today
	}

	appts, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []Appointment{}
	}
	return appts, nil
}

// MarkNoShows is intended to be called by the worker periodically
func (s *Scheduler) MarkNoShows(ctx context.Context) (int, error) {
	cutoff := clock.Naive(s.now().In(s.location())).Add(-s.cfg.NoShowGrace)

	ids, err := s.repo.MarkNoShows(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		s.logEvent(ctx, id, EventAppointmentNoShow, map[string]any{
			"reason": "worker",
			"cutoff": cutoff.Format("2006-01-02T15:04"),
		})
	}
	s.metrics.AddNoShows(len(ids))

	return len(ids), nil
}

func (s *Scheduler) location() *time.Location {
	if s.cfg.Location == nil {
		return time.Local
	}
	return s.cfg.Location
}

func (s *Scheduler) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Warn().Err(err).
			Str("event_type", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("failed to insert event log")
	}
}
