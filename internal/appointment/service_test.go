package appointment

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/medical-appointment-scheduling/internal/apperr"
	"github.com/hackgods/medical-appointment-scheduling/internal/availability"
	"github.com/hackgods/medical-appointment-scheduling/internal/catalog"
	"github.com/hackgods/medical-appointment-scheduling/internal/clock"
	"github.com/hackgods/medical-appointment-scheduling/internal/config"
	"github.com/hackgods/medical-appointment-scheduling/internal/metrics"
	redisclient "github.com/hackgods/medical-appointment-scheduling/internal/redis"
)

// fakeDirectory serves both the scheduler and the availability store.
type fakeDirectory struct {
	doctors     map[uuid.UUID]*catalog.Doctor
	specialties map[uuid.UUID]*catalog.Specialty
	plans       map[uuid.UUID]*catalog.InsurancePlan
	patients    map[uuid.UUID]*catalog.Patient
}

func (d *fakeDirectory) GetDoctor(_ context.Context, id uuid.UUID) (*catalog.Doctor, error) {
	if v, ok := d.doctors[id]; ok {
		return v, nil
	}
	return nil, catalog.ErrDoctorNotFound
}

func (d *fakeDirectory) GetSpecialty(_ context.Context, id uuid.UUID) (*catalog.Specialty, error) {
	if v, ok := d.specialties[id]; ok {
		return v, nil
	}
	return nil, catalog.ErrSpecialtyNotFound
}

func (d *fakeDirectory) DoctorHasSpecialty(_ context.Context, doctorID, specialtyID uuid.UUID) (bool, error) {
	doc, ok := d.doctors[doctorID]
	return ok && doc.HasSpecialty(specialtyID), nil
}

func (d *fakeDirectory) GetPlan(_ context.Context, id uuid.UUID) (*catalog.InsurancePlan, error) {
	if v, ok := d.plans[id]; ok {
		return v, nil
	}
	return nil, catalog.ErrPlanNotFound
}

func (d *fakeDirectory) GetPatient(_ context.Context, id uuid.UUID) (*catalog.Patient, error) {
	if v, ok := d.patients[id]; ok {
		return v, nil
	}
	return nil, catalog.ErrPatientNotFound
}

type busyLocker struct{}

func (busyLocker) WithLock(context.Context, string, func(context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

var (
	// 2026-10-19 and 2026-10-26 are Mondays.
	today      = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	nextMonday = time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	scheduler *Scheduler
	store     *availability.Store
	repo      *InMemoryRepository
	dir       *fakeDirectory
	doctor    *catalog.Doctor
	specialty *catalog.Specialty
	plan      *catalog.InsurancePlan
	patient   *catalog.Patient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	specialty := &catalog.Specialty{ID: uuid.New(), Name: "Cardiologia"}
	plan := &catalog.InsurancePlan{ID: uuid.New(), Name: "Unimed"}
	doctor := &catalog.Doctor{ID: uuid.New(), Name: "Dra. Ana Lima", Specialties: []catalog.Specialty{*specialty}}
	patient := &catalog.Patient{ID: uuid.New(), Name: "Maria Silva", InsurancePlanID: plan.ID, InsurancePlanName: plan.Name}

	dir := &fakeDirectory{
		doctors:     map[uuid.UUID]*catalog.Doctor{doctor.ID: doctor},
		specialties: map[uuid.UUID]*catalog.Specialty{specialty.ID: specialty},
		plans:       map[uuid.UUID]*catalog.InsurancePlan{plan.ID: plan},
		patients:    map[uuid.UUID]*catalog.Patient{patient.ID: patient},
	}

	cfg := config.Config{
		MinSlotMinutes: 10,
		MaxSlotMinutes: 120,
		NoShowGrace:    2 * time.Hour,
		Location:       time.UTC,
	}

	store := availability.NewStore(availability.NewInMemoryRepository(), dir, redisclient.LocalLocker{}, cfg, nil, zerolog.Nop())
	repo := NewInMemoryRepository()
	scheduler := NewScheduler(repo, dir, store, redisclient.LocalLocker{}, cfg, nil, zerolog.Nop())
	scheduler.now = func() time.Time { return today }

	return &fixture{
		scheduler: scheduler,
		store:     store,
		repo:      repo,
		dir:       dir,
		doctor:    doctor,
		specialty: specialty,
		plan:      plan,
		patient:   patient,
	}
}

func (f *fixture) defineWindow(t *testing.T, doctorID uuid.UUID, day int, start, end string, slot int) *availability.Window {
	t.Helper()
	s, err := clock.ParseTimeOfDay(start)
	require.NoError(t, err)
	e, err := clock.ParseTimeOfDay(end)
	require.NoError(t, err)

	w, err := f.store.Define(context.Background(), availability.WindowInput{
		DoctorID:    doctorID,
		SpecialtyID: f.specialty.ID,
		DayOfWeek:   day,
		StartTime:   s,
		EndTime:     e,
		SlotMinutes: slot,
	})
	require.NoError(t, err)
	return w
}

func (f *fixture) addDoctor(name string) *catalog.Doctor {
	d := &catalog.Doctor{ID: uuid.New(), Name: name, Specialties: []catalog.Specialty{*f.specialty}}
	f.dir.doctors[d.ID] = d
	return d
}

func (f *fixture) request(at time.Time) BookingRequest {
	return BookingRequest{
		PatientID:       f.patient.ID,
		InsurancePlanID: f.plan.ID,
		SpecialtyID:     f.specialty.ID,
		DateTime:        at,
	}
}

func mondayAt(h, m int) time.Time {
	return nextMonday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestBook_SlotShowsAsTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 30)

	slots, err := f.scheduler.ListSlots(ctx, f.specialty.ID, nextMonday, nil)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].Available)
	assert.True(t, slots[1].Available)

	appt, err := f.scheduler.Book(ctx, f.request(mondayAt(9, 0)))
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.Equal(t, f.doctor.ID, appt.DoctorID)
	assert.Equal(t, mondayAt(9, 0), appt.DateTime)

	slots, err = f.scheduler.ListSlots(ctx, f.specialty.ID, nextMonday, nil)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.False(t, slots[0].Available)
	assert.Equal(t, "Maria Silva", slots[0].PatientName)
	require.NotNil(t, slots[0].AppointmentID)
	assert.Equal(t, appt.ID, *slots[0].AppointmentID)
	assert.True(t, slots[1].Available)
	assert.Nil(t, slots[1].AppointmentID)
}

func TestListSlots_Quantization(t *testing.T) {
	ctx := context.Background()

	t.Run("30 minute slots", func(t *testing.T) {
		f := newFixture(t)
		f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 30)

		slots, err := f.scheduler.ListSlots(ctx, f.specialty.ID, nextMonday, nil)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.Equal(t, mondayAt(9, 0), slots[0].Start)
		assert.Equal(t, mondayAt(9, 30), slots[0].End)
		assert.Equal(t, mondayAt(9, 30), slots[1].Start)
		assert.Equal(t, mondayAt(10, 0), slots[1].End)
	})

	t.Run("remainder dropped", func(t *testing.T) {
		f := newFixture(t)
		f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 40)

		slots, err := f.scheduler.ListSlots(ctx, f.specialty.ID, nextMonday, nil)
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, mondayAt(9, 0), slots[0].Start)
		assert.Equal(t, mondayAt(9, 40), slots[0].End)
	})
}

func TestListSlots_NoWindowsIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.defineWindow(t, f.doctor.ID, 2, "09:00", "10:00", 30)

	slots, err := f.scheduler.ListSlots(context.Background(), f.specialty.ID, nextMonday, nil)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestListSlots_OrderAndDoctorFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.addDoctor("Dr. Paulo Reis")

	f.defineWindow(t, f.doctor.ID, 1, "14:00", "15:00", 30)
	f.defineWindow(t, other.ID, 1, "08:00", "09:00", 60)

	// A time of day on the date does not shift the slots.
	slots, err := f.scheduler.ListSlots(ctx, f.specialty.ID, mondayAt(17, 45), nil)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, other.ID, slots[0].DoctorID)
	assert.Equal(t, mondayAt(8, 0), slots[0].Start)
	assert.Equal(t, mondayAt(14, 0), slots[1].Start)
	assert.Equal(t, mondayAt(14, 30), slots[2].Start)

	slots, err = f.scheduler.ListSlots(ctx, f.specialty.ID, nextMonday, &f.doctor.ID)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	for _, s := range slots {
		assert.Equal(t, f.doctor.ID, s.DoctorID)
	}
}

func TestBook_DoubleBookingIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 30)

	_, err := f.scheduler.Book(ctx, f.request(mondayAt(9, 30)))
	require.NoError(t, err)

	_, err = f.scheduler.Book(ctx, f.request(mondayAt(9, 30)))
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestBook_SlotMustFitWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 30)

	for _, tt := range []time.Time{mondayAt(10, 15), mondayAt(9, 45), mondayAt(8, 59), mondayAt(10, 0)} {
		_, err := f.scheduler.Book(ctx, f.request(tt))
		assert.ErrorIs(t, err, ErrNoMatchingWindow, tt.Format(time.RFC3339))
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	}

	_, err := f.scheduler.Book(ctx, f.request(nextMonday.Add(24*time.Hour+9*time.Hour)))
	assert.ErrorIs(t, err, ErrNoMatchingWindow, "tuesday has no window")
}

func TestBook_PlanMismatchRegardlessOfAvailability(t *testing.T) {
	f := newFixture(t)
	other := &catalog.InsurancePlan{ID: uuid.New(), Name: "Amil"}
	f.dir.plans[other.ID] = other

	req := f.request(mondayAt(9, 0))
	req.InsurancePlanID = other.ID

	_, err := f.scheduler.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrPlanMismatch)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestBook_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orphan := &catalog.Patient{ID: uuid.New(), Name: "Carlos", InsurancePlanID: uuid.New()}
	f.dir.patients[orphan.ID] = orphan

	tests := []struct {
		name string
		mod  func(r *BookingRequest)
		want error
	}{
		{
			name: "status first",
			mod: func(r *BookingRequest) {
				r.Status = "Archived"
				r.PatientID = uuid.New()
			},
			want: ErrInvalidStatus,
		},
		{
			name: "missing date",
			mod:  func(r *BookingRequest) { r.DateTime = time.Time{} },
			want: ErrDateTimeRequired,
		},
		{
			name: "unknown patient",
			mod: func(r *BookingRequest) {
				r.PatientID = uuid.New()
				r.SpecialtyID = uuid.New()
			},
			want: catalog.ErrPatientNotFound,
		},
		{
			name: "plan mismatch before unknown specialty",
			mod: func(r *BookingRequest) {
				r.InsurancePlanID = uuid.New()
				r.SpecialtyID = uuid.New()
			},
			want: ErrPlanMismatch,
		},
		{
			name: "unknown specialty",
			mod:  func(r *BookingRequest) { r.SpecialtyID = uuid.New() },
			want: catalog.ErrSpecialtyNotFound,
		},
		{
			name: "unknown plan",
			mod: func(r *BookingRequest) {
				r.PatientID = orphan.ID
				r.InsurancePlanID = orphan.InsurancePlanID
			},
			want: catalog.ErrPlanNotFound,
		},
		{
			name: "no window",
			mod:  func(r *BookingRequest) {},
			want: ErrNoMatchingWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(mondayAt(9, 0))
			tt.mod(&req)
			_, err := f.scheduler.Book(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBook_InitialStatusAndMinuteTruncation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 30)

	req := f.request(mondayAt(9, 0).Add(42 * time.Second))
	req.Status = "confirmed"

	appt, err := f.scheduler.Book(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, appt.Status)
	assert.Equal(t, mondayAt(9, 0), appt.DateTime)

	events := f.repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventAppointmentCreated, events[0].EventType)
	assert.Equal(t, appt.ID, *events[0].AppointmentID)
}

func TestBook_FirstAdmittingWindowWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	late := f.addDoctor("Dr. Paulo Reis")
	early := f.addDoctor("Dra. Beatriz Costa")

	f.defineWindow(t, late.ID, 1, "09:00", "12:00", 30)
	f.defineWindow(t, early.ID, 1, "08:00", "10:00", 30)

	appt, err := f.scheduler.Book(ctx, f.request(mondayAt(9, 0)))
	require.NoError(t, err)
	assert.Equal(t, early.ID, appt.DoctorID, "window starting earlier is listed first")

	_, err = f.scheduler.Book(ctx, f.request(mondayAt(9, 0)))
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked, "booking does not fall through to the next window")

	appt, err = f.scheduler.Book(ctx, f.request(mondayAt(10, 0)))
	require.NoError(t, err)
	assert.Equal(t, late.ID, appt.DoctorID)
}

func TestBook_LockContention(t *testing.T) {
	f := newFixture(t)
	f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 30)
	f.scheduler.locker = busyLocker{}

	_, err := f.scheduler.Book(context.Background(), f.request(mondayAt(9, 0)))
	assert.ErrorIs(t, err, ErrSlotBeingBooked)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestBook_ConcurrentRequestsBookOnce(t *testing.T) {
	lockers := map[string]func(t *testing.T) redisclient.Locker{
		"storage guard only": func(*testing.T) redisclient.Locker { return redisclient.LocalLocker{} },
		"redis lock": func(t *testing.T) redisclient.Locker {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return redisclient.NewRedisLocker(client, 5*time.Second, zerolog.Nop())
		},
	}

	for name, newLocker := range lockers {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 30)
			f.scheduler.locker = newLocker(t)

			const workers = 20
			var wg sync.WaitGroup
			errs := make(chan error, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := f.scheduler.Book(context.Background(), f.request(mondayAt(9, 0)))
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			succeeded := 0
			for err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assert.ErrorIs(t, err, apperr.ErrConflict)
			}
			assert.Equal(t, 1, succeeded)
		})
	}
}

func TestChangeStatus_ThenFilterByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 30)

	appt, err := f.scheduler.Book(ctx, f.request(mondayAt(9, 0)))
	require.NoError(t, err)

	updated, err := f.scheduler.ChangeStatus(ctx, appt.ID, "Confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)

	confirmed, err := f.scheduler.List(ctx, ListFilter{Status: "Confirmed"})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, appt.ID, confirmed[0].ID)

	cancelled, err := f.scheduler.List(ctx, ListFilter{Status: "Cancelled"})
	require.NoError(t, err)
	assert.Empty(t, cancelled)
}

func TestChangeStatus_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 30)

	appt, err := f.scheduler.Book(ctx, f.request(mondayAt(9, 0)))
	require.NoError(t, err)

	for _, bad := range []string{"Archived", "", "No Show"} {
		_, err = f.scheduler.ChangeStatus(ctx, appt.ID, bad)
		assert.ErrorIs(t, err, ErrInvalidStatus, bad)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	}

	got, err := f.scheduler.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, got.Status)

	_, err = f.scheduler.ChangeStatus(ctx, uuid.New(), "Cancelled")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = f.scheduler.ChangeStatus(ctx, uuid.New(), "Bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus, "status is checked before the lookup")
}

func TestChangeStatus_AnyToAny(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.defineWindow(t, f.doctor.ID, 1, "09:00", "10:00", 30)

	appt, err := f.scheduler.Book(ctx, f.request(mondayAt(9, 0)))
	require.NoError(t, err)

	for _, s := range []Status{StatusCompleted, StatusScheduled, StatusNoShow, StatusCancelled, StatusConfirmed} {
		updated, err := f.scheduler.ChangeStatus(ctx, appt.ID, string(s))
		require.NoError(t, err)
		assert.Equal(t, s, updated.Status)
	}
}

func TestList_DefaultsToToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seed := func(dt time.Time, name string) *Appointment {
		a, err := f.repo.Create(ctx, Appointment{
			PatientID:   uuid.New(),
			PatientName: name,
			DoctorID:    f.doctor.ID,
			DateTime:    dt,
			Status:      StatusScheduled,
		})
		require.NoError(t, err)
		return a
	}
	yesterday := seed(time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC), "Ontem")
	earlyToday := seed(time.Date(2026, 10, 19, 0, 30, 0, 0, time.UTC), "Hoje")
	future := seed(mondayAt(9, 0), "Futuro")

	got, err := f.scheduler.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, earlyToday.ID, got[0].ID)
	assert.Equal(t, future.ID, got[1].ID)

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	got, err = f.scheduler.List(ctx, ListFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, yesterday.ID, got[0].ID)

	got, err = f.scheduler.List(ctx, ListFilter{PatientName: "ONTEM"})
	require.NoError(t, err)
	require.Len(t, got, 1, "a name filter lifts the default date bound")
	assert.Equal(t, yesterday.ID, got[0].ID)

	to := time.Date(2026, 10, 19, 23, 59, 59, 0, time.UTC)
	got, err = f.scheduler.List(ctx, ListFilter{To: &to})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = f.scheduler.List(ctx, ListFilter{Status: "Pending"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestList_TodayFollowsClinicTimezone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	f.scheduler.cfg.Location = loc
	// 01:00 UTC on the 20th is still the 19th in Sao Paulo.
	f.scheduler.now = func() time.Time { return time.Date(2026, 10, 20, 1, 0, 0, 0, time.UTC) }

	a, err := f.repo.Create(ctx, Appointment{
		PatientName: "Noite",
		DoctorID:    f.doctor.ID,
		DateTime:    time.Date(2026, 10, 19, 21, 0, 0, 0, time.UTC),
		Status:      StatusScheduled,
	})
	require.NoError(t, err)

	got, err := f.scheduler.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}

func TestMarkNoShows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.scheduler.now = func() time.Time { return mondayAt(12, 0) }

	mk := func(h, m int, status Status) *Appointment {
		a, err := f.repo.Create(ctx, Appointment{DoctorID: f.doctor.ID, DateTime: mondayAt(h, m), Status: status})
		require.NoError(t, err)
		return a
	}
	stale := mk(9, 0, StatusScheduled)
	staleConfirmed := mk(9, 30, StatusConfirmed)
	recent := mk(10, 30, StatusScheduled)
	done := mk(8, 0, StatusCompleted)

	n, err := f.scheduler.MarkNoShows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for id, want := range map[uuid.UUID]Status{
		stale.ID:          StatusNoShow,
		staleConfirmed.ID: StatusNoShow,
		recent.ID:         StatusScheduled,
		done.ID:           StatusCompleted,
	} {
		got, err := f.scheduler.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}
	assert.Len(t, f.repo.Events(), 2)

	n, err = f.scheduler.MarkNoShows(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(" " + string(s) + " ")
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseStatus("noshow")
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, got)

	_, err = ParseStatus("pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.False(t, Status("pending").Valid())
	assert.True(t, StatusCancelled.Valid())
}

func TestRecordCompletion_LogsStatusChange(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	reg := prometheus.NewRegistry()
	scheduler := NewScheduler(repo, nil, nil, redisclient.LocalLocker{}, config.Config{}, metrics.NewScheduling(reg), zerolog.Nop())

	appt, err := repo.Create(ctx, Appointment{DoctorID: uuid.New(), DateTime: mondayAt(9, 0)})
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, appt.ID, StatusCompleted)
	require.NoError(t, err)

	scheduler.RecordCompletion(ctx, appt.ID)

	events := repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventStatusChanged, events[0].EventType)
	assert.Equal(t, appt.ID, *events[0].AppointmentID)
	assert.JSONEq(t, `{"status":"Completed","reason":"visit"}`, string(events[0].Payload))

	expected := `
# HELP scheduling_status_changes_total Appointment status changes by target status
# TYPE scheduling_status_changes_total counter
scheduling_status_changes_total{status="Completed"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "scheduling_status_changes_total"))
}
