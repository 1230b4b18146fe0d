package appointment

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository keeps appointments in process memory. It enforces one
// appointment per doctor and start time like the database constraint. It
// does not know about visits, so MarkNoShows only looks at status and time.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Appointment
	events []EventLog
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[uuid.UUID]*Appointment)}
}

func (r *InMemoryRepository) Get(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *InMemoryRepository) FindByDoctorAt(_ context.Context, doctorID uuid.UUID, at time.Time) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.DoctorID == doctorID && a.DateTime.Equal(at) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *InMemoryRepository) ListBooked(_ context.Context, doctorIDs []uuid.UUID, from, to time.Time) ([]Booked, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[uuid.UUID]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		want[id] = true
	}

	var result []Booked
	for _, a := range r.byID {
		if !want[a.DoctorID] || a.DateTime.Before(from) || !a.DateTime.Before(to) {
			continue
		}
		result = append(result, Booked{
			AppointmentID: a.ID,
			DoctorID:      a.DoctorID,
			DateTime:      a.DateTime,
			Status:        a.Status,
			PatientName:   a.PatientName,
		})
	}
	return result, nil
}

func (r *InMemoryRepository) Create(_ context.Context, a Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.DoctorID == a.DoctorID && existing.DateTime.Equal(a.DateTime) {
			return nil, ErrSlotAlreadyBooked
		}
	}

	now := time.Now().UTC()
	a.ID = uuid.New()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = StatusScheduled
	}

	stored := a
	r.byID[a.ID] = &stored
	return &a, nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	return &cp, nil
}

func (r *InMemoryRepository) List(_ context.Context, q ListQuery) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := strings.ToLower(q.PatientName)
	var result []Appointment
	for _, a := range r.byID {
		if q.From != nil && a.DateTime.Before(*q.From) {
			continue
		}
		if q.To != nil && a.DateTime.After(*q.To) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(a.PatientName), name) {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		result = append(result, *a)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].DateTime.Equal(result[j].DateTime) {
			return result[i].DateTime.Before(result[j].DateTime)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (r *InMemoryRepository) MarkNoShows(_ context.Context, before time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []uuid.UUID
	for _, a := range r.byID {
		if (a.Status == StatusScheduled || a.Status == StatusConfirmed) && a.DateTime.Before(before) {
			a.Status = StatusNoShow
			a.UpdatedAt = time.Now().UTC()
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (r *InMemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}
