package availability

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medical-appointment-scheduling/internal/clock"
)

// InMemoryRepository keeps windows in process memory. It enforces the same
// per doctor and weekday non-overlap rule as the database constraint.
type InMemoryRepository struct {
	mu      sync.RWMutex
	windows []Window
	now     func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{now: time.Now}
}

func (r *InMemoryRepository) ListWindows(_ context.Context, f Filter) ([]Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Window
	for _, w := range r.windows {
		if f.DoctorID != nil && w.DoctorID != *f.DoctorID {
			continue
		}
		if f.SpecialtyID != nil && w.SpecialtyID != *f.SpecialtyID {
			continue
		}
		if f.DayOfWeek != nil && w.DayOfWeek != *f.DayOfWeek {
			continue
		}
		out = append(out, w)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

func (r *InMemoryRepository) CreateWindow(_ context.Context, in WindowInput) (*Window, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, old := range r.windows {
		if old.DoctorID == in.DoctorID && old.DayOfWeek == in.DayOfWeek &&
			clock.Overlaps(in.StartTime, in.EndTime, old.StartTime, old.EndTime) {
			return nil, ErrWindowOverlap
		}
	}

	w := Window{
		ID:          uuid.New(),
		DoctorID:    in.DoctorID,
		SpecialtyID: in.SpecialtyID,
		DayOfWeek:   in.DayOfWeek,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		SlotMinutes: in.SlotMinutes,
		CreatedAt:   r.now(),
	}
	r.windows = append(r.windows, w)
	return &w, nil
}

func (r *InMemoryRepository) DeleteWindow(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, w := range r.windows {
		if w.ID == id {
			r.windows = append(r.windows[:i], r.windows[i+1:]...)
			return nil
		}
	}
	return ErrWindowNotFound
}
