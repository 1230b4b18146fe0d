package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medical-appointment-scheduling/internal/clock"
)

// Window is a weekly recurring interval in which a doctor sees patients of
// one specialty. The range is [StartTime, EndTime).
type Window struct {
	ID            uuid.UUID
	DoctorID      uuid.UUID
	DoctorName    string
	SpecialtyID   uuid.UUID
	SpecialtyName string
	DayOfWeek     int
	StartTime     clock.TimeOfDay
	EndTime       clock.TimeOfDay
	SlotMinutes   int
	CreatedAt     time.Time
}

// Admits reports whether a slot starting at tod fits entirely in the window.
func (w Window) Admits(tod clock.TimeOfDay) bool {
	return tod >= w.StartTime && int(tod)+w.SlotMinutes <= int(w.EndTime)
}

// SlotStarts slices the window into consecutive slots. A trailing remainder
// shorter than SlotMinutes is dropped.
func (w Window) SlotStarts() []clock.TimeOfDay {
	if w.SlotMinutes <= 0 {
		return nil
	}
	var starts []clock.TimeOfDay
	for cur := w.StartTime; int(cur)+w.SlotMinutes <= int(w.EndTime); cur = cur.Add(w.SlotMinutes) {
		starts = append(starts, cur)
	}
	return starts
}

type WindowInput struct {
	DoctorID    uuid.UUID
	SpecialtyID uuid.UUID
	DayOfWeek   int
	StartTime   clock.TimeOfDay
	EndTime     clock.TimeOfDay
	SlotMinutes int
}

// Filter narrows ListWindows. Nil fields match everything.
type Filter struct {
	DoctorID    *uuid.UUID
	SpecialtyID *uuid.UUID
	DayOfWeek   *int
}
