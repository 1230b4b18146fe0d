// Package clock holds the time arithmetic used by availability windows and
// slots. Datetimes are naive wall-clock values: every time.Time produced here
// carries the UTC location but represents clinic local time.
package clock

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const MinutesPerDay = 24 * 60

var ErrInvalidTimeOfDay = errors.New("time of day must be HH:mm between 00:00 and 24:00")

// EndOfDay is midnight at the end of the day, written "24:00".
const EndOfDay = TimeOfDay(MinutesPerDay)

// TimeOfDay is a time without a date, counted in minutes after midnight.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and a minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay accepts "15:04" or "15:04:05". Seconds are dropped.
// "24:00" parses as EndOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" || s == "24:00:00" {
		return EndOfDay, nil
	}
	layout := "15:04"
	if len(s) > 5 && s[5] == ':' {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

// Of returns the time of day of a datetime, truncated to the minute.
func Of(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Valid reports whether t lies inside a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < MinutesPerDay
}

// ValidEnd reports whether t can close an interval: 00:01 through 24:00.
func (t TimeOfDay) ValidEnd() bool {
	return t > 0 && t <= EndOfDay
}

// Add shifts t by the given number of minutes. The result may run past
// midnight and is then no longer Valid.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, string(data))
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any
// instant: a starts inside b, a ends inside b, or a contains b.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return (aStart >= bStart && aStart < bEnd) ||
		(aEnd > bStart && aEnd <= bEnd) ||
		(aStart <= bStart && aEnd >= bEnd)
}
