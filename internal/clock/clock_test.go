package clock

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", NewTimeOfDay(9, 0), false},
		{"09:30:00", NewTimeOfDay(9, 30), false},
		{" 23:59 ", NewTimeOfDay(23, 59), false},
		{"00:00", 0, false},
		{"24:00", EndOfDay, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"9h", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		if c.wantErr {
			assert.ErrorIs(t, err, ErrInvalidTimeOfDay, "in=%q", c.in)
			continue
		}
		require.NoError(t, err, "in=%q", c.in)
		assert.Equal(t, c.want, got, "in=%q", c.in)
	}
}

func TestTimeOfDayBounds(t *testing.T) {
	assert.True(t, TimeOfDay(0).Valid())
	assert.True(t, NewTimeOfDay(23, 59).Valid())
	assert.False(t, EndOfDay.Valid())

	assert.False(t, TimeOfDay(0).ValidEnd())
	assert.True(t, NewTimeOfDay(0, 1).ValidEnd())
	assert.True(t, EndOfDay.ValidEnd())
	assert.False(t, EndOfDay.Add(1).ValidEnd())

	assert.Equal(t, "24:00", EndOfDay.String())
}

func TestTimeOfDayJSON(t *testing.T) {
	var payload struct {
		Start TimeOfDay `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"07:05"}`), &payload))
	assert.Equal(t, NewTimeOfDay(7, 5), payload.Start)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"07:05"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"start":705}`), &payload))
}

func TestOverlaps(t *testing.T) {
	nine, ten := NewTimeOfDay(9, 0), NewTimeOfDay(10, 0)
	cases := []struct {
		name       string
		start, end TimeOfDay
		want       bool
	}{
		{"starts inside", NewTimeOfDay(9, 30), NewTimeOfDay(10, 30), true},
		{"ends inside", NewTimeOfDay(8, 30), NewTimeOfDay(9, 30), true},
		{"contains", NewTimeOfDay(8, 0), NewTimeOfDay(11, 0), true},
		{"inside", NewTimeOfDay(9, 15), NewTimeOfDay(9, 45), true},
		{"equal", nine, ten, true},
		{"adjacent after", ten, NewTimeOfDay(11, 0), false},
		{"adjacent before", NewTimeOfDay(8, 0), nine, false},
		{"disjoint", NewTimeOfDay(14, 0), NewTimeOfDay(15, 0), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Overlaps(c.start, c.end, nine, ten))
			assert.Equal(t, c.want, Overlaps(nine, ten, c.start, c.end), "overlap must be symmetric")
		})
	}
}

func TestParseDateTimeKeepsWallClock(t *testing.T) {
	cases := []string{
		"2026-10-26T09:00:00-03:00",
		"2026-10-26T09:00:00Z",
		"2026-10-26T09:00:00",
		"2026-10-26T09:00",
		"2026-10-26 09:00",
	}
	want := time.Date(2026, 10, 26, 9, 0, 0, 0, time.UTC)
	for _, in := range cases {
		got, err := ParseDateTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "in=%s got=%s", in, got)
	}

	_, err := ParseDateTime("26/10/2026 09:00")
	assert.ErrorIs(t, err, ErrInvalidDateTime)
}

func TestOnAndWeekday(t *testing.T) {
	monday, err := ParseDate("2026-10-26")
	require.NoError(t, err)
	assert.Equal(t, 1, Weekday(monday))

	at := On(monday.Add(13*time.Hour), NewTimeOfDay(9, 30))
	assert.Equal(t, time.Date(2026, 10, 26, 9, 30, 0, 0, time.UTC), at)
	assert.Equal(t, NewTimeOfDay(9, 30), Of(at))
}

func TestToday(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:30 UTC on the 27th is still the 26th in Sao Paulo.
	now := time.Date(2026, 10, 27, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC), Today(now, saoPaulo))
	assert.Equal(t, time.Date(2026, 10, 27, 0, 0, 0, 0, time.UTC), Today(now, time.UTC))
}
