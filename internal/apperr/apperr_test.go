package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	doctorMissing := NotFound("doctor")
	wrapped := fmt.Errorf("load doctor: %w", doctorMissing)

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"not found", doctorMissing, ErrNotFound},
		{"wrapped not found", wrapped, ErrNotFound},
		{"invalid", Invalid("bad status"), ErrInvalidInput},
		{"conflict", Conflict("overlap"), ErrConflict},
		{"unexpected", errors.New("connection reset"), nil},
		{"nil", nil, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Kind(c.err))
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "doctor not found", NotFound("doctor").Error())
	assert.Equal(t, "invalid input: plan mismatch", Invalid("plan mismatch").Error())
	assert.Equal(t, "conflict: slot already booked", Conflict("slot already booked").Error())
}

func TestSentinelIdentity(t *testing.T) {
	errSlotTaken := Conflict("slot already booked")
	err := fmt.Errorf("create appointment: %w", errSlotTaken)
	assert.True(t, errors.Is(err, errSlotTaken))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrInvalidInput))
}
