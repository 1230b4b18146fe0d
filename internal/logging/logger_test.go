package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"debug level", "debug", zerolog.DebugLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"default info", "", zerolog.InfoLevel},
		{"unknown falls back to info", "chatty", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewWithWriter("prod", tt.level, &bytes.Buffer{})
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("prod", "info", &buf)

	logger.Info().Str("doctor_id", "d-1").Msg("window defined")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "window defined", line["message"])
	assert.Equal(t, "d-1", line["doctor_id"])
	assert.Contains(t, line, "time")
}

func TestDevWritesConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("dev", "info", &buf)

	logger.Info().Msg("api-server starting up")

	assert.Contains(t, buf.String(), "api-server starting up")
	assert.False(t, json.Valid(buf.Bytes()))
}
