package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobalLevel(t *testing.T) {
	level := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(level) })
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.name))
		})
	}
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	restoreGlobalLevel(t)

	New(Config{Level: "warn", Output: &bytes.Buffer{}})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestNew_JSONOutput(t *testing.T) {
	restoreGlobalLevel(t)

	var buf bytes.Buffer
	l := New(Config{Level: "info", Output: &buf})
	l.Info().Str("component", "test").Msg("test message")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test message", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test", entry["component"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	restoreGlobalLevel(t)

	var buf bytes.Buffer
	l := New(Config{Level: "error", Output: &buf})
	l.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	l.Error().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_PrettyOutput(t *testing.T) {
	restoreGlobalLevel(t)

	var buf bytes.Buffer
	l := New(Config{Level: "info", Pretty: true, Output: &buf})
	l.Info().Msg("test message")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestSetGlobalLogger(t *testing.T) {
	restoreGlobalLevel(t)
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	var buf bytes.Buffer
	SetGlobalLogger(New(Config{Level: "info", Output: &buf}))
	log.Info().Msg("global message")

	assert.Contains(t, buf.String(), "global message")
}
