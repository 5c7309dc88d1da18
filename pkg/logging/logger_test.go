package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewLogger_JSONOutput verifies JSON log entries carry component and fields.
func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelDebug,
		Component:  "test",
		JSONFormat: true,
		Output:     &buf,
	})

	log.Info("hello", F("kind", "summary"), F("count", 3))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output should be valid JSON")
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "summary", entry["kind"])
	assert.Equal(t, float64(3), entry["count"])
}

// TestNewLogger_LevelFiltering verifies entries below the configured level are dropped.
func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelWarn,
		Component:  "test",
		JSONFormat: true,
		Output:     &buf,
	})

	log.Debug("dropped")
	log.Info("dropped")
	assert.Zero(t, buf.Len(), "debug and info should be filtered at warn level")

	log.Warn("kept")
	assert.NotZero(t, buf.Len(), "warn should pass the filter")
}

// TestWith verifies attached fields appear on subsequent entries.
func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelInfo,
		Component:  "test",
		JSONFormat: true,
		Output:     &buf,
	})

	child := log.With(F("meeting_id", "abc123"))
	child.Info("stored")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc123", entry["meeting_id"])
}

// TestErrField verifies the Err helper serializes the error message.
func TestErrField(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelInfo,
		Component:  "test",
		JSONFormat: true,
		Output:     &buf,
	})

	log.Error("failed", Err(errors.New("boom")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
}

// TestNopLogger verifies the nop logger discards everything without panicking.
func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Debug("a")
	log.Info("b", F("k", "v"))
	log.Warn("c")
	log.Error("d", Err(errors.New("x")))
	assert.NotNil(t, log.With(F("k", "v")))
}

// TestNewLogger_NilConfig verifies defaults are applied for a nil config.
func TestNewLogger_NilConfig(t *testing.T) {
	log := NewLogger(nil)
	require.NotNil(t, log)
	log.Info("does not panic")
}
