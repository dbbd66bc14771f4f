package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

// Feature: pos-till, Property 11: Log entries are structured JSON
func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every entry carries level, timestamp, message and service", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := ToWriter(&buf, zapcore.DebugLevel)

			switch level {
			case "debug":
				logger.Debug(message)
			case "warn":
				logger.Warn(message)
			case "error":
				logger.Error(message)
			default:
				logger.Info(message)
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}
			for _, key := range []string{"level", "timestamp", "message", "service"} {
				if _, ok := entry[key]; !ok {
					return false
				}
			}
			return entry["message"] == message && entry["level"] == level && entry["service"] == "pos-till"
		},
		gen.AlphaString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestToWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := ToWriter(&buf, zapcore.WarnLevel)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("Cash session closed", zap.String("difference", "-3"))
	entry := decodeLine(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "-3", entry["difference"])
}

func TestDurationsAreHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	ToWriter(&buf, zapcore.InfoLevel).Info("turn", zap.Duration("duration", 90*time.Minute))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "1h30m0s", entry["duration"])
}

func TestNewBuildsForEachEnvironment(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := New(env)
		require.NoError(t, err, env)
		assert.NotNil(t, logger)
	}
}
