package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	buf := &bytes.Buffer{}
	restore := Redirect(buf)
	t.Cleanup(restore)

	f()

	return buf.String()
}

func TestSetLevel(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		expectLevel LogLevel
		expectError bool
	}{
		{"trace", "trace", LevelTrace, false},
		{"debug", "debug", LevelDebug, false},
		{"info", "info", LevelInfo, false},
		{"warn", "warn", LevelWarn, false},
		{"warning", "warning", LevelWarn, false},
		{"error", "error", LevelError, false},
		{"fatal", "fatal", LevelFatal, false},
		{"uppercase", "INFO", LevelInfo, false},
		{"mixed case", "WaRn", LevelWarn, false},
		{"invalid", "invalid", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Log.level = LevelInfo

			err := SetLevel(tt.level)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectLevel, Log.Level())
		})
	}
}

func TestSetLevelTogglesDebugMessages(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, SetLevel("info"))
	})

	require.NoError(t, SetLevel("debug"))
	assert.True(t, pterm.PrintDebugMessages)

	require.NoError(t, SetLevel("warn"))
	assert.False(t, pterm.PrintDebugMessages)
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.Equal(t, Log, logger)
}

func TestLoggerLevels(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, SetLevel("info"))
	})

	t.Run("trace_level_logs_everything", func(t *testing.T) {
		require.NoError(t, SetLevel("trace"))

		output := captureOutput(t, func() {
			Log.Tracef("trace %s", "formatted")
			Log.Debug("debug message")
		})
		assert.Contains(t, output, "trace formatted")
		assert.Contains(t, output, "debug message")
	})

	t.Run("debug_level_skips_trace", func(t *testing.T) {
		require.NoError(t, SetLevel("debug"))

		output := captureOutput(t, func() {
			Log.Tracef("hidden trace")
			Log.Debugf("debug %s", "formatted")
		})
		assert.NotContains(t, output, "hidden trace")
		assert.Contains(t, output, "debug formatted")
	})

	t.Run("info_level_logs_info_and_above", func(t *testing.T) {
		require.NoError(t, SetLevel("info"))

		output := captureOutput(t, func() {
			Log.Info("info message")
			Log.Infof("info %s", "formatted")
			Log.Warnf("warn %s", "formatted")
		})
		assert.Contains(t, output, "info message")
		assert.Contains(t, output, "info formatted")
		assert.Contains(t, output, "warn formatted")
	})

	t.Run("higher_level_blocks_lower_messages", func(t *testing.T) {
		require.NoError(t, SetLevel("error"))

		output := captureOutput(t, func() {
			Log.Info("should not appear")
			Log.Warn("should not appear")
			Log.Error("should appear")
			Log.Errorf("also %s", "appears")
		})
		assert.NotContains(t, output, "should not appear")
		assert.Contains(t, output, "should appear")
		assert.Contains(t, output, "also appears")
	})
}

func TestRedirectRestoresWriters(t *testing.T) {
	original := pterm.Warning.Writer
	buf := &bytes.Buffer{}

	restore := Redirect(buf)
	assert.Equal(t, buf, pterm.Warning.Writer)

	restore()
	assert.Equal(t, original, pterm.Warning.Writer)
}

func TestInitPterm(t *testing.T) {
	restore := Redirect(nil)
	t.Cleanup(restore)

	InitPterm()

	assert.Equal(t, os.Stderr, pterm.Info.Writer)
	assert.Equal(t, os.Stderr, pterm.Success.Writer)
	assert.Equal(t, os.Stderr, pterm.Warning.Writer)
	assert.Equal(t, os.Stderr, pterm.Error.Writer)
	assert.Equal(t, os.Stderr, pterm.Debug.Writer)
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "level(42)", LogLevel(42).String())
	assert.Less(t, int(LevelTrace), int(LevelDebug))
	assert.Less(t, int(LevelError), int(LevelFatal))
}
