package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestNew_WithValidConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid json config stdout",
			config: Config{
				Level:  "debug",
				Format: "json",
				Output: "stdout",
			},
			wantErr: false,
		},
		{
			name: "valid text config stderr",
			config: Config{
				Level:  "info",
				Format: "text",
				Output: "stderr",
			},
			wantErr: false,
		},
		{
			name: "valid text config file",
			config: Config{
				Level:  "warn",
				Format: "text",
				Output: filepath.Join(t.TempDir(), "logs", "janitor.log"),
			},
			wantErr: false,
		},
		{
			name: "invalid level",
			config: Config{
				Level:  "invalid",
				Format: "json",
				Output: "stdout",
			},
			wantErr: true,
		},
		{
			name: "invalid format",
			config: Config{
				Level:  "debug",
				Format: "xml",
				Output: "stdout",
			},
			wantErr: true,
		},
		{
			name: "invalid rotate schedule",
			config: Config{
				Level:          "info",
				Format:         "text",
				Output:         filepath.Join(t.TempDir(), "janitor.log"),
				RotateSchedule: "every monday",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger without error")
			}
			if logger != nil {
				_ = logger.Close()
			}
		})
	}
}

func TestNew_FileOutputAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "janitor.log")

	for i := 0; i < 2; i++ {
		log, err := New(Config{Level: "info", Format: "text", Output: path})
		require.NoError(t, err)
		log.Info("run finished", Field{Key: "run", Value: i})
		require.NoError(t, log.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "run finished"))
}

func TestLogger_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := createTestLogger(t, buf, "json")

	logger.Info("test info message", Field{Key: "test", Value: "value"})

	output := buf.String()
	if !strings.Contains(output, "test info message") {
		t.Errorf("Expected log to contain message, got: %s", output)
	}
	if !strings.Contains(output, "test") {
		t.Errorf("Expected log to contain field 'test', got: %s", output)
	}
}

func TestLogger_Warn(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := createTestLogger(t, buf, "json")

	logger.Warn("test warn message", Field{Key: "key", Value: "value"})

	output := buf.String()
	if !strings.Contains(output, "test warn message") {
		t.Errorf("Expected log to contain message, got: %s", output)
	}
}

func TestLogger_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := createTestLogger(t, buf, "json")

	logger.Error("test error message", errors.New("disk full"), Field{Key: "context", Value: "value"})

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "test error message", result["msg"])
	assert.Equal(t, "disk full", result["error"])
	assert.Equal(t, "ERROR", result["level"])
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := createTestLogger(t, buf, "json")

	loggerWithFields := logger.With(
		Field{Key: "run_id", Value: "abc"},
		Field{Key: "job", Value: "orphans"},
	)

	loggerWithFields.Info("message with fields")

	output := buf.String()
	assert.Contains(t, output, `"run_id":"abc"`)
	assert.Contains(t, output, `"job":"orphans"`)
	assert.NoError(t, loggerWithFields.Close())
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
		wantError bool
	}{
		{"debug level shows all", "debug", true, true, true, true},
		{"info level skips debug", "info", false, true, true, true},
		{"warn level skips debug and info", "warn", false, false, true, true},
		{"error level shows only errors", "error", false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := NewWithWriter(buf, Config{Level: tt.level, Format: "json"})
			require.NoError(t, err)

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")
			logger.Error("error message", nil)

			output := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(output, "debug message"))
			assert.Equal(t, tt.wantInfo, strings.Contains(output, "info message"))
			assert.Equal(t, tt.wantWarn, strings.Contains(output, "warn message"))
			assert.Equal(t, tt.wantError, strings.Contains(output, "error message"))
		})
	}
}

func TestLogger_TextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewWithWriter(buf, Config{Level: "info", Format: "text"})
	require.NoError(t, err)

	logger.Info("test message", Field{Key: "count", Value: 3})

	output := buf.String()
	assert.Contains(t, output, `msg="test message"`)
	assert.Contains(t, output, "count=3")
}

func TestRotateIfDue(t *testing.T) {
	// 2026-10-14 is a Wednesday.
	lastWrite := time.Date(2026, 10, 14, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		now     time.Time
		content string
		want    bool
	}{
		{"same week", time.Date(2026, 10, 18, 23, 0, 0, 0, time.Local), "line\n", false},
		{"after monday midnight", time.Date(2026, 10, 19, 0, 0, 1, 0, time.Local), "line\n", true},
		{"empty file never rotates", time.Date(2026, 11, 30, 0, 0, 0, 0, time.Local), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "janitor.log")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			require.NoError(t, os.Chtimes(path, lastWrite, lastWrite))

			file := &lumberjack.Logger{Filename: path, MaxBackups: 4}
			defer file.Close()

			rotated, err := rotateIfDue(file, "0 0 * * 1", tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rotated)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			if tt.want {
				assert.Len(t, entries, 2, "expected active log plus one backup")
			} else {
				assert.Len(t, entries, 1)
			}
		})
	}
}

func TestRotateIfDue_InvalidSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "janitor.log")
	require.NoError(t, os.WriteFile(path, []byte("line\n"), 0644))

	_, err := rotateIfDue(&lumberjack.Logger{Filename: path}, "every monday", time.Now())
	assert.Error(t, err)
}

func TestRotateIfDue_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "janitor.log")

	rotated, err := rotateIfDue(&lumberjack.Logger{Filename: path}, "0 0 * * 1", time.Now())
	require.NoError(t, err)
	assert.False(t, rotated)
}

// Helper function to create test logger with buffer output
func createTestLogger(t *testing.T, buf *bytes.Buffer, format string) *Logger {
	t.Helper()

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	return &Logger{
		slog: slog.New(handler),
	}
}
