package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
)

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})
	logger.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "\"level\":\"INFO\"")
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf}).Info("hello")

			assert.Equal(t, tt.wantJSON, strings.HasPrefix(buf.String(), "{"))
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
}

func TestNewPrettyHandler_NilOptions(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.True(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.False(t, h.Enabled(t.Context(), slog.LevelDebug))
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "reconcile")})).
		WithGroup("remote").
		With("server_id", "srv-1")
	logger.Info("group mapped", "remote_group_id", "g.1")

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "group mapped")
	assert.Contains(t, out, "component=reconcile")
	assert.Contains(t, out, "remote.server_id=srv-1")
	assert.Contains(t, out, "remote.remote_group_id=g.1")
}

func TestPrettyHandler_WithEmptyGroup(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.Same(t, h, h.WithGroup(""))
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true})).Info("test message")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestPrettyHandler_NoAttributes(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("simple message")

	_, after, found := strings.Cut(buf.String(), "simple message")
	require.True(t, found)
	assert.NotContains(t, after, "=")
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		level     slog.Level
		wantStr   string
		wantColor string
	}{
		{slog.LevelDebug, "DBG", colorMagenta},
		{slog.LevelInfo, "INF", colorGreen},
		{slog.LevelWarn, "WRN", colorYellow},
		{slog.LevelError, "ERR", colorRed},
		{slog.LevelError + 4, "ERROR+4", colorGray},
	}
	for _, tt := range tests {
		str, color := formatLevel(tt.level)
		assert.Equal(t, tt.wantStr, str)
		assert.Equal(t, tt.wantColor, color)
	}
}

func TestFormatValue(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `"two words"`, formatValue(slog.StringValue("two words")))
	assert.Equal(t, "2024-05-01T12:00:00Z", formatValue(slog.TimeValue(at)))
	assert.Equal(t, "1.5s", formatValue(slog.DurationValue(1500*time.Millisecond)))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
	assert.Equal(t, "true", formatValue(slog.BoolValue(true)))
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Writer: &buf})

	logger.WithError(errors.New("plain failure")).Warn("first")
	logger.WithError(domainerrors.RemoteUnavailable("etherpad unavailable")).Error("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"error":"plain failure"`)
	assert.NotContains(t, lines[0], "error_code")
	assert.Contains(t, lines[1], `"error_code":"REMOTE_UNAVAILABLE"`)
}

func TestLogger_WithErrorNil(t *testing.T) {
	logger := Discard()
	assert.Same(t, logger, logger.WithError(nil))
}

func TestLogger_ComponentAndField(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: "json", Writer: &buf}).
		Component("etherpad").
		WithField("server_id", "srv-1").
		Info("client created")

	out := buf.String()
	assert.Contains(t, out, `"component":"etherpad"`)
	assert.Contains(t, out, `"server_id":"srv-1"`)
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: "json", Writer: &buf})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
}
