package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestInitialize_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := Initialize(Options{Level: "info", Format: "json", Output: &buf})

	l.Debug("hidden")
	l.Info("run finished", "reviewed", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run finished", entry["msg"])
	assert.Equal(t, float64(3), entry["reviewed"])
}

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	t.Run("should include message and attributes", func(t *testing.T) {
		var buf bytes.Buffer
		l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

		l.With("run_id", "abc").Info("candidate reviewed", "pr_number", 12)

		out := buf.String()
		assert.Contains(t, out, "[INFO]")
		assert.Contains(t, out, "candidate reviewed")
		assert.Contains(t, out, "run_id=abc")
		assert.Contains(t, out, "pr_number=12")
	})

	t.Run("should filter below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

		l.Info("ignored")
		assert.Empty(t, buf.String())
	})

	t.Run("should prefix grouped keys", func(t *testing.T) {
		var buf bytes.Buffer
		l := slog.New(NewPrettyHandler(&buf, nil))

		l.WithGroup("scheduler").Info("group started", "size", 5)
		assert.Contains(t, buf.String(), "scheduler.size=5")
	})
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithLogger(context.Background(), base)
	ctx = With(ctx, "trigger", "sweep")

	Info(ctx, "hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sweep", entry["trigger"])
}
