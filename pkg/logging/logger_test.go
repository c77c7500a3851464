package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		enabled slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"warn level", "warn", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"default info", "", slog.LevelInfo},
		{"unknown falls back to info", "verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if !logger.Enabled(context.Background(), tt.enabled) {
				t.Errorf("expected level %v to be enabled for %q", tt.enabled, tt.level)
			}
		})
	}
}

func TestWithAttachesAttributes(t *testing.T) {
	logger := Default().With("component", "test")
	if logger.Logger == nil {
		t.Fatal("expected wrapped logger")
	}
}
