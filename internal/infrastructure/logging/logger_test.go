package logging

import (
	"log/slog"
	"testing"

	"github.com/nerrad567/gray-bridge-core/internal/infrastructure/config"
)

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
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	log := New(config.LoggingConfig{Level: "warn", Format: "json", Output: "stdout"}, "test")

	if log.Enabled(nil, slog.LevelInfo) {
		t.Error("info should be filtered at warn level")
	}
	if !log.Enabled(nil, slog.LevelWarn) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestWithDevice_Root(t *testing.T) {
	log := Default()

	// Must not panic and must return a distinct logger.
	derived := log.WithDevice("")
	if derived == nil || derived.Logger == log.Logger {
		t.Error("WithDevice should return a new derived logger")
	}
}
