package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewRespectsLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"not-a-level", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		log := New(Config{Level: tt.level, Format: "json"})
		if log.GetLevel() != tt.want {
			t.Fatalf("New(level=%q) = %v, want %v", tt.level, log.GetLevel(), tt.want)
		}
	}
}

func TestNewConsoleFormat(t *testing.T) {
	log := New(Config{Level: "info", Format: "console"})

	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %v", log.GetLevel())
	}
}
