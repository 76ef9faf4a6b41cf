package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		want      zerolog.Level
	}{
		{"default_warn", 0, zerolog.WarnLevel},
		{"verbose_info", 1, zerolog.InfoLevel},
		{"double_verbose_debug", 2, zerolog.DebugLevel},
		{"triple_verbose_trace", 3, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetupLogger(tt.verbosity)
			if got := zerolog.GlobalLevel(); got != tt.want {
				t.Errorf("SetupLogger(%d) level = %v, want %v", tt.verbosity, got, tt.want)
			}
		})
	}
}

func TestGetLogger(t *testing.T) {
	SetupLogger(0)
	logger := GetLogger("lifecycle")
	// Logging through the component logger must not panic.
	logger.Debug().Str("part", "foo").Msg("test message")
}
