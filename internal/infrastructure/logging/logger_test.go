package logging

import (
	"testing"

	"github.com/JericoFX/advance-manager/internal/infrastructure/config"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
		enabled zapcore.Level
	}{
		{"default level", config.LogConfig{}, false, zapcore.InfoLevel},
		{"debug development", config.LogConfig{Level: "debug", Development: true}, false, zapcore.DebugLevel},
		{"warn production", config.LogConfig{Level: "warn"}, false, zapcore.WarnLevel},
		{"invalid level", config.LogConfig{Level: "loud"}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !logger.Core().Enabled(tt.enabled) {
				t.Errorf("expected level %v to be enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && logger.Core().Enabled(tt.enabled-1) {
				t.Errorf("expected level %v to be disabled", tt.enabled-1)
			}
		})
	}
}
