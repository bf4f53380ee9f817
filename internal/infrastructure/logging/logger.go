package logging

import (
	"fmt"

	"github.com/JericoFX/advance-manager/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConsistencyLoggerName names the logger that receives accounting
// discrepancies. Operators alert on it separately from request logs.
const ConsistencyLoggerName = "consistency"

// New builds the process logger from configuration
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Level, err)
		}
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.With(zap.String("service", "advance-manager")), nil
}

// Consistency returns the dedicated accounting-discrepancy logger
func Consistency(logger *zap.Logger) *zap.Logger {
	return logger.Named(ConsistencyLoggerName)
}
