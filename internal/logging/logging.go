// Package logging constructs the application's zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger for the given environment: JSON output at Info
// for "production", colored console output at Debug otherwise.
func New(environment string) (*zap.Logger, error) {
	if environment == "production" {
		logger, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("build production logger: %w", err)
		}
		return logger, nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build development logger: %w", err)
	}
	return logger, nil
}
