// Package logging builds the process-wide zap logger and provides helpers for
// sanitizing values before they are logged.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New constructs the process logger. Local and test environments get the
// human-readable development encoder, everything else gets production JSON.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "local", "test":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
