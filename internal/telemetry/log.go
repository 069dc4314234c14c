// Package telemetry builds the structured logger used across the DAG
// store, following the teacher's convention of a single package-level
// constructor rather than scattering logger setup across binaries.
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a production-style zap logger. In development mode it
// uses a human-readable console encoder at debug level; otherwise it uses
// the JSON encoder at info level. Output goes to the zap config's default
// sinks; the telemetry endpoint named on the CLI is not used here.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return cfg.Build()
}
