package bwrt

import (
	"go.uber.org/zap"
)

// NewLogger builds the runtime's structured logger at the level configured
// in the environment. Output is JSON on stderr, which the platform forwards
// to the function's log stream.
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
