// Package logging provides zap logger construction and helpers for
// sanitizing sensitive values before they reach the log stream.
package logging

import (
	"go.uber.org/zap"
)

// New builds the process-wide logger. Local environments get the
// development encoder (console, human-readable); everything else gets
// the production JSON encoder.
func New(env string) (*zap.Logger, error) {
	if env == "local" || env == "test" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
