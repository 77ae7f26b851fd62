// Package logtrace provides logging and request tracing helpers shared by the SDK packages.
// It integrates with zerolog for structured logging and carries request IDs on the context.
package logtrace

import (
	"github.com/rs/zerolog"
)

// Component returns a child logger tagged with the given component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// Nop returns a logger that discards everything. It is the default for SDK clients.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
