// Package logger builds the structured logger shared by every ignite
// subsystem. All packages accept a *zap.SugaredLogger rather than
// constructing their own, so this is the one place the concrete zap
// configuration lives.
package logger

import "go.uber.org/zap"

// New builds a production-configured, JSON-encoded logger tagged with the
// given service name. Every log line emitted anywhere in the engine or
// dispatcher carries that tag, making it possible to separate ignite's
// output from the rest of a host process's logs.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails if the default config can't open its
		// sinks, which for the default stderr sink never happens. Falling
		// back to a no-op logger keeps callers from having to handle an
		// error that in practice never occurs.
		return zap.NewNop().Sugar()
	}
	return base.Sugar().With("service", service)
}

// NewDevelopment builds a human-readable, colorized logger for local
// development. The CLI binaries use New, not this constructor.
func NewDevelopment(service string) *zap.SugaredLogger {
	base, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return base.Sugar().With("service", service)
}
