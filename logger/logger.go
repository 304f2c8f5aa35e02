// Package logger builds the zap.Logger used for per-stage resolution
// diagnostics (DNS, HTTP, XML stages). It is a thin constructor, not a
// wrapper interface: callers hold a *zap.Logger directly and attach
// per-call fields (correlation ID, participant) with Logger.With, the
// same way smpresolver.Resolver does internally.
package logger

import "go.uber.org/zap"

// New builds a production zap.Logger (JSON encoding, info level) for use
// as a Resolver's Config.Logger. Use Development for human-readable
// console output during local debugging.
func New() (*zap.Logger, error) {
	return zap.NewProduction()
}

// Development builds a zap.Logger tuned for local debugging: console
// encoding, debug level, and caller annotations.
func Development() (*zap.Logger, error) {
	return zap.NewDevelopment()
}

// Nop returns a logger that discards everything, matching the default a
// Resolver falls back to when no Logger is configured.
func Nop() *zap.Logger {
	return zap.NewNop()
}
