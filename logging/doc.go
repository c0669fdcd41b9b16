// Package logging provides a minimal logging interface and adapters for the
// kernel dispatcher.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the registry uses for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZapAdapter wrapping a zap logger
//   - KernelLogger with operator and dispatch key context
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	reg := dispatch.New(func(o *dispatch.Options) { o.Logger = logger })
package logging
