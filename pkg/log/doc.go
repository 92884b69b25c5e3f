// Package log provides memstream's structured logging facade and utilities.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Internally it is backed by Go's
// standard library slog via a custom handler that preserves the
// formatter/output pipeline, keeping output consistent across the codebase.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("runtime"), log.Str("stream", "orders"))
//	l.Info("stream created", log.Int("groups", 0))
//
// # Output
//
// Text and JSON formatters are provided; outputs can be fanned out by adding
// multiple WithOutput options. NullOutput and NewNopLogger help keep tests
// quiet.
package log
