// Package logging provides structured logging helpers built on log/slog.
//
// It defines the canonical attribute keys used across the codebase so that
// log output stays consistent and greppable, plus small helpers for
// attaching common attributes and for sanitizing sensitive values (bearer
// tokens, client secrets) before they reach a log line.
package logging
