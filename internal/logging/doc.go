// Package logging assembles structured slog loggers and formatting helpers
// used across theoraprobe.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and provides session tagging so every line emitted while one
// file is being bootstrapped can be correlated. A no-op logger is available
// for tests and wiring code that cannot fail.
package logging
