// Package logging assembles structured slog loggers and formatting helpers used
// across landscaper.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so batch code can tag log lines with the
// run identifier and the directory being processed. Multiple sinks (console
// plus the JSON run log) are combined with slog-multi. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
