// Package logging assembles structured slog loggers and formatting helpers used
// across cinechat.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the request id and session of the search that produced them.
// When a log directory is configured every record is also appended as JSON to
// cinechat.log. The package provides a no-op logger for tests and wiring code
// that cannot fail.
package logging
