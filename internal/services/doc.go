// Package services defines shared utilities consumed by the search pipeline,
// the HTTP surface, and the external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request and session identifiers for logging
//     and supersession.
//   - Structured error markers plus the Wrap helper, and the mapping from
//     those markers to HTTP status codes and user-facing messages.
//
// Every failure that crosses a package boundary should carry one of the
// markers so the HTTP layer and the CLI report it uniformly.
package services
