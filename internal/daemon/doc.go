// Package daemon runs the long-lived cinechat HTTP service.
//
// It wires configuration, the search pipeline and the favorites store into a
// single lifecycle with flock-based locking so only one server runs per data
// directory. Handlers stay thin: request parsing and status mapping live here
// while extraction, normalization and catalog access belong to their own
// packages.
package daemon
