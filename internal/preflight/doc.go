// Package preflight provides readiness checks for the external services and
// filesystem paths cinechat depends on.
//
// The CLI "cinechat status" command runs RunAll to show whether the language
// model provider and the movie catalog accept the configured credentials and
// whether the data directories are writable. Checks never modify state; the
// model check spends one tiny completion.
package preflight
