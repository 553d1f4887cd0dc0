// Package tmdb provides the minimal TMDB API client used to run discovery
// searches.
//
// It authenticates with a bearer token, serializes the canonical
// DiscoverQuery (dropping unset fields, defaulting to popularity order and the
// first page), and relays the result list with each record's original JSON
// intact. Transport failures and non-2xx responses are tagged as upstream
// errors carrying TMDB's status_message. Options allow tests to supply custom
// HTTP clients without modifying production code.
package tmdb
