// Package criteria turns a free-text movie request into catalog discovery
// parameters.
//
// The Extractor sends the request to a language model together with a system
// prompt that enumerates the closed genre vocabulary and the JSON schema, and
// returns the raw completion text. The Normalizer is a pure transformation of
// that text (or of HTTP query parameters) into a tmdb.DiscoverQuery: genre
// labels become catalog ids, unknown keys and empty values are dropped,
// out-of-domain values are removed with a warning, and the response language
// is forced to the configured locale. Feeding a normalized query back through
// the Normalizer yields the same query.
package criteria
