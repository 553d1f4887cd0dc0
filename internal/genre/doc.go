// Package genre holds the closed Korean genre vocabulary and its TMDB genre
// identifiers.
//
// The table is the single source of truth for both the extraction prompt
// (which enumerates the labels) and the normalizer (which maps them). It is
// built once at init and never mutated. Unknown labels report ok=false rather
// than a zero identifier.
package genre
