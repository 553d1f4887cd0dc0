// Package favorites persists the movies a user saved from search results.
//
// The store is a small SQLite table keyed by catalog movie id. It keeps at
// most Capacity entries ordered most-recent-first: saving a movie again moves
// it to the front and saving beyond capacity evicts the oldest entry.
package favorites
