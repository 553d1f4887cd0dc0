// Package search drives one search action from free text to catalog results.
//
// A Pipeline runs Extracting, Normalizing and Querying in order and stops at
// the first failure; there are no retries and no partial results. Every
// action gets a UUID request id that is attached to the context and to every
// log line. Actions submitted under the same session key supersede each
// other: starting a new one cancels the one still in flight, which then fails
// with context.Canceled.
package search
