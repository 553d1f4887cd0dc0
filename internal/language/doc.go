// Package language normalizes the original-language filter of a discovery
// query to ISO 639-1.
//
// Model output names languages in many shapes: "ko", "kor", "Korean" or
// "한국어". ToISO2 folds all of them to the two-letter code the catalog
// expects, using a small table of common film languages and falling back to
// golang.org/x/text/language for any other ISO 639 code.
package language
