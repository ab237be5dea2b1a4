// Package types defines the shared value types that flow between the
// scanner, classifier, cache and engine packages.
//
// The types here are deliberately plain data: a Query describing what to
// look for, a DatabaseFile snapshot of a discovered file, and a MatchRecord
// for every matched line together with its classified fields. Keeping them
// in a leaf package lets internal packages exchange results without
// depending on each other.
package types
