// Package engine coordinates a search: it consults the result cache,
// discovers candidate files, fans scanning out over a bounded worker
// pool, aggregates matches under a global cap, and records the
// invocation in the search history.
//
// Worker count scales with the file count rather than being fixed, so a
// directory with three files never spins up sixteen goroutines. A file
// that fails to scan is logged and contributes nothing; it never fails
// the search.
package engine
