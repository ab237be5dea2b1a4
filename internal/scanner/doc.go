// Package scanner reads one data file and returns its matching lines.
//
// Two scan strategies exist and are selected by a pure predicate on file
// size (SelectStrategy), so both can be exercised against the same fixture:
//
//   - StrategyBuffered reads through bufio with a text decoder. The scan
//     commits to a single encoding (chosen from the configured priority
//     list by probing the head of the file) before any line is counted;
//     bytes the committed encoding cannot decode are replaced, never fatal.
//
//   - StrategyMapped maps the file read-only and walks newline-delimited
//     byte ranges without materializing the content. Matching is a
//     case-insensitive byte containment check against the lower-cased
//     query; there is no encoding ladder on this path. Callers routing
//     multi-encoding data through huge files should lower the threshold
//     so those files take the buffered path.
//
// A scan never propagates failure to the overall search: FileResult carries
// the error alongside whatever records were collected before it occurred.
package scanner
