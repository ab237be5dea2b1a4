// Package classify extracts semantic fields from delimited record lines.
//
// Two independent mechanisms are provided:
//
//   - Classify splits a line on a detected delimiter and assigns tokens to
//     named fields (identifier, phone, email, username, names) using ordered
//     first-match-wins heuristics. It is a best-effort extractor, not a
//     validated parser: ambiguous tokens may be misclassified, and the rule
//     order is part of the contract.
//
//   - Extract runs a library of named regular expressions over the whole
//     line, independent of delimiter splitting, and can return multiple
//     values per pattern (IP addresses, URLs, hashes, card-like numbers,
//     dates, national identifiers).
package classify
