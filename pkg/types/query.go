package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// MatchMode selects how a query is matched against a line.
type MatchMode string

const (
	// MatchSubstring matches lines containing the query text.
	MatchSubstring MatchMode = "substring"
	// MatchExact matches lines whose trimmed content equals the query.
	MatchExact MatchMode = "exact"
	// MatchRegex compiles the query as a regular expression. A query that
	// fails to compile falls back to substring matching.
	MatchRegex MatchMode = "regex"
)

// ParseMatchMode converts a string into a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case MatchSubstring, "":
		return MatchSubstring, nil
	case MatchExact:
		return MatchExact, nil
	case MatchRegex:
		return MatchRegex, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMatchMode, s)
	}
}

// Query describes a single search request.
type Query struct {
	Text          string
	Mode          MatchMode
	CaseSensitive bool
}

// Normalized returns the trimmed, lower-cased query text. The normalized
// form is what cache fingerprints are computed from.
func (q Query) Normalized() string {
	return strings.ToLower(strings.TrimSpace(q.Text))
}

// IsEmpty reports whether the query is empty after trimming.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == ""
}

// Fingerprint returns a stable hex-encoded hash of the normalized query
// text, used as the result-cache key.
func (q Query) Fingerprint() string {
	sum := sha256.Sum256([]byte(q.Normalized()))
	return hex.EncodeToString(sum[:])
}
