package scanner

import (
	"regexp"
	"strings"

	"github.com/dkorolev/flatgrep/pkg/types"
)

// compiledPattern caches the outcome of compiling a regex-mode query, so a
// query that failed once is not recompiled per file.
type compiledPattern struct {
	re *regexp.Regexp // nil when compilation failed
}

// matcher applies one query's match predicate to lines. It is built once
// per Scan call; the regex fallback decision is made at build time, not per
// line.
type matcher struct {
	query  types.Query
	text   string // trimmed query text
	needle string // trimmed, lower-cased query for case-insensitive containment
	re     *regexp.Regexp
}

func (s *Scanner) newMatcher(q types.Query) *matcher {
	text := strings.TrimSpace(q.Text)
	m := &matcher{
		query:  q,
		text:   text,
		needle: strings.ToLower(text),
	}

	if q.Mode == types.MatchRegex {
		pattern := q.Text
		if !q.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		if cached, ok := s.regexCache.Get(pattern); ok {
			m.re = cached.re
			return m
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			// Bad pattern: fall back to substring matching for the whole
			// search rather than failing the file.
			s.logger.Warn("regex compile failed, falling back to substring",
				"pattern", q.Text, "error", err)
		}
		s.regexCache.Add(pattern, compiledPattern{re: re})
		m.re = re
	}

	return m
}

// MatchLine reports whether the line satisfies the query.
func (m *matcher) MatchLine(line string) bool {
	switch {
	case m.query.Mode == types.MatchExact:
		trimmed := strings.TrimSpace(line)
		if m.query.CaseSensitive {
			return trimmed == m.text
		}
		return strings.EqualFold(trimmed, m.text)

	case m.query.Mode == types.MatchRegex && m.re != nil:
		return m.re.MatchString(line)

	default: // substring, including the regex fallback
		if m.query.CaseSensitive {
			return strings.Contains(line, m.text)
		}
		return strings.Contains(strings.ToLower(line), m.needle)
	}
}
