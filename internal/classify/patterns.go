package classify

import "regexp"

// Pattern is a named whole-line regular expression. When Group is non-zero
// the value is taken from that submatch instead of the full match.
type Pattern struct {
	Name  string
	re    *regexp.Regexp
	group int
}

// Patterns is the whole-line detection library used by Extract. It is
// independent of the token classifier: patterns run against the raw line
// and may yield several values each. The original lookaround-based password
// pattern is expressed with a capture group, which RE2 supports.
var Patterns = []Pattern{
	{Name: "telegram_id", re: regexp.MustCompile(`(?i)\b(\d{6,12})\b`), group: 1},
	{Name: "phone_ru", re: regexp.MustCompile(`(?i)(?:\+7|8)[\s\-]?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}`)},
	{Name: "phone_any", re: regexp.MustCompile(`(?i)\+?\d{10,15}`)},
	{Name: "email", re: regexp.MustCompile(`(?i)[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
	{Name: "username", re: regexp.MustCompile(`(?i)@[a-zA-Z0-9_]{3,32}`)},
	{Name: "ip_address", re: regexp.MustCompile(`(?i)\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{Name: "password", re: regexp.MustCompile(`(?i):([^\s:]{6,50})(?:\s|:|$)`), group: 1},
	{Name: "name_ru", re: regexp.MustCompile(`(?i)[А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+(?:\s+[А-ЯЁ][а-яё]+)?`)},
	{Name: "name_en", re: regexp.MustCompile(`(?i)[A-Z][a-z]+\s+[A-Z][a-z]+`)},
	{Name: "date", re: regexp.MustCompile(`(?i)\b\d{2}[./\-]\d{2}[./\-]\d{2,4}\b`)},
	{Name: "url", re: regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)},
	{Name: "hash_md5", re: regexp.MustCompile(`(?i)\b[a-fA-F0-9]{32}\b`)},
	{Name: "hash_sha1", re: regexp.MustCompile(`(?i)\b[a-fA-F0-9]{40}\b`)},
	{Name: "credit_card", re: regexp.MustCompile(`(?i)\b(?:\d{4}[\s\-]?){3}\d{4}\b`)},
	{Name: "passport_ru", re: regexp.MustCompile(`(?i)\b\d{4}\s?\d{6}\b`)},
	{Name: "snils", re: regexp.MustCompile(`(?i)\b\d{3}[\s\-]?\d{3}[\s\-]?\d{3}[\s\-]?\d{2}\b`)},
	{Name: "inn", re: regexp.MustCompile(`(?i)\b\d{10,12}\b`)},
	{Name: "vk_id", re: regexp.MustCompile(`(?i)(?:vk\.com/|id)(\d+)`), group: 1},
}

// Extract runs every pattern against the line and collects all values per
// pattern name. Names with no match are absent from the result.
func Extract(line string) map[string][]string {
	extracted := make(map[string][]string)

	for _, p := range Patterns {
		matches := p.re.FindAllStringSubmatch(line, -1)
		if len(matches) == 0 {
			continue
		}
		values := make([]string, 0, len(matches))
		for _, m := range matches {
			values = append(values, m[p.group])
		}
		extracted[p.Name] = values
	}

	return extracted
}

// PatternNames lists the available pattern names in library order.
func PatternNames() []string {
	names := make([]string, len(Patterns))
	for i, p := range Patterns {
		names[i] = p.Name
	}
	return names
}

// ExtractNamed runs a single named pattern against the line. The second
// return value is false when the name is not in the library.
func ExtractNamed(name, line string) ([]string, bool) {
	for _, p := range Patterns {
		if p.Name != name {
			continue
		}
		matches := p.re.FindAllStringSubmatch(line, -1)
		values := make([]string, 0, len(matches))
		for _, m := range matches {
			values = append(values, m[p.group])
		}
		return values, true
	}
	return nil, false
}
