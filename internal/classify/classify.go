package classify

import (
	"regexp"
	"strings"
)

// Field names produced by Classify.
const (
	FieldIdentifier = "identifier"
	FieldPhone      = "phone"
	FieldEmail      = "email"
	FieldUsername   = "username"
	FieldFirstName  = "first_name"
	FieldLastName   = "last_name"
	FieldPatronymic = "patronymic"
)

var (
	identifierRe = regexp.MustCompile(`^\d{6,12}$`)
	// Applied to the token with spaces stripped; allows separators common
	// in phone notation, 10-15 characters after the optional plus.
	phoneRe = regexp.MustCompile(`^\+?[\d\-()]{10,15}$`)
	emailRe = regexp.MustCompile(`(?i)^[\w.\-+]+@[\w.\-]+\.\w+$`)
	// Letters only, Latin or Cyrillic (including Ukrainian letters),
	// at least two runes.
	nameRe = regexp.MustCompile(`^[A-Za-zА-Яа-яЁёІіЇїЄєҐґ]{2,}$`)
)

// SplitTokens splits a line on its detected delimiter. Detection is a fixed
// priority chain: comma for tabular (.csv) files, then colon, semicolon,
// tab, pipe, and finally whitespace runs.
func SplitTokens(line, ext string) []string {
	switch {
	case strings.EqualFold(ext, ".csv"):
		return strings.Split(line, ",")
	case strings.Contains(line, ":"):
		return strings.Split(line, ":")
	case strings.Contains(line, ";"):
		return strings.Split(line, ";")
	case strings.Contains(line, "\t"):
		return strings.Split(line, "\t")
	case strings.Contains(line, "|"):
		return strings.Split(line, "|")
	default:
		return strings.Fields(line)
	}
}

// Classify maps a line's tokens to named fields. Rules are evaluated in a
// fixed order per token and each field is filled at most once per line; the
// first token matching a rule wins that field. Name tokens fill first_name,
// then last_name, then patronymic, in token order regardless of the actual
// name convention of the data.
func Classify(line, ext string) map[string]string {
	fields := make(map[string]string)

	for _, token := range SplitTokens(line, ext) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		stripped := strings.ReplaceAll(token, " ", "")

		switch {
		case identifierRe.MatchString(token) && fields[FieldIdentifier] == "":
			fields[FieldIdentifier] = token

		case phoneRe.MatchString(stripped) && fields[FieldPhone] == "":
			fields[FieldPhone] = token

		case emailRe.MatchString(token) && fields[FieldEmail] == "":
			fields[FieldEmail] = token

		case strings.HasPrefix(token, "@") && len(token) > 1 && fields[FieldUsername] == "":
			fields[FieldUsername] = token

		case nameRe.MatchString(token):
			switch {
			case fields[FieldFirstName] == "":
				fields[FieldFirstName] = token
			case fields[FieldLastName] == "":
				fields[FieldLastName] = token
			case fields[FieldPatronymic] == "":
				fields[FieldPatronymic] = token
			}
		}
	}

	return fields
}

// QueryKind is the detected shape of a raw query string.
type QueryKind string

const (
	KindUnknown    QueryKind = "unknown"
	KindIdentifier QueryKind = "identifier"
	KindPhone      QueryKind = "phone"
	KindEmail      QueryKind = "email"
	KindUsername   QueryKind = "username"
	KindNameRu     QueryKind = "name_ru"
	KindNameEn     QueryKind = "name_en"
)

var (
	phoneQueryRe  = regexp.MustCompile(`^\+?[78]?\d{10,11}$`)
	nameRuQueryRe = regexp.MustCompile(`^[А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+`)
	nameEnQueryRe = regexp.MustCompile(`^[A-Z][a-z]+\s+[A-Z][a-z]+`)
	nonDigitRe    = regexp.MustCompile(`\D`)
)

// DetectedQuery carries the detected kind of a query together with its
// normalized form (e.g. a phone reduced to digits).
type DetectedQuery struct {
	Original   string
	Kind       QueryKind
	Normalized string
}

// DetectQuery inspects a raw query and guesses what the caller is looking
// for. Used by callers that want to pre-filter results by field.
func DetectQuery(query string) DetectedQuery {
	query = strings.TrimSpace(query)
	det := DetectedQuery{Original: query, Kind: KindUnknown, Normalized: query}

	compact := strings.NewReplacer(" ", "", "-", "").Replace(query)

	switch {
	case identifierRe.MatchString(query):
		det.Kind = KindIdentifier
	case phoneQueryRe.MatchString(compact):
		det.Kind = KindPhone
		det.Normalized = NormalizePhone(query)
	case strings.Contains(query, "@") && strings.Contains(query, "."):
		det.Kind = KindEmail
		det.Normalized = strings.ToLower(query)
	case strings.HasPrefix(query, "@"):
		det.Kind = KindUsername
		det.Normalized = strings.ToLower(query)
	case nameRuQueryRe.MatchString(query):
		det.Kind = KindNameRu
	case nameEnQueryRe.MatchString(query):
		det.Kind = KindNameEn
	}

	return det
}

// NormalizePhone reduces a phone number to digits, folding the Russian
// 8-prefix onto the country code.
func NormalizePhone(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	if len(digits) == 11 && (digits[0] == '7' || digits[0] == '8') {
		digits = "7" + digits[1:]
	}
	return digits
}
