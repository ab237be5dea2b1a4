package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_PriorityOrder(t *testing.T) {
	fields := Classify("123456789;John;+79001234567", ".txt")

	assert.Equal(t, "123456789", fields[FieldIdentifier])
	assert.Equal(t, "John", fields[FieldFirstName])
	assert.Equal(t, "+79001234567", fields[FieldPhone])
}

func TestClassify_FirstMatchWinsPerField(t *testing.T) {
	// Two identifier-shaped tokens: only the first fills the slot.
	fields := Classify("111111;222222", ".txt")
	assert.Equal(t, "111111", fields[FieldIdentifier])
}

func TestClassify_NameSlotsFillInOrder(t *testing.T) {
	fields := Classify("Ivanov;Ivan;Ivanovich", ".txt")

	assert.Equal(t, "Ivanov", fields[FieldFirstName])
	assert.Equal(t, "Ivan", fields[FieldLastName])
	assert.Equal(t, "Ivanovich", fields[FieldPatronymic])
}

func TestClassify_CyrillicNames(t *testing.T) {
	fields := Classify("Петров;Пётр;petrov@mail.ru", ".txt")

	assert.Equal(t, "Петров", fields[FieldFirstName])
	assert.Equal(t, "Пётр", fields[FieldLastName])
	assert.Equal(t, "petrov@mail.ru", fields[FieldEmail])
}

func TestClassify_Username(t *testing.T) {
	fields := Classify("@durov;+78005553535", ".txt")

	assert.Equal(t, "@durov", fields[FieldUsername])
	assert.Equal(t, "+78005553535", fields[FieldPhone])
}

func TestClassify_EmptyLine(t *testing.T) {
	assert.Empty(t, Classify("", ".txt"))
	assert.Empty(t, Classify("   ", ".txt"))
}

func TestSplitTokens_DelimiterPriority(t *testing.T) {
	tests := []struct {
		name string
		line string
		ext  string
		want []string
	}{
		{"csv wins on extension", "a,b;c", ".csv", []string{"a", "b;c"}},
		{"colon before semicolon", "a:b;c", ".txt", []string{"a", "b;c"}},
		{"semicolon", "a;b", ".txt", []string{"a", "b"}},
		{"tab", "a\tb", ".txt", []string{"a", "b"}},
		{"pipe", "a|b", ".txt", []string{"a", "b"}},
		{"whitespace fallback", "a b  c", ".txt", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTokens(tt.line, tt.ext))
		})
	}
}

func TestClassify_CSVDelimiter(t *testing.T) {
	// A csv line with colons inside a field must still split on commas.
	fields := Classify("123456789,Alice,alice@example.com", ".csv")

	assert.Equal(t, "123456789", fields[FieldIdentifier])
	assert.Equal(t, "Alice", fields[FieldFirstName])
	assert.Equal(t, "alice@example.com", fields[FieldEmail])
}

func TestDetectQuery(t *testing.T) {
	tests := []struct {
		query string
		kind  QueryKind
	}{
		{"123456789", KindIdentifier},
		{"+7 900 123-45-67", KindPhone},
		{"user@example.com", KindEmail},
		{"@username", KindUsername},
		{"Иванов Иван", KindNameRu},
		{"John Smith", KindNameEn},
		{"???", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.kind, DetectQuery(tt.query).Kind)
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "79001234567", NormalizePhone("8 (900) 123-45-67"))
	assert.Equal(t, "79001234567", NormalizePhone("+7 900 123 45 67"))
	assert.Equal(t, "1234567890", NormalizePhone("123-456-7890"))
}
