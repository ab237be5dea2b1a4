package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/dkorolev/flatgrep/pkg/types"
)

func writeFixture(t *testing.T, name, content string) types.DatabaseFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return types.DatabaseFile{
		Path:      path,
		Name:      name,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}
}

func newTestScanner(perFileCap int, threshold int64) *Scanner {
	return New(Options{
		PerFileCap:       perFileCap,
		MmapThreshold:    threshold,
		EncodingPriority: []string{"utf-8", "windows-1251", "latin-1", "cp866"},
	})
}

func TestSelectStrategy(t *testing.T) {
	assert.Equal(t, StrategyBuffered, SelectStrategy(100, 100))
	assert.Equal(t, StrategyMapped, SelectStrategy(101, 100))
	assert.Equal(t, StrategyBuffered, SelectStrategy(0, 100))
}

func TestScan_SubstringCaseInsensitive(t *testing.T) {
	file := writeFixture(t, "a.txt", "Alice:123456789\nbob:999\nALICE again\n")
	s := newTestScanner(100, 1<<30)

	res := s.Scan(file, types.Query{Text: "alice", Mode: types.MatchSubstring})
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Records[0].LineNumber)
	assert.Equal(t, 3, res.Records[1].LineNumber)
	assert.Equal(t, int64(3), res.LinesScanned)
	assert.Equal(t, StrategyBuffered, res.Strategy)
}

func TestScan_SubstringCaseSensitive(t *testing.T) {
	file := writeFixture(t, "a.txt", "Alice\nalice\n")
	s := newTestScanner(100, 1<<30)

	res := s.Scan(file, types.Query{Text: "Alice", Mode: types.MatchSubstring, CaseSensitive: true})
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Records[0].LineNumber)
}

func TestScan_ExactMatchesTrimmedLine(t *testing.T) {
	file := writeFixture(t, "a.txt", "  hello  \nhello world\nHELLO\n")
	s := newTestScanner(100, 1<<30)

	res := s.Scan(file, types.Query{Text: "hello", Mode: types.MatchExact})
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Records[0].LineNumber)
	assert.Equal(t, 3, res.Records[1].LineNumber)
}

func TestScan_Regex(t *testing.T) {
	file := writeFixture(t, "a.txt", "id=1234\nid=abcd\nID=5678\n")
	s := newTestScanner(100, 1<<30)

	res := s.Scan(file, types.Query{Text: `id=\d+`, Mode: types.MatchRegex})
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 2)
}

func TestScan_BadRegexFallsBackToSubstring(t *testing.T) {
	file := writeFixture(t, "a.txt", "value [abc here\nnothing\n")
	s := newTestScanner(100, 1<<30)

	res := s.Scan(file, types.Query{Text: "[abc", Mode: types.MatchRegex})
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Records[0].LineNumber)
}

func TestScan_PerFileCapStopsEarly(t *testing.T) {
	content := ""
	for i := 0; i < 50; i++ {
		content += "match me\n"
	}
	file := writeFixture(t, "a.txt", content)
	s := newTestScanner(10, 1<<30)

	res := s.Scan(file, types.Query{Text: "match", Mode: types.MatchSubstring})
	require.NoError(t, res.Err)
	assert.Len(t, res.Records, 10)
	// Early stop: no lines were read past the cap.
	assert.Equal(t, int64(10), res.LinesScanned)
}

func TestScan_ClassifiesMatchedLines(t *testing.T) {
	file := writeFixture(t, "a.txt", "123456789;John;+79001234567\n")
	s := newTestScanner(100, 1<<30)

	res := s.Scan(file, types.Query{Text: "123456789", Mode: types.MatchSubstring})
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 1)

	fields := res.Records[0].Fields
	assert.Equal(t, "123456789", fields["identifier"])
	assert.Equal(t, "John", fields["first_name"])
	assert.Equal(t, "+79001234567", fields["phone"])
}

func TestScan_Windows1251Fallback(t *testing.T) {
	enc := charmap.Windows1251.NewEncoder()
	raw, err := enc.String("Иванов Иван;79001234567\n")
	require.NoError(t, err)

	file := writeFixture(t, "ru.txt", raw)
	s := newTestScanner(100, 1<<30)

	res := s.Scan(file, types.Query{Text: "Иванов", Mode: types.MatchSubstring})
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 1)
	assert.Contains(t, res.Records[0].RawLine, "Иванов")
}

func TestScan_MissingFile(t *testing.T) {
	s := newTestScanner(100, 1<<30)
	res := s.Scan(types.DatabaseFile{Path: "/no/such/file", Name: "file"},
		types.Query{Text: "x", Mode: types.MatchSubstring})

	assert.Error(t, res.Err)
	assert.Empty(t, res.Records)
}

func TestScanMapped_EmptyFile(t *testing.T) {
	file := writeFixture(t, "empty.txt", "")
	// Force the mapped path regardless of actual size.
	file.SizeBytes = 1
	s := newTestScanner(100, 0)

	res := s.Scan(file, types.Query{Text: "x", Mode: types.MatchSubstring})
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Records)
	assert.Equal(t, StrategyMapped, res.Strategy)
}

func TestScanMapped_FindsMatches(t *testing.T) {
	file := writeFixture(t, "big.txt", "first MATCH line\nsecond line\nthird Match\nno trailing newline match")
	s := newTestScanner(100, 0)

	res := s.Scan(file, types.Query{Text: "match", Mode: types.MatchSubstring})
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 3)
	assert.Equal(t, StrategyMapped, res.Strategy)
	assert.Equal(t, []int{1, 3, 4}, []int{
		res.Records[0].LineNumber,
		res.Records[1].LineNumber,
		res.Records[2].LineNumber,
	})
	assert.Equal(t, int64(4), res.LinesScanned)
}

func TestStrategyEquivalence(t *testing.T) {
	content := "alpha;111111\nbeta;222222\nALPHA tail\nmiddle alpha middle\nlast line"
	file := writeFixture(t, "same.txt", content)

	buffered := newTestScanner(100, 1<<30).Scan(file, types.Query{Text: "alpha", Mode: types.MatchSubstring})
	mapped := newTestScanner(100, 0).Scan(file, types.Query{Text: "alpha", Mode: types.MatchSubstring})

	require.NoError(t, buffered.Err)
	require.NoError(t, mapped.Err)
	require.Equal(t, StrategyBuffered, buffered.Strategy)
	require.Equal(t, StrategyMapped, mapped.Strategy)

	type pair struct {
		line int
		raw  string
	}
	collect := func(res FileResult) []pair {
		out := make([]pair, 0, len(res.Records))
		for _, r := range res.Records {
			out = append(out, pair{r.LineNumber, r.RawLine})
		}
		return out
	}

	assert.Equal(t, collect(buffered), collect(mapped))
	assert.Equal(t, buffered.LinesScanned, mapped.LinesScanned)
}

func TestContainsFold(t *testing.T) {
	assert.True(t, containsFold([]byte("Hello World"), []byte("world")))
	assert.True(t, containsFold([]byte("abc"), nil))
	assert.False(t, containsFold([]byte("short"), []byte("longer needle")))
	assert.False(t, containsFold([]byte("abcdef"), []byte("xyz")))
}
