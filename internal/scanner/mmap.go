package scanner

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/dkorolev/flatgrep/pkg/types"
)

// scanMapped maps the file read-only and scans newline-delimited byte
// ranges. Matching is a case-insensitive byte containment check against the
// lower-cased query; the line is only decoded (with best-effort
// replacement) once it matched and a textual record has to be built.
func (s *Scanner) scanMapped(file types.DatabaseFile, m *matcher) FileResult {
	var res FileResult

	f, err := os.Open(file.Path)
	if err != nil {
		res.Err = fmt.Errorf("failed to open %s: %w", file.Path, err)
		return res
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		res.Err = fmt.Errorf("failed to stat %s: %w", file.Path, err)
		return res
	}
	if info.Size() == 0 {
		// Mapping zero bytes fails on most platforms; an empty file simply
		// has no matches.
		return res
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		res.Err = fmt.Errorf("failed to map %s: %w", file.Path, err)
		return res
	}
	defer func() { _ = data.Unmap() }()

	needle := []byte(m.needle)

	lineNum := 0
	start := 0
	for start < len(data) {
		var line []byte
		if idx := bytes.IndexByte(data[start:], '\n'); idx >= 0 {
			line = data[start : start+idx]
			start += idx + 1
		} else {
			line = data[start:]
			start = len(data)
		}

		lineNum++
		res.LinesScanned++

		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}

		if !containsFold(line, needle) {
			continue
		}

		text := strings.TrimSpace(strings.ToValidUTF8(string(line), "�"))
		res.Records = append(res.Records, s.newRecord(file, lineNum, text))
		if len(res.Records) >= s.perFileCap {
			break
		}
	}

	return res
}

// containsFold reports whether hay contains needle under ASCII case
// folding. needle is expected to be lower-cased already; non-ASCII bytes
// are compared exactly.
func containsFold(hay, needle []byte) bool {
	if len(needle) == 0 {
		return true
	}
	if len(needle) > len(hay) {
		return false
	}

	first := needle[0]
	for i := 0; i+len(needle) <= len(hay); i++ {
		if asciiLower(hay[i]) != first {
			continue
		}
		j := 1
		for ; j < len(needle); j++ {
			if asciiLower(hay[i+j]) != needle[j] {
				break
			}
		}
		if j == len(needle) {
			return true
		}
	}
	return false
}

func asciiLower(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
