package scanner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dkorolev/flatgrep/pkg/types"
)

const (
	// encodingProbeSize is how much of the file head is inspected when
	// choosing an encoding from the priority list.
	encodingProbeSize = 64 * 1024

	// maxLineBytes bounds a single line; longer lines fail the scan rather
	// than exhausting memory.
	maxLineBytes = 4 * 1024 * 1024
)

type namedEncoding struct {
	name string
	enc  encoding.Encoding
}

// resolveEncoding maps a config-level encoding name to an x/text encoding.
// Common aliases are handled directly, everything else goes through the
// IANA index.
func resolveEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	case "cp1251", "windows-1251", "windows1251":
		return charmap.Windows1251, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "cp866", "ibm866":
		return charmap.CodePage866, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return enc, nil
}

// scanBuffered reads the file line by line through the committed decoder.
// Line numbers are 1-based and counted after the encoding is chosen, so a
// file never switches encodings mid-scan.
func (s *Scanner) scanBuffered(file types.DatabaseFile, m *matcher) FileResult {
	var res FileResult

	f, err := os.Open(file.Path)
	if err != nil {
		res.Err = fmt.Errorf("failed to open %s: %w", file.Path, err)
		return res
	}
	defer func() { _ = f.Close() }()

	enc, err := s.chooseEncoding(f)
	if err != nil {
		res.Err = fmt.Errorf("failed to probe %s: %w", file.Path, err)
		return res
	}

	// The decoder replaces undecodable bytes instead of aborting the line.
	reader := transform.NewReader(f, enc.NewDecoder())

	sc := bufio.NewScanner(reader)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNum := 0
	for sc.Scan() {
		lineNum++
		res.LinesScanned++

		line := sc.Text()
		if !m.MatchLine(line) {
			continue
		}

		res.Records = append(res.Records, s.newRecord(file, lineNum, strings.TrimSpace(line)))
		if len(res.Records) >= s.perFileCap {
			break
		}
	}

	if err := sc.Err(); err != nil {
		// Matches collected before the failure are kept.
		res.Err = fmt.Errorf("read error in %s after line %d: %w", file.Path, lineNum, err)
	}

	return res
}

// chooseEncoding commits to one encoding from the priority ladder by
// probing the head of the file. UTF-8 is accepted only when the probe
// validates; single-byte legacy encodings accept any input, so the first
// one listed wins otherwise. The file is rewound before returning.
func (s *Scanner) chooseEncoding(f *os.File) (encoding.Encoding, error) {
	probe := make([]byte, encodingProbeSize)
	n, err := io.ReadFull(f, probe)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	probe = probe[:n]

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	for _, ne := range s.encodings {
		if ne.enc == unicode.UTF8 {
			if utf8.Valid(trimPartialRune(probe)) {
				return ne.enc, nil
			}
			continue
		}
		return ne.enc, nil
	}

	// Nothing in the ladder accepted the probe: decode as UTF-8 with
	// replacement rather than refusing the file.
	return unicode.UTF8, nil
}

// trimPartialRune drops a trailing incomplete UTF-8 sequence cut off by the
// probe boundary so it does not count as invalid.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size != 1 {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}
