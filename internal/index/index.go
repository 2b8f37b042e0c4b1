package index

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/user/tailview/internal/mapped"
	"github.com/user/tailview/internal/suggest"
	"github.com/user/tailview/pkg/logformat"
)

// DefaultChunkSize is the scan block granularity when none is configured
const DefaultChunkSize = 64 * 1024

// FileIndex owns a read-only mapped view of one file and a table of
// line-start byte offsets built incrementally by ScanBlock. After a
// range has been scanned, Line answers "what is line N" in O(1).
//
// offsets always begins with 0 and holds the start of every line whose
// terminator has been observed, plus the start of the line after the
// last terminator. Bytes after the last terminator are a pending
// fragment and are not counted as a line until terminated.
//
// ScanBlock must not be called concurrently with itself or with
// Line/Text on the same instance; Line and Text may be called
// concurrently with each other. Mutation belongs to the single owner
// draining change notifications.
type FileIndex struct {
	path      string
	file      *mapped.File
	offsets   []int64
	scanned   int64 // end of the last scanned range
	chunkSize int

	stamps      *logformat.TimestampScanner
	suggestions *suggest.Index
}

// New creates an index for path. Open must be called before scanning.
func New(path string) *FileIndex {
	return &FileIndex{
		path:      path,
		offsets:   []int64{0},
		chunkSize: DefaultChunkSize,
		stamps:    logformat.NewTimestampScanner(),
	}
}

// SetChunkSize overrides the scan block granularity
func (x *FileIndex) SetChunkSize(n int) {
	if n > 0 {
		x.chunkSize = n
	}
}

// AttachSuggestions wires a suggestion index that Text feeds as lines
// are accessed
func (x *FileIndex) AttachSuggestions(s *suggest.Index) {
	x.suggestions = s
}

// Open maps the file read-only. Failure here is fatal to the owning
// view; the path must exist and be readable.
func (x *FileIndex) Open() error {
	file, err := mapped.Open(x.path)
	if err != nil {
		return err
	}
	x.file = file
	return nil
}

// Close releases the mapping; safe to call more than once
func (x *FileIndex) Close() error {
	if x.file == nil {
		return nil
	}
	return x.file.Close()
}

// Path returns the indexed file path
func (x *FileIndex) Path() string {
	return x.path
}

// Size returns the mapped size in bytes
func (x *FileIndex) Size() int64 {
	if x.file == nil {
		return 0
	}
	return x.file.Size()
}

// LineCount returns the number of fully terminated lines
func (x *FileIndex) LineCount() int {
	return len(x.offsets) - 1
}

// ScanBlock scans [start, end) for line terminators and appends the
// offset after each one to the line table. start must equal the end of
// the previously scanned range: ranges advance monotonically and no
// byte is ever scanned twice. Bytes after the last terminator stay
// pending until a later block covers their terminator.
func (x *FileIndex) ScanBlock(start, end int64) error {
	if start != x.scanned {
		panic(fmt.Sprintf("index: scan range [%d,%d) must start at previous end %d", start, end, x.scanned))
	}
	if end > x.file.Size() {
		end = x.file.Size()
	}
	if end <= start {
		return nil
	}

	buf := make([]byte, x.chunkSize)

	pos := start
	for pos < end {
		readSize := int64(x.chunkSize)
		if pos+readSize > end {
			readSize = end - pos
		}

		n, err := x.file.ReadAt(buf[:readSize], pos)
		if err != nil {
			return fmt.Errorf("scan %s at %d: %w", x.path, pos, err)
		}

		chunk := buf[:n]
		offset := 0
		for {
			idx := bytes.IndexByte(chunk[offset:], '\n')
			if idx == -1 {
				break
			}
			x.offsets = append(x.offsets, pos+int64(offset)+int64(idx)+1)
			offset += idx + 1
		}

		pos += int64(n)
	}

	x.scanned = end
	return nil
}

// Extend remaps the file and scans the bytes appended since the last
// scan. Called by the owner when a growth notification arrives.
func (x *FileIndex) Extend() error {
	if err := x.file.Remap(); err != nil {
		return err
	}
	return x.ScanBlock(x.scanned, x.file.Size())
}

// Reset discards the line table and rebuilds it from the file's current
// content. Called by the owner on a truncation or replacement
// notification; the result is identical to a fresh index over the new
// content.
func (x *FileIndex) Reset() error {
	if err := x.file.Remap(); err != nil {
		return err
	}
	x.offsets = x.offsets[:1]
	x.scanned = 0
	return x.ScanBlock(0, x.file.Size())
}

// Span returns the byte range [start, end) of line i, terminator
// included
func (x *FileIndex) Span(i int) (int64, int64) {
	x.check(i)
	return x.offsets[i], x.offsets[i+1]
}

// Line returns the decoded text of line i, excluding its terminator.
// Invalid byte sequences decode to the Unicode replacement character.
// i must be below LineCount; out-of-range access is a caller bug and
// panics.
func (x *FileIndex) Line(i int) string {
	x.check(i)
	raw, err := x.file.Range(x.offsets[i], x.offsets[i+1])
	if err != nil {
		return ""
	}
	return decode(raw)
}

// Text returns the decoded text of line i with any leading timestamp
// split off, or a nil timestamp if none matches at line start. Accessed
// text feeds the attached suggestion index, amortizing its construction
// over reads that rendering already performs.
func (x *FileIndex) Text(i int) (string, *time.Time) {
	line := x.Line(i)
	ts, text := x.stamps.Scan(line)
	if x.suggestions != nil {
		x.suggestions.Observe(text)
	}
	return text, ts
}

func (x *FileIndex) check(i int) {
	if i < 0 || i >= x.LineCount() {
		panic(fmt.Sprintf("index: line %d out of range [0,%d)", i, x.LineCount()))
	}
}

// decode strips one line terminator and substitutes invalid sequences
func decode(raw []byte) string {
	raw = bytes.TrimSuffix(raw, []byte("\n"))
	raw = bytes.TrimSuffix(raw, []byte("\r"))
	return strings.ToValidUTF8(string(raw), "�")
}
