package buffer

import (
	"errors"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"fortio.org/safecast"
)

// Buffer errors.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// LineEnding is a line break style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
)

func (le LineEnding) String() string {
	if le == LineEndingCRLF {
		return "\\r\\n"
	}
	return "\\n"
}

// Sequence is the literal break.
func (le LineEnding) Sequence() string {
	if le == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// DetectLineEnding reports the style of the first line break in s.
// Text without a line break is reported as LF.
func DetectLineEnding(s string) LineEnding {
	i := strings.IndexByte(s, '\n')
	if i > 0 && s[i-1] == '\r' {
		return LineEndingCRLF
	}
	return LineEndingLF
}

// Buffer is document text indexed by line start. It is safe for concurrent
// use.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	lineStarts []ByteOffset
	revisionID RevisionID
	lineEnding LineEnding
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return NewBufferFromString("")
}

// NewBufferFromString returns a buffer holding s.
func NewBufferFromString(s string) *Buffer {
	b := &Buffer{revisionID: NewRevisionID()}
	b.setText(s)
	return b
}

// NewBufferFromReader reads r to the end into a new buffer.
func NewBufferFromReader(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data)), nil
}

// setText swaps the content and reindexes it. Caller holds mu.
func (b *Buffer) setText(s string) {
	b.text = s
	b.lineStarts = indexLines(s)
	b.lineEnding = DetectLineEnding(s)
}

func indexLines(s string) []ByteOffset {
	starts := make([]ByteOffset, 1, strings.Count(s, "\n")+1)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, ByteOffset(i+1))
		}
	}
	return starts
}

// Text returns the whole content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// TextRange returns the text between start and end, clamped to the buffer.
func (b *Buffer) TextRange(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r := NewRange(start, end).Clamp(ByteOffset(len(b.text)))
	return b.text[r.Start:r.End]
}

// Len is the content size in bytes.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ByteOffset(len(b.text))
}

// IsEmpty reports whether the buffer has no text.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return toUint32(len(b.lineStarts))
}

// LineText returns line without its break.
func (b *Buffer) LineText(line uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text[b.lineStartLocked(line):b.lineEndLocked(line)]
}

// LineLen is the byte width of line, excluding the break.
func (b *Buffer) LineLen(line uint32) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int(b.lineEndLocked(line) - b.lineStartLocked(line))
}

// LineStartOffset is where line begins. Lines past the end clamp to the
// last line.
func (b *Buffer) LineStartOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineStartLocked(line)
}

// LineEndOffset is where line's text stops, before any break.
func (b *Buffer) LineEndOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEndLocked(line)
}

func (b *Buffer) clampLine(line uint32) int {
	last := len(b.lineStarts) - 1
	if int64(line) > int64(last) {
		return last
	}
	return int(line)
}

func (b *Buffer) lineStartLocked(line uint32) ByteOffset {
	return b.lineStarts[b.clampLine(line)]
}

func (b *Buffer) lineEndLocked(line uint32) ByteOffset {
	idx := b.clampLine(line)
	if idx+1 >= len(b.lineStarts) {
		return ByteOffset(len(b.text))
	}
	end := b.lineStarts[idx+1] - 1 // the '\n'
	if end > b.lineStarts[idx] && b.text[end-1] == '\r' {
		end--
	}
	return end
}

// OffsetToPoint maps offset, clamped to the buffer, to a line and column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	offset = clamp(offset, 0, ByteOffset(len(b.text)))
	line := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	}) - 1

	return Point{
		Line:   toUint32(line),
		Column: toUint32(int(offset - b.lineStarts[line])),
	}
}

// PointToOffset maps point to an offset. Out-of-range lines clamp to the
// last line and columns to the line's width.
func (b *Buffer) PointToOffset(point Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := b.lineStartLocked(point.Line)
	end := b.lineEndLocked(point.Line)
	off := start + ByteOffset(point.Column)
	if off > end {
		off = end
	}
	return off
}

// Insert adds text at offset and returns the offset just past it.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > ByteOffset(len(b.text)) {
		return 0, ErrOffsetOutOfRange
	}

	b.setText(b.text[:offset] + text + b.text[offset:])
	b.revisionID = NewRevisionID()
	return offset + ByteOffset(len(text)), nil
}

// Delete drops the text between start and end.
func (b *Buffer) Delete(start, end ByteOffset) error {
	_, err := b.Replace(start, end, "")
	return err
}

// Replace swaps the text between start and end for text and returns the
// offset just past it.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	res, err := b.ApplyEdit(Edit{Range: Range{Start: start, End: end}, NewText: text})
	if err != nil {
		return 0, err
	}
	return res.NewRange.End, nil
}

// ApplyEdit performs edit and reports what it replaced.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := edit.Range
	if r.Start < 0 || r.Start > r.End || r.End > ByteOffset(len(b.text)) {
		return EditResult{}, ErrRangeInvalid
	}

	oldText := b.text[r.Start:r.End]
	b.setText(b.text[:r.Start] + edit.NewText + b.text[r.End:])
	b.revisionID = NewRevisionID()

	return EditResult{
		OldRange: r,
		NewRange: Range{Start: r.Start, End: r.Start + ByteOffset(len(edit.NewText))},
		OldText:  oldText,
	}, nil
}

// SetText swaps the whole content.
func (b *Buffer) SetText(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setText(s)
	b.revisionID = NewRevisionID()
}

// RevisionID identifies the current content.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// LineEnding is the style of the content's first break.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

func toUint32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		if n < 0 {
			return 0
		}
		return math.MaxUint32
	}
	return v
}
