package buffer

import (
	"fmt"
	"sync/atomic"
)

// ByteOffset is a byte index into buffer text.
type ByteOffset = int64

// Point is a 0-based line and byte column.
type Point struct {
	Line   uint32
	Column uint32
}

func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare orders points by line, then column.
func (p Point) Compare(q Point) int {
	if p.Line != q.Line {
		if p.Line < q.Line {
			return -1
		}
		return 1
	}
	switch {
	case p.Column < q.Column:
		return -1
	case p.Column > q.Column:
		return 1
	}
	return 0
}

// Range is the half-open byte span [Start, End).
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

// NewRange orders start and end.
func NewRange(start, end ByteOffset) Range {
	if end < start {
		return Range{Start: end, End: start}
	}
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len is the span width in bytes.
func (r Range) Len() ByteOffset { return r.End - r.Start }

// IsEmpty reports a zero-width span.
func (r Range) IsEmpty() bool { return r.Start == r.End }

// Contains reports whether offset falls inside the span.
func (r Range) Contains(offset ByteOffset) bool {
	return r.Start <= offset && offset < r.End
}

// Clamp pins both ends to [0, limit].
func (r Range) Clamp(limit ByteOffset) Range {
	return Range{Start: clamp(r.Start, 0, limit), End: clamp(r.End, 0, limit)}
}

func clamp(v, lo, hi ByteOffset) ByteOffset {
	return max(lo, min(v, hi))
}

// Edit swaps the text under Range for NewText.
type Edit struct {
	Range   Range
	NewText string
}

// EditResult describes an applied Edit.
type EditResult struct {
	OldRange Range
	// NewRange covers the inserted text.
	NewRange Range
	OldText  string
}

// RevisionID changes on every mutation. IDs are unique across buffers.
type RevisionID uint64

var lastRevision atomic.Uint64

// NewRevisionID returns the next process-wide revision.
func NewRevisionID() RevisionID {
	return RevisionID(lastRevision.Add(1))
}
