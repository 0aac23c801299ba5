package cursor

import (
	"fmt"

	"github.com/dshills/keyfmt/internal/engine/buffer"
)

// Selection spans from Anchor, where it was started, to Head, where the
// caret sits. Head may precede Anchor. Anchor == Head is a bare caret.
type Selection struct {
	Anchor buffer.ByteOffset
	Head   buffer.ByteOffset
}

// NewSelection returns the selection from anchor to head.
func NewSelection(anchor, head buffer.ByteOffset) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// NewCursorSelection returns a bare caret at offset.
func NewCursorSelection(offset buffer.ByteOffset) Selection {
	return NewSelection(offset, offset)
}

// IsEmpty reports a bare caret.
func (s Selection) IsEmpty() bool { return s.Anchor == s.Head }

// Cursor is the caret offset.
func (s Selection) Cursor() buffer.ByteOffset { return s.Head }

// Range orders the two ends.
func (s Selection) Range() buffer.Range {
	return buffer.NewRange(s.Anchor, s.Head)
}

// Clamp pins both ends to [0, limit], keeping their direction.
func (s Selection) Clamp(limit buffer.ByteOffset) Selection {
	r := buffer.Range{Start: s.Anchor, End: s.Head}.Clamp(limit)
	return NewSelection(r.Start, r.End)
}

func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("caret@%d", s.Head)
	}
	return fmt.Sprintf("%d->%d", s.Anchor, s.Head)
}
