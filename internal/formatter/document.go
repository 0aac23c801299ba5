package formatter

import (
	"github.com/dshills/keyfmt/internal/engine/buffer"
	"github.com/dshills/keyfmt/internal/engine/cursor"
)

// Document is the editing surface a format operation reads from and writes to.
type Document interface {
	// Path is the absolute file path.
	Path() string
	// Kind is "text" for formattable documents.
	Kind() string
	ReadOnly() bool

	Len() buffer.ByteOffset
	TextRange(start, end buffer.ByteOffset) string
	Selection() cursor.Selection
	OffsetToPoint(offset buffer.ByteOffset) buffer.Point
	PointToOffset(p buffer.Point) buffer.ByteOffset
	LineLen(line uint32) int
	LineCount() uint32
	TopLine() uint32

	// Replace swaps [start, end) for text in one edit.
	Replace(start, end buffer.ByteOffset, text string) error
	SetCaret(offset buffer.ByteOffset)
	SetCaretPoint(p buffer.Point)
	ScrollTo(line uint32)
}

// StatusBar shows progress of a format operation to the user.
type StatusBar interface {
	SetText(text string)
	SetBusy(busy bool)
}

type nopStatus struct{}

func (nopStatus) SetText(string) {}
func (nopStatus) SetBusy(bool)   {}

// Status messages.
const (
	StatusFormatting   = "Formatting document. Please wait..."
	StatusSuccess      = "Document was successfully formatted."
	StatusLaunchFailed = "Could not launch formatter."
	statusFailedPrefix = "Could not format the active document: "
)
