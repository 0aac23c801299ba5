package formatter

import (
	"github.com/google/uuid"

	"github.com/dshills/keyfmt/internal/anchor"
	"github.com/dshills/keyfmt/internal/engine/buffer"
	"github.com/dshills/keyfmt/internal/language"
)

// ViewState is the view recorded before formatting.
type ViewState struct {
	TopLine uint32
	// Caret is the caret position as line and column.
	Caret buffer.Point
	// CaretLineLen is the length of the caret's line.
	CaretLineLen int
}

// Request is the snapshot a single format operation works from.
type Request struct {
	ID            string
	Target        buffer.Range
	SelectionOnly bool
	Language      language.Language
	// Text is the target text before formatting.
	Text string
	// Anchor fingerprints the target text between Target.Start and the caret.
	Anchor anchor.Fingerprint
	View   ViewState
}

// snapshot captures the target range, its text, the caret anchor and the view.
func snapshot(doc Document, lang language.Language, selectionOnly bool) *Request {
	sel := doc.Selection()
	target := buffer.Range{Start: 0, End: doc.Len()}
	if selectionOnly {
		target = sel.Range()
	}

	req := &Request{
		ID:            uuid.NewString(),
		Target:        target,
		SelectionOnly: selectionOnly,
		Language:      lang,
		Text:          doc.TextRange(target.Start, target.End),
	}

	caret := sel.Cursor()
	if caret >= target.Start {
		req.Anchor = anchor.EncodeAt(req.Text, int(caret-target.Start))
	}

	point := doc.OffsetToPoint(caret)
	req.View = ViewState{
		TopLine:      doc.TopLine(),
		Caret:        point,
		CaretLineLen: doc.LineLen(point.Line),
	}
	return req
}
