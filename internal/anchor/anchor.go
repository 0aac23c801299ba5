package anchor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fingerprint is an encoded caret position. The zero value anchors to the
// start of the text.
type Fingerprint string

// Skeleton returns the exact-match part of the fingerprint.
func (f Fingerprint) Skeleton() string {
	return strings.TrimRight(string(f), " ")
}

// Slack returns the number of whitespace characters that preceded the caret.
func (f Fingerprint) Slack() int {
	return len(f) - len(f.Skeleton())
}

// IsEmpty reports whether the fingerprint anchors to the start of the text.
func (f Fingerprint) IsEmpty() bool {
	return f == ""
}

// String returns a quoted form that keeps the trailing spaces visible.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%q+%d", f.Skeleton(), f.Slack())
}

// Result is the outcome of Decode: either a matched offset or NotFound.
type Result struct {
	// Offset is the byte offset into the decoded text. Only meaningful when
	// Found is true.
	Offset int

	// Found is false when the skeleton could not be matched.
	Found bool
}

// Matched returns a successful Result at offset.
func Matched(offset int) Result {
	return Result{Offset: offset, Found: true}
}

// NotFound is the Result returned when the fingerprint does not fit the text.
var NotFound = Result{}

// String returns a human-readable representation of the result.
func (r Result) String() string {
	if !r.Found {
		return "not found"
	}
	return fmt.Sprintf("matched(%d)", r.Offset)
}

// Encode returns the fingerprint of prefix, the text between the start of
// the formatted region and the caret.
//
// Carriage returns are ignored. Any other whitespace increments the slack
// counter, including newlines, which do not reset it. Printable characters
// are appended to the skeleton and reset the counter. Remaining control
// characters are dropped.
func Encode(prefix string) Fingerprint {
	var sb strings.Builder
	sb.Grow(len(prefix))

	slack := 0
	for _, r := range prefix {
		switch {
		case r == '\r':
		case unicode.IsSpace(r):
			slack++
		case !unicode.IsControl(r):
			sb.WriteRune(r)
			slack = 0
		}
	}

	sb.WriteString(strings.Repeat(" ", slack))
	return Fingerprint(sb.String())
}

// EncodeAt encodes the caret at byte offset caret within text.
// Offsets outside the text are clamped.
func EncodeAt(text string, caret int) Fingerprint {
	if caret <= 0 {
		return ""
	}
	if caret > len(text) {
		caret = len(text)
	}
	return Encode(text[:caret])
}

// Decode locates fp within text and returns the byte offset of the caret.
//
// The skeleton must match text exactly, except that spaces, tabs and
// newlines in text are skipped. Each skipped character consumes one unit of
// the fingerprint's slack once the skeleton is exhausted. Carriage returns
// are skipped without being compared. Matching stops successfully at the
// first non-whitespace character met while only slack remains.
//
// If the text runs out before the slack is used up and the last character
// consumed was a newline, the caret is placed before that line break.
//
// Whitespace other than space, tab and newline counts as slack in Encode but
// is not skipped here, so a caret after such a run lands before it.
func Decode(text string, fp Fingerprint) Result {
	if fp.IsEmpty() {
		return Matched(0)
	}

	var (
		i, j     int
		lastSize int
		last     rune
	)
	for i < len(text) && j < len(fp) {
		a, size := utf8.DecodeRuneInString(text[i:])
		b, bsize := utf8.DecodeRuneInString(string(fp[j:]))

		switch {
		case a == b:
			j += bsize
		case a == ' ' || a == '\n' || a == '\t':
			if b == ' ' {
				j += bsize
			}
		case a == '\r':
		case b == ' ':
			return Matched(i)
		default:
			return NotFound
		}

		i += size
		last, lastSize = a, size
	}

	offset := i
	if j < len(fp) && last == '\n' {
		offset -= lastSize
		if offset > 0 && text[offset-1] == '\r' {
			offset--
		}
	}
	return Matched(offset)
}

// Relocate is a convenience that encodes the caret in before and decodes it
// against after.
func Relocate(before string, caret int, after string) Result {
	return Decode(after, EncodeAt(before, caret))
}
