// Package buffer provides the thread-safe text buffer that backs an open
// document.
//
// The buffer stores text verbatim. Line endings are never normalized, so a
// CRLF document keeps its carriage returns through edits and formatting
// round trips. Lines are split on '\n'; a '\r' directly before a '\n' belongs
// to the line break, not to the line.
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("int x;\r\nint y;\r\n")
//
//	// Replace a range
//	buf.Replace(4, 5, "count")
//
//	// Convert between offsets and line/column points
//	p := buf.OffsetToPoint(10)
//	off := buf.PointToOffset(p)
//
// Position Types:
//
//   - ByteOffset: raw byte position in the buffer
//   - Point: line and column position (0-indexed, column in bytes)
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Read operations acquire a read lock,
// while write operations acquire an exclusive write lock.
package buffer
