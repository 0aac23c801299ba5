// Package document holds open files with their caret, selection and view
// state.
package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/keyfmt/internal/engine/buffer"
	"github.com/dshills/keyfmt/internal/engine/cursor"
)

// KindText is the kind of every document backed by a text file.
const KindText = "text"

// ErrReadOnly is returned when modifying a read-only document.
var ErrReadOnly = errors.New("document is read-only")

// Document is a file loaded into a buffer together with the editor state a
// formatter needs to restore afterwards. It is safe for concurrent use.
type Document struct {
	path     string
	name     string
	kind     string
	readOnly bool
	perm     fs.FileMode

	buf *buffer.Buffer

	mu       sync.Mutex
	sel      cursor.Selection
	topLine  uint32
	savedRev buffer.RevisionID
}

// Option configures a Document.
type Option func(*Document)

// WithKind overrides the document kind.
func WithKind(kind string) Option {
	return func(d *Document) {
		d.kind = kind
	}
}

// WithReadOnly marks the document read-only.
func WithReadOnly(readOnly bool) Option {
	return func(d *Document) {
		d.readOnly = readOnly
	}
}

// New creates a document for path holding text. Nothing is read from disk.
func New(path, text string, opts ...Option) *Document {
	name := filepath.Base(path)
	if path == "" {
		name = "Untitled"
	}
	d := &Document{
		path: path,
		name: name,
		kind: KindText,
		perm: 0o644,
		buf:  buffer.NewBufferFromString(text),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.savedRev = d.buf.RevisionID()
	return d
}

// Open loads the file at path. Files without write permission for the owner
// open read-only.
func Open(path string, opts ...Option) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open %s: is a directory", absPath)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithReadOnly(info.Mode().Perm()&0o200 == 0)}, opts...)
	d := New(absPath, string(data), opts...)
	d.perm = info.Mode().Perm()
	return d, nil
}

// Path returns the absolute file path, empty for scratch documents.
func (d *Document) Path() string { return d.path }

// Name returns the display name.
func (d *Document) Name() string { return d.name }

// Kind returns the document kind.
func (d *Document) Kind() string { return d.kind }

// ReadOnly reports whether the document rejects edits.
func (d *Document) ReadOnly() bool { return d.readOnly }

// Buffer returns the underlying text buffer.
func (d *Document) Buffer() *buffer.Buffer { return d.buf }

// Text returns the full content.
func (d *Document) Text() string { return d.buf.Text() }

// Len returns the content length in bytes.
func (d *Document) Len() buffer.ByteOffset { return d.buf.Len() }

// TextRange returns the text in [start, end), clamped to the document.
func (d *Document) TextRange(start, end buffer.ByteOffset) string {
	return d.buf.TextRange(start, end)
}

// OffsetToPoint converts a byte offset to a line/column point.
func (d *Document) OffsetToPoint(offset buffer.ByteOffset) buffer.Point {
	return d.buf.OffsetToPoint(offset)
}

// PointToOffset converts a line/column point to a byte offset.
func (d *Document) PointToOffset(p buffer.Point) buffer.ByteOffset {
	return d.buf.PointToOffset(p)
}

// LineLen returns the length of line without its line break.
func (d *Document) LineLen(line uint32) int { return d.buf.LineLen(line) }

// LineCount returns the number of lines.
func (d *Document) LineCount() uint32 { return d.buf.LineCount() }

// Selection returns the current selection clamped to the content.
func (d *Document) Selection() cursor.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sel.Clamp(d.buf.Len())
}

// SetSelection replaces the selection.
func (d *Document) SetSelection(sel cursor.Selection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sel = sel.Clamp(d.buf.Len())
}

// Caret returns the caret offset.
func (d *Document) Caret() buffer.ByteOffset {
	return d.Selection().Cursor()
}

// SetCaret collapses the selection to offset.
func (d *Document) SetCaret(offset buffer.ByteOffset) {
	d.SetSelection(cursor.NewCursorSelection(offset))
}

// SetCaretPoint collapses the selection to a line/column point.
func (d *Document) SetCaretPoint(p buffer.Point) {
	d.SetCaret(d.buf.PointToOffset(p))
}

// TopLine returns the first visible line.
func (d *Document) TopLine() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.topLine
}

// ScrollTo makes line the first visible line, clamped to the last line.
func (d *Document) ScrollTo(line uint32) {
	if last := d.buf.LineCount() - 1; line > last {
		line = last
	}
	d.mu.Lock()
	d.topLine = line
	d.mu.Unlock()
}

// Replace replaces [start, end) with text.
func (d *Document) Replace(start, end buffer.ByteOffset, text string) error {
	if d.readOnly {
		return ErrReadOnly
	}
	_, err := d.buf.Replace(start, end, text)
	return err
}

// IsModified reports whether the content changed since it was loaded or saved.
func (d *Document) IsModified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.RevisionID() != d.savedRev
}

// Save writes the content back to Path, replacing the file atomically.
func (d *Document) Save() error {
	if d.path == "" {
		return errors.New("save: document has no path")
	}
	if d.readOnly {
		return ErrReadOnly
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rev := d.buf.RevisionID()
	if err := writeFile(d.path, []byte(d.buf.Text()), d.perm); err != nil {
		return err
	}
	d.savedRev = rev
	return nil
}

// Reload replaces the content with the file on disk. The selection and top
// line are clamped to the new content.
func (d *Document) Reload() error {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf.SetText(string(data))
	d.savedRev = d.buf.RevisionID()
	d.sel = d.sel.Clamp(d.buf.Len())
	if last := d.buf.LineCount() - 1; d.topLine > last {
		d.topLine = last
	}
	return nil
}

func writeFile(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
