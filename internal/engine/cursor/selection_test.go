package cursor

import (
	"testing"

	"github.com/dshills/keyfmt/internal/engine/buffer"
)

func TestSelectionRange(t *testing.T) {
	tests := []struct {
		name       string
		sel        Selection
		start, end buffer.ByteOffset
		caret      buffer.ByteOffset
	}{
		{"forward", NewSelection(2, 8), 2, 8, 8},
		{"backward", NewSelection(8, 2), 2, 8, 2},
		{"caret", NewCursorSelection(5), 5, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.sel.Range()
			if r.Start != tt.start || r.End != tt.end {
				t.Errorf("expected [%d:%d), got %s", tt.start, tt.end, r)
			}
			if tt.sel.Cursor() != tt.caret {
				t.Errorf("expected caret %d, got %d", tt.caret, tt.sel.Cursor())
			}
			if tt.sel.IsEmpty() != (tt.start == tt.end) {
				t.Errorf("IsEmpty() = %v", tt.sel.IsEmpty())
			}
		})
	}
}

func TestSelectionClamp(t *testing.T) {
	tests := []struct {
		sel  Selection
		want Selection
	}{
		{NewSelection(-2, 40), NewSelection(0, 10)},
		{NewSelection(40, 3), NewSelection(10, 3)},
		{NewCursorSelection(7), NewCursorSelection(7)},
	}
	for _, tt := range tests {
		if got := tt.sel.Clamp(10); got != tt.want {
			t.Errorf("%s.Clamp(10) = %s, want %s", tt.sel, got, tt.want)
		}
	}
}

func TestSelectionString(t *testing.T) {
	if got := NewCursorSelection(4).String(); got != "caret@4" {
		t.Errorf("unexpected %q", got)
	}
	if got := NewSelection(1, 4).String(); got != "1->4" {
		t.Errorf("unexpected %q", got)
	}
}
