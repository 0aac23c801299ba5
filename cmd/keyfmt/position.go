package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/keyfmt/internal/engine/buffer"
	"github.com/dshills/keyfmt/internal/engine/cursor"
)

// position is a caret location given on the command line, either as a byte
// offset ("42") or as a 1-based "line:column" pair ("3:5").
type position struct {
	offset  buffer.ByteOffset
	point   buffer.Point
	isPoint bool
}

func parsePosition(s string) (position, error) {
	s = strings.TrimSpace(s)
	lineStr, colStr, isPoint := strings.Cut(s, ":")
	if !isPoint {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			return position{}, fmt.Errorf("invalid offset %q", s)
		}
		return position{offset: buffer.ByteOffset(n)}, nil
	}

	line, err := strconv.ParseUint(lineStr, 10, 32)
	if err != nil || line == 0 {
		return position{}, fmt.Errorf("invalid line in %q", s)
	}
	col, err := strconv.ParseUint(colStr, 10, 32)
	if err != nil || col == 0 {
		return position{}, fmt.Errorf("invalid column in %q", s)
	}
	return position{
		point:   buffer.Point{Line: uint32(line - 1), Column: uint32(col - 1)},
		isPoint: true,
	}, nil
}

type pointResolver interface {
	PointToOffset(p buffer.Point) buffer.ByteOffset
}

func (p position) resolve(doc pointResolver) buffer.ByteOffset {
	if p.isPoint {
		return doc.PointToOffset(p.point)
	}
	return p.offset
}

// selectionSpec is "FROM-TO" where each end is a position. FROM is the
// anchor and TO the caret.
type selectionSpec struct {
	anchor, head position
}

func parseSelection(s string) (selectionSpec, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return selectionSpec{}, fmt.Errorf("invalid selection %q (want FROM-TO)", s)
	}
	anchor, err := parsePosition(from)
	if err != nil {
		return selectionSpec{}, err
	}
	head, err := parsePosition(to)
	if err != nil {
		return selectionSpec{}, err
	}
	return selectionSpec{anchor: anchor, head: head}, nil
}

func (s selectionSpec) resolve(doc pointResolver) cursor.Selection {
	return cursor.NewSelection(s.anchor.resolve(doc), s.head.resolve(doc))
}

// formatPoint renders p 1-based, the way it was accepted.
func formatPoint(p buffer.Point) string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}
