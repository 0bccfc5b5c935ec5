package virtual

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/rope"
)

// holedPositionMap maps positions in a holed virtual document (one assembled
// from a `++` chain of string literals, spec §3.7 "concatenation_chain")
// back to the parent document, skipping the interpolated holes entirely:
// a hole contributes zero bytes to the virtual content, so every virtual
// position falls inside exactly one literal slice.
type holedPositionMap struct {
	content string
	vr      *rope.Rope
	slices  []holedSlice
}

type holedSlice struct {
	virtualStart int
	virtualEnd   int
	parentStart  protocol.Position
}

// newHoledPositionMap builds the map from a region's concatenation chain.
func newHoledPositionMap(_ protocol.Position, chain []region.ConcatSlice) *holedPositionMap {
	var b strings.Builder
	slices := make([]holedSlice, 0, len(chain))
	offset := 0
	for _, s := range chain {
		if s.IsHole {
			continue
		}
		start := offset
		b.WriteString(s.Content)
		offset += len(s.Content)
		slices = append(slices, holedSlice{
			virtualStart: start,
			virtualEnd:   offset,
			parentStart:  protocol.Position{Line: uint32(s.Range.Start.Line), Character: uint32(s.Range.Start.Column)},
		})
	}
	content := b.String()
	return &holedPositionMap{content: content, vr: rope.New(content), slices: slices}
}

// toOriginal maps a virtual position to its parent position, or reports
// false if it falls in a hole (no slice covers it).
func (hm *holedPositionMap) toOriginal(pos protocol.Position) (protocol.Position, bool) {
	off := hm.vr.LineColumnToOffset(rope.Position{Line: int(pos.Line), Column: int(pos.Character)})
	for _, s := range hm.slices {
		if off >= s.virtualStart && off <= s.virtualEnd {
			consumed := hm.content[s.virtualStart:off]
			return advance(s.parentStart, consumed), true
		}
	}
	return protocol.Position{}, false
}

// advance walks `consumed` bytes forward from start, counting newlines, to
// find the resulting position. Most slices are single-line string-literal
// tokens, but this also handles a slice whose raw text spans lines.
func advance(start protocol.Position, consumed string) protocol.Position {
	line := start.Line
	col := start.Character
	lastNL := -1
	for i := 0; i < len(consumed); i++ {
		if consumed[i] == '\n' {
			line++
			lastNL = i
		}
	}
	if lastNL == -1 {
		col += uint32(len(consumed))
	} else {
		col = uint32(len(consumed) - lastNL - 1)
	}
	return protocol.Position{Line: line, Character: col}
}
