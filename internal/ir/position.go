// Package ir defines the immutable intermediate representation (IR) that
// Rholang (and MeTTa) concrete syntax trees are lowered into, per spec §3.2
// and §4.3. Nodes are deeply immutable and reference-counted by ordinary Go
// GC: a transform rebuilds only the path from a changed node to the root,
// and unchanged subtrees are shared by holding the same *Node pointers.
package ir

// Position is an absolute (line, column, byte-offset) triple. Line and
// column are zero-based; byte offset is canonical for sort/compare (spec
// §3.1).
type Position struct {
	Line, Column int
	Byte         int
}

// Less orders positions by byte offset, the canonical comparison per spec
// §3.1.
func (p Position) Less(o Position) bool { return p.Byte < o.Byte }

// RelativePosition encodes a position relative to a sibling's end, so that
// subtrees can be structurally shared across edits (spec §3.2): only the
// path from an edited node to the root needs new absolute positions
// recomputed.
type RelativePosition struct {
	DeltaLines   int
	DeltaColumns int
	DeltaBytes   int
}

// Resolve turns a RelativePosition that is relative to `base` into an
// absolute Position.
func (rp RelativePosition) Resolve(base Position) Position {
	p := Position{Byte: base.Byte + rp.DeltaBytes}
	if rp.DeltaLines == 0 {
		p.Line = base.Line
		p.Column = base.Column + rp.DeltaColumns
	} else {
		p.Line = base.Line + rp.DeltaLines
		p.Column = rp.DeltaColumns
	}
	return p
}

// RelativeTo computes the RelativePosition of `p` relative to `base`.
func RelativeTo(p, base Position) RelativePosition {
	rp := RelativePosition{DeltaBytes: p.Byte - base.Byte}
	if p.Line == base.Line {
		rp.DeltaColumns = p.Column - base.Column
	} else {
		rp.DeltaLines = p.Line - base.Line
		rp.DeltaColumns = p.Column
	}
	return rp
}

// Range is a half-open [Start, End) span; an empty range has Start == End
// (spec §3.1).
type Range struct {
	Start, End Position
}

// Empty reports whether the range spans zero bytes.
func (r Range) Empty() bool { return r.Start.Byte == r.End.Byte }

// Contains reports whether p falls within [Start, End).
func (r Range) Contains(p Position) bool {
	return r.Start.Byte <= p.Byte && p.Byte < r.End.Byte
}

// ContainsInclusive reports whether p falls within [Start, End], used for
// "one past the last character" goto-definition fallback lookups (spec
// §4.10, "Fallback").
func (r Range) ContainsInclusive(p Position) bool {
	return r.Start.Byte <= p.Byte && p.Byte <= r.End.Byte
}

// Overlaps reports whether two ranges share any bytes.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Byte < o.End.Byte && o.Start.Byte < r.End.Byte
}
