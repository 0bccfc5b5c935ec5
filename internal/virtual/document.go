// Package virtual implements the virtual document registry (spec §3.7,
// §4.8, component C8): embedded regions detected by internal/region become
// addressable sub-documents with their own lazily-cached IR, tree, and
// symbol table, plus position mapping back to the parent.
package virtual

import (
	"fmt"
	"strings"
	"sync"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/parse"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

// Document is a virtual sub-document carved out of one embedded region in a
// parent Rholang document (spec §3.7).
type Document struct {
	URI         protocol.URI
	ParentURI   protocol.URI
	RegionIndex int
	Language    string
	Content     string

	// ParentStart and ParentEnd are LSP positions (0-based line, column
	// taken from the region's byte column) in the parent document spanning
	// this region, including the delimiting quotes.
	ParentStart protocol.Position
	ParentEnd   protocol.Position

	// Chain is non-nil for a holed document assembled from a `++` chain of
	// string literals (spec §3.7 "optional concatenation_chain").
	Chain []region.ConcatSlice

	mu          sync.RWMutex
	holedMap    *holedPositionMap
	holedBuilt  bool
	tree        *parse.Tree
	root        ir.Node
	symTable    *symtab.Document
	diagnostics []protocol.Diagnostic
}

// New creates the virtual document for the region at the given index within
// parentURI (spec §3.7, §4.8).
func New(parentURI protocol.URI, r region.Region, index int) *Document {
	fragment := fmt.Sprintf("%s:%d", r.Language, index)
	uri := protocol.URI(string(parentURI) + "#" + fragment)

	start := protocol.Position{Line: uint32(r.Range.Start.Line), Character: uint32(r.Range.Start.Column)}
	end := parentEndFromContent(start, r.Content)

	return &Document{
		URI:         uri,
		ParentURI:   parentURI,
		RegionIndex: index,
		Language:    r.Language,
		Content:     r.Content,
		ParentStart: start,
		ParentEnd:   end,
		Chain:       r.Chain,
	}
}

// parentEndFromContent computes the parent-document end position for a
// region given its start and assembled content, matching the reference
// implementation's line/column accounting for single- vs multi-line
// regions (original_source's VirtualDocument::new).
func parentEndFromContent(start protocol.Position, content string) protocol.Position {
	lines := strings.Split(content, "\n")
	if len(lines) <= 1 {
		return protocol.Position{Line: start.Line, Character: start.Character + uint32(len(content))}
	}
	lastLen := uint32(len([]rune(lines[len(lines)-1])))
	return protocol.Position{Line: start.Line + uint32(len(lines)-1), Character: lastLen}
}

// MapToParent maps a position in this virtual document to a position in the
// parent (spec I-VD1). ok is false if pos falls in a hole.
func (d *Document) MapToParent(pos protocol.Position) (parent protocol.Position, ok bool) {
	if hm := d.getHoledMap(); hm != nil {
		return hm.toOriginal(pos)
	}
	if pos.Line == 0 {
		// +1 for the opening quote, which precedes content line 0.
		return protocol.Position{Line: d.ParentStart.Line, Character: d.ParentStart.Character + pos.Character + 1}, true
	}
	return protocol.Position{Line: d.ParentStart.Line + pos.Line, Character: pos.Character}, true
}

// MapFromParent maps a parent-document position into virtual-document
// coordinates, or reports false if the position falls outside this
// document's span.
func (d *Document) MapFromParent(pos protocol.Position) (protocol.Position, bool) {
	if pos.Line < d.ParentStart.Line || pos.Line > d.ParentEnd.Line {
		return protocol.Position{}, false
	}
	if pos.Line == d.ParentStart.Line {
		if pos.Character < d.ParentStart.Character+1 {
			return protocol.Position{}, false
		}
		if d.ParentStart.Line == d.ParentEnd.Line && pos.Character > d.ParentEnd.Character {
			return protocol.Position{}, false
		}
		return protocol.Position{Line: 0, Character: pos.Character - d.ParentStart.Character - 1}, true
	}
	if pos.Line == d.ParentEnd.Line && pos.Character > d.ParentEnd.Character {
		return protocol.Position{}, false
	}
	return protocol.Position{Line: pos.Line - d.ParentStart.Line, Character: pos.Character}, true
}

// MapRangeToParent maps a virtual range to a parent range.
func (d *Document) MapRangeToParent(r protocol.Range) protocol.Range {
	start, _ := d.MapToParent(r.Start)
	end, _ := d.MapToParent(r.End)
	return protocol.Range{Start: start, End: end}
}

// IsPositionInHole reports whether pos, in virtual coordinates, falls within
// an interpolated (non-literal) hole of a concatenation chain. Always false
// for a non-holed document.
func (d *Document) IsPositionInHole(pos protocol.Position) bool {
	hm := d.getHoledMap()
	if hm == nil {
		return false
	}
	_, ok := hm.toOriginal(pos)
	return !ok
}

func (d *Document) getHoledMap() *holedPositionMap {
	if d.Chain == nil {
		return nil
	}
	d.mu.RLock()
	if d.holedBuilt {
		hm := d.holedMap
		d.mu.RUnlock()
		return hm
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.holedBuilt {
		d.holedMap = newHoledPositionMap(d.ParentStart, d.Chain)
		d.holedBuilt = true
	}
	return d.holedMap
}

// Tree returns the cached parse tree for this virtual document, if any has
// been stored by SetTree.
func (d *Document) Tree() *parse.Tree {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree
}

// SetTree caches a freshly parsed tree for this virtual document.
func (d *Document) SetTree(t *parse.Tree) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree = t
}

// IR returns the cached lowered IR root, if any has been stored by SetIR.
func (d *Document) IR() ir.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

// SetIR caches a freshly lowered IR root for this document.
func (d *Document) SetIR(root ir.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.root = root
}

// SymbolTable returns the cached symbol table, if any has been stored by
// SetSymbolTable.
func (d *Document) SymbolTable() *symtab.Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.symTable
}

// SetSymbolTable caches a freshly built symbol table for this document.
func (d *Document) SetSymbolTable(t *symtab.Document) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.symTable = t
}

// Diagnostics returns the diagnostics last computed for this virtual
// document, in virtual coordinates.
func (d *Document) Diagnostics() []protocol.Diagnostic {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.diagnostics
}

// SetDiagnostics stores diagnostics computed for this virtual document, in
// virtual coordinates.
func (d *Document) SetDiagnostics(diags []protocol.Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.diagnostics = diags
}

// DiagnosticsForParent returns this document's diagnostics remapped to
// parent coordinates, dropping any whose start falls in a hole (spec §4.8).
func (d *Document) DiagnosticsForParent() []protocol.Diagnostic {
	diags := d.Diagnostics()
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, diag := range diags {
		if d.IsPositionInHole(diag.Range.Start) {
			continue
		}
		mapped := diag
		mapped.Range = d.MapRangeToParent(diag.Range)
		out = append(out, mapped)
	}
	return out
}

// InvalidateCache drops the cached tree, symbol table, and holed position
// map, used whenever the parent's content changes (spec §4.8 "Incremental
// edits on the parent invalidate the virtuals' caches").
func (d *Document) InvalidateCache() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree = nil
	d.root = nil
	d.symTable = nil
	d.diagnostics = nil
	d.holedMap = nil
	d.holedBuilt = false
}
