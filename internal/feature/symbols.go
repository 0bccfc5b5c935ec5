package feature

import (
	"sort"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

func symbolKind(k symtab.Kind) protocol.SymbolKind {
	switch k {
	case symtab.KindContract:
		return protocol.SymbolKindFunction
	case symtab.KindBundle:
		return protocol.SymbolKindNamespace
	case symtab.KindChannel, symtab.KindLetBinding, symtab.KindParameter:
		return protocol.SymbolKindVariable
	default:
		return protocol.SymbolKindVariable
	}
}

type outlineEntry struct {
	name  string
	kind  protocol.SymbolKind
	rng   ir.Range
	order int
}

// DocumentSymbol implements spec §4.10's "DocumentSymbol": every declaration
// in the document (contracts, channels, let/parameter bindings), nested by
// range containment into the tree shape LSP's DocumentSymbol expects. The
// symbol table doesn't itself record a parent/child declaration tree — only
// a scope tree — so nesting is reconstructed the way source outlines
// usually are, from sorted ranges: a later entry becomes a child of the
// innermost still-open entry that contains it.
func DocumentSymbol(doc *Document) ([]interface{}, error) {
	if doc == nil || doc.Root == nil {
		return nil, nil
	}
	var entries []outlineEntry
	ir.Walk(doc.Root, func(n ir.Node) bool {
		if sym, ok := symtab.DeclaredSymbol(n); ok {
			entries = append(entries, outlineEntry{
				name:  sym.Name,
				kind:  symbolKind(sym.Kind),
				rng:   sym.DeclarationLocation,
				order: len(entries),
			})
		}
		return true
	})
	if len(entries) == 0 {
		return nil, nil
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].rng.Start.Line != entries[j].rng.Start.Line {
			return entries[i].rng.Start.Line < entries[j].rng.Start.Line
		}
		return entries[i].rng.Start.Column < entries[j].rng.Start.Column
	})

	roots := buildOutline(entries)
	out := make([]interface{}, len(roots))
	for i, r := range roots {
		out[i] = r
	}
	return out, nil
}

func buildOutline(entries []outlineEntry) []protocol.DocumentSymbol {
	var roots []protocol.DocumentSymbol
	type frame struct {
		entry outlineEntry
		sym   *protocol.DocumentSymbol
	}
	var stack []frame

	attach := func(sym protocol.DocumentSymbol) *protocol.DocumentSymbol {
		if len(stack) == 0 {
			roots = append(roots, sym)
			return &roots[len(roots)-1]
		}
		top := &stack[len(stack)-1]
		top.sym.Children = append(top.sym.Children, sym)
		return &top.sym.Children[len(top.sym.Children)-1]
	}

	for _, e := range entries {
		for len(stack) > 0 && !contains(stack[len(stack)-1].entry.rng, e.rng) {
			stack = stack[:len(stack)-1]
		}
		sym := protocol.DocumentSymbol{
			Name:           e.name,
			Kind:           e.kind,
			Range:          toRange(e.rng),
			SelectionRange: toRange(e.rng),
		}
		ptr := attach(sym)
		stack = append(stack, frame{entry: e, sym: ptr})
	}
	return roots
}

func contains(outer, inner ir.Range) bool {
	if inner.Start.Line < outer.Start.Line || (inner.Start.Line == outer.Start.Line && inner.Start.Column < outer.Start.Column) {
		return false
	}
	if inner.End.Line > outer.End.Line || (inner.End.Line == outer.End.Line && inner.End.Column > outer.End.Column) {
		return false
	}
	return true
}

// WorkspaceSymbol implements spec §4.10's "WorkspaceSymbol": a
// case-insensitive substring match of query against every known symbol
// name across the documents the workspace has indexed, each reported with
// its declaring document's URI (spec §8's workspace-wide scenarios need
// symbols locatable across files, not just the active one).
func WorkspaceSymbol(query string, docs []Document) ([]protocol.SymbolInformation, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []protocol.SymbolInformation
	for _, doc := range docs {
		if doc.Table == nil {
			continue
		}
		for _, sym := range doc.Table.AllSymbols {
			if query != "" && !strings.Contains(strings.ToLower(sym.Name), query) {
				continue
			}
			out = append(out, protocol.SymbolInformation{
				Name:     sym.Name,
				Kind:     symbolKind(sym.Kind),
				Location: toLocation(doc.URI, sym.DeclarationLocation),
			})
		}
	}
	return out, nil
}
