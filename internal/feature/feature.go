// Package feature implements the generic, language-agnostic LSP features
// component C10 names (spec §4.10): goto-definition, references, rename,
// hover, document highlight, semantic tokens, and document/workspace
// symbols. Every function here takes a Document (an IR root plus the
// symbol table and resolver chain a internal/resolve.LanguageAdapter
// already assembled for it) rather than a *workspace.Workspace or
// *virtual.Document directly, so the same code serves both a Rholang
// parent document and a MeTTa virtual without either package depending on
// the other (spec §3.9 "language adapters let the generic features stay
// language agnostic").
package feature

import (
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/resolve"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

// Document is the view a generic feature needs of whichever document
// (workspace document or virtual) it is invoked against.
type Document struct {
	URI      string
	Root     ir.Node
	Table    *symtab.Document
	Adapter  *resolve.LanguageAdapter
	Comments []region.Comment
}

// GlobalReferencer is the workspace-wide half of "references" and "rename"
// (spec §4.10): the cross-document inverted index a single document's own
// symbol table has no way to see. *workspace.Workspace already implements
// this signature (Workspace.References), so callers pass it straight
// through without an adapter.
type GlobalReferencer interface {
	References(declURI string, declStart ir.Position) []protocol.Location
}

func toRange(r ir.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Column)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Column)},
	}
}

func toLocation(uri string, r ir.Range) protocol.Location {
	return protocol.Location{URI: protocol.URI(uri), Range: toRange(r)}
}

// scopeAt finds the table attached to the innermost ancestor of the node at
// position that has one, mirroring internal/resolve/lexical.go's unexported
// scopeAt: features need the same "which scope encloses this use" lookup
// resolve's LexicalScopeResolver already performs internally, but to reach
// the *symtab.Symbol object itself (for its References field) rather than
// just a location, so it can't go through the SymbolResolver interface,
// which only returns SymbolLocation.
func scopeAt(root ir.Node, position ir.Position) *symtab.Table {
	path := ir.NodeAt(root, position)
	for i := len(path) - 1; i >= 0; i-- {
		if t, ok := symtab.TableOf(path[i]); ok {
			return t
		}
	}
	if t, ok := symtab.TableOf(root); ok {
		return t
	}
	return nil
}

// declarationAt implements the first half of spec §4.10's goto-definition
// algorithm, shared by GotoDefinition, References, and Rename: the
// referenced_symbol metadata check, falling back to a local lexical lookup
// of the name at position. It does not consult the resolver chain (pattern
// narrowing, global table, cross-virtual lookup) — callers that need that
// fall back to doc.Adapter.Resolver themselves, since only a local
// *symtab.Symbol carries a References slice to union against.
func declarationAt(doc *Document, position ir.Position) (declURI string, sym *symtab.Symbol, target ir.Node, ok bool) {
	if doc == nil || doc.Root == nil {
		return "", nil, nil, false
	}
	node := ir.Innermost(doc.Root, position)
	if s, found := symtab.ReferencedSymbol(node); found {
		uri := s.DeclarationURI
		if uri == "" {
			uri = doc.URI
		}
		return uri, s, node, true
	}
	name, target := resolve.NameAt(doc.Root, position)
	if name == "" {
		return "", nil, target, false
	}
	scope := scopeAt(doc.Root, position)
	if scope == nil {
		return "", nil, target, false
	}
	if s, _ := scope.LookupLocal(name); s != nil {
		return doc.URI, s, target, true
	}
	return "", nil, target, false
}
