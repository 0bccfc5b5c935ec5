// Package resolve implements name resolution for the generic LSP features
// (spec §3.9, §4.10, component C10): turning a name used at some position
// into the declaration(s) it could refer to, chaining a handful of narrow
// resolvers the way the symbol table itself chains lexical scopes into the
// global one (spec §3.4 "every table holds a handle to the global scope").
package resolve

import (
	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

// SymbolLocation is one candidate declaration a resolver produced.
type SymbolLocation struct {
	URI   string
	Range ir.Range
}

// Context carries whatever a resolver needs beyond the bare name and
// position: which document the use lives in, the IR node at that use site
// (so a PatternFilter can read call arguments straight off it), the
// document's language, and, for virtual documents, the parent they were
// carved out of (spec §3.7).
type Context struct {
	URI       string
	ScopeID   int
	IRNode    ir.Node
	Language  string
	ParentURI string
}

// SymbolResolver resolves name at position under ctx to zero or more
// candidate declarations. A resolver returning (nil, nil) means "no opinion,
// try the next one" rather than "definitely unresolved".
type SymbolResolver interface {
	Resolve(name string, position ir.Position, ctx Context) ([]SymbolLocation, error)
}

// Chain tries each resolver in order, returning the first one that produces
// a non-empty result. This is the "lexical, then pattern-narrowed, then
// global, then cross-document virtual" fallback spec §4.10 describes.
type Chain []SymbolResolver

// Resolve implements SymbolResolver.
func (c Chain) Resolve(name string, position ir.Position, ctx Context) ([]SymbolLocation, error) {
	for _, r := range c {
		locs, err := r.Resolve(name, position, ctx)
		if err != nil {
			return nil, err
		}
		if len(locs) > 0 {
			return locs, nil
		}
	}
	return nil, nil
}
