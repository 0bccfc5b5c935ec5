package resolve

import (
	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

// GlobalResolver is the last-resort lookup named in spec §4.10: a pure
// name-based query against the workspace's global_symbols (spec §3.5), used
// when no lexical scope is even available for the use site (e.g. resolving
// a bare name for workspace/symbol, with no enclosing IR tree to walk).
//
// Lookup is exactly symtab.GlobalLookup, the interface *workspace.Workspace
// already implements, so callers wire this resolver straight to the
// workspace without an adapter.
type GlobalResolver struct {
	Lookup symtab.GlobalLookup
}

// Resolve implements SymbolResolver. position is ignored: the global table
// is flat, by name only.
func (r *GlobalResolver) Resolve(name string, _ ir.Position, _ Context) ([]SymbolLocation, error) {
	if r.Lookup == nil {
		return nil, nil
	}
	uri, sym, ok := r.Lookup.LookupGlobal(name)
	if !ok {
		return nil, nil
	}
	return []SymbolLocation{{URI: uri, Range: sym.DeclarationLocation}}, nil
}
