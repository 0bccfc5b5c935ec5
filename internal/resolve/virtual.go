package resolve

import (
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/virtual"
)

// CrossDocumentVirtualResolver is the fallback named in spec §4.10 for
// virtual documents specifically: a MeTTa virtual carved out of one
// `@"rho:metta:compile"` send has no workspace-wide global table of its own
// (spec §3.7 virtuals are not workspace members), so a name it can't resolve
// in its own scope is looked up in every *other* virtual hanging off the
// same parent document instead, on the theory that sibling embedded blocks
// in one Rholang file commonly share MeTTa definitions (spec §4.8 "Virtual
// documents sharing a parent may reference each other's top-level
// definitions").
type CrossDocumentVirtualResolver struct {
	Registry *virtual.Registry
}

// Resolve implements SymbolResolver. It only applies when ctx identifies a
// virtual document (ctx.ParentURI set) and is a no-op otherwise.
func (r *CrossDocumentVirtualResolver) Resolve(name string, _ ir.Position, ctx Context) ([]SymbolLocation, error) {
	if r.Registry == nil || ctx.ParentURI == "" {
		return nil, nil
	}
	peers := r.Registry.ByParent(protocol.URI(ctx.ParentURI))
	var out []SymbolLocation
	for _, peer := range peers {
		if string(peer.URI) == ctx.URI {
			continue
		}
		doc := peer.SymbolTable()
		if doc == nil || doc.Root == nil {
			continue
		}
		sym, uri, ok := doc.Root.Lookup(name)
		if !ok {
			continue
		}
		declURI := uri
		if declURI == "" {
			declURI = string(peer.URI)
		}
		out = append(out, SymbolLocation{URI: declURI, Range: sym.DeclarationLocation})
	}
	return out, nil
}
