package feature

import (
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/resolve"
)

// GotoDefinition implements spec §4.10's generic algorithm: find the
// innermost node at position; if it carries referenced_symbol metadata,
// return that symbol's declaration directly; otherwise extract a name
// (with the column-1 fallback already built into resolve.NameAt) and run
// it through the document's resolver chain (lexical scope, pattern
// narrowing, global table, cross-virtual lookup, in whatever order the
// adapter assembled them).
func GotoDefinition(doc *Document, position ir.Position) ([]protocol.Location, error) {
	if declURI, sym, _, ok := declarationAt(doc, position); ok {
		return []protocol.Location{toLocation(declURI, sym.DeclarationLocation)}, nil
	}

	name, target := resolve.NameAt(doc.Root, position)
	if name == "" {
		return nil, nil
	}
	if doc.Adapter == nil || doc.Adapter.Resolver == nil {
		return nil, nil
	}

	ctx := resolve.Context{URI: doc.URI, IRNode: target, Language: doc.Adapter.Name}
	locs, err := doc.Adapter.Resolver.Resolve(name, position, ctx)
	if err != nil {
		return nil, err
	}
	out := make([]protocol.Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, toLocation(l.URI, l.Range))
	}
	return out, nil
}
