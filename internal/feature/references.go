package feature

import (
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

// References implements spec §4.10's "References": the union of local uses
// (a symbol's own References field, populated while walking its own
// document, correctly scoped by LookupLocal's shadowing rules — C4) and
// global uses (the workspace's cross-file inverted index — C5), keyed by
// the symbol's declaration location. global may be nil for a document with
// no workspace membership (a MeTTa virtual resolved purely against its
// peers), in which case only local uses are reported.
func References(doc *Document, position ir.Position, global GlobalReferencer) ([]protocol.Location, error) {
	declURI, sym, _, ok := declarationAt(doc, position)
	if !ok {
		return nil, nil
	}

	out := make([]protocol.Location, 0, len(sym.References))
	for _, r := range sym.References {
		out = append(out, toLocation(declURI, r))
	}
	if global != nil {
		out = append(out, global.References(declURI, sym.DeclarationLocation.Start)...)
	}
	return out, nil
}
