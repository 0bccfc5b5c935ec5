package feature

import (
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

// DocumentHighlight implements spec §4.10's "Highlight": every occurrence of
// the symbol under the cursor within this document, the declaration marked
// Write and every use marked Read. Cross-document occurrences aren't
// reported — document highlight is defined as a same-file feature (spec
// §4.10 lists it alongside "within this document" scoped features).
func DocumentHighlight(doc *Document, position ir.Position) ([]protocol.DocumentHighlight, error) {
	declURI, sym, _, ok := declarationAt(doc, position)
	if !ok || declURI != doc.URI {
		return nil, nil
	}

	write := protocol.DocumentHighlightKindWrite
	read := protocol.DocumentHighlightKindRead

	out := make([]protocol.DocumentHighlight, 0, len(sym.References)+1)
	out = append(out, protocol.DocumentHighlight{Range: toRange(sym.DeclarationLocation), Kind: &write})
	for _, r := range sym.References {
		out = append(out, protocol.DocumentHighlight{Range: toRange(r), Kind: &read})
	}
	return out, nil
}
