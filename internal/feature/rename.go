package feature

import (
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

// Rename implements spec §4.10's "Rename": compute the definition location,
// enumerate all references (the same local+global union References uses),
// and emit a single workspace edit replacing each occurrence's span with
// newName. No attempt is made to rename across mutually incompatible
// embedded languages (spec §4.10): a position inside a MeTTa virtual only
// ever resolves within that virtual's own document/peers, never back into
// the enclosing Rholang text.
//
// Renaming at a scope-shadowed binder only affects the innermost scope's
// uses (spec §8 scenario 6) for free: declarationAt resolves to the
// specific *symtab.Symbol LookupLocal's shadowing chain picked, and that
// Symbol's own References slice only ever accumulated uses resolved against
// it, never an outer shadowed symbol's uses.
func Rename(doc *Document, position ir.Position, newName string, global GlobalReferencer) (*protocol.WorkspaceEdit, error) {
	declURI, sym, _, ok := declarationAt(doc, position)
	if !ok {
		return nil, nil
	}

	changes := map[protocol.DocumentURI][]protocol.TextEdit{}
	addEdit := func(uri string, r ir.Range) {
		u := protocol.DocumentURI(uri)
		changes[u] = append(changes[u], protocol.TextEdit{Range: toRange(r), NewText: newName})
	}

	addEdit(declURI, sym.DeclarationLocation)
	for _, r := range sym.References {
		addEdit(declURI, r)
	}
	if global != nil {
		for _, loc := range global.References(declURI, sym.DeclarationLocation.Start) {
			u := protocol.DocumentURI(loc.URI)
			changes[u] = append(changes[u], protocol.TextEdit{Range: loc.Range, NewText: newName})
		}
	}

	return &protocol.WorkspaceEdit{Changes: changes}, nil
}
