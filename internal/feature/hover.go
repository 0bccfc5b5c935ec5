package feature

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

// Hover implements spec §4.10's "Hover": the adapter's HoverProvider
// describes the node under the cursor (spec §8 scenario 3), and when that
// node resolves to a same-document declaration carrying a leading comment,
// the DocumentationProvider's text is appended below a rule. Cross-document
// declarations don't get their documentation inlined — the comment lives in
// a file this Document doesn't have parsed, and a second parse just to grab
// a docstring isn't worth it for a hover tooltip.
func Hover(doc *Document, position ir.Position) (*protocol.Hover, error) {
	if doc == nil || doc.Root == nil || doc.Adapter == nil || doc.Adapter.Hover == nil {
		return nil, nil
	}
	node := ir.Innermost(doc.Root, position)
	if node == nil {
		return nil, nil
	}
	desc, ok := doc.Adapter.Hover.Hover(node)
	if !ok {
		return nil, nil
	}

	text := "`" + desc + "`"
	if doc.Adapter.Documentation != nil {
		if declURI, sym, _, declOK := declarationAt(doc, position); declOK && declURI == doc.URI {
			if docs, docOK := doc.Adapter.Documentation.Documentation(sym.DeclarationLocation, doc.Comments); docOK {
				text = text + "\n\n---\n\n" + strings.TrimSpace(docs)
			}
		}
	}

	r := toRange(node.NodeBase().Range)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: text,
		},
		Range: &r,
	}, nil
}
