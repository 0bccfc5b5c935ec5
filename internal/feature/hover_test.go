package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/resolve"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

// buildCommentedDecl assembles a one-line `new foo in {...}` document where
// line 0 holds a leading comment for foo's declaration on line 1.
func buildCommentedDecl() *Document {
	decl := &ir.Var{Name: "foo", Base: ir.Base{Range: ir.Range{
		Start: ir.Position{Line: 1, Column: 4, Byte: 14},
		End:   ir.Position{Line: 1, Column: 7, Byte: 17},
	}}}
	nameDecl := &ir.NameDecl{Base: ir.Base{Range: decl.Range}, Name: decl}

	docTable := symtab.NewTable(0, symtab.ScopeDocument, nil, nil)
	inner := symtab.NewTable(1, symtab.ScopeNew, docTable, nil)
	sym := inner.Declare(&symtab.Symbol{
		Name:                "foo",
		Kind:                symtab.KindChannel,
		DeclarationLocation: decl.Range,
		Node:                decl,
	})
	decl.Meta = ir.Metadata{"declared_symbol": sym}

	root := &ir.New{
		Base:  ir.Base{Range: ir.Range{Start: ir.Position{Line: 1, Byte: 10}, End: ir.Position{Line: 1, Byte: 30}}},
		Decls: []*ir.NameDecl{nameDecl},
		Body:  &ir.NilLit{},
	}
	root.Meta = ir.Metadata{"symbol_table": inner, "scope_id": 1}

	comments := []region.Comment{
		{Text: "// the output channel", Range: ir.Range{Start: ir.Position{Line: 0}, End: ir.Position{Line: 0}}},
	}

	adapter := resolve.NewRholangAdapter(root, nil, nil)
	return &Document{URI: "file:///a.rho", Root: root, Table: &symtab.Document{Root: inner, AllSymbols: []*symtab.Symbol{sym}}, Adapter: adapter, Comments: comments}
}

func TestHoverDescribesDeclarationAndAppendsLeadingComment(t *testing.T) {
	doc := buildCommentedDecl()

	hover, err := Hover(doc, ir.Position{Line: 1, Column: 5, Byte: 15})
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Contains(t, hover.Contents.Value, "foo")
	assert.Contains(t, hover.Contents.Value, "the output channel")
}

func TestHoverWithoutLeadingCommentOmitsDocumentationSection(t *testing.T) {
	doc := buildCommentedDecl()
	doc.Comments = nil

	hover, err := Hover(doc, ir.Position{Line: 1, Column: 5, Byte: 15})
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.NotContains(t, hover.Contents.Value, "---")
}

func TestHoverNilAdapterReturnsNil(t *testing.T) {
	doc := &Document{URI: "file:///a.rho", Root: &ir.NilLit{}}

	hover, err := Hover(doc, ir.Position{})
	require.NoError(t, err)
	assert.Nil(t, hover)
}
