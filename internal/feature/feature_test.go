package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/resolve"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

// buildNewDoc assembles `new foo in { foo!(1) }`'s worth of IR + symbol
// table by hand: a New scope declaring foo, a Send using it.
func buildNewDoc(uri string) *Document {
	decl := &ir.Var{Name: "foo", Base: ir.Base{Range: ir.Range{Start: ir.Position{Column: 4, Byte: 4}, End: ir.Position{Column: 7, Byte: 7}}}}
	use := &ir.Var{Name: "foo", Base: ir.Base{Range: ir.Range{Start: ir.Position{Column: 20, Byte: 20}, End: ir.Position{Column: 23, Byte: 23}}}}
	send := &ir.Send{
		Base:    ir.Base{Range: ir.Range{Start: ir.Position{Column: 20, Byte: 20}, End: ir.Position{Column: 30, Byte: 30}}},
		Channel: use,
		Args:    []ir.Node{&ir.LongLit{Value: 1, Base: ir.Base{Range: ir.Range{Start: ir.Position{Column: 25, Byte: 25}, End: ir.Position{Column: 26, Byte: 26}}}}},
	}

	docTable := symtab.NewTable(0, symtab.ScopeDocument, nil, nil)
	inner := symtab.NewTable(1, symtab.ScopeNew, docTable, nil)
	sym := inner.Declare(&symtab.Symbol{
		Name:                "foo",
		Kind:                symtab.KindChannel,
		DeclarationLocation: decl.Range,
		Node:                decl,
	})
	sym.AddReference(use.Range)
	use.Meta = ir.Metadata{"referenced_symbol": sym}
	decl.Meta = ir.Metadata{"declared_symbol": sym}

	root := &ir.New{
		Base:  ir.Base{Range: ir.Range{Start: ir.Position{Byte: 0}, End: ir.Position{Byte: 30}}},
		Decls: []*ir.NameDecl{{Base: ir.Base{Range: decl.Range}, Name: decl}},
		Body:  send,
	}
	root.Meta = ir.Metadata{"symbol_table": inner, "scope_id": 1}

	doc := &symtab.Document{Root: inner, AllSymbols: []*symtab.Symbol{sym}}
	adapter := resolve.NewRholangAdapter(root, nil, nil)

	return &Document{URI: uri, Root: root, Table: doc, Adapter: adapter}
}

func TestGotoDefinitionResolvesReferencedSymbolMetadata(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")

	locs, err := GotoDefinition(doc, ir.Position{Byte: 22})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, protocol.URI("file:///a.rho"), locs[0].URI)
	assert.EqualValues(t, 4, locs[0].Range.Start.Character)
}

func TestGotoDefinitionFromDeclarationSiteItself(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")

	locs, err := GotoDefinition(doc, ir.Position{Byte: 5})
	require.NoError(t, err)
	require.Len(t, locs, 1)
}

type fakeGlobal struct {
	locs []protocol.Location
}

func (f fakeGlobal) References(string, ir.Position) []protocol.Location { return f.locs }

func TestReferencesUnionsLocalAndGlobal(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")
	global := fakeGlobal{locs: []protocol.Location{{URI: "file:///b.rho"}}}

	locs, err := References(doc, ir.Position{Byte: 22}, global)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, protocol.URI("file:///a.rho"), locs[0].URI)
	assert.Equal(t, protocol.URI("file:///b.rho"), locs[1].URI)
}

func TestReferencesNilGlobalReturnsOnlyLocal(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")

	locs, err := References(doc, ir.Position{Byte: 22}, nil)
	require.NoError(t, err)
	require.Len(t, locs, 1)
}

func TestRenameReplacesDeclarationAndAllReferences(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")
	global := fakeGlobal{locs: []protocol.Location{{URI: "file:///b.rho"}}}

	edit, err := Rename(doc, ir.Position{Byte: 22}, "bar", &global)
	require.NoError(t, err)
	require.NotNil(t, edit)

	local := edit.Changes[protocol.DocumentURI("file:///a.rho")]
	require.Len(t, local, 2)
	for _, e := range local {
		assert.Equal(t, "bar", e.NewText)
	}

	remote := edit.Changes[protocol.DocumentURI("file:///b.rho")]
	require.Len(t, remote, 1)
	assert.Equal(t, "bar", remote[0].NewText)
}

func TestRenameUnresolvedPositionReturnsNil(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")

	edit, err := Rename(doc, ir.Position{Byte: 0}, "bar", nil)
	require.NoError(t, err)
	assert.Nil(t, edit)
}
