package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/patternindex"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
	"github.com/F1R3FLY-io/rholang-lsp/internal/virtual"
)

// buildDoc assembles a tiny document's worth of IR + symbol table by hand,
// equivalent to what `new foo in { foo!(1) }` would lower and build to: a
// document scope, a `new` scope declaring foo, and a send using it.
func buildDoc() ir.Node {
	decl := &ir.Var{Name: "foo", Base: ir.Base{Range: ir.Range{Start: ir.Position{Byte: 4}, End: ir.Position{Byte: 7}}}}
	use := &ir.Var{Name: "foo", Base: ir.Base{Range: ir.Range{Start: ir.Position{Byte: 20}, End: ir.Position{Byte: 23}}}}
	send := &ir.Send{
		Base:    ir.Base{Range: ir.Range{Start: ir.Position{Byte: 20}, End: ir.Position{Byte: 30}}},
		Channel: use,
		Args:    []ir.Node{&ir.LongLit{Value: 1}},
	}

	docTable := symtab.NewTable(0, symtab.ScopeDocument, nil, nil)
	inner := symtab.NewTable(1, symtab.ScopeNew, docTable, nil)
	sym := inner.Declare(&symtab.Symbol{
		Name:                "foo",
		Kind:                symtab.KindChannel,
		DeclarationLocation: decl.Range,
		Node:                decl,
	})
	use.Meta = ir.Metadata{"referenced_symbol": sym}

	root := &ir.New{
		Base:  ir.Base{Range: ir.Range{Start: ir.Position{Byte: 0}, End: ir.Position{Byte: 30}}},
		Decls: []*ir.NameDecl{{Name: decl}},
		Body:  send,
	}
	root.Meta = ir.Metadata{"symbol_table": inner, "scope_id": 1}
	return root
}

func TestLexicalScopeResolverFindsEnclosingDeclaration(t *testing.T) {
	root := buildDoc()
	r := &LexicalScopeResolver{Root: root}

	locs, err := r.Resolve("foo", ir.Position{Byte: 22}, Context{URI: "file:///a.rho"})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "file:///a.rho", locs[0].URI)
	assert.EqualValues(t, 4, locs[0].Range.Start.Byte)
}

func TestLexicalScopeResolverReturnsNilWhenUnresolved(t *testing.T) {
	root := buildDoc()
	r := &LexicalScopeResolver{Root: root}

	locs, err := r.Resolve("bar", ir.Position{Byte: 22}, Context{URI: "file:///a.rho"})
	require.NoError(t, err)
	assert.Empty(t, locs)
}

type fakeGlobal struct {
	uri string
	sym *symtab.Symbol
}

func (f fakeGlobal) LookupGlobal(name string) (string, *symtab.Symbol, bool) {
	if f.sym == nil || name != f.sym.Name {
		return "", nil, false
	}
	return f.uri, f.sym, true
}

func TestChainFallsThroughToGlobalResolver(t *testing.T) {
	lexical := &LexicalScopeResolver{Root: &ir.NilLit{}}
	global := &GlobalResolver{Lookup: fakeGlobal{
		uri: "file:///b.rho",
		sym: &symtab.Symbol{Name: "Bar", DeclarationLocation: ir.Range{Start: ir.Position{Byte: 9}}},
	}}
	chain := Chain{lexical, global}

	locs, err := chain.Resolve("Bar", ir.Position{}, Context{})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "file:///b.rho", locs[0].URI)
}

type staticResolver struct{ locs []SymbolLocation }

func (s staticResolver) Resolve(string, ir.Position, Context) ([]SymbolLocation, error) {
	return s.locs, nil
}

func TestPatternFilterNarrowsByCallArguments(t *testing.T) {
	idx := patternindex.New()
	contract := &ir.Contract{
		Base:    ir.Base{Range: ir.Range{Start: ir.Position{Byte: 40}}},
		Name:    &ir.Var{Name: "Foo"},
		Formals: []ir.Node{&ir.LongLit{Value: 0}},
	}
	require.NoError(t, idx.Insert("file:///a.rho", contract, contract.Range))

	send := &ir.Send{Channel: &ir.Var{Name: "Foo"}, Args: []ir.Node{&ir.LongLit{Value: 7}}}
	base := staticResolver{locs: []SymbolLocation{{URI: "file:///elsewhere.rho"}}}
	f := &PatternFilter{Base: base, Patterns: idx}

	locs, err := f.Resolve("Foo", ir.Position{}, Context{IRNode: send})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "file:///a.rho", locs[0].URI)
}

func TestNameAtExtractsChannelNameFromSend(t *testing.T) {
	ch := &ir.Var{Name: "stdout", Base: ir.Base{Range: ir.Range{Start: ir.Position{Byte: 0}, End: ir.Position{Byte: 6}}}}
	send := &ir.Send{
		Base:    ir.Base{Range: ir.Range{Start: ir.Position{Byte: 0}, End: ir.Position{Byte: 12}}},
		Channel: ch,
		Args:    []ir.Node{&ir.StringLit{Value: "hi"}},
	}
	name, target := NameAt(send, ir.Position{Byte: 2})
	assert.Equal(t, "stdout", name)
	assert.Same(t, ch, target)
}

func TestCrossDocumentVirtualResolverSearchesPeers(t *testing.T) {
	reg := virtual.NewRegistry()
	parent := protocol.URI("file:///a.rho")

	regions := []region.Region{
		{Language: "metta", Content: "(= (helper) 1)"},
		{Language: "metta", Content: "(helper)"},
	}
	docs := reg.Register(parent, regions)
	require.Len(t, docs, 2)

	peerTable := symtab.NewTable(0, symtab.ScopeDocument, nil, nil)
	peerTable.Declare(&symtab.Symbol{
		Name:                "helper",
		DeclarationLocation: ir.Range{Start: ir.Position{Byte: 5}},
	})
	docs[0].SetSymbolTable(&symtab.Document{Root: peerTable})

	r := &CrossDocumentVirtualResolver{Registry: reg}
	locs, err := r.Resolve("helper", ir.Position{}, Context{URI: string(docs[1].URI), ParentURI: string(parent)})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, string(docs[0].URI), locs[0].URI)
	assert.EqualValues(t, 5, locs[0].Range.Start.Byte)
}
