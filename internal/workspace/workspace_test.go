package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

func declDoc(name string, at int, kind symtab.Kind) *symtab.Document {
	table := symtab.NewTable(0, symtab.ScopeDocument, nil, nil)
	table.Declare(&symtab.Symbol{
		Name:                name,
		Kind:                kind,
		DeclarationLocation: ir.Range{Start: ir.Position{Byte: at}, End: ir.Position{Byte: at + len(name)}},
	})
	return &symtab.Document{Root: table}
}

func useDoc(name string, useStart, useEnd int) *symtab.Document {
	table := symtab.NewTable(0, symtab.ScopeDocument, nil, nil)
	return &symtab.Document{
		Root: table,
		PotentialGlobals: []symtab.PotentialGlobal{
			{Name: name, Use: ir.Range{Start: ir.Position{Column: useStart, Byte: useStart}, End: ir.Position{Column: useEnd, Byte: useEnd}}, Scope: table},
		},
	}
}

func TestLinkPublishesOwnSymbolsAndResolvesPotentialGlobal(t *testing.T) {
	w := New()

	w.linkDocument("file:///a.rho", declDoc("foo", 10, symtab.KindContract))
	uri, sym, ok := w.LookupGlobal("foo")
	require.True(t, ok)
	assert.Equal(t, "file:///a.rho", uri)
	assert.Equal(t, "foo", sym.Name)

	w.linkDocument("file:///b.rho", useDoc("foo", 50, 53))

	refs := w.References("file:///a.rho", ir.Position{Byte: 10})
	require.Len(t, refs, 1)
	assert.Equal(t, protocol.URI("file:///b.rho"), refs[0].URI)
	assert.EqualValues(t, 50, refs[0].Range.Start.Character)
}

func TestRelinkIsIdempotentAndPurgesStaleContributions(t *testing.T) {
	w := New()

	w.linkDocument("file:///a.rho", declDoc("foo", 10, symtab.KindContract))
	w.linkDocument("file:///b.rho", useDoc("foo", 50, 53))
	require.Len(t, w.References("file:///a.rho", ir.Position{Byte: 10}), 1)

	// Re-link a.rho twice in a row with the same content: global_symbols
	// must still have exactly one "foo" entry, not grow.
	w.linkDocument("file:///a.rho", declDoc("foo", 10, symtab.KindContract))
	w.linkDocument("file:///a.rho", declDoc("foo", 10, symtab.KindContract))
	_, _, ok := w.LookupGlobal("foo")
	require.True(t, ok)
	assert.Len(t, w.global, 1)

	// Re-link a.rho with "foo" renamed to "bar": "foo" must disappear from
	// global_symbols, and b.rho's stale reference to the old declaration
	// key must be purged too (spec §4.5 "purges all of its prior
	// contributions").
	w.linkDocument("file:///a.rho", declDoc("bar", 10, symtab.KindContract))
	_, _, ok = w.LookupGlobal("foo")
	assert.False(t, ok)
	_, _, ok = w.LookupGlobal("bar")
	assert.True(t, ok)
	assert.Empty(t, w.References("file:///a.rho", ir.Position{Byte: 10}))
}

func TestPurgeRemovesOwnContracts(t *testing.T) {
	w := New()
	contract := &ir.Contract{Name: &ir.Var{Name: "Foo"}}
	doc := &symtab.Document{
		Root:      symtab.NewTable(0, symtab.ScopeDocument, nil, nil),
		Contracts: []symtab.ContractDef{{Node: contract, Range: ir.Range{}}},
	}
	w.linkDocument("file:///a.rho", doc)
	require.Len(t, w.AllContracts(), 1)

	w.linkDocument("file:///a.rho", &symtab.Document{Root: symtab.NewTable(0, symtab.ScopeDocument, nil, nil)})
	assert.Empty(t, w.AllContracts())
}

func TestFindOrCreateRefCounting(t *testing.T) {
	w := New()
	uri := protocol.URI("file:///x.rho")

	d1, err := w.FindOrCreate(uri)
	require.NoError(t, err)
	d2, err := w.FindOrCreate(uri)
	require.NoError(t, err)
	assert.Same(t, d1, d2)

	w.Drop(uri)
	_, ok := w.Get(uri)
	assert.True(t, ok, "refcount should still be 1 after a single Drop of two refs")

	w.Drop(uri)
	_, ok = w.Get(uri)
	assert.False(t, ok, "document should be evicted once refcount reaches zero")
}

func TestMutexPanicsOnDoubleLockSameRequest(t *testing.T) {
	var pool mutexPool
	m := pool.newMutex()
	ctx := withRequestID(context.Background())

	unlock := m.Lock(ctx)
	defer func() {
		r := recover()
		assert.NotNil(t, r, "locking the same mutex twice under one request must panic")
	}()
	m.Lock(ctx)
	unlock()
}

func TestMutexPanicsOnHoldingTwoPoolMutexesAtOnce(t *testing.T) {
	var pool mutexPool
	m1 := pool.newMutex()
	m2 := pool.newMutex()
	ctx := withRequestID(context.Background())

	unlock1 := m1.Lock(ctx)
	defer func() {
		r := recover()
		assert.NotNil(t, r, "holding two mutexes from the same pool under one request must panic")
		unlock1()
	}()
	m2.Lock(ctx)
}
