package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

func TestDocumentSymbolReportsDeclaredSymbols(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")

	syms, err := DocumentSymbol(doc)
	require.NoError(t, err)
	require.Len(t, syms, 1)

	ds, ok := syms[0].(protocol.DocumentSymbol)
	require.True(t, ok)
	assert.Equal(t, "foo", ds.Name)
	assert.Equal(t, protocol.SymbolKindVariable, ds.Kind)
}

func TestDocumentSymbolEmptyDocumentReturnsNil(t *testing.T) {
	doc := &Document{URI: "file:///a.rho", Root: &ir.NilLit{}}

	syms, err := DocumentSymbol(doc)
	require.NoError(t, err)
	assert.Nil(t, syms)
}

func TestWorkspaceSymbolFiltersByCaseInsensitiveSubstring(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")

	syms, err := WorkspaceSymbol("FO", []Document{*doc})
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "foo", syms[0].Name)
	assert.Equal(t, protocol.URI("file:///a.rho"), syms[0].Location.URI)

	none, err := WorkspaceSymbol("nope", []Document{*doc})
	require.NoError(t, err)
	assert.Empty(t, none)
}
