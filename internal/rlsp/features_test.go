package rlsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/completion"
	"github.com/F1R3FLY-io/rholang-lsp/internal/workspace"
)

func TestFeatureDocForCopiesTheDocumentsOwnFields(t *testing.T) {
	ws := workspace.New()
	uri := protocol.URI("file:///a.rho")
	doc, err := ws.FindOrCreate(uri)
	require.NoError(t, err)

	fd := featureDocFor(doc)
	assert.Equal(t, string(uri), fd.URI)
	assert.Equal(t, doc.IR(), fd.Root)
	assert.Equal(t, doc.SymbolTable(), fd.Table)
	assert.Equal(t, doc.Adapter(), fd.Adapter)
	assert.Equal(t, doc.Comments(), fd.Comments)
}

func TestCompletionItemForUsesTheTermAsTheLabel(t *testing.T) {
	item := completionItemFor(completion.Completion{Term: "stdout", Distance: 0, IsDraft: true})
	assert.Equal(t, "stdout", item.Label)
	assert.Equal(t, protocol.CompletionItemKindVariable, item.Kind)
}
