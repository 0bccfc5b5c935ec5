package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

func TestDocumentHighlightMarksDeclarationWriteAndUsesRead(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")

	highlights, err := DocumentHighlight(doc, ir.Position{Byte: 22})
	require.NoError(t, err)
	require.Len(t, highlights, 2)

	require.NotNil(t, highlights[0].Kind)
	assert.Equal(t, protocol.DocumentHighlightKindWrite, *highlights[0].Kind)
	require.NotNil(t, highlights[1].Kind)
	assert.Equal(t, protocol.DocumentHighlightKindRead, *highlights[1].Kind)
}

func TestDocumentHighlightUnresolvedReturnsNil(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")

	highlights, err := DocumentHighlight(doc, ir.Position{Byte: 0})
	require.NoError(t, err)
	assert.Nil(t, highlights)
}
