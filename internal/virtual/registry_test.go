package virtual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	parent := protocol.URI("file:///test.rho")

	docs := reg.Register(parent, []region.Region{testRegion("(= factorial (lambda (n) 42))", 2, 10)})
	require.Len(t, docs, 1)
	assert.Equal(t, "metta", docs[0].Language)

	got, ok := reg.Get(docs[0].URI)
	require.True(t, ok)
	assert.Equal(t, docs[0], got)

	assert.True(t, reg.IsVirtual(docs[0].URI))
	assert.False(t, reg.IsVirtual(parent))

	parentURI, ok := reg.ParentOf(docs[0].URI)
	require.True(t, ok)
	assert.Equal(t, parent, parentURI)
}

func TestRegistryReregisterClearsPrior(t *testing.T) {
	reg := NewRegistry()
	parent := protocol.URI("file:///test.rho")

	reg.Register(parent, []region.Region{testRegion("a", 0, 0), testRegion("b", 1, 0)})
	assert.Len(t, reg.ByParent(parent), 2)

	reg.Register(parent, []region.Region{testRegion("only-one", 0, 0)})
	docs := reg.ByParent(parent)
	require.Len(t, docs, 1)
	assert.Equal(t, "only-one", docs[0].Content)
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()
	parent := protocol.URI("file:///test.rho")
	reg.Register(parent, []region.Region{testRegion("a", 0, 0)})
	require.Len(t, reg.ByParent(parent), 1)

	reg.Unregister(parent)
	assert.Empty(t, reg.ByParent(parent))
}

func TestFindVirtualAt(t *testing.T) {
	reg := NewRegistry()
	parent := protocol.URI("file:///test.rho")
	reg.Register(parent, []region.Region{testRegion("(= g 7)", 2, 10)})

	doc, vpos, ok := reg.FindVirtualAt(parent, protocol.Position{Line: 2, Character: 16})
	require.True(t, ok)
	assert.Equal(t, "metta", doc.Language)
	assert.EqualValues(t, 0, vpos.Line)
	assert.EqualValues(t, 5, vpos.Character)

	_, _, ok = reg.FindVirtualAt(parent, protocol.Position{Line: 99, Character: 0})
	assert.False(t, ok)
}
