package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func TestGlobalContextPrepopulatedWithKeywords(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.dictionary.Contains("new"))
	assert.True(t, e.dictionary.Contains("contract"))
	assert.Equal(t, GlobalContextID, e.CurrentContext())
}

func TestIncrementalFinalizationScenario(t *testing.T) {
	// Spec §8 scenario 5: type m, y, V, a, r; query "myV" returns a draft
	// completion before finalization; cursor moves to next line;
	// finalize(); a subsequent query returns it from the dictionary.
	e := NewEngine()
	pos := protocol.Position{Line: 0, Character: 0}
	for i, r := range "myVar" {
		pos = protocol.Position{Line: 0, Character: uint32(i + 1)}
		e.InsertChar(r, pos)
	}
	assert.Equal(t, "myVar", e.Draft())

	results := e.Query("myV", 2)
	require.NotEmpty(t, results)
	found := false
	for _, c := range results {
		if c.Term == "myVar" && c.IsDraft {
			found = true
		}
	}
	assert.True(t, found, "expected draft completion myVar before finalization")
	assert.False(t, e.dictionary.Contains("myVar"))

	next := protocol.Position{Line: 1, Character: 0}
	require.True(t, e.HasCursorMoved(next))
	term, ok := e.Finalize()
	require.True(t, ok)
	assert.Equal(t, "myVar", term)
	e.UpdatePosition(next)

	assert.Equal(t, "", e.Draft())
	assert.True(t, e.dictionary.Contains("myVar"))

	exact := e.Query("myV", 0)
	var exactMatch bool
	for _, c := range exact {
		if c.Term == "myVar" && !c.IsDraft {
			exactMatch = true
		}
	}
	assert.True(t, exactMatch)
}

func TestHasCursorMovedSameLineSmallStep(t *testing.T) {
	e := NewEngine()
	e.UpdatePosition(protocol.Position{Line: 3, Character: 5})
	assert.False(t, e.HasCursorMoved(protocol.Position{Line: 3, Character: 6}))
	assert.True(t, e.HasCursorMoved(protocol.Position{Line: 3, Character: 8}))
	assert.True(t, e.HasCursorMoved(protocol.Position{Line: 4, Character: 5}))
}

func TestContextTreeMirrorsScopes(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.EnsureContext(1, GlobalContextID))
	require.NoError(t, e.EnsureContext(2, 1))
	require.Error(t, e.EnsureContext(3, 99))

	require.NoError(t, e.SwitchContext(2))
	e.InsertStr("outer", protocol.Position{})
	require.NoError(t, e.SwitchContext(1))
	e.InsertStr("inner", protocol.Position{})

	require.NoError(t, e.SwitchContext(2))
	results := e.Query("out", 3)
	var sawOuter, sawInner bool
	for _, c := range results {
		if c.Term == "outer" {
			sawOuter = true
		}
		if c.Term == "inner" {
			sawInner = true
		}
	}
	// context2's ancestor chain is [context2, context1, global]: both its
	// own draft and its parent's surface.
	assert.True(t, sawOuter)
	assert.True(t, sawInner)

	require.NoError(t, e.SwitchContext(1))
	results = e.Query("out", 3)
	for _, c := range results {
		assert.NotEqual(t, "outer", c.Term, "context2 is not an ancestor of context1, so its draft must not surface")
	}
}

func TestCheckpointUndo(t *testing.T) {
	e := NewEngine()
	e.InsertStr("abc", protocol.Position{})
	e.Checkpoint()
	e.InsertStr("def", protocol.Position{})
	assert.Equal(t, "abcdef", e.Draft())

	require.True(t, e.Undo())
	assert.Equal(t, "abc", e.Draft())
	assert.False(t, e.Undo())
}

func TestRemoveTermAfterRename(t *testing.T) {
	e := NewEngine()
	e.FinalizeDirect("oldName")
	assert.True(t, e.dictionary.Contains("oldName"))

	assert.True(t, e.RemoveTerm("oldName"))
	assert.False(t, e.dictionary.Contains("oldName"))
	assert.False(t, e.RemoveTerm("oldName"))

	e.FinalizeDirect("newName")
	assert.True(t, e.dictionary.Contains("newName"))
}
