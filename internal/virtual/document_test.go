package virtual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

func testRegion(content string, startLine, startCol int) region.Region {
	return region.Region{
		Language: "metta",
		Source:   region.SourceDirective,
		Range: ir.Range{
			Start: ir.Position{Line: startLine, Column: startCol},
		},
		Content: content,
	}
}

func TestNewFragmentURI(t *testing.T) {
	doc := New("file:///test.rho", testRegion("(= g 7)", 2, 10), 0)
	assert.Equal(t, protocol.URI("file:///test.rho#metta:0"), doc.URI)
	assert.Equal(t, "metta", doc.Language)
}

func TestPositionMappingSingleLine(t *testing.T) {
	doc := New("file:///test.rho", testRegion("(= factorial (lambda (n) 42))", 2, 10), 0)

	vpos := protocol.Position{Line: 0, Character: 5}
	ppos, ok := doc.MapToParent(vpos)
	require.True(t, ok)
	assert.EqualValues(t, 2, ppos.Line)
	assert.EqualValues(t, 16, ppos.Character) // 10 + 5 + 1 for the opening quote

	back, ok := doc.MapFromParent(ppos)
	require.True(t, ok)
	assert.Equal(t, vpos, back)
}

func TestPositionMappingMultiLine(t *testing.T) {
	content := "\n          (= (is_connected $from $to)\n             (match & self (connected $from $to) true))"
	doc := New("file:///test.rho", testRegion(content, 22, 18), 0)

	vpos := protocol.Position{Line: 1, Character: 27}
	ppos, ok := doc.MapToParent(vpos)
	require.True(t, ok)
	assert.EqualValues(t, 23, ppos.Line)
	assert.EqualValues(t, 27, ppos.Character)

	back, ok := doc.MapFromParent(ppos)
	require.True(t, ok)
	assert.Equal(t, vpos, back)
}

func TestHoledDocumentHolePositionUndefined(t *testing.T) {
	reg := testRegion("abc", 0, 0)
	reg.Chain = []region.ConcatSlice{
		{Range: ir.Range{Start: ir.Position{Line: 0, Column: 1}}, Content: "ab"},
		{Range: ir.Range{Start: ir.Position{Line: 0, Column: 10}}, IsHole: true},
		{Range: ir.Range{Start: ir.Position{Line: 0, Column: 20}}, Content: "c"},
	}
	doc := New("file:///test.rho", reg, 0)

	// Offset 0 and 1 fall within the first literal slice "ab".
	p0, ok := doc.MapToParent(protocol.Position{Line: 0, Character: 0})
	require.True(t, ok)
	assert.EqualValues(t, 1, p0.Character)

	p1, ok := doc.MapToParent(protocol.Position{Line: 0, Character: 1})
	require.True(t, ok)
	assert.EqualValues(t, 2, p1.Character)

	// Offset 2 is the boundary between "ab" and "c"; it resolves to the end
	// of the "ab" slice rather than reporting a hole, since holes contribute
	// no virtual bytes and boundaries must map somewhere.
	p2, ok := doc.MapToParent(protocol.Position{Line: 0, Character: 2})
	require.True(t, ok)
	assert.EqualValues(t, 3, p2.Character)

	// Offset 3 lands in the final literal slice "c", not in the hole:
	// since holes contribute zero virtual bytes, no in-range virtual
	// position can ever resolve into one.
	p3, ok := doc.MapToParent(protocol.Position{Line: 0, Character: 3})
	require.True(t, ok)
	assert.EqualValues(t, 21, p3.Character)
	assert.False(t, doc.IsPositionInHole(protocol.Position{Line: 0, Character: 3}))
}

func TestInvalidateCache(t *testing.T) {
	doc := New("file:///test.rho", testRegion("x", 0, 0), 0)
	doc.SetIR(&ir.NilLit{})
	doc.SetSymbolTable(&symtab.Document{})
	doc.SetDiagnostics([]protocol.Diagnostic{{Message: "oops"}})

	doc.InvalidateCache()

	assert.Nil(t, doc.Tree())
	assert.Nil(t, doc.IR())
	assert.Nil(t, doc.SymbolTable())
	assert.Empty(t, doc.Diagnostics())
}
