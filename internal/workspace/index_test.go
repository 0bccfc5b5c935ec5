package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

func TestCollectDiagnosticsFromErrorNodes(t *testing.T) {
	root := &ir.Par{
		Base: ir.Base{Range: ir.Range{End: ir.Position{Line: 2, Column: 0, Byte: 20}}},
		Left: &ir.Error{
			Base:    ir.Base{Range: ir.Range{Start: ir.Position{Line: 0, Column: 1, Byte: 1}, End: ir.Position{Line: 0, Column: 5, Byte: 5}}},
			Message: "unexpected token",
		},
		Right: &ir.NilLit{},
	}

	diags := collectDiagnostics(root, true)
	require.Len(t, diags, 1)
	assert.Equal(t, "unexpected token", diags[0].Message)
	assert.EqualValues(t, 1, diags[0].Range.Start.Character)
}

func TestCollectDiagnosticsDefaultsMessage(t *testing.T) {
	root := &ir.Error{Base: ir.Base{Range: ir.Range{}}}
	diags := collectDiagnostics(root, true)
	require.Len(t, diags, 1)
	assert.Equal(t, "syntax error", diags[0].Message)
}

func TestCollectDiagnosticsEmptyWhenNoErrors(t *testing.T) {
	root := &ir.NilLit{}
	assert.Empty(t, collectDiagnostics(root, false))
}
