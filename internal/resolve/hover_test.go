package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
)

func TestRholangHoverDescribesContractWithArity(t *testing.T) {
	c := &ir.Contract{
		Name:    &ir.Var{Name: "Foo"},
		Formals: []ir.Node{&ir.Var{Name: "a"}, &ir.Var{Name: "b"}},
	}
	text, ok := RholangHoverProvider{}.Hover(c)
	assert.True(t, ok)
	assert.Equal(t, "contract `Foo/2`", text)
}

func TestMettaHoverDistinguishesDefinitionFromExpression(t *testing.T) {
	def := &ir.MettaDefinition{
		Pattern: &ir.MettaSExpr{Elements: []ir.Node{&ir.MettaAtom{Name: "helper"}}},
		Body:    &ir.MettaNumber{Text: "1"},
	}
	text, ok := MettaHoverProvider{}.Hover(def)
	assert.True(t, ok)
	assert.Equal(t, "Definition", text)

	expr := &ir.MettaSExpr{Elements: []ir.Node{&ir.MettaAtom{Name: "helper"}}}
	text, ok = MettaHoverProvider{}.Hover(expr)
	assert.True(t, ok)
	assert.Equal(t, "Expression (`helper`)", text)
}

func TestLeadingCommentProviderFindsImmediatelyPrecedingComment(t *testing.T) {
	comments := []region.Comment{
		{Range: ir.Range{Start: ir.Position{Line: 0}, End: ir.Position{Line: 0}}, Text: "// explains foo"},
		{Range: ir.Range{Start: ir.Position{Line: 5}, End: ir.Position{Line: 5}}, Text: "// unrelated, not adjacent"},
	}
	declRange := ir.Range{Start: ir.Position{Line: 1}}

	text, ok := LeadingCommentProvider{}.Documentation(declRange, comments)
	assert.True(t, ok)
	assert.Equal(t, "// explains foo", text)
}

func TestLeadingCommentProviderNoneAdjacent(t *testing.T) {
	comments := []region.Comment{
		{Range: ir.Range{Start: ir.Position{Line: 0}, End: ir.Position{Line: 0}}, Text: "// far away"},
	}
	declRange := ir.Range{Start: ir.Position{Line: 5}}

	_, ok := LeadingCommentProvider{}.Documentation(declRange, comments)
	assert.False(t, ok)
}
