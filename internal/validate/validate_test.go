package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

func TestValidateReportsDuplicateBinderAtBothSpans(t *testing.T) {
	doc := &symtab.Document{
		Duplicates: []symtab.Duplicate{
			{
				Name:  "x",
				First: ir.Range{Start: ir.Position{Line: 1, Column: 4}, End: ir.Position{Line: 1, Column: 5}},
				Second: ir.Range{
					Start: ir.Position{Line: 3, Column: 4}, End: ir.Position{Line: 3, Column: 5},
				},
			},
		},
	}

	diags := Validate(doc, nil)
	require.Len(t, diags, 2)
	assert.EqualValues(t, 1, diags[0].Range.Start.Line)
	assert.Contains(t, diags[0].Message, "line 4")
	assert.EqualValues(t, 3, diags[1].Range.Start.Line)
	assert.Contains(t, diags[1].Message, "line 2")
}

func TestValidateReportsTopLevelFreeVariable(t *testing.T) {
	root := symtab.NewTable(0, symtab.ScopeDocument, nil, nil)
	doc := &symtab.Document{
		PotentialGlobals: []symtab.PotentialGlobal{
			{Name: "orphan", Use: ir.Range{Start: ir.Position{Line: 0, Column: 0}}, Scope: root},
		},
	}

	diags := Validate(doc, nil)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "top-level free variable")
	assert.Contains(t, diags[0].Message, "orphan")
}

func TestValidateReportsNestedUnboundVariable(t *testing.T) {
	root := symtab.NewTable(0, symtab.ScopeDocument, nil, nil)
	inner := symtab.NewTable(1, symtab.ScopeNew, root, nil)
	doc := &symtab.Document{
		PotentialGlobals: []symtab.PotentialGlobal{
			{Name: "missing", Use: ir.Range{Start: ir.Position{Line: 2, Column: 0}}, Scope: inner},
		},
	}

	diags := Validate(doc, nil)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unbound variable")
	assert.NotContains(t, diags[0].Message, "top-level")
}

type fakeGlobal struct{ names map[string]bool }

func (f fakeGlobal) LookupGlobal(name string) (string, *symtab.Symbol, bool) {
	if !f.names[name] {
		return "", nil, false
	}
	return "file:///other.rho", &symtab.Symbol{Name: name}, true
}

func TestValidateSkipsUseThatResolvesGlobally(t *testing.T) {
	root := symtab.NewTable(0, symtab.ScopeDocument, nil, nil)
	doc := &symtab.Document{
		PotentialGlobals: []symtab.PotentialGlobal{
			{Name: "Shared", Use: ir.Range{}, Scope: root},
		},
	}

	diags := Validate(doc, fakeGlobal{names: map[string]bool{"Shared": true}})
	assert.Empty(t, diags)
}

func TestValidateReportsPatternMisuseForUnresolvedVarRef(t *testing.T) {
	doc := &symtab.Document{
		VarRefUses: []symtab.PotentialGlobal{
			{Name: "bound", Use: ir.Range{Start: ir.Position{Line: 5, Column: 1}}},
		},
	}

	diags := Validate(doc, nil)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "pattern misuse")
	assert.Contains(t, diags[0].Message, "=bound")
}

func TestValidateNilDocumentReturnsNoDiagnostics(t *testing.T) {
	assert.Empty(t, Validate(nil, nil))
}
