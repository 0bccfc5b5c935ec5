package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/resolve"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
	"github.com/F1R3FLY-io/rholang-lsp/internal/virtual"
)

func TestSemanticTokensEncodesRholangDeclarationAndUse(t *testing.T) {
	doc := buildNewDoc("file:///a.rho")

	toks, err := SemanticTokens(doc)
	require.NoError(t, err)
	require.Len(t, toks.Data, 15) // 3 tokens (decl, use, literal) * 5 fields

	assert.EqualValues(t, tokenTypeVariable, toks.Data[3])   // decl's type
	assert.EqualValues(t, modifierDeclaration, toks.Data[4]) // decl's modifier
	assert.EqualValues(t, tokenTypeVariable, toks.Data[8])   // use's type
	assert.EqualValues(t, 0, toks.Data[9])                   // use's modifier
	assert.EqualValues(t, tokenTypeNumber, toks.Data[13])    // literal's type
}

func TestSemanticTokensEmptyDocumentReturnsEmptyData(t *testing.T) {
	doc := &Document{URI: "file:///a.rho", Root: &ir.NilLit{}, Adapter: resolve.NewRholangAdapter(&ir.NilLit{}, nil, nil)}

	toks, err := SemanticTokens(doc)
	require.NoError(t, err)
	assert.Empty(t, toks.Data)
}

func TestSemanticTokensClassifiesMettaHeadAsFunction(t *testing.T) {
	head := &ir.MettaAtom{Name: "helper", Base: ir.Base{Range: ir.Range{Start: ir.Position{Byte: 1}, End: ir.Position{Byte: 7}}}}
	arg := &ir.MettaVariable{Name: "$x", Base: ir.Base{Range: ir.Range{Start: ir.Position{Byte: 8}, End: ir.Position{Byte: 10}}}}
	root := &ir.MettaSExpr{Base: ir.Base{Range: ir.Range{Start: ir.Position{Byte: 0}, End: ir.Position{Byte: 11}}}, Elements: []ir.Node{head, arg}}

	adapter := resolve.NewMettaAdapter(root, virtual.NewRegistry(), nil)
	doc := &Document{URI: "file:///v.metta", Root: root, Adapter: adapter, Comments: []region.Comment{}, Table: &symtab.Document{}}

	toks, err := SemanticTokens(doc)
	require.NoError(t, err)
	require.Len(t, toks.Data, 10)
	assert.EqualValues(t, tokenTypeFunction, toks.Data[3])
	assert.EqualValues(t, tokenTypeParameter, toks.Data[8])
}
