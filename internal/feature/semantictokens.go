package feature

import (
	"sort"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

// Token type indices. Must match the order of TokenTypesLegend.
const (
	tokenTypeNamespace = iota
	tokenTypeFunction
	tokenTypeVariable
	tokenTypeParameter
	tokenTypeString
	tokenTypeNumber
	tokenTypeKeyword
	tokenTypeComment
	tokenTypeOperator
	tokenTypeAtom
)

// TokenTypesLegend and TokenModifiersLegend are the legend this package's
// encoding commits to; the server's Initialize response advertises these
// same two slices so the client's token indices line up with ours (the LSP
// protocol library doesn't model SemanticTokensOptions' legend field on its
// own, so whatever advertises the capability has to reuse this slice
// verbatim rather than redeclare it).
var (
	TokenTypesLegend     = []string{"namespace", "function", "variable", "parameter", "string", "number", "keyword", "comment", "operator", "atom"}
	TokenModifiersLegend = []string{"declaration"}
)

const modifierDeclaration = 1 << 0

type token struct {
	rng      ir.Range
	typ      uint32
	modifier uint32
}

func kindToTokenType(k symtab.Kind) uint32 {
	switch k {
	case symtab.KindContract:
		return tokenTypeFunction
	case symtab.KindParameter:
		return tokenTypeParameter
	case symtab.KindBundle:
		return tokenTypeNamespace
	default:
		return tokenTypeVariable
	}
}

// SemanticTokens implements spec §4.10's "SemanticTokens": encodes the
// document's classifiable leaf tokens (names, literals) using the delta
// encoding the LSP semantic tokens spec requires — each entry is
// (deltaLine, deltaStartChar relative to the previous token on the same
// line, length, tokenType, tokenModifiers).
func SemanticTokens(doc *Document) (*protocol.SemanticTokens, error) {
	if doc == nil || doc.Root == nil || doc.Adapter == nil {
		return &protocol.SemanticTokens{}, nil
	}

	var tokens []token
	if doc.Adapter.Name == "metta" {
		walkMetta(doc.Root, true, func(r ir.Range, typ uint32) {
			tokens = append(tokens, token{rng: r, typ: typ})
		})
	} else {
		tokens = collectRholangTokens(doc.Root)
	}
	if len(tokens) == 0 {
		return &protocol.SemanticTokens{}, nil
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].rng.Start.Line != tokens[j].rng.Start.Line {
			return tokens[i].rng.Start.Line < tokens[j].rng.Start.Line
		}
		return tokens[i].rng.Start.Column < tokens[j].rng.Start.Column
	})

	var (
		encoded           []uint32
		prevLine, prevCol uint32
	)
	for _, t := range tokens {
		line := uint32(t.rng.Start.Line)
		col := uint32(t.rng.Start.Column)
		length := uint32(t.rng.End.Column - t.rng.Start.Column)
		if t.rng.End.Line != t.rng.Start.Line {
			// Multi-line tokens don't occur among the leaf kinds we emit;
			// clamp defensively rather than emit a bogus negative length.
			length = 0
		}

		deltaLine := line - prevLine
		deltaCol := col
		if deltaLine == 0 {
			deltaCol = col - prevCol
		}
		encoded = append(encoded, deltaLine, deltaCol, length, t.typ, t.modifier)
		prevLine = line
		prevCol = col
	}

	return &protocol.SemanticTokens{Data: encoded}, nil
}

func collectRholangTokens(root ir.Node) []token {
	var tokens []token
	ir.Walk(root, func(n ir.Node) bool {
		switch n.Kind() {
		case ir.KindVar:
			v, ok := n.(*ir.Var)
			if !ok {
				// NameDecl and SendReceiveSource also report KindVar; the
				// Var they wrap is emitted when the walk reaches it.
				return true
			}
			typ := uint32(tokenTypeVariable)
			var mod uint32
			if sym, ok := symtab.DeclaredSymbol(n); ok {
				typ = kindToTokenType(sym.Kind)
				mod = modifierDeclaration
			} else if sym, ok := symtab.ReferencedSymbol(n); ok {
				typ = kindToTokenType(sym.Kind)
			}
			tokens = append(tokens, token{rng: v.Range, typ: typ, modifier: mod})
		case ir.KindString:
			tokens = append(tokens, token{rng: n.(*ir.StringLit).Range, typ: tokenTypeString})
		case ir.KindLong:
			tokens = append(tokens, token{rng: n.(*ir.LongLit).Range, typ: tokenTypeNumber})
		case ir.KindUri:
			tokens = append(tokens, token{rng: n.(*ir.UriLit).Range, typ: tokenTypeString})
		}
		return true
	})
	return tokens
}

// walkMetta classifies MeTTa nodes per spec §4.10's rule: the first element
// of an s-expression is a function name, every other element is a plain
// atom. ir.Walk alone can't express "first child" without exposing each
// node's position among its siblings, so this is a small dedicated
// recursive descent instead.
func walkMetta(n ir.Node, isHead bool, emit func(ir.Range, uint32)) {
	if n == nil {
		return
	}
	switch node := n.(type) {
	case *ir.MettaDefinition:
		emit(node.Range, tokenTypeKeyword)
		walkMetta(node.Pattern, true, emit)
		walkMetta(node.Body, true, emit)
	case *ir.MettaSExpr:
		for i, e := range node.Elements {
			walkMetta(e, i == 0, emit)
		}
	case *ir.MettaAtom:
		if isHead {
			emit(node.Range, tokenTypeFunction)
		} else {
			emit(node.Range, tokenTypeAtom)
		}
	case *ir.MettaVariable:
		emit(node.Range, tokenTypeParameter)
	case *ir.MettaNumber:
		emit(node.Range, tokenTypeNumber)
	case *ir.MettaString:
		emit(node.Range, tokenTypeString)
	}
}
