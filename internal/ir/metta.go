package ir

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/F1R3FLY-io/rholang-lsp/internal/parse"
)

// MeTTa is a minimal s-expression language. Its IR only needs enough shape
// to drive hover, highlight, and semantic-token classification inside
// virtual documents (spec §4.8, §4.10 "Hover, highlight, semantic tokens"):
// a definition form `(= pattern body)`, atoms, variables, and generic
// s-expressions.

const (
	KindMettaAtom Kind = 1000 + iota
	KindMettaVariable
	KindMettaSExpr
	KindMettaDefinition
	KindMettaNumber
	KindMettaString
)

// MettaAtom is a bare symbol, e.g. `factorial` or `+`.
type MettaAtom struct {
	Base
	Name string
}

func (*MettaAtom) Kind() Kind       { return KindMettaAtom }
func (*MettaAtom) Children() []Node { return nil }

// MettaVariable is a `$x`-style pattern variable.
type MettaVariable struct {
	Base
	Name string
}

func (*MettaVariable) Kind() Kind       { return KindMettaVariable }
func (*MettaVariable) Children() []Node { return nil }

type MettaNumber struct {
	Base
	Text string
}

func (*MettaNumber) Kind() Kind       { return KindMettaNumber }
func (*MettaNumber) Children() []Node { return nil }

type MettaString struct {
	Base
	Value string
}

func (*MettaString) Kind() Kind       { return KindMettaString }
func (*MettaString) Children() []Node { return nil }

// MettaSExpr is `(head arg...)`. The first element, when an atom, is
// treated as a function name for semantic-token classification (spec
// §4.10: "first child ⇒ function name, otherwise atom").
type MettaSExpr struct {
	Base
	Elements []Node
}

func (*MettaSExpr) Kind() Kind       { return KindMettaSExpr }
func (n *MettaSExpr) Children() []Node { return n.Elements }

// MettaDefinition is the `(= pattern body)` form, MeTTa's equivalent of a
// function/rule definition; the reference implementation's hover provider
// special-cases this shape (lsp/backend/metta.rs).
type MettaDefinition struct {
	Base
	Pattern Node
	Body    Node
}

func (*MettaDefinition) Kind() Kind       { return KindMettaDefinition }
func (n *MettaDefinition) Children() []Node { return []Node{n.Pattern, n.Body} }

// LowerMetta lowers a MeTTa tree-sitter tree into MeTTa IR.
func LowerMetta(tree *parse.Tree) (Node, error) {
	l := &lowerer{source: tree.Source()}
	cst := tree.RootNode()
	return l.lowerMettaNode(&cst), nil
}

func (l *lowerer) lowerMettaNode(n *sitter.Node) Node {
	if n == nil {
		return &MettaAtom{Base: Base{}, Name: ""}
	}
	if n.IsError() || n.IsMissing() {
		return l.lowerError(n)
	}
	switch n.Kind() {
	case "source_file", "program":
		children := l.namedChildren(n)
		base := l.base(n)
		if len(children) == 1 {
			return l.lowerMettaNode(&children[0])
		}
		nodes := make([]Node, len(children))
		for i := range children {
			nodes[i] = l.lowerMettaNode(&children[i])
		}
		return &MettaSExpr{Base: base, Elements: nodes}
	case "expr", "list", "s_expression":
		return l.lowerMettaSExpr(n)
	case "symbol", "atom":
		return &MettaAtom{Base: l.base(n), Name: l.text(n)}
	case "variable":
		return &MettaVariable{Base: l.base(n), Name: l.text(n)}
	case "number":
		return &MettaNumber{Base: l.base(n), Text: l.text(n)}
	case "string":
		return &MettaString{Base: l.base(n), Value: unquoteStringLiteral(l.text(n))}
	default:
		children := l.namedChildren(n)
		if len(children) == 1 {
			return l.lowerMettaNode(&children[0])
		}
		return &MettaAtom{Base: l.base(n), Name: l.text(n)}
	}
}

func (l *lowerer) lowerMettaSExpr(n *sitter.Node) Node {
	base := l.base(n)
	children := l.namedChildren(n)
	elems := make([]Node, len(children))
	for i := range children {
		elems[i] = l.lowerMettaNode(&children[i])
	}
	// `(= pattern body)`: recognize the definition shape by its head atom.
	if len(elems) == 3 {
		if head, ok := elems[0].(*MettaAtom); ok && head.Name == "=" {
			return &MettaDefinition{Base: base, Pattern: elems[1], Body: elems[2]}
		}
	}
	return &MettaSExpr{Base: base, Elements: elems}
}

// MettaHeadName returns the function-position atom name of an s-expression,
// or "" if it doesn't start with a plain atom (spec §4.10 semantic-token
// classification rule).
func MettaHeadName(n Node) string {
	sexpr, ok := n.(*MettaSExpr)
	if !ok || len(sexpr.Elements) == 0 {
		return ""
	}
	if atom, ok := sexpr.Elements[0].(*MettaAtom); ok {
		return atom.Name
	}
	return ""
}

// IsMettaVariableName reports whether a raw token looks like a MeTTa
// pattern variable ("$x"), used by the tree-sitter-agnostic grammar check
// as well as by detectors operating on raw text.
func IsMettaVariableName(text string) bool {
	return strings.HasPrefix(text, "$")
}
