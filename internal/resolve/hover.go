package resolve

import (
	"fmt"
	"strings"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
)

// RholangHoverProvider describes an IR node the way spec §8 scenario 3
// expects for the Rholang half of a document: a short, kind-specific
// sentence, switching on Kind() per spec §9's "tagged-variant matching"
// convention rather than a type-assertion cascade.
type RholangHoverProvider struct{}

// Hover implements HoverProvider.
func (RholangHoverProvider) Hover(node ir.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case ir.KindContract:
		c := node.(*ir.Contract)
		return fmt.Sprintf("contract `%s/%d`", contractDisplayName(c.Name), len(c.Formals)), true
	case ir.KindVar:
		return fmt.Sprintf("name `%s`", node.(*ir.Var).Name), true
	case ir.KindSend:
		return "send (`!`)", true
	case ir.KindSendSync:
		return "synchronous send (`!?`)", true
	case ir.KindNew:
		return "new name binding (`new`)", true
	case ir.KindInput:
		return "receive (`for`)", true
	case ir.KindLet:
		return "let binding", true
	case ir.KindMatch:
		return "pattern match", true
	case ir.KindBundle:
		return "bundle", true
	case ir.KindString:
		return fmt.Sprintf("string literal %q", node.(*ir.StringLit).Value), true
	case ir.KindLong:
		return fmt.Sprintf("integer literal %d", node.(*ir.LongLit).Value), true
	case ir.KindUri:
		return fmt.Sprintf("URI literal `%s`", node.(*ir.UriLit).Value), true
	default:
		return "", false
	}
}

func contractDisplayName(n ir.Node) string {
	switch node := n.(type) {
	case *ir.Var:
		return node.Name
	case *ir.Quote:
		if s, ok := node.Quotable.(*ir.StringLit); ok {
			return s.Value
		}
	}
	return "?"
}

// MettaHoverProvider implements spec §8 scenario 3's "hover distinguishing
// Definition vs Expression": a `(= pattern body)` form reports itself as a
// definition, everything else reports its classification by s-expression
// head (spec §4.10 "first child ⇒ function name, otherwise atom").
type MettaHoverProvider struct{}

// Hover implements HoverProvider.
func (MettaHoverProvider) Hover(node ir.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case ir.KindMettaDefinition:
		return "Definition", true
	case ir.KindMettaSExpr:
		if head := ir.MettaHeadName(node); head != "" {
			return fmt.Sprintf("Expression (`%s`)", head), true
		}
		return "Expression", true
	case ir.KindMettaAtom:
		return fmt.Sprintf("atom `%s`", node.(*ir.MettaAtom).Name), true
	case ir.KindMettaVariable:
		return fmt.Sprintf("variable `%s`", node.(*ir.MettaVariable).Name), true
	case ir.KindMettaNumber:
		return fmt.Sprintf("number `%s`", node.(*ir.MettaNumber).Text), true
	case ir.KindMettaString:
		return fmt.Sprintf("string %q", node.(*ir.MettaString).Value), true
	default:
		return "", false
	}
}

// LeadingCommentProvider implements DocumentationProvider by taking the
// comment immediately preceding a declaration, the same convention the
// node-operations style this project follows uses for "doc comments": a
// comment whose last line sits directly above the declaration's first
// line, with no blank line between them.
type LeadingCommentProvider struct{}

// Documentation implements DocumentationProvider.
func (LeadingCommentProvider) Documentation(declRange ir.Range, comments []region.Comment) (string, bool) {
	var best *region.Comment
	for i := range comments {
		c := &comments[i]
		if c.Range.End.Line+1 != declRange.Start.Line {
			continue
		}
		if best == nil || c.Range.Start.Line < best.Range.Start.Line {
			best = c
		}
	}
	if best == nil {
		return "", false
	}
	return strings.TrimSpace(best.Text), true
}
