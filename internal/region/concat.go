package region

import "github.com/F1R3FLY-io/rholang-lsp/internal/ir"

// flattenConcat walks a `++`-chain of string literals (and non-literal
// "holes", e.g. `"a" ++ x ++ "b"`) left to right, building the assembled
// content and a concatenation chain (spec §4.7 "Concatenation", §3.7
// concatenation_chain). ok is false if the expression contains no string
// literal at all (so it's not embeddable content).
func flattenConcat(n ir.Node) (content string, chain []ConcatSlice, ok bool) {
	var slices []ConcatSlice
	var walk func(ir.Node)
	sawLiteral := false
	walk = func(n ir.Node) {
		switch node := n.(type) {
		case *ir.BinaryExpr:
			if node.Op == ir.OpConcat {
				walk(node.Left)
				walk(node.Right)
				return
			}
			slices = append(slices, ConcatSlice{Range: node.Range, IsHole: true})
		case *ir.StringLit:
			sawLiteral = true
			slices = append(slices, ConcatSlice{Range: node.Range, Content: node.Value})
		case *ir.Parenthesized:
			walk(node.Expr)
		default:
			if n != nil {
				slices = append(slices, ConcatSlice{Range: n.NodeBase().Range, IsHole: true})
			}
		}
	}
	walk(n)
	if !sawLiteral {
		return "", nil, false
	}
	var b []byte
	for _, s := range slices {
		b = append(b, s.Content...)
	}
	if len(slices) == 1 && !slices[0].IsHole {
		// Single literal, no real concatenation: chain stays nil per spec
		// §3.7 ("optional concatenation_chain").
		return string(b), nil, true
	}
	return string(b), slices, true
}
