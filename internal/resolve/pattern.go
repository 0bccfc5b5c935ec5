package resolve

import (
	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/patternindex"
)

// PatternFilter wraps a base resolver and narrows its candidates using the
// pattern index (spec §3.6, component C6) whenever ctx.IRNode is a call
// site: a name used as the channel of a Send/SendSync is a contract
// invocation, and patternindex.Index.Query narrows the candidates to the
// contracts of that name whose formals match the arguments exactly or,
// failing that, have the same number of formals.
type PatternFilter struct {
	Base     SymbolResolver
	Patterns *patternindex.Index
}

// Resolve implements SymbolResolver.
func (f *PatternFilter) Resolve(name string, position ir.Position, ctx Context) ([]SymbolLocation, error) {
	locs, err := f.Base.Resolve(name, position, ctx)
	if err != nil || len(locs) == 0 {
		return locs, err
	}

	args, ok := callArgs(ctx.IRNode)
	if !ok || f.Patterns == nil {
		return locs, nil
	}

	metas, err := f.Patterns.Query(name, args)
	if err != nil {
		// Canonicalization failed for one of the arguments (spec §4.6 edge
		// case): fall back to whatever the base resolver already found
		// rather than erroring the whole request out.
		return locs, nil
	}
	if len(metas) == 0 {
		return locs, nil
	}

	out := make([]SymbolLocation, 0, len(metas))
	for _, m := range metas {
		out = append(out, SymbolLocation{URI: m.Location.URI, Range: m.Location.Range})
	}
	return out, nil
}

// callArgs reports whether n is a call site and, if so, its arguments.
func callArgs(n ir.Node) ([]ir.Node, bool) {
	switch node := n.(type) {
	case *ir.Send:
		return node.Args, true
	case *ir.SendSync:
		return node.Args, true
	default:
		return nil, false
	}
}
