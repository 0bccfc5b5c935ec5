package resolve

import (
	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

// LexicalScopeResolver resolves a name by walking the scope chain of the
// table attached to the innermost scoping node enclosing position, all the
// way out to the document root and, from there, into the global table if
// the root's Global handle is wired (spec §3.4 I-ST1, §4.10 "walks the
// scope chain to global before giving up").
type LexicalScopeResolver struct {
	Root ir.Node
}

// Resolve implements SymbolResolver.
func (r *LexicalScopeResolver) Resolve(name string, position ir.Position, ctx Context) ([]SymbolLocation, error) {
	if r.Root == nil {
		return nil, nil
	}
	scope := scopeAt(r.Root, position)
	if scope == nil {
		return nil, nil
	}
	sym, uri, ok := scope.Lookup(name)
	if !ok {
		return nil, nil
	}
	declURI := uri
	if declURI == "" {
		declURI = ctx.URI
	}
	return []SymbolLocation{{URI: declURI, Range: sym.DeclarationLocation}}, nil
}

// scopeAt finds the table attached to the innermost ancestor of the node at
// position that has one, walking the IR path NodeAt returns from the
// deepest node back toward the root (most scoping constructs attach their
// table to themselves, per symtab.Build's attachTable calls).
func scopeAt(root ir.Node, position ir.Position) *symtab.Table {
	path := ir.NodeAt(root, position)
	for i := len(path) - 1; i >= 0; i-- {
		if t, ok := symtab.TableOf(path[i]); ok {
			return t
		}
	}
	if t, ok := symtab.TableOf(root); ok {
		return t
	}
	return nil
}

// NameAt extracts the referenceable name at position, per spec §4.10's
// name-extraction rules: Var names itself; VarRef and Quote recurse into
// what they wrap; Send/SendSync/SendReceiveSource recurse into the channel
// or name being sent on; binds recurse into their source; a quoted string
// literal used as a contract name contributes its string value; collections
// descend into whichever element's range actually contains position. If no
// rule matches the node at position, the column immediately before it is
// tried once as a fallback (spec §4.10 "column-1 fallback", for the common
// case of invoking goto-definition with the cursor one past the identifier).
func NameAt(root ir.Node, position ir.Position) (string, ir.Node) {
	n := ir.Innermost(root, position)
	if name, target := extractName(n); name != "" {
		return name, target
	}
	if position.Column > 0 {
		prev := position
		prev.Column--
		prev.Byte--
		if n2 := ir.Innermost(root, prev); n2 != nil && n2 != n {
			if name, target := extractName(n2); name != "" {
				return name, target
			}
		}
	}
	return "", nil
}

func extractName(n ir.Node) (string, ir.Node) {
	switch node := n.(type) {
	case nil:
		return "", nil
	case *ir.Var:
		return node.Name, node
	case *ir.VarRef:
		return extractName(node.VarNode)
	case *ir.Quote:
		if s, ok := node.Quotable.(*ir.StringLit); ok {
			return s.Value, node
		}
		return extractName(node.Quotable)
	case *ir.Eval:
		return extractName(node.Name)
	case *ir.StringLit:
		return node.Value, node
	case *ir.Send:
		return extractName(node.Channel)
	case *ir.SendSync:
		return extractName(node.Channel)
	case *ir.SendReceiveSource:
		return extractName(node.Name)
	case *ir.Bind:
		return extractName(node.Source)
	case *ir.Contract:
		return contractNodeName(node.Name)
	default:
		return "", nil
	}
}

func contractNodeName(n ir.Node) (string, ir.Node) {
	switch node := n.(type) {
	case *ir.Var:
		return node.Name, node
	case *ir.Quote:
		if s, ok := node.Quotable.(*ir.StringLit); ok {
			return s.Value, node
		}
	}
	return "", nil
}
