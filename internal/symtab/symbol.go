// Package symtab implements the per-document symbol table (spec §3.4,
// §4.4): a tree of lexical scopes, each holding a name->Symbol map and a
// parent pointer, built by a single post-order-adjacent traversal of the
// IR.
package symtab

import "github.com/F1R3FLY-io/rholang-lsp/internal/ir"

// Kind classifies what introduced a Symbol (spec §3.3).
type Kind int

const (
	KindVariable Kind = iota
	KindContract
	KindChannel
	KindBundle
	KindLetBinding
	KindParameter
)

func (k Kind) String() string {
	switch k {
	case KindContract:
		return "Contract"
	case KindChannel:
		return "Channel"
	case KindBundle:
		return "Bundle"
	case KindLetBinding:
		return "LetBinding"
	case KindParameter:
		return "Parameter"
	default:
		return "Variable"
	}
}

// Symbol is a named, positioned binding (spec §3.3).
type Symbol struct {
	Name string
	Kind Kind

	DeclarationURI      string
	DeclarationLocation ir.Range

	// DefinitionLocation is set separately from DeclarationLocation only
	// for split decls (a channel URI-constrained new-binding has its
	// declaration at the `new` and no separate definition; contracts are
	// their own definition). Zero value means "same as declaration".
	DefinitionLocation *ir.Range

	ScopeID int

	// References accumulates local use sites discovered while walking this
	// document; cross-document references live in the workspace's
	// global_inverted_index (spec §3.5) instead.
	References []ir.Range

	// Node is the IR node that declares this symbol (a Var, NameDecl, or
	// Contract), kept so features can re-derive e.g. contract formals
	// without a second lookup.
	Node ir.Node
}

// AddReference records a local use site of this symbol.
func (s *Symbol) AddReference(r ir.Range) {
	s.References = append(s.References, r)
}
