package symtab

import "github.com/F1R3FLY-io/rholang-lsp/internal/ir"

// CallSite records a Send or SendSync call for the pattern index and
// workspace-wide "global_calls" queries (spec §3.5, §4.4 "records call
// sites").
type CallSite struct {
	Channel ir.Node
	Args    []ir.Node
	Range   ir.Range
}

// ContractDef records a contract definition for the pattern index and
// workspace-wide "global_contracts" queries.
type ContractDef struct {
	Node  *ir.Contract
	Range ir.Range
}

// Document is the result of building a symbol table over one document's IR
// (spec §4.4): the scope tree itself, plus the flat side-tables features and
// the pattern/workspace indices consume.
type Document struct {
	Root             *Table
	AllSymbols       []*Symbol
	PotentialGlobals []PotentialGlobal
	Contracts        []ContractDef
	Calls            []CallSite

	// Duplicates records every attempt to declare a name that was already
	// bound in the exact same scope (spec §7 "duplicate binder"); internal/
	// validate turns each entry into a pair of correlated diagnostics.
	Duplicates []Duplicate

	// VarRefUses is the `=name` half of use sites discovered while walking
	// patterns (declarePatternVars' *ir.VarRef case): a VarRef names a
	// binding that must already exist, so one that resolves to nothing is a
	// pattern-misuse error, not a plain unbound variable.
	VarRefUses []PotentialGlobal
}

// Duplicate records a rejected redeclaration: sym.Name was already bound in
// Scope at First when Second attempted to bind it again in the same scope.
type Duplicate struct {
	Name   string
	First  ir.Range
	Second ir.Range
	Scope  *Table
}

// Build performs the single traversal described in spec §4.4: entering a
// scoping construct pushes a child table attached to the construct's
// metadata, binders are declared as Symbols, and unresolved local uses are
// recorded as potential globals for re-resolution after workspace linking
// (I-ST2).
func Build(root ir.Node, global GlobalLookup) *Document {
	b := &builder{doc: &Document{}, global: global}
	b.nextID = 1
	docTable := NewTable(0, ScopeDocument, nil, global)
	b.visit(root, docTable)
	b.doc.Root = docTable
	return b.doc
}

type builder struct {
	doc    *Document
	global GlobalLookup
	nextID int
}

func (b *builder) newScope(kind ScopeKind, parent *Table) *Table {
	id := b.nextID
	b.nextID++
	return NewTable(id, kind, parent, nil)
}

// visit walks n in the scope given by `scope`, mutating b.doc as it
// discovers declarations, uses, contracts, and call sites.
func (b *builder) visit(n ir.Node, scope *Table) {
	if n == nil {
		return
	}

	switch node := n.(type) {
	case *ir.New:
		inner := b.newScope(ScopeNew, scope)
		node.Meta = attachTable(node.Meta, inner)
		for _, decl := range node.Decls {
			name := varName(decl.Name)
			if name == "" {
				continue
			}
			sym, dup := inner.DeclareChecked(&Symbol{
				Name:                name,
				Kind:                KindChannel,
				DeclarationLocation: decl.Range,
				Node:                decl,
			})
			if dup {
				b.doc.Duplicates = append(b.doc.Duplicates, Duplicate{Name: name, First: sym.DeclarationLocation, Second: decl.Range, Scope: inner})
			}
			decl.Name.NodeBase().Meta = attachDeclaredSymbol(decl.Name.NodeBase().Meta, sym)
			b.doc.AllSymbols = append(b.doc.AllSymbols, sym)
		}
		b.visit(node.Body, inner)

	case *ir.Contract:
		name := contractName(node.Name)
		if name != "" {
			b.doc.Contracts = append(b.doc.Contracts, ContractDef{Node: node, Range: node.Range})
			sym, dup := scope.DeclareChecked(&Symbol{
				Name:                name,
				Kind:                KindContract,
				DeclarationLocation: node.Range,
				Node:                node,
			})
			if dup {
				b.doc.Duplicates = append(b.doc.Duplicates, Duplicate{Name: name, First: sym.DeclarationLocation, Second: node.Range, Scope: scope})
			}
			node.Name.NodeBase().Meta = attachDeclaredSymbol(node.Name.NodeBase().Meta, sym)
			b.doc.AllSymbols = append(b.doc.AllSymbols, sym)
		} else {
			b.use(node.Name, scope)
		}
		inner := b.newScope(ScopeContract, scope)
		node.Meta = attachTable(node.Meta, inner)
		for _, f := range node.Formals {
			b.declarePatternVars(f, inner, KindParameter)
		}
		if node.FormalsRemainder != nil {
			b.declarePatternVars(node.FormalsRemainder, inner, KindParameter)
		}
		b.visit(node.Body, inner)

	case *ir.Input:
		inner := b.newScope(ScopeInput, scope)
		node.Meta = attachTable(node.Meta, inner)
		for _, group := range node.Receipts {
			for _, bindNode := range group {
				bind, ok := bindNode.(*ir.Bind)
				if !ok {
					continue
				}
				// The source is evaluated in the *outer* scope: a bind's
				// right-hand side cannot refer to names the bind itself
				// introduces.
				b.visit(bind.Source, scope)
				for _, name := range bind.Names {
					b.declarePatternVars(name, inner, KindVariable)
				}
				if bind.Remainder != nil {
					b.declarePatternVars(bind.Remainder, inner, KindVariable)
				}
			}
		}
		b.visit(node.Body, inner)

	case *ir.Let:
		inner := b.newScope(ScopeLet, scope)
		node.Meta = attachTable(node.Meta, inner)
		// Sequential let (the default, `;`-free) evaluates each value in a
		// scope that already sees prior bindings; concurrent let (`;`)
		// evaluates all values in the outer scope. Either way declarations
		// land in `inner` before the body runs.
		valueScope := scope
		for _, decl := range node.Decls {
			if !node.Concurrent {
				valueScope = inner
			}
			b.visit(decl.Value, valueScope)
			for _, name := range decl.Names {
				b.declarePatternVars(name, inner, KindLetBinding)
			}
		}
		b.visit(node.Body, inner)

	case *ir.Match:
		b.visit(node.Scrutinee, scope)
		for _, c := range node.Cases {
			inner := b.newScope(ScopeMatch, scope)
			c.Meta = attachTable(c.Meta, inner)
			b.declarePatternVars(c.Pattern, inner, KindVariable)
			b.visit(c.Body, inner)
		}

	case *ir.Block:
		inner := b.newScope(ScopeBlock, scope)
		node.Meta = attachTable(node.Meta, inner)
		b.visit(node.Proc, inner)

	case *ir.Send:
		b.use(node.Channel, scope)
		for _, a := range node.Args {
			b.visit(a, scope)
		}
		b.doc.Calls = append(b.doc.Calls, CallSite{Channel: node.Channel, Args: node.Args, Range: node.Range})

	case *ir.SendSync:
		b.use(node.Channel, scope)
		for _, a := range node.Args {
			b.visit(a, scope)
		}
		b.doc.Calls = append(b.doc.Calls, CallSite{Channel: node.Channel, Args: node.Args, Range: node.Range})
		if node.Cont != nil {
			b.visit(node.Cont, scope)
		}

	case *ir.Var:
		b.use(node, scope)

	case *ir.Eval:
		b.use(node.Name, scope)

	default:
		for _, c := range n.Children() {
			b.visit(c, scope)
		}
	}
}

// use resolves a name reference: local resolution first, then recorded as a
// potential global if nothing local matched (spec §4.4, I-ST2).
func (b *builder) use(n ir.Node, scope *Table) {
	name := varName(n)
	if name == "" {
		return
	}
	if sym, _ := scope.LookupLocal(name); sym != nil {
		sym.AddReference(n.NodeBase().Range)
		n.NodeBase().Meta = attachReferencedSymbol(n.NodeBase().Meta, sym)
		return
	}
	b.doc.PotentialGlobals = append(b.doc.PotentialGlobals, PotentialGlobal{
		Name:  name,
		Use:   n.NodeBase().Range,
		Scope: scope,
	})
}

// useVarRef is use's counterpart for the variable named by an `=x` pattern:
// it must already be bound, so a local miss is recorded separately from a
// plain potential global (internal/validate reports it as pattern misuse,
// giving workspace linking a chance to resolve it against a global first).
func (b *builder) useVarRef(n ir.Node, scope *Table) {
	name := varName(n)
	if name == "" {
		return
	}
	if sym, _ := scope.LookupLocal(name); sym != nil {
		sym.AddReference(n.NodeBase().Range)
		n.NodeBase().Meta = attachReferencedSymbol(n.NodeBase().Meta, sym)
		return
	}
	b.doc.VarRefUses = append(b.doc.VarRefUses, PotentialGlobal{
		Name:  name,
		Use:   n.NodeBase().Range,
		Scope: scope,
	})
}

// declarePatternVars walks a pattern (formals, bind names, match patterns,
// let names) and declares every free variable/wildcard it introduces,
// recursing into quotes and collections the way pattern position requires.
func (b *builder) declarePatternVars(n ir.Node, scope *Table, kind Kind) {
	if n == nil {
		return
	}
	switch node := n.(type) {
	case *ir.Var:
		sym, dup := scope.DeclareChecked(&Symbol{
			Name:                node.Name,
			Kind:                kind,
			DeclarationLocation: node.Range,
			Node:                node,
		})
		if dup {
			b.doc.Duplicates = append(b.doc.Duplicates, Duplicate{Name: node.Name, First: sym.DeclarationLocation, Second: node.Range, Scope: scope})
		}
		node.Meta = attachDeclaredSymbol(node.Meta, sym)
		b.doc.AllSymbols = append(b.doc.AllSymbols, sym)
	case *ir.Wildcard:
		// Anonymous; nothing to declare.
	case *ir.VarRef:
		// `=x` refers to an existing binding, it does not introduce one; an
		// unresolved one is a pattern-misuse error rather than a plain
		// unbound variable (spec §7).
		b.useVarRef(node.VarNode, scope)
	case *ir.Quote:
		b.declarePatternVars(node.Quotable, scope, kind)
	case *ir.Tuple:
		for _, e := range node.Elements {
			b.declarePatternVars(e, scope, kind)
		}
	case *ir.List:
		for _, e := range node.Elements {
			b.declarePatternVars(e, scope, kind)
		}
		if node.Remainder != nil {
			b.declarePatternVars(node.Remainder, scope, kind)
		}
	case *ir.Set:
		for _, e := range node.Elements {
			b.declarePatternVars(e, scope, kind)
		}
		if node.Remainder != nil {
			b.declarePatternVars(node.Remainder, scope, kind)
		}
	case *ir.Map:
		for _, p := range node.Pairs {
			// Keys are literals in well-formed patterns; only values bind.
			b.declarePatternVars(p.Value, scope, kind)
		}
		if node.Remainder != nil {
			b.declarePatternVars(node.Remainder, scope, kind)
		}
	default:
		// Literal patterns (Nil, literals): nothing to declare.
	}
}

func varName(n ir.Node) string {
	switch node := n.(type) {
	case *ir.Var:
		return node.Name
	case *ir.VarRef:
		return varName(node.VarNode)
	case *ir.Quote:
		return varName(node.Quotable)
	case *ir.Eval:
		return varName(node.Name)
	case *ir.SendReceiveSource:
		return varName(node.Name)
	default:
		return ""
	}
}

func contractName(n ir.Node) string {
	switch node := n.(type) {
	case *ir.Var:
		return node.Name
	case *ir.Quote:
		if s, ok := node.Quotable.(*ir.StringLit); ok {
			return s.Value
		}
	}
	return ""
}

func attachTable(meta ir.Metadata, t *Table) ir.Metadata {
	if meta == nil {
		meta = ir.Metadata{}
	}
	meta["symbol_table"] = t
	meta["scope_id"] = t.ID
	return meta
}

func attachReferencedSymbol(meta ir.Metadata, sym *Symbol) ir.Metadata {
	if meta == nil {
		meta = ir.Metadata{}
	}
	meta["referenced_symbol"] = sym
	return meta
}

// attachDeclaredSymbol tags the node that introduces a binding (as opposed
// to a use of one) with the Symbol it declared, so features that need to
// classify a declaration site itself (semantic tokens, document symbols)
// don't have to re-derive its Kind from surrounding context.
func attachDeclaredSymbol(meta ir.Metadata, sym *Symbol) ir.Metadata {
	if meta == nil {
		meta = ir.Metadata{}
	}
	meta["declared_symbol"] = sym
	return meta
}

// TableOf reads the "symbol_table" metadata attached to a scoping node, if
// any.
func TableOf(n ir.Node) (*Table, bool) {
	v, ok := n.NodeBase().Meta.Get("symbol_table")
	if !ok {
		return nil, false
	}
	t, ok := v.(*Table)
	return t, ok
}

// ReferencedSymbol reads the "referenced_symbol" metadata attached to a use
// site, if any (I-ST2).
func ReferencedSymbol(n ir.Node) (*Symbol, bool) {
	v, ok := n.NodeBase().Meta.Get("referenced_symbol")
	if !ok {
		return nil, false
	}
	s, ok := v.(*Symbol)
	return s, ok
}

// DeclaredSymbol reads the "declared_symbol" metadata attached to a
// declaration site, if any.
func DeclaredSymbol(n ir.Node) (*Symbol, bool) {
	v, ok := n.NodeBase().Meta.Get("declared_symbol")
	if !ok {
		return nil, false
	}
	s, ok := v.(*Symbol)
	return s, ok
}
