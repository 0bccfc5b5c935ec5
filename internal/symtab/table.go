package symtab

import "github.com/F1R3FLY-io/rholang-lsp/internal/ir"

// ScopeKind records which Rholang construct introduced a scope, matching
// the constructs named in spec §3.4: new, for (input), contract, let,
// match, block.
type ScopeKind int

const (
	ScopeDocument ScopeKind = iota
	ScopeNew
	ScopeInput
	ScopeContract
	ScopeLet
	ScopeMatch
	ScopeBlock
)

// PotentialGlobal is a use site whose binder could not be resolved locally,
// recorded for re-resolution after workspace linking (spec §3.4 glossary
// "Potential global").
type PotentialGlobal struct {
	Name  string
	Use   ir.Range
	Scope *Table
}

// Table is one scope node: a name->Symbol map plus a parent pointer (spec
// §3.4). The root table of a document is the one with Parent == nil; Global
// points at the workspace-wide table for fallback lookup (spec §3.4 "Every
// table holds a handle to the global scope").
type Table struct {
	ID     int
	Kind   ScopeKind
	Parent *Table
	Global GlobalLookup

	names    map[string]*Symbol
	children []*Table
}

// GlobalLookup is implemented by the workspace so per-document symbol
// tables can consult cross-file names without importing the workspace
// package (which would create an import cycle: workspace depends on
// symtab, not the reverse).
type GlobalLookup interface {
	LookupGlobal(name string) (uri string, sym *Symbol, ok bool)
}

// NewTable creates a scope table. id must be unique within the owning
// document; the builder assigns ids sequentially as scopes are entered.
func NewTable(id int, kind ScopeKind, parent *Table, global GlobalLookup) *Table {
	t := &Table{ID: id, Kind: kind, Parent: parent, Global: global, names: map[string]*Symbol{}}
	if parent != nil {
		parent.children = append(parent.children, t)
		if global == nil {
			t.Global = parent.Global
		}
	}
	return t
}

// Declare inserts a new Symbol into this scope, returning it. If a symbol
// with the same name already exists in this exact scope (shadowing is only
// permitted across scopes, not within one, per how `new`/`contract`/`for`
// bind names once), the existing symbol is returned unchanged so the
// builder can still record a reference against it.
func (t *Table) Declare(sym *Symbol) *Symbol {
	stored, _ := t.DeclareChecked(sym)
	return stored
}

// DeclareChecked is Declare plus a flag telling the caller whether sym lost
// to an existing binding of the same name in this exact scope, so build.go
// can surface the attempted redeclaration as a duplicate-binder diagnostic
// (spec §7 "Semantic errors") instead of silently discarding its range.
func (t *Table) DeclareChecked(sym *Symbol) (stored *Symbol, duplicate bool) {
	if existing, ok := t.names[sym.Name]; ok {
		return existing, true
	}
	sym.ScopeID = t.ID
	t.names[sym.Name] = sym
	return sym, false
}

// LookupLocal walks the scope chain from this table outward (innermost to
// outermost), per I-ST1, without consulting the global scope. Returns the
// symbol and the table that owns it.
func (t *Table) LookupLocal(name string) (*Symbol, *Table) {
	for s := t; s != nil; s = s.Parent {
		if sym, ok := s.names[name]; ok {
			return sym, s
		}
	}
	return nil, nil
}

// Lookup implements the full I-ST1 chain: innermost to outermost, then the
// global scope. The first hit wins.
func (t *Table) Lookup(name string) (sym *Symbol, uri string, ok bool) {
	if local, _ := t.LookupLocal(name); local != nil {
		return local, "", true
	}
	if t.Global != nil {
		if uri, sym, ok := t.Global.LookupGlobal(name); ok {
			return sym, uri, true
		}
	}
	return nil, "", false
}

// Own returns the symbols declared directly in this scope (not ancestors),
// used by document-symbol and workspace-symbol enumeration.
func (t *Table) Own() []*Symbol {
	out := make([]*Symbol, 0, len(t.names))
	for _, s := range t.names {
		out = append(out, s)
	}
	return out
}

// Children returns the child scopes nested directly inside this one.
func (t *Table) Children() []*Table { return t.children }
