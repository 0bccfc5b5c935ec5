package resolve

import (
	"github.com/F1R3FLY-io/rholang-lsp/internal/completion"
	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/patternindex"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
	"github.com/F1R3FLY-io/rholang-lsp/internal/virtual"
)

// HoverProvider produces the hover content for the node found at a
// position, independent of which language the adapter belongs to (spec
// §4.10 "a hover provider").
type HoverProvider interface {
	Hover(node ir.Node) (markdown string, ok bool)
}

// DocumentationProvider supplies the prose documentation associated with a
// resolved declaration: its nearest preceding comment, the way the node
// operations this project is modeled after treat a "doc comment" (spec
// §4.10 "a documentation provider"). comments is the full comment list
// internal/region collected for the declaration's own document; callers
// pass the right list since a provider has no document membership of its
// own (a MeTTa virtual's comments are never the parent's, and vice versa).
type DocumentationProvider interface {
	Documentation(declRange ir.Range, comments []region.Comment) (markdown string, ok bool)
}

// LanguageAdapter binds together everything a generic feature (goto
// definition, hover, completion) needs without caring whether it is
// currently working with a Rholang parent document or a MeTTa virtual one
// (spec §3.9 "language adapters let the generic features stay language
// agnostic").
type LanguageAdapter struct {
	Name     string
	Resolver SymbolResolver

	// Completion is nil for a language with no completion engine attached
	// to the document owning this adapter.
	Completion    *completion.Engine
	Hover         HoverProvider
	Documentation DocumentationProvider
}

// NewRholangAdapter builds the resolver chain spec §4.10 describes for a
// parent document: lexical scope first (itself already falling back to the
// document's wired global table, spec §3.4 I-ST1), then narrowed by
// call-site pattern matching (spec §4.6) when the use site is a contract
// invocation.
func NewRholangAdapter(root ir.Node, patterns *patternindex.Index, engine *completion.Engine) *LanguageAdapter {
	lexical := &LexicalScopeResolver{Root: root}
	return &LanguageAdapter{
		Name:          "rholang",
		Resolver:      &PatternFilter{Base: lexical, Patterns: patterns},
		Completion:    engine,
		Hover:         RholangHoverProvider{},
		Documentation: LeadingCommentProvider{},
	}
}

// NewMettaAdapter builds the resolver chain for a MeTTa virtual document:
// lexical scope within the virtual's own table, then peer virtuals under
// the same parent (spec §4.8), since a virtual has no workspace-wide global
// table of its own (spec §3.7).
func NewMettaAdapter(root ir.Node, registry *virtual.Registry, engine *completion.Engine) *LanguageAdapter {
	lexical := &LexicalScopeResolver{Root: root}
	return &LanguageAdapter{
		Name:          "metta",
		Resolver:      Chain{lexical, &CrossDocumentVirtualResolver{Registry: registry}},
		Completion:    engine,
		Hover:         MettaHoverProvider{},
		Documentation: LeadingCommentProvider{},
	}
}

// globalChain is the last link every adapter's resolver can be extended
// with once a workspace-wide GlobalResolver is available (the workspace
// wires this in when constructing an adapter for an open document, since
// internal/resolve itself must not import internal/workspace to avoid
// coupling the other direction).
func globalChain(base SymbolResolver, global symtab.GlobalLookup) SymbolResolver {
	if global == nil {
		return base
	}
	return Chain{base, &GlobalResolver{Lookup: global}}
}

// WithGlobal extends an adapter's resolver with a final workspace-wide
// lookup, returning a new adapter (the original is left untouched).
func (a *LanguageAdapter) WithGlobal(global symtab.GlobalLookup) *LanguageAdapter {
	out := *a
	out.Resolver = globalChain(a.Resolver, global)
	return &out
}
