// Package workspace implements the process-wide state of the language
// server (spec §3.5, component C5) and the indexing pipeline that keeps it
// consistent with the set of open and on-disk documents (component C11).
//
// The document map's lookup/create pattern (refcounted *Document entries
// behind a reentrancy-checked mutex, FindOrCreate racing multiple callers
// safely) is grounded on bufbuild/buf's buflsp/files.go.
package workspace

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/parse"
	"github.com/F1R3FLY-io/rholang-lsp/internal/patternindex"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
	"github.com/F1R3FLY-io/rholang-lsp/internal/virtual"
)

// globalSymbol is one entry of global_symbols (spec §3.5): a name mapped to
// the URI and Symbol that declared it externally-visibly.
type globalSymbol struct {
	uri string
	sym *symtab.Symbol
}

// reference is one entry of global_inverted_index (spec §3.5): a use site
// in some document, keyed by the declaration it resolved to.
type reference struct {
	uri string
	rng ir.Range
}

// declKey identifies a declaration for global_inverted_index purposes:
// (declaring URI, declaration start position).
type declKey struct {
	uri  string
	byte int
}

// contractEntry and callEntry mirror spec §3.5's global_contracts/
// global_calls: "lists of (URI, node) for workspace-wide queries".
type contractEntry struct {
	uri string
	def symtab.ContractDef
}

type callEntry struct {
	uri  string
	call symtab.CallSite
}

// Workspace is the process-wide structure described in spec §3.5, created
// at startup and torn down at shutdown. It owns every open/cached document,
// the cross-file symbol tables, the pattern-matching index, and the virtual
// document registry that embedded regions populate.
type Workspace struct {
	// mutexes mints every Document's per-document mutex, so that a single
	// request handler accidentally re-entering two different documents'
	// locks (which would otherwise deadlock only under contention, and so
	// be very hard to catch at this project's scale) panics immediately
	// instead.
	mutexes mutexPool

	docsMu sync.RWMutex
	docs   map[protocol.URI]*Document

	// tableMu guards everything below except Patterns and Virtuals, which
	// have their own internal locking (spec §5).
	tableMu   sync.RWMutex
	global    map[string]globalSymbol
	refs      map[declKey][]reference
	contracts []contractEntry
	calls     []callEntry

	// perURIGlobals, perURIDecls and perURIRefs track, per-URI, which
	// global_symbols keys and declKeys that URI most recently contributed,
	// so purgeURILocked (spec §4.5 "idempotent per-URI") doesn't have to
	// scan everything.
	perURIGlobals map[string][]string
	perURIDecls   map[string][]declKey
	perURIRefs    map[string][]declKey

	Patterns *patternindex.Index
	Virtuals *virtual.Registry
}

// New creates an empty, ready-to-use Workspace.
func New() *Workspace {
	return &Workspace{
		docs:          make(map[protocol.URI]*Document),
		global:        make(map[string]globalSymbol),
		refs:          make(map[declKey][]reference),
		perURIGlobals: make(map[string][]string),
		perURIDecls:   make(map[string][]declKey),
		perURIRefs:    make(map[string][]declKey),
		Patterns:      patternindex.New(),
		Virtuals:      virtual.NewRegistry(),
	}
}

// Close releases every open document's parser/tree resources.
func (w *Workspace) Close() {
	w.docsMu.Lock()
	defer w.docsMu.Unlock()
	for _, d := range w.docs {
		d.Close()
	}
	w.docs = make(map[protocol.URI]*Document)
}

// Get returns the cached document for uri, if any, without creating one.
func (w *Workspace) Get(uri protocol.URI) (*Document, bool) {
	w.docsMu.RLock()
	defer w.docsMu.RUnlock()
	d, ok := w.docs[uri]
	return d, ok
}

// FindOrCreate returns the Document for uri, creating an empty one (parsed
// as Rholang) if it doesn't exist yet. This is the concurrent-map lookup
// path spec §3.5 calls out ("the document map uses concurrent hash maps so
// common lookups are lock-free"): the common case takes only a read lock.
func (w *Workspace) FindOrCreate(uri protocol.URI) (*Document, error) {
	w.docsMu.RLock()
	d, ok := w.docs[uri]
	w.docsMu.RUnlock()
	if ok {
		d.refs.Add(1)
		return d, nil
	}

	w.docsMu.Lock()
	defer w.docsMu.Unlock()
	if d, ok := w.docs[uri]; ok {
		d.refs.Add(1)
		return d, nil
	}
	d, err := newDocument(uri, parse.Rholang, &w.mutexes)
	if err != nil {
		return nil, err
	}
	d.refs.Store(1)
	w.docs[uri] = d
	return d, nil
}

// Drop releases a reference to uri's document, closing and evicting it once
// the refcount reaches zero (didClose, per spec §4.11).
func (w *Workspace) Drop(uri protocol.URI) {
	w.docsMu.Lock()
	defer w.docsMu.Unlock()
	d, ok := w.docs[uri]
	if !ok {
		return
	}
	if d.refs.Add(-1) > 0 {
		return
	}
	delete(w.docs, uri)
	d.Close()
}

// Documents returns every currently cached document. Used by workspace-wide
// features (workspace symbol search, bulk re-link).
func (w *Workspace) Documents() []*Document {
	w.docsMu.RLock()
	defer w.docsMu.RUnlock()
	out := make([]*Document, 0, len(w.docs))
	for _, d := range w.docs {
		out = append(out, d)
	}
	return out
}

// LookupGlobal implements symtab.GlobalLookup, letting any document's
// symbol table fall back to cross-file names (spec §3.4 "every table holds
// a handle to the global scope").
func (w *Workspace) LookupGlobal(name string) (uri string, sym *symtab.Symbol, ok bool) {
	w.tableMu.RLock()
	defer w.tableMu.RUnlock()
	g, ok := w.global[name]
	if !ok {
		return "", nil, false
	}
	return g.uri, g.sym, true
}

// withRequest tags ctx with a fresh request ID if it doesn't already carry
// one, so the workspace's reentrancy-checked locks can tell repeated
// acquisitions within one logical request apart from genuine contention.
func withRequest(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if getRequestID(ctx) != 0 {
		return ctx
	}
	return withRequestID(ctx)
}
