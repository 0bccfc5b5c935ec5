package workspace

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/parse"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/resolve"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
	"github.com/F1R3FLY-io/rholang-lsp/internal/validate"
)

// IndexDocument runs the eight-step pipeline of spec §4.11 against a single
// document: content-hash short-circuit, (re)parse, lower + symbol table,
// purge-then-republish workspace contributions, region detection and
// virtual refresh, link, and finally diagnostics.
//
// edits is nil for a full reparse (didOpen, or a client using full-document
// sync); version is the LSP version this text corresponds to, used for the
// stale-request drop policy (spec §5 "Ordering").
func (w *Workspace) IndexDocument(ctx context.Context, uri protocol.URI, version int32, text string, edits []parse.Edit) ([]protocol.Diagnostic, error) {
	ctx = withRequest(ctx)

	doc, err := w.FindOrCreate(uri)
	if err != nil {
		return nil, err
	}

	unlock := doc.mu.Lock(ctx)
	defer unlock()

	// Stale-request drop policy (spec §5 "a request whose version is older
	// than the stored one is discarded silently").
	if version != 0 && version < doc.version {
		return doc.diagnostics, nil
	}

	hash := ir.ContentHash([]byte(text))
	unchanged := hash == doc.contentHash && doc.contentHash != ""

	if !unchanged {
		if err := doc.reparse(ctx, edits, text); err != nil {
			return nil, err
		}
		doc.contentHash = hash

		root, err := ir.LowerWithContext(ctx, doc.tree)
		if err != nil {
			return nil, err
		}
		doc.root = root
		doc.symTable = symtab.Build(root, w)
		doc.adapter = resolve.NewRholangAdapter(root, w.Patterns, doc.completion).WithGlobal(w)
		doc.comments = collectComments(doc.tree)
		doc.regions = region.Detect(root, doc.tree.Source(), doc.comments)
		w.Virtuals.Register(uri, doc.regions)

		doc.syntaxDiagnostics = collectDiagnostics(root, doc.tree.HasError())
	}
	doc.version = version

	// Step 7: purge this URI's prior contributions and republish + resolve
	// potential globals (spec §4.5's three-part link step), regardless of
	// whether the text changed, so dependency changes elsewhere still
	// re-resolve this document's potential globals (spec §4.11 step 1 note).
	w.linkDocument(string(uri), doc.symTable)

	// Step 8: semantic validation (SPEC_FULL.md "semantic validator") runs
	// after linking, every pass, since a name that is unbound against this
	// document alone may resolve once the workspace's global table catches
	// up; w itself satisfies symtab.GlobalLookup.
	semantic := validate.Validate(doc.symTable, w)
	doc.diagnostics = append(append([]protocol.Diagnostic{}, doc.syntaxDiagnostics...), semantic...)

	return doc.diagnostics, nil
}

// linkDocument implements the link step (spec §4.5): purge every prior
// contribution this URI made to the cross-file tables, then republish its
// externally-visible symbols, contracts, and calls, and resolve its
// potential-global references against the now-current global_symbols.
//
// It purges first unconditionally, which is what makes re-indexing a URI
// idempotent: calling this twice in a row with the same symtab.Document
// leaves the workspace tables in the same state as calling it once.
func (w *Workspace) linkDocument(uri string, doc *symtab.Document) {
	w.tableMu.Lock()
	defer w.tableMu.Unlock()

	w.purgeURILocked(uri)

	if doc == nil {
		return
	}

	for _, sym := range doc.Root.Own() {
		sym.DeclarationURI = uri
		w.global[sym.Name] = globalSymbol{uri: uri, sym: sym}
		w.perURIGlobals[uri] = append(w.perURIGlobals[uri], sym.Name)
		key := declKey{uri: uri, byte: sym.DeclarationLocation.Start.Byte}
		w.perURIDecls[uri] = append(w.perURIDecls[uri], key)
	}

	for _, pg := range doc.PotentialGlobals {
		g, ok := w.global[pg.Name]
		if !ok {
			continue
		}
		key := declKey{uri: g.uri, byte: g.sym.DeclarationLocation.Start.Byte}
		w.refs[key] = append(w.refs[key], reference{uri: uri, rng: pg.Use})
		w.perURIRefKeys(uri, key)
	}

	for _, c := range doc.Contracts {
		w.contracts = append(w.contracts, contractEntry{uri: uri, def: c})
		_ = w.Patterns.Insert(uri, c.Node, c.Range)
	}

	for _, call := range doc.Calls {
		w.calls = append(w.calls, callEntry{uri: uri, call: call})
	}
}

// perURIRefKeys records that uri contributed an entry to global_inverted_index
// under key, so a future purge can find and strip it again without scanning
// every key in w.refs.
func (w *Workspace) perURIRefKeys(uri string, key declKey) {
	if w.perURIRefs == nil {
		w.perURIRefs = make(map[string][]declKey)
	}
	w.perURIRefs[uri] = append(w.perURIRefs[uri], key)
}

// purgeURILocked removes every contribution uri previously made to the
// cross-file tables (spec §4.5 "The link step is idempotent per-URI").
// Callers must hold tableMu for writing.
func (w *Workspace) purgeURILocked(uri string) {
	for _, name := range w.perURIGlobals[uri] {
		if cur, ok := w.global[name]; ok && cur.uri == uri {
			delete(w.global, name)
		}
	}
	delete(w.perURIGlobals, uri)

	for _, key := range w.perURIDecls[uri] {
		delete(w.refs, key)
	}
	delete(w.perURIDecls, uri)

	for _, key := range w.perURIRefs[uri] {
		lst, ok := w.refs[key]
		if !ok {
			continue
		}
		filtered := lst[:0]
		for _, r := range lst {
			if r.uri != uri {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) == 0 {
			delete(w.refs, key)
		} else {
			w.refs[key] = filtered
		}
	}
	delete(w.perURIRefs, uri)

	kept := w.contracts[:0]
	for _, c := range w.contracts {
		if c.uri != uri {
			kept = append(kept, c)
		}
	}
	w.contracts = kept

	keptCalls := w.calls[:0]
	for _, c := range w.calls {
		if c.uri != uri {
			keptCalls = append(keptCalls, c)
		}
	}
	w.calls = keptCalls

	w.Patterns.RemoveURI(uri)
}

// References returns every use site of the symbol declared at declURI/declRange
// (spec §4.10 "References": "union of local uses (C4) and global uses (C5)
// keyed by the symbol's declaration location"). Local uses are the symbol's
// own References field; this only supplies the cross-file half.
func (w *Workspace) References(declURI string, declStart ir.Position) []protocol.Location {
	w.tableMu.RLock()
	defer w.tableMu.RUnlock()
	key := declKey{uri: declURI, byte: declStart.Byte}
	lst := w.refs[key]
	out := make([]protocol.Location, 0, len(lst))
	for _, r := range lst {
		out = append(out, toLocation(r.uri, r.rng))
	}
	return out
}

// LookupSymbol performs the by-name lookup GlobalResolver needs (spec §4.10),
// exposed publicly since resolvers live in a separate package.
func (w *Workspace) LookupSymbol(name string) (uri string, sym *symtab.Symbol, ok bool) {
	return w.LookupGlobal(name)
}

// AllContracts exposes the workspace-wide contract list for workspace-symbol
// enumeration and the pattern index's by-name fallback.
func (w *Workspace) AllContracts() []symtab.ContractDef {
	w.tableMu.RLock()
	defer w.tableMu.RUnlock()
	out := make([]symtab.ContractDef, 0, len(w.contracts))
	for _, c := range w.contracts {
		out = append(out, c.def)
	}
	return out
}

// AllCalls exposes the workspace-wide call-site list.
func (w *Workspace) AllCalls() []symtab.CallSite {
	w.tableMu.RLock()
	defer w.tableMu.RUnlock()
	out := make([]symtab.CallSite, 0, len(w.calls))
	for _, c := range w.calls {
		out = append(out, c.call)
	}
	return out
}

func toLocation(uri string, r ir.Range) protocol.Location {
	return protocol.Location{
		URI: protocol.URI(uri),
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Column)},
			End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Column)},
		},
	}
}

// collectDiagnostics walks root for *ir.Error nodes (spec §4.2 "Failure
// model": syntax errors surface as Error IR nodes) and turns them into LSP
// diagnostics. hasSyntaxError is kept for callers that want to distinguish
// "parsed clean" from "parsed with recovery" even when no Error node made
// it into the final tree (e.g. a MISSING node tree-sitter repaired silently).
func collectDiagnostics(root ir.Node, hasSyntaxError bool) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for _, n := range ir.Collect(root, func(n ir.Node) bool {
		_, ok := n.(*ir.Error)
		return ok
	}) {
		e := n.(*ir.Error)
		msg := e.Message
		if msg == "" {
			msg = "syntax error"
		}
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(e.Range.Start.Line), Character: uint32(e.Range.Start.Column)},
				End:   protocol.Position{Line: uint32(e.Range.End.Line), Character: uint32(e.Range.End.Column)},
			},
			Severity: protocol.DiagnosticSeverityError,
			Source:   "rholang-lsp",
			Message:  msg,
		})
	}
	return out
}
