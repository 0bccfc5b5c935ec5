package workspace

import (
	"context"
	"runtime"
	"sync"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/parse"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

// File is one workspace-enumerated source file awaiting bulk indexing.
type File struct {
	URI  protocol.URI
	Text string
}

// detached is the result of phase one: everything IndexDocument computes
// from source text alone, before it touches any workspace-wide table.
type detached struct {
	uri      protocol.URI
	tree     *parse.Tree
	root     ir.Node
	symTable *symtab.Document
	regions  []region.Region
	diags    []protocol.Diagnostic
	err      error
}

// IndexDirectory implements spec §4.11's "Directory indexing" note: a
// parallel parse/process phase that produces detached cached documents
// (using a snapshot of the global scope handles — here, the workspace
// itself, consulted read-only through symtab.GlobalLookup), followed by a
// single-writer batch insert and link. Phase one never takes w.tableMu, so
// every file parses and lowers concurrently; phase two takes it once per
// file, sequentially, to keep the link step's purge-then-republish
// invariant simple.
func (w *Workspace) IndexDirectory(ctx context.Context, files []File) (map[protocol.URI][]protocol.Diagnostic, error) {
	results := make([]detached, len(files))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = w.processDetached(ctx, files[idx])
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := make(map[protocol.URI][]protocol.Diagnostic, len(files))
	for _, d := range results {
		if d.err != nil {
			return out, d.err
		}
		doc, err := w.FindOrCreate(d.uri)
		if err != nil {
			return out, err
		}
		unlock := doc.mu.Lock(withRequest(ctx))
		doc.tree = d.tree
		doc.root = d.root
		doc.symTable = d.symTable
		doc.regions = d.regions
		doc.diagnostics = d.diags
		doc.contentHash = ir.ContentHash(d.tree.Source())
		unlock()

		w.linkDocument(string(d.uri), d.symTable)
		out[d.uri] = d.diags
		w.Virtuals.Register(d.uri, d.regions)
	}
	return out, nil
}

// processDetached performs the per-file, workspace-state-free half of
// IndexDocument's pipeline: parse from scratch, lower, build the symbol
// table against the workspace's read-only GlobalLookup, and detect regions.
// It touches no shared mutable state other than taking w's RLock inside
// LookupGlobal, so many of these can run concurrently (spec §4.11
// "Directory indexing").
func (w *Workspace) processDetached(ctx context.Context, f File) detached {
	p, err := parse.NewParser(parse.Rholang)
	if err != nil {
		return detached{uri: f.URI, err: err}
	}
	defer p.Close()

	tree, err := p.Parse(ctx, []byte(f.Text))
	if err != nil {
		return detached{uri: f.URI, err: err}
	}

	root, err := ir.LowerWithContext(ctx, tree)
	if err != nil {
		tree.Close()
		return detached{uri: f.URI, err: err}
	}

	doc := symtab.Build(root, w)
	comments := collectComments(tree)
	regions := region.Detect(root, tree.Source(), comments)
	diags := collectDiagnostics(root, tree.HasError())

	return detached{
		uri:      f.URI,
		tree:     tree,
		root:     root,
		symTable: doc,
		regions:  regions,
		diags:    diags,
	}
}
