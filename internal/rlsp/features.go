package rlsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/completion"
	"github.com/F1R3FLY-io/rholang-lsp/internal/feature"
	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/parse"
	"github.com/F1R3FLY-io/rholang-lsp/internal/resolve"
	"github.com/F1R3FLY-io/rholang-lsp/internal/rope"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
	"github.com/F1R3FLY-io/rholang-lsp/internal/virtual"
	"github.com/F1R3FLY-io/rholang-lsp/internal/workspace"
)

// resolvedDoc pairs the feature.Document a generic operation needs with the
// byte-position conversion for the specific document it came from: a parent
// workspace.Document converts through its rope, a virtual.Document through
// one built over its own Content (spec §3.7, §3.9).
type resolvedDoc struct {
	doc      *feature.Document
	position ir.Position
}

// resolveAt finds the document addressed by uri (parent or MeTTa virtual,
// spec §3.7's fragment URI scheme) and converts pos into that document's
// own ir.Position, lazily indexing a virtual the first time it's touched
// (spec §4.8 "virtual documents are lazily parsed").
func (s *server) resolveAt(ctx context.Context, uri protocol.URI, pos protocol.Position) (*resolvedDoc, error) {
	if v, ok := s.ws.Virtuals.Get(uri); ok {
		if err := ensureVirtualIndexed(ctx, v); err != nil {
			return nil, fmt.Errorf("index virtual document %s: %w", uri, err)
		}
		r := rope.New(v.Content)
		rp := r.LineColumnToOffset(rope.Position{Line: int(pos.Line), Column: int(pos.Character)})
		return &resolvedDoc{
			doc: &feature.Document{
				URI:     string(v.URI),
				Root:    v.IR(),
				Table:   v.SymbolTable(),
				Adapter: resolve.NewMettaAdapter(v.IR(), s.ws.Virtuals, nil),
			},
			position: ir.Position{Line: int(pos.Line), Column: int(pos.Character), Byte: rp},
		}, nil
	}

	doc, ok := s.ws.Get(uri)
	if !ok {
		return nil, fmt.Errorf("unknown document: %s", uri)
	}
	b := doc.PositionToByte(pos)
	return &resolvedDoc{
		doc:      featureDocFor(doc),
		position: doc.BytePosition(b),
	}, nil
}

// ensureVirtualIndexed lazily parses, lowers, and builds the symbol table
// for a MeTTa virtual document the first time a feature request targets it
// (spec §4.8), caching the result on v via the setters internal/workspace's
// region detection already populates v through on open but never indexed
// until asked. A virtual's own GlobalLookup is nil: MeTTa fragments don't
// participate in the Rholang workspace's cross-file global table (spec
// §3.9 names the two languages' resolver chains as independent).
func ensureVirtualIndexed(ctx context.Context, v *virtual.Document) error {
	if v.IR() != nil {
		return nil
	}
	p, err := parse.NewParser(parse.Metta)
	if err != nil {
		return err
	}
	defer p.Close()

	tree, err := p.Parse(ctx, []byte(v.Content))
	if err != nil {
		return err
	}
	root, err := ir.LowerMetta(tree)
	if err != nil {
		return err
	}
	v.SetTree(tree)
	v.SetIR(root)
	v.SetSymbolTable(symtab.Build(root, nil))
	return nil
}

func (s *server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	r, err := s.resolveAt(ctx, params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, err
	}
	return feature.Hover(r.doc, r.position)
}

func (s *server) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	r, err := s.resolveAt(ctx, params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, err
	}
	return feature.GotoDefinition(r.doc, r.position)
}

func (s *server) References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	r, err := s.resolveAt(ctx, params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, err
	}
	return feature.References(r.doc, r.position, s.ws)
}

func (s *server) Rename(ctx context.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	r, err := s.resolveAt(ctx, params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, err
	}
	return feature.Rename(r.doc, r.position, params.NewName, s.ws)
}

func (s *server) DocumentHighlight(ctx context.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	r, err := s.resolveAt(ctx, params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, err
	}
	return feature.DocumentHighlight(r.doc, r.position)
}

// featureDocFor adapts a parent workspace.Document into the view
// internal/feature's whole-document operations need (spec §3.9); per-
// position operations go through resolveAt instead, since those also need a
// position conversion.
func featureDocFor(doc *workspace.Document) *feature.Document {
	return &feature.Document{
		URI:      string(doc.URI),
		Root:     doc.IR(),
		Table:    doc.SymbolTable(),
		Adapter:  doc.Adapter(),
		Comments: doc.Comments(),
	}
}

func (s *server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	doc, ok := s.ws.Get(params.TextDocument.URI)
	if !ok {
		return nil, fmt.Errorf("unknown document: %s", params.TextDocument.URI)
	}
	return feature.DocumentSymbol(featureDocFor(doc))
}

func (s *server) Symbols(ctx context.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	docs := make([]feature.Document, 0, len(s.ws.Documents()))
	for _, doc := range s.ws.Documents() {
		docs = append(docs, *featureDocFor(doc))
	}
	return feature.WorkspaceSymbol(params.Query, docs)
}

func (s *server) SemanticTokensFull(ctx context.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	uri := params.TextDocument.URI
	if v, ok := s.ws.Virtuals.Get(uri); ok {
		if err := ensureVirtualIndexed(ctx, v); err != nil {
			return nil, fmt.Errorf("index virtual document %s: %w", uri, err)
		}
		return feature.SemanticTokens(&feature.Document{
			URI:     string(v.URI),
			Root:    v.IR(),
			Table:   v.SymbolTable(),
			Adapter: resolve.NewMettaAdapter(v.IR(), s.ws.Virtuals, nil),
		})
	}

	doc, ok := s.ws.Get(uri)
	if !ok {
		return nil, fmt.Errorf("unknown document: %s", uri)
	}
	return feature.SemanticTokens(featureDocFor(doc))
}

// Completion drives the incremental completion engine (component C9, spec
// §3.8) attached to the parent document; MeTTa virtuals don't carry their
// own engine (spec §3.9's resolver chains are the only per-language state
// a virtual needs for the rest of the generic features).
func (s *server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	doc, ok := s.ws.Get(params.TextDocument.URI)
	if !ok {
		return nil, fmt.Errorf("unknown document: %s", params.TextDocument.URI)
	}
	doc.Completion().UpdatePosition(params.Position)
	prefix := doc.Completion().Draft()
	results := doc.Completion().Query(prefix, 2)

	items := make([]protocol.CompletionItem, 0, len(results))
	for _, r := range results {
		items = append(items, completionItemFor(r))
	}
	return &protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

func completionItemFor(c completion.Completion) protocol.CompletionItem {
	kind := protocol.CompletionItemKindVariable
	return protocol.CompletionItem{
		Label: c.Term,
		Kind:  kind,
	}
}
