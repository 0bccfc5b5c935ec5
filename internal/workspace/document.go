package workspace

import (
	"context"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/completion"
	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/parse"
	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
	"github.com/F1R3FLY-io/rholang-lsp/internal/resolve"
	"github.com/F1R3FLY-io/rholang-lsp/internal/rope"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

// Document is one open (or cached) parent document's full derived state
// (spec §3.5 "documents: map of URI -> cached document (IR, tree, rope,
// symbol table, version, content hash)"). Each open document owns its own
// rope and is edited under its own mutex, so concurrent edits to different
// documents never contend (spec §5).
type Document struct {
	URI      protocol.URI
	Language parse.Language

	refs atomic.Int32
	mu   mutex

	version     int32
	text        *rope.Rope
	contentHash string

	parser *parse.Parser
	tree   *parse.Tree

	root     ir.Node
	symTable *symtab.Document
	adapter  *resolve.LanguageAdapter

	comments []region.Comment
	regions  []region.Region

	// syntaxDiagnostics caches the parse-error half (spec §4.2), recomputed
	// only when the text actually changes; diagnostics is the full set
	// returned to the client, recomputed on every index pass by appending
	// internal/validate's semantic half, since that depends on the
	// workspace's global table and can change even when this document's own
	// text didn't (spec §4.11 step 1 note).
	syntaxDiagnostics []protocol.Diagnostic
	diagnostics       []protocol.Diagnostic

	completion *completion.Engine
}

// newDocument constructs an empty Document ready to be populated by
// IndexDocument. The caller supplies the language because the workspace
// decides it (Rholang for every workspace file; MeTTa documents only exist
// as virtuals, owned by internal/virtual instead of this package). The
// tree-sitter parser itself is constructed lazily, on first reparse: the
// grammar binding (spec §4.2 "the grammars themselves are black boxes") is
// registered by the server's entry point, which may run after documents
// have already been opened, so failing here would reject every didOpen
// until that registration race resolved.
func newDocument(uri protocol.URI, lang parse.Language, pool *mutexPool) (*Document, error) {
	return &Document{
		URI:        uri,
		Language:   lang,
		mu:         pool.newMutex(),
		text:       rope.New(""),
		completion: completion.NewEngine(),
	}, nil
}

// Close releases the underlying tree-sitter parser and tree.
func (d *Document) Close() {
	if d == nil {
		return
	}
	d.tree.Close()
	d.parser.Close()
}

// Version reports the last LSP version number this document was indexed at.
func (d *Document) Version() int32 { return d.version }

// Text returns the current full document content.
func (d *Document) Text() string { return d.text.String() }

// ContentHash returns the hash of the text last successfully indexed.
func (d *Document) ContentHash() string { return d.contentHash }

// Tree returns the last parse tree, or nil before the first successful
// parse.
func (d *Document) Tree() *parse.Tree { return d.tree }

// IR returns the last lowered IR root, or nil before the first successful
// lowering.
func (d *Document) IR() ir.Node { return d.root }

// SymbolTable returns the last-built per-document symbol table.
func (d *Document) SymbolTable() *symtab.Document { return d.symTable }

// Adapter returns the language adapter built for this document's last index
// pass (nil before the first successful index). internal/rlsp uses this to
// assemble the feature.Document it hands to internal/feature's operations.
func (d *Document) Adapter() *resolve.LanguageAdapter { return d.adapter }

// Comments returns the comments collected in the last index pass, needed by
// internal/feature's hover/documentation lookup (spec §4.10).
func (d *Document) Comments() []region.Comment { return d.comments }

// Regions returns the embedded regions detected in the last index pass.
func (d *Document) Regions() []region.Region { return d.regions }

// Diagnostics returns the diagnostics produced by the last index pass.
func (d *Document) Diagnostics() []protocol.Diagnostic { return d.diagnostics }

// PositionToByte converts an LSP position into the byte offset internal/ir
// positions use, via this document's rope; pos.Character is taken as a
// byte column within the line.
func (d *Document) PositionToByte(pos protocol.Position) int {
	return d.text.LineColumnToOffset(rope.Position{Line: int(pos.Line), Column: int(pos.Character)})
}

// BytePosition converts a byte offset back into an ir.Position carrying its
// line/column, for building ir.Position values from LSP requests.
func (d *Document) BytePosition(b int) ir.Position {
	rp := d.text.OffsetToLineColumn(b)
	return ir.Position{Line: rp.Line, Column: rp.Column, Byte: b}
}

// Completion returns this document's incremental completion engine (spec
// §3.8, component C9). Typing events and queries both go through it, each
// guarded by the document's own mutex (spec §5 "Completion engines are
// guarded by per-document locks").
func (d *Document) Completion() *completion.Engine { return d.completion }

// collectComments walks tree's CST for comment nodes, needed by D1 (spec
// §4.7) since IR lowering discards comment text (see internal/region's
// Comment doc comment, which names this helper).
func collectComments(tree *parse.Tree) []region.Comment {
	var out []region.Comment
	root := tree.RootNode()
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		kind := n.Kind()
		if kind == "comment" || kind == "line_comment" || kind == "block_comment" {
			out = append(out, region.Comment{
				Range: ir.Range{
					Start: ir.Position{Line: int(n.StartPosition().Row), Column: int(n.StartPosition().Column), Byte: int(n.StartByte())},
					End:   ir.Position{Line: int(n.EndPosition().Row), Column: int(n.EndPosition().Column), Byte: int(n.EndByte())},
				},
				Text: string(tree.Source()[n.StartByte():n.EndByte()]),
			})
			return
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			c := n.Child(uint(i))
			walk(c)
		}
	}
	walk(&root)
	return out
}

// reparse parses newText, incrementally if a prior tree exists (spec §4.11
// step 2). edits may be nil for a full reparse (e.g. didOpen, or didChange
// with full-document sync).
func (d *Document) reparse(ctx context.Context, edits []parse.Edit, newText string) error {
	if d.parser == nil {
		p, err := parse.NewParser(d.Language)
		if err != nil {
			return err
		}
		d.parser = p
	}
	tree, err := d.parser.Reparse(ctx, d.tree, edits, []byte(newText))
	if err != nil {
		return err
	}
	d.tree.Close()
	d.tree = tree
	d.text = rope.New(newText)
	return nil
}
