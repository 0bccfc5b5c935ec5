// Package parse wraps tree-sitter (via github.com/tree-sitter/go-tree-sitter)
// behind the minimal contract component C2 of the spec needs: text -> Tree,
// and incremental reparse given an edit descriptor. The grammars themselves
// are black boxes (see internal/grammar); this package never inspects
// language-specific node kinds, leaving that to internal/ir.
package parse

import (
	"context"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/F1R3FLY-io/rholang-lsp/internal/grammar"
)

// Language identifies which grammar to parse with.
type Language int

const (
	Rholang Language = iota
	Metta
)

func (l Language) String() string {
	switch l {
	case Rholang:
		return "rholang"
	case Metta:
		return "metta"
	default:
		return "unknown"
	}
}

func (l Language) grammar() *sitter.Language {
	switch l {
	case Rholang:
		return grammar.Rholang()
	case Metta:
		return grammar.Metta()
	default:
		return nil
	}
}

// Edit describes a single incremental text change, in the shape tree-sitter
// needs to reuse unaffected subtrees of a prior parse.
type Edit struct {
	StartByte   uint
	OldEndByte  uint
	NewEndByte  uint
	StartPoint  sitter.Point
	OldEndPoint sitter.Point
	NewEndPoint sitter.Point
}

// Tree is a read-only view of a parsed document. It always has a non-nil
// root node, even for syntactically invalid input: syntax errors surface as
// ERROR nodes inside the tree (spec §4.2), they never prevent construction.
type Tree struct {
	inner    *sitter.Tree
	language Language
	source   []byte
}

// RootNode returns the root of the parse tree.
func (t *Tree) RootNode() sitter.Node { return t.inner.RootNode() }

// Language reports which grammar produced this tree.
func (t *Tree) Language() Language { return t.language }

// Source returns the exact byte slice this tree was parsed from; tree-sitter
// node ranges are only meaningful relative to this slice.
func (t *Tree) Source() []byte { return t.source }

// HasError reports whether any node in the tree is an ERROR or MISSING node.
func (t *Tree) HasError() bool {
	return t.inner.RootNode().HasError()
}

// Close releases the underlying tree-sitter tree. Safe to call on a nil
// receiver.
func (t *Tree) Close() {
	if t == nil || t.inner == nil {
		return
	}
	t.inner.Close()
}

// Parser incrementally (re)parses a single language. It is not safe for
// concurrent use; callers own one Parser per open document (see
// workspace.Document), matching the teacher's one-rope-per-document
// ownership model.
type Parser struct {
	language Language
	inner    *sitter.Parser
}

// NewParser constructs a Parser for the given language. Returns an error if
// no grammar has been registered for that language (see internal/grammar).
func NewParser(language Language) (*Parser, error) {
	lang := language.grammar()
	if lang == nil {
		return nil, fmt.Errorf("parse: no grammar registered for %s", language)
	}
	sp := sitter.NewParser()
	if err := sp.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("parse: setting language %s: %w", language, err)
	}
	return &Parser{language: language, inner: sp}, nil
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	if p == nil || p.inner == nil {
		return
	}
	p.inner.Close()
}

// Parse parses text from scratch.
func (p *Parser) Parse(ctx context.Context, text []byte) (*Tree, error) {
	return p.reparse(ctx, nil, text)
}

// Reparse incrementally reparses text given the previous tree and the edits
// that were applied to it since. Reparse applies each edit to oldTree
// (tree-sitter's InputEdit bookkeeping) before reparsing, so callers only
// supply the edit descriptors and the new text. With no old tree or no
// edits, text is parsed from scratch.
func (p *Parser) Reparse(ctx context.Context, oldTree *Tree, edits []Edit, newText []byte) (*Tree, error) {
	if oldTree == nil || len(edits) == 0 {
		return p.reparse(ctx, nil, newText)
	}
	for _, e := range edits {
		oldTree.inner.Edit(&sitter.InputEdit{
			StartByte:   e.StartByte,
			OldEndByte:  e.OldEndByte,
			NewEndByte:  e.NewEndByte,
			StartPoint:  e.StartPoint,
			OldEndPoint: e.OldEndPoint,
			NewEndPoint: e.NewEndPoint,
		})
	}
	return p.reparse(ctx, oldTree.inner, newText)
}

func (p *Parser) reparse(ctx context.Context, old *sitter.Tree, text []byte) (*Tree, error) {
	tree := p.inner.ParseCtx(ctx, old, text)
	if tree == nil {
		return nil, fmt.Errorf("parse: %s parser returned no tree", p.language)
	}
	return &Tree{inner: tree, language: p.language, source: text}, nil
}
