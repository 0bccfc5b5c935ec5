package patternindex

import (
	"sync"
	"sync/atomic"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

// Location mirrors spec §3.6 leaf metadata's position fields.
type Location struct {
	URI   string
	Range ir.Range
}

// Metadata is stored at each contract leaf (spec §3.6).
type Metadata struct {
	Location     Location
	Name         string
	Arity        int
	ParamBytes   [][]byte
	ParamNames   []string // nil if formals had no recoverable names
}

// trieNode is one level of the path trie; children are keyed by the exact
// byte-string path segment (the canonical param encoding, or "contract"/name
// for the first two levels).
type trieNode struct {
	children map[string]*trieNode
	value    *Metadata
}

func newTrieNode() *trieNode { return &trieNode{children: map[string]*trieNode{}} }

func (n *trieNode) child(seg string, create bool) *trieNode {
	if c, ok := n.children[seg]; ok {
		return c
	}
	if !create {
		return nil
	}
	c := newTrieNode()
	n.children[seg] = c
	return c
}

// Index is the workspace-wide pattern trie (spec §4.6). It is guarded as a
// single unit together with its cached "all contracts" subtree, per spec §5
// ("The pattern-matching index and its cached contract subtree are guarded
// as one unit; the 'dirty' flag is an atomic boolean").
type Index struct {
	mu    sync.RWMutex
	root  *trieNode
	dirty atomic.Bool

	cacheMu sync.Mutex
	cache   []*Metadata
}

// New creates an empty pattern index.
func New() *Index {
	idx := &Index{root: newTrieNode()}
	idx.dirty.Store(true)
	return idx
}

// Insert indexes one contract definition (spec §4.6 "Insert").
func (idx *Index) Insert(uri string, contract *ir.Contract, declRange ir.Range) error {
	name, params := contractSignature(contract)
	if name == "" {
		return errNoName
	}

	paramBytes := make([][]byte, 0, len(params))
	for _, p := range params {
		b, err := Canonicalize(p)
		if err != nil {
			return err
		}
		paramBytes = append(paramBytes, b)
	}

	meta := &Metadata{
		Location:   Location{URI: uri, Range: declRange},
		Name:       name,
		Arity:      len(params),
		ParamBytes: paramBytes,
		ParamNames: paramNames(params),
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	node := idx.root.child("contract", true)
	node = node.child(name, true)
	for _, pb := range paramBytes {
		node = node.child(string(pb), true)
	}
	node.value = meta
	idx.dirty.Store(true)
	return nil
}

// RemoveURI purges every entry whose Location.URI matches uri, supporting
// the per-URI idempotent re-link described in spec §4.5/§4.11: re-indexing
// a document first purges all of its prior contributions.
func (idx *Index) RemoveURI(uri string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	removed := pruneURI(idx.root, uri)
	if removed {
		idx.dirty.Store(true)
	}
}

func pruneURI(n *trieNode, uri string) bool {
	removed := false
	for seg, child := range n.children {
		if pruneURI(child, uri) {
			removed = true
		}
		if child.value != nil && child.value.Location.URI == uri {
			child.value = nil
			removed = true
		}
		if child.value == nil && len(child.children) == 0 {
			delete(n.children, seg)
		}
	}
	return removed
}

// Query looks up contracts matching a call site (spec §4.6 "Query"). It
// tries an exact path match first; failing that, it returns every stored
// contract of that name whose formal count equals len(args). That fallback
// compares arity only: stored formal encodings and variable tags are not
// unified against the arguments.
func (idx *Index) Query(name string, args []ir.Node) ([]*Metadata, error) {
	argBytes := make([][]byte, 0, len(args))
	for _, a := range args {
		b, err := Canonicalize(a)
		if err != nil {
			// Canonicalization failure: caller should fall back to by-name
			// lookup in the workspace index (spec §4.6 edge case).
			return nil, err
		}
		argBytes = append(argBytes, b)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	node := idx.root.child("contract", false)
	if node == nil {
		return nil, nil
	}
	node = node.child(name, false)
	if node == nil {
		return nil, nil
	}

	// Exact match.
	exact := node
	for _, ab := range argBytes {
		exact = exact.child(string(ab), false)
		if exact == nil {
			break
		}
	}
	if exact != nil && exact.value != nil {
		return []*Metadata{exact.value}, nil
	}

	return idx.unify(node, len(argBytes)), nil
}

// unify mirrors the reference implementation's RholangPatternIndex::
// unify_patterns: per spec §9 ("Open questions / possibly-buggy source
// behavior"), the original only checks arity and accepts any same-arity
// stored pattern as a match; true structural unification (accounting for
// the NewVar/backref tags from canon.go) is not implemented there. We
// preserve that placeholder behavior rather than silently fixing it, since
// the spec explicitly says not to guess at the intended fix.
func (idx *Index) unify(contractNameNode *trieNode, arity int) []*Metadata {
	var matches []*Metadata
	var walk func(n *trieNode, depth int)
	walk = func(n *trieNode, depth int) {
		if n.value != nil && depth == arity {
			matches = append(matches, n.value)
		}
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	walk(contractNameNode, 0)
	return matches
}

// AllContracts returns every contract leaf in the index, lazily rebuilding
// the cache when dirty (spec §4.6 "Additional fast path").
func (idx *Index) AllContracts() []*Metadata {
	if !idx.dirty.Load() {
		idx.cacheMu.Lock()
		cached := idx.cache
		idx.cacheMu.Unlock()
		if cached != nil {
			return cached
		}
	}

	idx.mu.RLock()
	node := idx.root.child("contract", false)
	var all []*Metadata
	if node != nil {
		var walk func(n *trieNode)
		walk = func(n *trieNode) {
			if n.value != nil {
				all = append(all, n.value)
			}
			for _, c := range n.children {
				walk(c)
			}
		}
		walk(node)
	}
	idx.mu.RUnlock()

	idx.cacheMu.Lock()
	idx.cache = all
	idx.cacheMu.Unlock()
	idx.dirty.Store(false)
	return all
}

func contractSignature(c *ir.Contract) (string, []ir.Node) {
	name := contractNodeName(c.Name)
	params := c.Formals
	return name, params
}

func contractNodeName(n ir.Node) string {
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

func paramNames(params []ir.Node) []string {
	names := make([]string, len(params))
	any := false
	for i, p := range params {
		switch node := p.(type) {
		case *ir.Var:
			names[i] = node.Name
			any = true
		case *ir.Quote:
			if v, ok := node.Quotable.(*ir.Var); ok {
				names[i] = v.Name
				any = true
			}
		}
	}
	if !any {
		return nil
	}
	return names
}

type errString string

func (e errString) Error() string { return string(e) }

const errNoName = errString("patternindex: unsupported contract name format")
