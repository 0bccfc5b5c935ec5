// Package completion implements the per-document incremental completion
// state (spec §3.8, §4.9, component C9): a mutable dictionary, a tree of
// hierarchical contexts mirroring Rholang scopes, per-context draft buffers
// with checkpoint-based undo, and fuzzy + draft query.
//
// The reference implementation (original_source's incremental.rs) builds
// this on liblevenshtein's DynamicContextualCompletionEngine, a Rust crate
// with no Go analog anywhere in the example pack. There being no suitable
// third-party trie/DAWG library among the examples for a mutable,
// context-scoped, checkpointed completion dictionary, this package is a
// from-scratch Go implementation of the same data model using the standard
// library only (see DESIGN.md).
package completion

// Keywords lists the reserved words pre-populated into every document's
// global context dictionary on initialization (spec §4.9 "Dictionary"),
// grounded on the Rholang constructs internal/ir's lowerer recognizes.
var Keywords = []string{
	"new", "in", "contract", "for", "match", "select", "if", "else",
	"let", "bundle", "bundle+", "bundle-", "bundle0", "bundle0read",
	"Nil", "true", "false", "or", "and", "not", "matches",
}

// dictNode is one node of a simple rune-keyed trie.
type dictNode struct {
	children map[rune]*dictNode
	terminal bool
}

func newDictNode() *dictNode {
	return &dictNode{children: make(map[rune]*dictNode)}
}

// Dictionary is a mutable set of finalized completion terms (spec §4.9).
// It supports insertion, removal, exact containment, and fuzzy query by
// Levenshtein distance. Unlike liblevenshtein's DAWG, this trie does not
// share suffixes across terms; Rholang/MeTTa identifier dictionaries are
// small enough per document that the simpler structure is not a bottleneck,
// and it needs no compaction step (see needsCompaction and
// Engine.NeedsCompaction, which always report false and are kept for API
// parity with the reference engine's lifecycle).
type Dictionary struct {
	root  *dictNode
	terms map[string]bool
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{root: newDictNode(), terms: make(map[string]bool)}
}

// Insert adds term to the dictionary. A no-op if already present.
func (d *Dictionary) Insert(term string) {
	if term == "" || d.terms[term] {
		return
	}
	d.terms[term] = true
	n := d.root
	for _, r := range term {
		child, ok := n.children[r]
		if !ok {
			child = newDictNode()
			n.children[r] = child
		}
		n = child
	}
	n.terminal = true
}

// Remove deletes term from the dictionary, reporting whether it was
// present. The trie's internal nodes are left in place (spec §4.9
// "Deletion and compaction": "the dictionary remains functionally correct
// but may be non-minimal").
func (d *Dictionary) Remove(term string) bool {
	if !d.terms[term] {
		return false
	}
	delete(d.terms, term)
	n := d.root
	for _, r := range term {
		child, ok := n.children[r]
		if !ok {
			return true
		}
		n = child
	}
	n.terminal = false
	return true
}

// Contains reports whether term is in the dictionary exactly.
func (d *Dictionary) Contains(term string) bool {
	return d.terms[term]
}

// Len returns the number of distinct terms.
func (d *Dictionary) Len() int { return len(d.terms) }

// Terms returns every term currently in the dictionary, in no particular
// order.
func (d *Dictionary) Terms() []string {
	out := make([]string, 0, len(d.terms))
	for t := range d.terms {
		out = append(out, t)
	}
	return out
}

// FuzzyQuery treats query as a prefix: it returns every term that has some
// prefix within Levenshtein distance maxDistance of query, each paired with
// the smallest such distance (spec §4.9 "Query").
func (d *Dictionary) FuzzyQuery(query string, maxDistance int) []Completion {
	var out []Completion
	for t := range d.terms {
		rt := []rune(t)
		best, found := 0, false
		for k := 0; k <= len(rt); k++ {
			if dist, ok := boundedLevenshtein(query, string(rt[:k]), maxDistance); ok && (!found || dist < best) {
				best, found = dist, true
			}
		}
		if found {
			out = append(out, Completion{Term: t, Distance: best})
		}
	}
	return out
}

// needsCompaction always reports false: this trie never becomes non-minimal
// in a way that affects correctness, only in the sense that Remove leaves
// dead nodes reachable only through `terms`'s absence. Present for
// lifecycle parity with the reference engine (original_source's
// needs_compaction/compact_dictionary).
func (d *Dictionary) needsCompaction() bool { return false }

// boundedLevenshtein computes the Levenshtein edit distance between a and b,
// returning (distance, true) if it is at most maxDistance, or (_, false)
// once a full row exceeds the bound everywhere (early exit).
func boundedLevenshtein(a, b string, maxDistance int) (int, bool) {
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > maxDistance {
		return 0, false
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > maxDistance {
			return 0, false
		}
		prev, curr = curr, prev
	}
	d := prev[len(rb)]
	if d > maxDistance {
		return 0, false
	}
	return d, true
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Completion is one query result (spec §4.9 "Query").
type Completion struct {
	Term     string
	Distance int
	IsDraft  bool
}
