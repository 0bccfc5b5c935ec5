package completion

import (
	"fmt"
	"sort"

	"go.lsp.dev/protocol"
)

// Engine is a single open document's incremental completion state (spec
// §3.8, §4.9, component C9): one shared dictionary, a tree of contexts
// mirroring Rholang lexical scopes, and per-context draft buffers with
// checkpointed undo (invariant I-CS1: at most one active draft per
// context).
type Engine struct {
	dictionary *Dictionary
	contexts   map[int]*context
	current    *context

	lastPosition protocol.Position
	lastQuery    string
}

// NewEngine creates a completion engine with an empty global context (id 0)
// pre-populated with Keywords (spec §4.9 "Dictionary").
func NewEngine() *Engine {
	global := newContext(GlobalContextID, nil)
	e := &Engine{
		dictionary: NewDictionary(),
		contexts:   map[int]*context{GlobalContextID: global},
		current:    global,
	}
	for _, kw := range Keywords {
		e.dictionary.Insert(kw)
	}
	return e
}

// EnsureContext creates (if absent) the context for scopeID with the given
// parent scope ID, mirroring the symbol table's scope tree (spec §4.9
// "Contexts"). parentID must already have a context (the global context,
// id 0, always does). A no-op if scopeID already has a context.
func (e *Engine) EnsureContext(scopeID, parentID int) error {
	if _, ok := e.contexts[scopeID]; ok {
		return nil
	}
	parent, ok := e.contexts[parentID]
	if !ok {
		return fmt.Errorf("completion: parent scope %d has no context (creating %d)", parentID, scopeID)
	}
	e.contexts[scopeID] = newContext(scopeID, parent)
	return nil
}

// SwitchContext moves the active context to scopeID.
func (e *Engine) SwitchContext(scopeID int) error {
	c, ok := e.contexts[scopeID]
	if !ok {
		return fmt.Errorf("completion: scope %d not found", scopeID)
	}
	e.current = c
	return nil
}

// CurrentContext returns the active context's scope ID.
func (e *Engine) CurrentContext() int { return e.current.id }

// InsertChar appends a single rune to the active draft.
func (e *Engine) InsertChar(r rune, pos protocol.Position) {
	e.current.insertChar(r)
	e.lastQuery += string(r)
	e.lastPosition = pos
}

// InsertStr appends a string to the active draft (paste, multi-char edit).
func (e *Engine) InsertStr(s string, pos protocol.Position) {
	e.current.insertStr(s)
	e.lastQuery += s
	e.lastPosition = pos
}

// DeleteChar removes the last rune from the active draft (backspace).
func (e *Engine) DeleteChar(pos protocol.Position) {
	e.current.deleteChar()
	if n := len([]rune(e.lastQuery)); n > 0 {
		e.lastQuery = string([]rune(e.lastQuery)[:n-1])
	}
	e.lastPosition = pos
}

// ClearDraft discards the active draft without finalizing it (cut, replace,
// major edits).
func (e *Engine) ClearDraft() {
	e.current.clearDraft()
	e.lastQuery = ""
}

// Draft returns the active context's in-progress identifier.
func (e *Engine) Draft() string { return e.current.draftString() }

// Checkpoint snapshots the active draft for later Undo (spec §4.9
// "Checkpoints"), typically called when a completion popup appears.
func (e *Engine) Checkpoint() { e.current.checkpoint() }

// Undo restores the most recent checkpoint of the active draft.
func (e *Engine) Undo() bool { return e.current.undo() }

// CheckpointCount reports the active context's undo depth.
func (e *Engine) CheckpointCount() int { return len(e.current.checkpts) }

// Finalize moves the active draft into the shared dictionary and clears it
// (spec I-CS1). Returns ("", false) if there was no draft to finalize.
func (e *Engine) Finalize() (string, bool) {
	term := e.current.draftString()
	if term == "" {
		return "", false
	}
	e.dictionary.Insert(term)
	e.current.clearDraft()
	return term, true
}

// FinalizeDirect inserts term into the dictionary without going through a
// draft, used to bulk-load existing symbols when a document is first
// indexed (spec §4.9, grounded on original_source's finalize_direct, used
// "to populate the dictionary from existing symbols during initialization").
func (e *Engine) FinalizeDirect(term string) {
	e.dictionary.Insert(term)
}

// Discard clears the active draft without finalizing (distinct from
// ClearDraft only in naming, kept for parity with the reference engine's
// discard/clear_draft split).
func (e *Engine) Discard() { e.current.clearDraft() }

// RemoveTerm deletes term from the shared dictionary (spec §4.9 "Deletion
// and compaction": renamed or deleted symbols are removed from the
// dictionary).
func (e *Engine) RemoveTerm(term string) bool {
	return e.dictionary.Remove(term)
}

// NeedsCompaction reports whether a background compaction pass would
// improve dictionary query performance. This trie implementation never
// needs it (see Dictionary.needsCompaction); kept for lifecycle parity.
func (e *Engine) NeedsCompaction() bool { return e.dictionary.needsCompaction() }

// HasCursorMoved reports whether pos differs from the position last
// recorded by an insert/delete in a way that should trigger finalization
// (spec §4.9 "Finalization policy": any line change, or more than one
// column of movement on the same line).
func (e *Engine) HasCursorMoved(pos protocol.Position) bool {
	if pos.Line != e.lastPosition.Line {
		return true
	}
	delta := int(pos.Character) - int(e.lastPosition.Character)
	if delta < 0 {
		delta = -delta
	}
	return delta > 1
}

// UpdatePosition records pos as the last-seen cursor position without
// touching the draft, used after a caller decides not to finalize.
func (e *Engine) UpdatePosition(pos protocol.Position) { e.lastPosition = pos }

// Query returns the union of fuzzy-matched dictionary entries (within
// maxDistance) and every non-empty draft in the active context's ancestor
// chain (spec §4.9 "Query"), sorted by distance then term for determinism.
func (e *Engine) Query(prefix string, maxDistance int) []Completion {
	out := e.dictionary.FuzzyQuery(prefix, maxDistance)
	for _, c := range e.current.ancestors() {
		draft := c.draftString()
		if draft == "" {
			continue
		}
		dist, _ := boundedLevenshtein(prefix, draft, len(prefix)+len(draft))
		out = append(out, Completion{Term: draft, Distance: dist, IsDraft: true})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Term < out[j].Term
	})
	return out
}
