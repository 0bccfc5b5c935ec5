package virtual

import (
	"sync"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/region"
)

// Registry tracks virtual documents keyed by their own URI and by parent
// URI (spec §4.8, component C8).
type Registry struct {
	mu            sync.RWMutex
	documents     map[protocol.URI]*Document
	byParent      map[protocol.URI][]protocol.URI
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		documents: make(map[protocol.URI]*Document),
		byParent:  make(map[protocol.URI][]protocol.URI),
	}
}

// Register replaces all virtual documents for parentURI with fresh ones
// built from regions, in order (spec §4.8: "clears any prior virtuals for
// the parent before inserting new ones, so the virtual set is a pure
// function of the latest parent text").
func (r *Registry) Register(parentURI protocol.URI, regions []region.Region) []*Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked(parentURI)

	uris := make([]protocol.URI, 0, len(regions))
	docs := make([]*Document, 0, len(regions))
	for i, reg := range regions {
		doc := New(parentURI, reg, i)
		r.documents[doc.URI] = doc
		uris = append(uris, doc.URI)
		docs = append(docs, doc)
	}
	if len(uris) > 0 {
		r.byParent[parentURI] = uris
	}
	return docs
}

// Unregister drops all virtual documents for parentURI.
func (r *Registry) Unregister(parentURI protocol.URI) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked(parentURI)
}

func (r *Registry) unregisterLocked(parentURI protocol.URI) {
	for _, uri := range r.byParent[parentURI] {
		delete(r.documents, uri)
	}
	delete(r.byParent, parentURI)
}

// Get looks up a virtual document by its own URI.
func (r *Registry) Get(uri protocol.URI) (*Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.documents[uri]
	return d, ok
}

// ByParent returns every virtual document registered for parentURI, in
// detection order.
func (r *Registry) ByParent(parentURI protocol.URI) []*Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uris := r.byParent[parentURI]
	out := make([]*Document, 0, len(uris))
	for _, uri := range uris {
		if d, ok := r.documents[uri]; ok {
			out = append(out, d)
		}
	}
	return out
}

// IsVirtual reports whether uri names a registered virtual document.
func (r *Registry) IsVirtual(uri protocol.URI) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.documents[uri]
	return ok
}

// ParentOf returns the parent URI of a virtual document.
func (r *Registry) ParentOf(virtualURI protocol.URI) (protocol.URI, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.documents[virtualURI]
	if !ok {
		return "", false
	}
	return d.ParentURI, true
}

// FindVirtualAt implements find_virtual_at(parent_uri, parent_position)
// (spec §4.8): locates the virtual document, if any, whose span covers
// position in the parent, and the corresponding virtual-coordinate
// position.
func (r *Registry) FindVirtualAt(parentURI protocol.URI, position protocol.Position) (*Document, protocol.Position, bool) {
	r.mu.RLock()
	uris := append([]protocol.URI(nil), r.byParent[parentURI]...)
	docs := make([]*Document, 0, len(uris))
	for _, uri := range uris {
		if d, ok := r.documents[uri]; ok {
			docs = append(docs, d)
		}
	}
	r.mu.RUnlock()

	for _, d := range docs {
		if !spans(d, position) {
			continue
		}
		if vpos, ok := d.MapFromParent(position); ok {
			return d, vpos, true
		}
	}
	return nil, protocol.Position{}, false
}

func spans(d *Document, pos protocol.Position) bool {
	if pos.Line < d.ParentStart.Line || pos.Line > d.ParentEnd.Line {
		return false
	}
	if pos.Line == d.ParentStart.Line && pos.Character < d.ParentStart.Character {
		return false
	}
	if pos.Line == d.ParentEnd.Line && pos.Character > d.ParentEnd.Character {
		return false
	}
	return true
}

// AllDiagnostics aggregates every virtual document's diagnostics for
// parentURI, remapped to parent coordinates.
func (r *Registry) AllDiagnostics(parentURI protocol.URI) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for _, d := range r.ByParent(parentURI) {
		out = append(out, d.DiagnosticsForParent()...)
	}
	return out
}

// InvalidateParent invalidates the caches of every virtual document
// registered under parentURI, without removing them (used when the parent
// changes but region detection has not yet rerun).
func (r *Registry) InvalidateParent(parentURI protocol.URI) {
	for _, d := range r.ByParent(parentURI) {
		d.InvalidateCache()
	}
}
