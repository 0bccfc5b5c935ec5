// Package validate implements the semantic-errors pass spec §7 describes as
// distinct from syntax errors: unbound variables, duplicate binders,
// top-level free variables, and pattern misuse. It runs as an optional
// post-link pass over the IR + symbol table (C4/C5), consuming exactly the
// side-tables internal/symtab's single traversal already collected rather
// than re-walking the tree a second time.
package validate

import (
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
	"github.com/F1R3FLY-io/rholang-lsp/internal/symtab"
)

const sourceName = "rholang-lsp"

// Validate turns one document's unresolved potential globals, rejected
// redeclarations, and unbound `=name` patterns into diagnostics. global is
// consulted so a name that resolves to another workspace document isn't
// flagged; nil is fine for a document with no workspace membership (e.g. a
// MeTTa virtual validated on its own), in which case every potential global
// is reported.
func Validate(doc *symtab.Document, global symtab.GlobalLookup) []protocol.Diagnostic {
	if doc == nil {
		return nil
	}
	var out []protocol.Diagnostic
	out = append(out, duplicateDiagnostics(doc.Duplicates)...)
	out = append(out, unboundDiagnostics(doc.PotentialGlobals, global)...)
	out = append(out, patternMisuseDiagnostics(doc.VarRefUses, global)...)
	return out
}

// duplicateDiagnostics reports each rejected redeclaration as a pair of
// correlated diagnostics, one per span, per spec §7 "errors carrying
// multiple source spans... emit one diagnostic per span with correlated
// messages."
func duplicateDiagnostics(dups []symtab.Duplicate) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for _, d := range dups {
		out = append(out,
			diagnostic(d.First, protocol.DiagnosticSeverityError,
				fmt.Sprintf("%q is already declared in this scope; see the redeclaration at line %d", d.Name, d.Second.Start.Line+1)),
			diagnostic(d.Second, protocol.DiagnosticSeverityError,
				fmt.Sprintf("%q redeclares a name already bound at line %d in this scope", d.Name, d.First.Start.Line+1)),
		)
	}
	return out
}

// unboundDiagnostics reports every potential global that global still
// can't resolve after linking. A use whose enclosing scope is the document
// root itself (no `new`/contract/for/let/match wraps it) is reported as a
// top-level free variable instead of a plain unbound variable, since
// Rholang processes at the top of a file must be closed.
func unboundDiagnostics(uses []symtab.PotentialGlobal, global symtab.GlobalLookup) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for _, pg := range uses {
		if resolved(pg.Name, global) {
			continue
		}
		if pg.Scope != nil && pg.Scope.Parent == nil {
			out = append(out, diagnostic(pg.Use, protocol.DiagnosticSeverityError,
				fmt.Sprintf("top-level free variable: %q has no enclosing binder and is not defined anywhere else in the workspace", pg.Name)))
			continue
		}
		out = append(out, diagnostic(pg.Use, protocol.DiagnosticSeverityError,
			fmt.Sprintf("unbound variable: %q is never bound in an enclosing scope or the workspace", pg.Name)))
	}
	return out
}

// patternMisuseDiagnostics reports an `=name` pattern reference (spec
// glossary "VarRef") whose name never resolves anywhere: unlike a plain
// variable use, `=name` syntax specifically requires the name to already be
// bound, so an unresolved one is a pattern misuse rather than a generic
// unbound variable.
func patternMisuseDiagnostics(uses []symtab.PotentialGlobal, global symtab.GlobalLookup) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for _, pg := range uses {
		if resolved(pg.Name, global) {
			continue
		}
		out = append(out, diagnostic(pg.Use, protocol.DiagnosticSeverityError,
			fmt.Sprintf("pattern misuse: `=%s` does not refer to any bound name", pg.Name)))
	}
	return out
}

func resolved(name string, global symtab.GlobalLookup) bool {
	if global == nil {
		return false
	}
	_, _, ok := global.LookupGlobal(name)
	return ok
}

func diagnostic(r ir.Range, severity protocol.DiagnosticSeverity, message string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Column)},
			End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Column)},
		},
		Severity: severity,
		Source:   sourceName,
		Message:  message,
	}
}
