// Package region implements the embedded-language region detector (spec
// §4.7, component C7): three collaborating detectors whose outputs are
// merged by "earlier detector wins" on byte-range overlap.
package region

import "github.com/F1R3FLY-io/rholang-lsp/internal/ir"

// Source identifies which detector produced a Region, used only for
// diagnostics/debugging; merge order is fixed regardless of Source.
type Source int

const (
	SourceDirective Source = iota
	SourceSemantic
	SourceChannelFlow
)

func (s Source) String() string {
	switch s {
	case SourceSemantic:
		return "semantic"
	case SourceChannelFlow:
		return "channel-flow"
	default:
		return "directive"
	}
}

// ConcatSlice is one piece of a region whose content spans multiple string
// literals joined with `++` (spec §4.7 "Concatenation").
type ConcatSlice struct {
	Range   ir.Range // span in the parent document
	Content string
	IsHole  bool // true for interpolated (non-literal) spans
}

// Region is one detected embedded-language span inside a Rholang string
// literal (or concatenation of literals).
type Region struct {
	Language string
	Source   Source

	// Range is the overall span in the parent document, from the first
	// literal's opening quote to the last literal's closing quote (or, for
	// a single literal, just that literal's range).
	Range ir.Range

	// Content is the fully-assembled extracted text (spec §3.7).
	Content string

	// Chain is set when Content was assembled from more than one literal;
	// nil for a single, unconcatenated literal.
	Chain []ConcatSlice
}

// WellKnownChannels maps a well-known channel name to the language its
// payload compiles to (spec §4.7 D2, supplemented by
// original_source/src/lsp/backend/metta.rs). Detector D2 and the
// channel-flow analyzer (D3) both consult this table.
var WellKnownChannels = map[string]string{
	"rho:metta:compile": "metta",
	"rho:metta:eval":    "metta",
}

// Detect runs all three detectors over a document's IR and merges their
// output, preferring earlier detectors on overlap (spec §4.7, §9: "the
// source uses a simple 'first one wins' that is order-dependent (directive,
// then semantic, then flow)").
func Detect(root ir.Node, source []byte, comments []Comment) []Region {
	var regions []Region
	regions = append(regions, detectDirective(root, source, comments)...)
	regions = append(regions, detectSemantic(root, source)...)
	regions = append(regions, detectChannelFlow(root, source)...)
	return merge(regions)
}

// merge keeps, for any set of overlapping regions, only the one produced by
// the earliest detector in the input slice (detectors are appended to
// `regions` in priority order by Detect, so "earliest" == "appears first").
func merge(regions []Region) []Region {
	var kept []Region
	for _, r := range regions {
		overlaps := false
		for _, k := range kept {
			if k.Range.Overlaps(r.Range) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, r)
		}
	}
	return kept
}

// Comment is a single line or block comment extracted from the CST before
// lowering (IR lowering discards comment text; directive detection needs
// it, so the indexing pipeline collects comments separately — see
// internal/ir's lowerer, which still visits but discards comment nodes, and
// workspace/document.go's collectComments helper).
type Comment struct {
	Range ir.Range
	Text  string
}
