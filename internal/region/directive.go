package region

import (
	"sort"
	"strings"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

// directivePrefix is how a directive comment is spelled, e.g. "// @metta".
const directivePrefix = "@"

// detectDirective implements D1 (spec §4.7): scan comments for a directive
// tagging the *next* string literal. The tagged literal becomes a region
// with the directive's language.
func detectDirective(root ir.Node, source []byte, comments []Comment) []Region {
	if len(comments) == 0 {
		return nil
	}
	literals := collectStringLiterals(root)
	if len(literals) == 0 {
		return nil
	}
	sort.Slice(literals, func(i, j int) bool {
		return literals[i].NodeBase().Range.Start.Byte < literals[j].NodeBase().Range.Start.Byte
	})

	var regions []Region
	for _, c := range comments {
		lang, ok := parseDirective(c.Text)
		if !ok {
			continue
		}
		lit := nextLiteralAfter(literals, c.Range.End.Byte)
		if lit == nil {
			continue
		}
		sl := lit.(*ir.StringLit)
		regions = append(regions, Region{
			Language: lang,
			Source:   SourceDirective,
			Range:    sl.Range,
			Content:  sl.Value,
		})
	}
	return regions
}

// parseDirective extracts the language tag from a comment body such as
// "// @metta" or "/* @metta */", returning ("", false) if the comment isn't
// a directive.
func parseDirective(text string) (string, bool) {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "//")
	t = strings.TrimPrefix(t, "/*")
	t = strings.TrimSuffix(t, "*/")
	t = strings.TrimSpace(t)
	if !strings.HasPrefix(t, directivePrefix) {
		return "", false
	}
	lang := strings.TrimSpace(strings.TrimPrefix(t, directivePrefix))
	if lang == "" {
		return "", false
	}
	// Only take the first token: "@metta extra notes" -> "metta".
	if idx := strings.IndexAny(lang, " \t"); idx >= 0 {
		lang = lang[:idx]
	}
	return lang, true
}

func collectStringLiterals(root ir.Node) []ir.Node {
	return ir.Collect(root, func(n ir.Node) bool {
		_, ok := n.(*ir.StringLit)
		return ok
	})
}

// nextLiteralAfter returns the first literal (in a sorted-by-start slice)
// whose start is at or after `afterByte`. The gap is not bounded: any
// non-literal text between the comment and the literal, such as a `!(`
// call syntax, is skipped — the directive only needs to find the *next*
// literal token.
func nextLiteralAfter(sorted []ir.Node, afterByte int) ir.Node {
	idx := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].NodeBase().Range.Start.Byte >= afterByte
	})
	if idx >= len(sorted) {
		return nil
	}
	return sorted[idx]
}
