package region

import "github.com/F1R3FLY-io/rholang-lsp/internal/ir"

// detectSemantic implements D2 (spec §4.7): a string literal sent as an
// argument to a well-known channel becomes a region in that channel's
// language.
func detectSemantic(root ir.Node, source []byte) []Region {
	var regions []Region
	ir.Walk(root, func(n ir.Node) bool {
		send, ok := n.(*ir.Send)
		if !ok {
			return true
		}
		lang, ok := wellKnownLanguage(send.Channel)
		if !ok {
			return true
		}
		for _, arg := range send.Args {
			content, chain, ok := flattenConcat(arg)
			if !ok {
				continue
			}
			regions = append(regions, Region{
				Language: lang,
				Source:   SourceSemantic,
				Range:    arg.NodeBase().Range,
				Content:  content,
				Chain:    chain,
			})
		}
		return true
	})
	return regions
}

// wellKnownLanguage reports whether channel names a well-known compiler
// channel (a quoted string literal or URI literal matching
// WellKnownChannels).
func wellKnownLanguage(channel ir.Node) (string, bool) {
	name, ok := channelLiteralName(channel)
	if !ok {
		return "", false
	}
	lang, ok := WellKnownChannels[name]
	return lang, ok
}

func channelLiteralName(n ir.Node) (string, bool) {
	switch node := n.(type) {
	case *ir.Quote:
		return channelLiteralName(node.Quotable)
	case *ir.StringLit:
		return node.Value, true
	case *ir.UriLit:
		return node.Value, true
	default:
		return "", false
	}
}
