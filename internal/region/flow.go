package region

import "github.com/F1R3FLY-io/rholang-lsp/internal/ir"

// channelBinding tracks a variable bound to a language compiler channel,
// e.g. `new m(`rho:metta:compile`) in ...` binds m -> "metta" (spec §4.7 D3).
type channelBinding struct {
	name       string
	language   string
	scopeDepth int
}

// variableSource tracks `for (x <- channel)` bindings: x receives whatever
// is sent on channel.
type variableSource struct {
	name          string
	sourceChannel string
	scopeDepth    int
}

// pendingSend is a literal string previously sent on an intermediate
// channel, available for one level of forwarding (spec §4.7 D3: "for each
// pending send reachable by one level of forwarding through a variable
// source").
type pendingSend struct {
	channel    string
	content    string
	rng        ir.Range
	scopeDepth int
}

type flowAnalyzer struct {
	bindings   []channelBinding
	sources    []variableSource
	pending    []pendingSend
	scopeDepth int
	regions    []Region
}

// detectChannelFlow implements D3 (spec §4.7).
func detectChannelFlow(root ir.Node, source []byte) []Region {
	a := &flowAnalyzer{}
	a.visit(root)
	return a.regions
}

func (a *flowAnalyzer) enterScope()  { a.scopeDepth++ }
func (a *flowAnalyzer) exitScope() {
	depth := a.scopeDepth
	a.bindings = purgeBindings(a.bindings, depth)
	a.sources = purgeSources(a.sources, depth)
	a.pending = purgePending(a.pending, depth)
	a.scopeDepth--
}

func purgeBindings(bs []channelBinding, depth int) []channelBinding {
	out := bs[:0:0]
	for _, b := range bs {
		if b.scopeDepth < depth {
			out = append(out, b)
		}
	}
	return out
}

func purgeSources(ss []variableSource, depth int) []variableSource {
	out := ss[:0:0]
	for _, s := range ss {
		if s.scopeDepth < depth {
			out = append(out, s)
		}
	}
	return out
}

func purgePending(ps []pendingSend, depth int) []pendingSend {
	out := ps[:0:0]
	for _, p := range ps {
		if p.scopeDepth < depth {
			out = append(out, p)
		}
	}
	return out
}

func (a *flowAnalyzer) bindingFor(name string) (channelBinding, bool) {
	for i := len(a.bindings) - 1; i >= 0; i-- {
		if a.bindings[i].name == name {
			return a.bindings[i], true
		}
	}
	return channelBinding{}, false
}

func (a *flowAnalyzer) sourceFor(name string) (variableSource, bool) {
	for i := len(a.sources) - 1; i >= 0; i-- {
		if a.sources[i].name == name {
			return a.sources[i], true
		}
	}
	return variableSource{}, false
}

func (a *flowAnalyzer) visit(n ir.Node) {
	if n == nil {
		return
	}
	switch node := n.(type) {
	case *ir.New:
		a.enterScope()
		for _, decl := range node.Decls {
			if decl.Uri == nil {
				continue
			}
			if lang, ok := WellKnownChannels[*decl.Uri]; ok {
				if name := varName(decl.Name); name != "" {
					a.bindings = append(a.bindings, channelBinding{name: name, language: lang, scopeDepth: a.scopeDepth})
				}
			}
		}
		a.visit(node.Body)
		a.exitScope()

	case *ir.Block:
		a.enterScope()
		a.visit(node.Proc)
		a.exitScope()

	case *ir.Contract:
		a.enterScope()
		a.visit(node.Body)
		a.exitScope()

	case *ir.Input:
		a.visitInput(node)
		a.visit(node.Body)

	case *ir.Send:
		a.visitSend(node)
		// Spec §4.7: "Don't recurse into children" for a send once
		// handled, mirroring the reference analyzer exactly — a send's
		// argument literals are either consumed as a region or left alone,
		// never descended into for nested detection.

	case *ir.Par:
		if node.Processes != nil {
			for _, c := range node.Processes {
				a.visit(c)
			}
			return
		}
		a.visit(node.Left)
		a.visit(node.Right)

	default:
		for _, c := range n.Children() {
			a.visit(c)
		}
	}
}

func (a *flowAnalyzer) visitInput(n *ir.Input) {
	for _, group := range n.Receipts {
		for _, bindNode := range group {
			bind, ok := bindNode.(*ir.Bind)
			if !ok || len(bind.Names) != 1 {
				continue
			}
			varNm := varName(bind.Names[0])
			if varNm == "" {
				continue
			}
			if lang, ok := wellKnownLanguage(bind.Source); ok {
				a.bindings = append(a.bindings, channelBinding{name: varNm, language: lang, scopeDepth: a.scopeDepth})
				continue
			}
			if srcName := varName(sourceInner(bind.Source)); srcName != "" {
				a.sources = append(a.sources, variableSource{name: varNm, sourceChannel: srcName, scopeDepth: a.scopeDepth})
			}
		}
	}
}

func sourceInner(n ir.Node) ir.Node {
	if src, ok := n.(*ir.SendReceiveSource); ok {
		return src.Name
	}
	return n
}

func (a *flowAnalyzer) visitSend(send *ir.Send) {
	chanName := varName(send.Channel)
	if chanName == "" {
		return
	}

	if binding, ok := a.bindingFor(chanName); ok {
		for _, arg := range send.Args {
			if content, chain, ok := flattenConcat(arg); ok {
				// Direct literal (or concatenation) argument.
				a.regions = append(a.regions, Region{
					Language: binding.language,
					Source:   SourceChannelFlow,
					Range:    arg.NodeBase().Range,
					Content:  content,
					Chain:    chain,
				})
				continue
			}
			// Not a literal: check whether it's a variable forwarding a
			// pending send through one level of indirection (spec §4.7
			// D3, scenario 4: `code!("(= g 7)") | for (@c <- code) {
			// m!(c) }`).
			if name := varName(arg); name != "" {
				for _, p := range a.forwardedPendingFor(name) {
					a.regions = append(a.regions, Region{
						Language: binding.language,
						Source:   SourceChannelFlow,
						Range:    p.rng,
						Content:  p.content,
					})
				}
			}
		}
		return
	}

	// Not a known compiler channel directly: record this as a pending send
	// so a later forward (`for (@c <- chan) { m!(c) }`) can pick it up.
	for _, arg := range send.Args {
		content, _, ok := flattenConcat(arg)
		if !ok {
			continue
		}
		a.pending = append(a.pending, pendingSend{
			channel:    chanName,
			content:    content,
			rng:        arg.NodeBase().Range,
			scopeDepth: a.scopeDepth,
		})
	}
}

// forwardedPendingFor resolves the spec §8 scenario 4 shape
// (`code!("(= g 7)") | for (@c <- code) { m!(c) }`): when a variable
// argument to a bound compiler channel is itself a variableSource over some
// other channel, every pending send on that other channel becomes a
// region. Forwarding only looks one hop deep, matching spec §4.7 D3
// ("reachable by one level of forwarding through a variable source").
func (a *flowAnalyzer) forwardedPendingFor(argVarName string) []pendingSend {
	src, ok := a.sourceFor(argVarName)
	if !ok {
		return nil
	}
	var out []pendingSend
	for _, p := range a.pending {
		if p.channel == src.sourceChannel {
			out = append(out, p)
		}
	}
	return out
}

func varName(n ir.Node) string {
	switch node := n.(type) {
	case *ir.Var:
		return node.Name
	case *ir.Quote:
		return varName(node.Quotable)
	case *ir.Eval:
		return varName(node.Name)
	case *ir.SendReceiveSource:
		return varName(node.Name)
	default:
		return ""
	}
}
