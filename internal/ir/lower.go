package ir

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/F1R3FLY-io/rholang-lsp/internal/parse"
)

// ContentHash returns a stable digest of source text, used to short-circuit
// re-lowering when a document's content hasn't actually changed (spec
// §4.11 step 1) and as the cache key for I-IR1 ("the IR is a pure function
// of the text and the parser version").
func ContentHash(text []byte) string {
	sum := sha256.Sum256(text)
	return hex.EncodeToString(sum[:])
}

// Lower performs a pre-order traversal of a tree-sitter CST, producing the
// corresponding Rholang IR (spec §4.3). It threads a running "previous end"
// position so that each node's RelativePosition can be computed from the
// node visited just before it (a parent is visited before its children)
// without re-walking the tree, and resolves that into an
// absolute Range immediately so callers don't pay for resolution on every
// access.
//
// Determinism (I-IR1) follows directly from this being a pure function of
// tree and source: no ambient state is consulted.
func Lower(tree *parse.Tree) (root Node, err error) {
	if tree.Language() != parse.Rholang {
		return nil, fmt.Errorf("ir: Lower only accepts Rholang trees, got %s", tree.Language())
	}
	l := &lowerer{source: tree.Source(), prevEnd: Position{}}
	cst := tree.RootNode()
	return l.lowerProc(&cst), nil
}

type lowerer struct {
	source  []byte
	prevEnd Position
}

func tsPos(p sitter.Point, byteOff uint) Position {
	return Position{Line: int(p.Row), Column: int(p.Column), Byte: int(byteOff)}
}

func (l *lowerer) base(n *sitter.Node) Base {
	start := tsPos(n.StartPosition(), n.StartByte())
	end := tsPos(n.EndPosition(), n.EndByte())
	b := Base{
		Relative: RelativeTo(start, l.prevEnd),
		Range:    Range{Start: start, End: end},
	}
	l.prevEnd = end
	return b
}

func (l *lowerer) text(n *sitter.Node) string {
	return string(l.source[n.StartByte():n.EndByte()])
}

func (l *lowerer) childByField(n *sitter.Node, field string) *sitter.Node {
	c := n.ChildByFieldName(field)
	if c == nil {
		return nil
	}
	return c
}

func (l *lowerer) namedChildren(n *sitter.Node) []sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.NamedChild(uint(i))
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// lowerProc dispatches on the tree-sitter node kind, mirroring the
// reference implementation's tree_sitter.rs match arms.
func (l *lowerer) lowerProc(n *sitter.Node) Node {
	if n == nil {
		return &NilLit{Base: Base{}}
	}
	if n.IsError() || n.IsMissing() {
		return l.lowerError(n)
	}

	switch n.Kind() {
	case "source_file", "block", "_parenthesized":
		return l.lowerWrapper(n)
	case "par":
		return l.lowerPar(n)
	case "send":
		return l.lowerSend(n)
	case "send_sync":
		return l.lowerSendSync(n)
	case "new":
		return l.lowerNew(n)
	case "contract":
		return l.lowerContract(n)
	case "input":
		return l.lowerInput(n)
	case "let":
		return l.lowerLet(n)
	case "bundle":
		return l.lowerBundle(n)
	case "match":
		return l.lowerMatch(n)
	case "nil":
		return &NilLit{Base: l.base(n)}
	case "bool_literal":
		return &BoolLit{Base: l.base(n), Value: l.text(n) == "true"}
	case "long_literal":
		v, _ := strconv.ParseInt(strings.TrimSpace(l.text(n)), 10, 64)
		return &LongLit{Base: l.base(n), Value: v}
	case "string_literal":
		return &StringLit{Base: l.base(n), Value: unquoteStringLiteral(l.text(n))}
	case "uri_literal":
		return &UriLit{Base: l.base(n), Value: unquoteUriLiteral(l.text(n))}
	case "var":
		return &Var{Base: l.base(n), Name: l.text(n)}
	case "wildcard":
		return &Wildcard{Base: l.base(n)}
	case "var_ref":
		nameNode := l.childByField(n, "var")
		base := l.base(n)
		return &VarRef{Base: base, VarNode: l.lowerProc(nameNode)}
	case "quote":
		q := l.childByField(n, "quotable")
		base := l.base(n)
		return &Quote{Base: base, Quotable: l.lowerProc(q)}
	case "eval":
		nm := l.childByField(n, "name")
		base := l.base(n)
		return &Eval{Base: base, Name: l.lowerProc(nm)}
	case "list":
		return l.lowerList(n)
	case "set":
		return l.lowerSet(n)
	case "map":
		return l.lowerMap(n)
	case "tuple":
		return l.lowerTuple(n)
	case "method":
		return l.lowerMethod(n)
	case "or", "and", "matches", "eq", "neq", "lt", "lte", "gt", "gte",
		"concat", "diff", "add", "sub", "mult", "div", "mod",
		"disjunction", "conjunction":
		return l.lowerBinary(n)
	case "not", "neg", "negation":
		return l.lowerUnary(n)
	case "name_decl", "decl":
		return l.lowerNameDecl(n)
	case "linear_bind":
		return l.lowerBind(n, BindLinear)
	case "repeated_bind":
		return l.lowerBind(n, BindRepeated)
	case "peek_bind":
		return l.lowerBind(n, BindPeek)
	case "simple_source", "receive_send_source", "send_receive_source":
		return l.lowerSource(n)
	case "line_comment", "block_comment":
		return &NilLit{Base: l.base(n)}
	default:
		// Unrecognized but not a syntax error: pass through the single
		// named child if there is exactly one (wrapper rules), otherwise
		// treat it as Nil. This keeps the lowerer total over whatever the
		// grammar emits without a matching arm above.
		children := l.namedChildren(n)
		if len(children) == 1 {
			return l.lowerProc(&children[0])
		}
		return &NilLit{Base: l.base(n)}
	}
}

func (l *lowerer) lowerWrapper(n *sitter.Node) Node {
	children := l.namedChildren(n)
	if len(children) == 0 {
		return &NilLit{Base: l.base(n)}
	}
	if len(children) == 1 {
		return l.lowerProc(&children[0])
	}
	// Multiple top-level statements are implicitly parallel.
	base := l.base(n)
	nodes := make([]Node, len(children))
	for i := range children {
		nodes[i] = l.lowerProc(&children[i])
	}
	return &Par{Base: base, Processes: nodes}
}

func (l *lowerer) lowerPar(n *sitter.Node) Node {
	left := l.childByField(n, "left")
	right := l.childByField(n, "right")
	base := l.base(n)
	return &Par{Base: base, Left: l.lowerProc(left), Right: l.lowerProc(right)}
}

func (l *lowerer) lowerSend(n *sitter.Node) Node {
	channel := l.childByField(n, "channel")
	sendType := l.childByField(n, "send_type")
	inputs := l.childByField(n, "inputs")
	base := l.base(n)
	kind := SendSingle
	if sendType != nil && sendType.Kind() == "send_multiple" {
		kind = SendMultiple
	}
	var args []Node
	if inputs != nil {
		for _, c := range l.namedChildren(inputs) {
			args = append(args, l.lowerProc(&c))
		}
	}
	return &Send{Base: base, Channel: l.lowerProc(channel), SendKind: kind, Args: args}
}

func (l *lowerer) lowerSendSync(n *sitter.Node) Node {
	channel := l.childByField(n, "channel")
	inputs := l.childByField(n, "inputs")
	cont := l.childByField(n, "cont")
	base := l.base(n)
	var args []Node
	if inputs != nil {
		for _, c := range l.namedChildren(inputs) {
			args = append(args, l.lowerProc(&c))
		}
	}
	var contNode Node
	if cont != nil {
		contNode = l.lowerProc(cont)
	}
	return &SendSync{Base: base, Channel: l.lowerProc(channel), Args: args, Cont: contNode}
}

func (l *lowerer) lowerNew(n *sitter.Node) Node {
	decls := l.childByField(n, "decls")
	proc := l.childByField(n, "proc")
	base := l.base(n)
	var declNodes []*NameDecl
	if decls != nil {
		for _, c := range l.namedChildren(decls) {
			c := c
			declNodes = append(declNodes, l.lowerNameDecl(&c).(*NameDecl))
		}
	}
	return &New{Base: base, Decls: declNodes, Body: l.lowerProc(proc)}
}

func (l *lowerer) lowerNameDecl(n *sitter.Node) Node {
	nameNode := l.childByField(n, "name")
	if nameNode == nil {
		nameNode = n
	}
	uriNode := l.childByField(n, "uri")
	base := l.base(n)
	var uri *string
	if uriNode != nil {
		s := unquoteUriLiteral(l.text(uriNode))
		uri = &s
	}
	var name Node
	if nameNode == n {
		name = &Var{Base: base, Name: l.text(n)}
	} else {
		name = l.lowerProc(nameNode)
	}
	return &NameDecl{Base: base, Name: name, Uri: uri}
}

func (l *lowerer) lowerContract(n *sitter.Node) Node {
	name := l.childByField(n, "name")
	formals := l.childByField(n, "formals")
	remainder := l.childByField(n, "formals_remainder")
	body := l.childByField(n, "proc")
	base := l.base(n)
	var formalNodes []Node
	if formals != nil {
		for _, c := range l.namedChildren(formals) {
			formalNodes = append(formalNodes, l.lowerProc(&c))
		}
	}
	var remainderNode Node
	if remainder != nil {
		remainderNode = l.lowerProc(remainder)
	}
	return &Contract{
		Base:             base,
		Name:             l.lowerProc(name),
		Formals:          formalNodes,
		FormalsRemainder: remainderNode,
		Body:             l.lowerProc(body),
	}
}

func (l *lowerer) lowerInput(n *sitter.Node) Node {
	receipts := l.childByField(n, "receipts")
	body := l.childByField(n, "proc")
	base := l.base(n)
	var groups [][]Node
	if receipts != nil {
		for _, receiptGroup := range l.namedChildren(receipts) {
			var binds []Node
			for _, b := range l.namedChildren(&receiptGroup) {
				binds = append(binds, l.lowerProc(&b))
			}
			groups = append(groups, binds)
		}
	}
	return &Input{Base: base, Receipts: groups, Body: l.lowerProc(body)}
}

func (l *lowerer) lowerBind(n *sitter.Node, kind SourceReceiveKind) Node {
	names := l.childByField(n, "names")
	remainder := l.childByField(n, "remainder")
	source := l.childByField(n, "source")
	base := l.base(n)
	bind := NewBind(kind)
	bind.Base = base
	if names != nil {
		for _, c := range l.namedChildren(names) {
			bind.Names = append(bind.Names, l.lowerProc(&c))
		}
	}
	if remainder != nil {
		bind.Remainder = l.lowerProc(remainder)
	}
	bind.Source = l.lowerProc(source)
	return bind
}

func (l *lowerer) lowerSource(n *sitter.Node) Node {
	name := l.childByField(n, "name")
	base := l.base(n)
	if name == nil {
		// simple_source: its single named child is the name.
		if children := l.namedChildren(n); len(children) == 1 {
			return l.lowerProc(&children[0])
		}
		return &Var{Base: base, Name: l.text(n)}
	}
	var sources []Node
	for _, c := range l.namedChildren(n) {
		if c == *name {
			continue
		}
		sources = append(sources, l.lowerProc(&c))
	}
	return &SendReceiveSource{Base: base, Name: l.lowerProc(name), Sources: sources}
}

func (l *lowerer) lowerLet(n *sitter.Node) Node {
	decls := l.childByField(n, "decls")
	body := l.childByField(n, "proc")
	concurrent := strings.Contains(l.text(n), ";")
	base := l.base(n)
	var declNodes []*LetDecl
	if decls != nil {
		for _, c := range l.namedChildren(decls) {
			namesNode := l.childByField(&c, "names")
			valueNode := l.childByField(&c, "value")
			declBase := l.base(&c)
			ld := &LetDecl{Base: declBase}
			if namesNode != nil {
				for _, nm := range l.namedChildren(namesNode) {
					ld.Names = append(ld.Names, l.lowerProc(&nm))
				}
			}
			if valueNode != nil {
				ld.Value = l.lowerProc(valueNode)
			}
			declNodes = append(declNodes, ld)
		}
	}
	return &Let{Base: base, Concurrent: concurrent, Decls: declNodes, Body: l.lowerProc(body)}
}

func (l *lowerer) lowerBundle(n *sitter.Node) Node {
	kindNode := l.childByField(n, "bundle_type")
	proc := l.childByField(n, "proc")
	base := l.base(n)
	bt := BundleEquiv
	if kindNode != nil {
		switch kindNode.Kind() {
		case "bundle_read":
			bt = BundleReadOnly
		case "bundle_write":
			bt = BundleWriteOnly
		case "bundle_read_write":
			bt = BundleReadWrite
		case "bundle_equiv":
			bt = BundleEquiv
		}
	}
	return &Bundle{Base: base, BundleType: bt, Proc: l.lowerProc(proc)}
}

func (l *lowerer) lowerMatch(n *sitter.Node) Node {
	expr := l.childByField(n, "expression")
	cases := l.childByField(n, "cases")
	base := l.base(n)
	m := &Match{Base: base, Scrutinee: l.lowerProc(expr)}
	if cases != nil {
		for _, c := range l.namedChildren(cases) {
			pattern := l.childByField(&c, "pattern")
			caseBody := l.childByField(&c, "proc")
			caseBase := l.base(&c)
			m.Cases = append(m.Cases, &MatchCase{
				Base:    caseBase,
				Pattern: l.lowerProc(pattern),
				Body:    l.lowerProc(caseBody),
			})
		}
	}
	return m
}

func (l *lowerer) lowerList(n *sitter.Node) Node {
	base := l.base(n)
	var elems []Node
	var remainder Node
	for _, c := range l.namedChildren(n) {
		if c.Kind() == "remainder" {
			remainder = l.lowerProc(&c)
			continue
		}
		elems = append(elems, l.lowerProc(&c))
	}
	return &List{Base: base, Elements: elems, Remainder: remainder}
}

func (l *lowerer) lowerSet(n *sitter.Node) Node {
	base := l.base(n)
	var elems []Node
	var remainder Node
	for _, c := range l.namedChildren(n) {
		if c.Kind() == "remainder" {
			remainder = l.lowerProc(&c)
			continue
		}
		elems = append(elems, l.lowerProc(&c))
	}
	return &Set{Base: base, Elements: elems, Remainder: remainder}
}

func (l *lowerer) lowerTuple(n *sitter.Node) Node {
	base := l.base(n)
	var elems []Node
	for _, c := range l.namedChildren(n) {
		elems = append(elems, l.lowerProc(&c))
	}
	return &Tuple{Base: base, Elements: elems}
}

func (l *lowerer) lowerMap(n *sitter.Node) Node {
	base := l.base(n)
	var pairs []*KeyValuePair
	var remainder Node
	for _, c := range l.namedChildren(n) {
		if c.Kind() == "remainder" {
			remainder = l.lowerProc(&c)
			continue
		}
		if c.Kind() != "key_value_pair" {
			continue
		}
		key := l.childByField(&c, "key")
		val := l.childByField(&c, "value")
		pairBase := l.base(&c)
		pairs = append(pairs, &KeyValuePair{Base: pairBase, Key: l.lowerProc(key), Value: l.lowerProc(val)})
	}
	return &Map{Base: base, Pairs: pairs, Remainder: remainder}
}

func (l *lowerer) lowerMethod(n *sitter.Node) Node {
	receiver := l.childByField(n, "receiver")
	name := l.childByField(n, "name")
	args := l.childByField(n, "args")
	base := l.base(n)
	methodName := ""
	if name != nil {
		methodName = l.text(name)
	}
	var argNodes []Node
	if args != nil {
		for _, c := range l.namedChildren(args) {
			argNodes = append(argNodes, l.lowerProc(&c))
		}
	}
	return &Method{Base: base, Receiver: l.lowerProc(receiver), Name: methodName, Args: argNodes}
}

var binaryOps = map[string]BinaryOp{
	"or": OpOr, "and": OpAnd, "eq": OpEq, "neq": OpNeq, "lt": OpLt, "lte": OpLte,
	"gt": OpGt, "gte": OpGte, "add": OpAdd, "sub": OpSub, "mult": OpMult,
	"div": OpDiv, "mod": OpMod, "concat": OpConcat, "diff": OpDiff,
	"matches": OpMatches, "disjunction": OpDisjunction, "conjunction": OpConjunction,
}

func (l *lowerer) lowerBinary(n *sitter.Node) Node {
	left := l.childByField(n, "left")
	right := l.childByField(n, "right")
	base := l.base(n)
	return &BinaryExpr{Base: base, Op: binaryOps[n.Kind()], Left: l.lowerProc(left), Right: l.lowerProc(right)}
}

func (l *lowerer) lowerUnary(n *sitter.Node) Node {
	operand := l.childByField(n, "operand")
	if operand == nil {
		operand = l.childByField(n, "proc")
	}
	base := l.base(n)
	op := OpNeg
	if n.Kind() == "not" || n.Kind() == "negation" {
		op = OpNot
	}
	return &UnaryExpr{Base: base, Op: op, Operand: l.lowerProc(operand)}
}

func (l *lowerer) lowerError(n *sitter.Node) Node {
	base := l.base(n)
	var children []Node
	for _, c := range l.namedChildren(n) {
		children = append(children, l.lowerProc(&c))
	}
	return &Error{Base: base, Malformed: children, Message: fmt.Sprintf("syntax error near %q", l.text(n))}
}

func unquoteStringLiteral(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t").Replace(s)
}

func unquoteUriLiteral(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		s = s[1 : len(s)-1]
	}
	return s
}

// LowerWithContext is a context-aware wrapper preserved for callers (the
// indexing pipeline) that need to respect cancellation for very large
// files; lowering itself is synchronous CPU work (spec §5) and doesn't
// suspend, so this only checks ctx once up front.
func LowerWithContext(ctx context.Context, tree *parse.Tree) (Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Lower(tree)
}
