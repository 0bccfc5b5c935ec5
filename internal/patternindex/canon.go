// Package patternindex implements the structural pattern-matching trie of
// spec §3.6/§4.6: contract definitions and call-site arguments are
// canonicalized to deterministic byte strings and stored/looked-up along a
// path keyed by ["contract", name, param0, param1, ...].
package patternindex

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/F1R3FLY-io/rholang-lsp/internal/ir"
)

// tag bytes distinguish canonical-encoding shapes; values are arbitrary but
// must stay stable across runs (I-PX1 determinism).
const (
	tagNil byte = iota
	tagBool
	tagInt
	tagString
	tagUri
	tagName // quoted expression, i.e. Quote{inner}
	tagNewVar
	tagVarBackref
	tagList
	tagSet
	tagTuple
	tagMap
)

// canonEncoder canonicalizes one pattern tree, assigning De Bruijn-like
// indices to variables: the first occurrence of a variable name gets
// tagNewVar, later occurrences of the *same name within the same pattern*
// get tagVarBackref with the index of their binder (spec §3.6).
type canonEncoder struct {
	seen map[string]int
	next int
}

func newCanonEncoder() *canonEncoder {
	return &canonEncoder{seen: map[string]int{}}
}

// Canonicalize encodes a single pattern node to its canonical byte form.
// Returns an error if the node uses a construct canonicalization doesn't
// support (spec §4.6 "If canonicalization fails for any argument... the
// query falls back to the by-name lookup").
func Canonicalize(n ir.Node) ([]byte, error) {
	e := newCanonEncoder()
	return e.encode(n)
}

func (e *canonEncoder) encode(n ir.Node) ([]byte, error) {
	switch node := n.(type) {
	case *ir.NilLit:
		return []byte{tagNil}, nil
	case *ir.BoolLit:
		b := byte(0)
		if node.Value {
			b = 1
		}
		return []byte{tagBool, b}, nil
	case *ir.LongLit:
		buf := make([]byte, 9)
		buf[0] = tagInt
		binary.BigEndian.PutUint64(buf[1:], uint64(node.Value))
		return buf, nil
	case *ir.StringLit:
		return withLenPrefix(tagString, []byte(node.Value)), nil
	case *ir.UriLit:
		return withLenPrefix(tagUri, []byte(node.Value)), nil
	case *ir.Var:
		return e.encodeVar(node.Name), nil
	case *ir.Wildcard:
		return e.encodeVar("_"), nil
	case *ir.Quote:
		inner, err := e.encode(node.Quotable)
		if err != nil {
			return nil, err
		}
		return withLenPrefix(tagName, inner), nil
	case *ir.Tuple:
		return e.encodeSeq(tagTuple, node.Elements)
	case *ir.List:
		if node.Remainder != nil {
			return nil, fmt.Errorf("patternindex: list patterns with remainder are not supported")
		}
		return e.encodeSeq(tagList, node.Elements)
	case *ir.Set:
		if node.Remainder != nil {
			return nil, fmt.Errorf("patternindex: set patterns with remainder are not supported")
		}
		return e.encodeSeq(tagSet, node.Elements)
	case *ir.Map:
		if node.Remainder != nil {
			return nil, fmt.Errorf("patternindex: map patterns with remainder are not supported")
		}
		return e.encodeMap(node)
	case *ir.Parenthesized:
		return e.encode(node.Expr)
	case *ir.Block:
		return e.encode(node.Proc)
	case *ir.Eval:
		return e.encode(node.Name)
	default:
		return nil, fmt.Errorf("patternindex: canonicalization not implemented for %s", n.Kind())
	}
}

func (e *canonEncoder) encodeVar(name string) []byte {
	if idx, ok := e.seen[name]; ok {
		buf := make([]byte, 5)
		buf[0] = tagVarBackref
		binary.BigEndian.PutUint32(buf[1:], uint32(idx))
		return buf
	}
	idx := e.next
	e.next++
	e.seen[name] = idx
	buf := make([]byte, 5)
	buf[0] = tagNewVar
	binary.BigEndian.PutUint32(buf[1:], uint32(idx))
	return buf
}

func (e *canonEncoder) encodeSeq(tag byte, elems []ir.Node) ([]byte, error) {
	out := []byte{tag}
	out = appendUvarint(out, uint64(len(elems)))
	for _, el := range elems {
		enc, err := e.encode(el)
		if err != nil {
			return nil, err
		}
		out = appendUvarint(out, uint64(len(enc)))
		out = append(out, enc...)
	}
	return out, nil
}

// encodeMap encodes pairs in canonical (sorted-by-key) order so that the
// same logical map pattern always produces the same bytes regardless of
// the order keys were written in source (I-PX1).
func (e *canonEncoder) encodeMap(m *ir.Map) ([]byte, error) {
	type kv struct {
		key string
		val ir.Node
	}
	pairs := make([]kv, 0, len(m.Pairs))
	for _, p := range m.Pairs {
		key, err := mapKeyString(p.Key)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, kv{key: key, val: p.Value})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	out := []byte{tagMap}
	out = appendUvarint(out, uint64(len(pairs)))
	for _, p := range pairs {
		out = appendUvarint(out, uint64(len(p.key)))
		out = append(out, p.key...)
		enc, err := e.encode(p.val)
		if err != nil {
			return nil, err
		}
		out = appendUvarint(out, uint64(len(enc)))
		out = append(out, enc...)
	}
	return out, nil
}

func mapKeyString(n ir.Node) (string, error) {
	switch node := n.(type) {
	case *ir.StringLit:
		return node.Value, nil
	case *ir.Quote:
		if s, ok := node.Quotable.(*ir.StringLit); ok {
			return s.Value, nil
		}
	}
	return "", fmt.Errorf("patternindex: map keys must be string literals")
}

func withLenPrefix(tag byte, payload []byte) []byte {
	out := []byte{tag}
	out = appendUvarint(out, uint64(len(payload)))
	return append(out, payload...)
}

func appendUvarint(buf []byte, v uint64) []byte {
	tmp := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(tmp, v)
	return append(buf, tmp[:n]...)
}
