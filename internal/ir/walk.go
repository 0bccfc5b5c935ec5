package ir

// This file collects small, composable tree utilities in the spirit of the
// reference implementation's node_operations.rs: rather than letting every
// feature (hover, highlight, goto-definition) re-implement "find the
// innermost node at a position", they all call NodeAt.

// NodeAt returns the innermost node in the subtree rooted at n whose range
// contains pos, along with the chain of ancestors from root to that node
// (root first). If no child contains pos but n itself does, n is returned
// alone.
func NodeAt(n Node, pos Position) []Node {
	if n == nil || !n.NodeBase().Range.Contains(pos) {
		return nil
	}
	path := []Node{n}
	for {
		children := path[len(path)-1].Children()
		found := false
		for _, c := range children {
			if c == nil {
				continue
			}
			if c.NodeBase().Range.Contains(pos) {
				path = append(path, c)
				found = true
				break
			}
		}
		if !found {
			return path
		}
	}
}

// Innermost is a convenience wrapper around NodeAt returning just the
// deepest node, or nil if pos is out of range.
func Innermost(root Node, pos Position) Node {
	path := NodeAt(root, pos)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

// Walk performs a pre-order traversal of n and its descendants, calling
// visit on each node. If visit returns false, Walk does not descend into
// that node's children.
func Walk(n Node, visit func(Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}

// Collect returns every node in the tree rooted at n for which pred(node)
// reports true.
func Collect(n Node, pred func(Node) bool) []Node {
	var out []Node
	Walk(n, func(m Node) bool {
		if pred(m) {
			out = append(out, m)
		}
		return true
	})
	return out
}
