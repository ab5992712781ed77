// Copyright © 2024 The ELPS authors

package syntax

// Walk calls fn for every node below and including n, depth-first in source
// order. parent is nil for n itself. Returning false from fn skips the
// node's children.
func Walk(n *Node, fn func(node, parent *Node) bool) {
	walkNode(n, nil, fn)
}

func walkNode(node, parent *Node, fn func(*Node, *Node) bool) {
	if node == nil {
		return
	}
	if !fn(node, parent) {
		return
	}
	for _, child := range node.Children {
		walkNode(child, node, fn)
	}
}

// WalkCalls calls fn for every command and reporter call below n.
func WalkCalls(n *Node, fn func(call *Node)) {
	Walk(n, func(node, _ *Node) bool {
		if node.Kind.IsCall() {
			fn(node)
		}
		return true
	})
}

// Path returns the chain of nodes from root down to the innermost node whose
// span contains offset. It is empty when offset lies outside root.
func Path(root *Node, offset int) []*Node {
	var path []*Node
	n := root
	for n != nil && n.Span.Contains(offset) {
		path = append(path, n)
		var next *Node
		for _, c := range n.Children {
			if c.Span.Contains(offset) {
				next = c
				break
			}
		}
		n = next
	}
	return path
}

// NodeAt returns the innermost node containing offset, or nil.
func NodeAt(root *Node, offset int) *Node {
	p := Path(root, offset)
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}
