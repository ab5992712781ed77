// Copyright © 2024 The ELPS authors

package lint

import "github.com/luthersystems/nlint/syntax"

// Walk calls fn for every node inside the procedures of tree, depth-first.
// parent is nil for the procedure nodes themselves.
func Walk(tree *syntax.Tree, fn func(node, parent *syntax.Node, depth int)) {
	for _, proc := range tree.Procedures() {
		walkNode(proc, nil, 0, fn)
	}
}

func walkNode(node, parent *syntax.Node, depth int, fn func(*syntax.Node, *syntax.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range node.Children {
		walkNode(child, node, depth+1, fn)
	}
}

// WalkCalls calls fn for every command and reporter call in the procedures
// of tree.
func WalkCalls(tree *syntax.Tree, fn func(call *syntax.Node)) {
	Walk(tree, func(node, _ *syntax.Node, _ int) {
		if node.Kind.IsCall() {
			fn(node)
		}
	})
}

// WalkIdentifiers calls fn for every identifier used as a value. Inputs,
// list literal items and the variable a let statement declares are
// skipped.
func WalkIdentifiers(tree *syntax.Tree, fn func(id, parent *syntax.Node)) {
	Walk(tree, func(node, parent *syntax.Node, _ int) {
		if node.Kind != syntax.Identifier || parent == nil {
			return
		}
		if node.Role == syntax.RoleParam || node.Role == syntax.RoleItem {
			return
		}
		if isDeclared(node, parent) {
			return
		}
		fn(node, parent)
	})
}

// isDeclared reports whether id is the variable introduced by let.
func isDeclared(id, parent *syntax.Node) bool {
	return parent.Kind.IsCall() && parent.Name == "let" && parent.Child(syntax.RoleArg) == id
}

// ArgCount returns the number of right inputs written for call, counting
// extra inputs the call did not ask for.
func ArgCount(call *syntax.Node) int {
	return len(call.Named(syntax.RoleArg)) + len(call.Named(syntax.RoleExtra))
}
