package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// maxWalkDepth bounds tree traversal against pathological generated inputs.
// Syntax trees have no cycles, so this is purely a depth guard.
const maxWalkDepth = 512

// nodeText extracts the literal source slice spanned by a node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}

// findChild finds the first immediate child of the given grammar-node kind.
func findChild(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// findChildren lists the immediate children of the given grammar-node kind.
func findChildren(node *sitter.Node, kind string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			results = append(results, child)
		}
	}
	return results
}

// collect recursively gathers every descendant of the given kind in
// pre-order, including the starting node itself when it matches. This is
// deliberately not scope-limited: "find all import statements anywhere"
// style queries rely on the full-depth sweep.
func collect(node *sitter.Node, kind string) []*sitter.Node {
	var results []*sitter.Node
	walk(node, func(n *sitter.Node) bool {
		if n.Kind() == kind {
			results = append(results, n)
		}
		return true
	})
	return results
}

// walk visits every node in pre-order. The visitor returns false to prune
// the subtree below the current node.
func walk(node *sitter.Node, visitor func(*sitter.Node) bool) {
	walkDepth(node, visitor, 0)
}

func walkDepth(node *sitter.Node, visitor func(*sitter.Node) bool, depth int) {
	if node == nil || depth > maxWalkDepth {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkDepth(node.Child(uint(i)), visitor, depth+1)
	}
}
