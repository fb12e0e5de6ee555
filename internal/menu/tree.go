package menu

import (
	"fmt"
	"strings"
)

// Tree is a fully loaded menu hierarchy. It is immutable once published:
// sources build a fresh tree on every load and the cache swaps the shared
// reference atomically, so readers never observe a half-built tree.
type Tree struct {
	root *Node
}

// New wraps root in a Tree.
func New(root *Node) *Tree {
	if root == nil {
		root = NewNode()
	}
	return &Tree{root: root}
}

// Empty returns a tree with a childless root. Served when no source load has
// ever succeeded; degenerate but valid.
func Empty() *Tree {
	return &Tree{root: NewNode()}
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Resolve follows path label by label through children. ok is false when any
// segment is missing, which is how stale navigation state is detected after
// a reload removed a node.
func (t *Tree) Resolve(path []string) (*Node, bool) {
	current := t.root
	for _, label := range path {
		next, ok := current.Child(label)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Validate walks the tree and rejects labels that collide with reserved
// control labels. A colliding real entry would be unreachable, so the load
// fails instead of guessing runtime behavior.
func (t *Tree) Validate(reserved ...string) error {
	set := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		if r != "" {
			set[r] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return validateNode(t.root, nil, set)
}

func validateNode(n *Node, path []string, reserved map[string]struct{}) error {
	for _, label := range n.Labels() {
		if _, clash := reserved[label]; clash {
			at := "root"
			if len(path) > 0 {
				at = strings.Join(path, " / ")
			}
			return fmt.Errorf("menu label %q at %s collides with a reserved control label", label, at)
		}
		child, _ := n.Child(label)
		if err := validateNode(child, append(path, label), reserved); err != nil {
			return err
		}
	}
	return nil
}

// Prune removes, in post-order, every submenu that ends up with neither
// content nor surviving children, cascading into now-empty ancestors.
// Returns the tree for chaining.
func (t *Tree) Prune() *Tree {
	pruneNode(t.root)
	return t
}

// pruneNode reports whether n is empty after pruning its subtree.
func pruneNode(n *Node) bool {
	for _, label := range n.Labels() {
		child, _ := n.Child(label)
		if pruneNode(child) {
			n.removeChild(label)
		}
	}
	return !n.HasChildren() && !n.HasContent()
}

// Walk visits every node depth-first in label order, passing the path from
// the root. Used by the check-menu command to print an outline.
func (t *Tree) Walk(fn func(path []string, n *Node)) {
	walkNode(t.root, nil, fn)
}

func walkNode(n *Node, path []string, fn func(path []string, n *Node)) {
	fn(path, n)
	for _, label := range n.Labels() {
		child, _ := n.Child(label)
		walkNode(child, append(path, label), fn)
	}
}
