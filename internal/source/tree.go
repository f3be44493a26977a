package source

import (
	"fmt"
	"strings"
)

// DefaultMaxDepth bounds how deeply nodes may nest.
const DefaultMaxDepth = 64

// DepthError reports a tree nested deeper than allowed.
type DepthError struct {
	Limit int
	Path  []string
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("asset tree exceeds maximum depth %d at %s", e.Limit, strings.Join(e.Path, " > "))
}

// Tree is a source tree with parent links recorded in a side table, so
// nodes never point back up and the structure stays acyclic.
type Tree struct {
	root     *Node
	parents  map[*Node]*Node
	maxDepth int
}

// NewTree records the parent of every node under root. It fails when the
// tree nests deeper than maxDepth or when a node is reachable twice.
// A maxDepth of zero or less selects DefaultMaxDepth.
func NewTree(root *Node, maxDepth int) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("source tree has no root")
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	t := &Tree{root: root, parents: make(map[*Node]*Node), maxDepth: maxDepth}
	if err := t.link(root, 0, []string{label(root)}); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) link(n *Node, depth int, path []string) error {
	if depth > t.maxDepth {
		return &DepthError{Limit: t.maxDepth, Path: path}
	}
	for _, child := range n.Children() {
		if child == nil {
			continue
		}
		if _, seen := t.parents[child]; seen || child == t.root {
			return fmt.Errorf("asset %q appears more than once in the tree", label(child))
		}
		t.parents[child] = n
		if err := t.link(child, depth+1, append(path[:len(path):len(path)], label(child))); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// MaxDepth returns the nesting limit the tree was built with.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// Parent returns the parent of n.
func (t *Tree) Parent(n *Node) (*Node, bool) {
	p, ok := t.parents[n]
	return p, ok
}

// HasParent reports whether n sits below the root.
func (t *Tree) HasParent(n *Node) bool {
	_, ok := t.parents[n]
	return ok
}

// Walk visits every node below the root in pre-order, traits before
// included children.
func (t *Tree) Walk(fn func(n *Node)) {
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, child := range n.Children() {
			if child == nil {
				continue
			}
			fn(child)
			walk(child)
		}
	}
	walk(t.root)
}

func label(n *Node) string {
	switch {
	case n.Name != "":
		return n.Name
	case n.Designation != "":
		return n.Designation
	case n.Item != "":
		return n.Item
	}
	return "?"
}
