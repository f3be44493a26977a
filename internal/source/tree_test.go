package source

import (
	"errors"
	"fmt"
	"testing"
)

func chain(n int) *Node {
	root := &Node{Name: "root"}
	cur := root
	for i := 0; i < n; i++ {
		child := &Node{Name: fmt.Sprintf("n%d", i)}
		cur.Included = []*Node{child}
		cur = child
	}
	return root
}

func TestNewTreeParents(t *testing.T) {
	trait := &Node{Name: "Ability"}
	model := &Node{Name: "Model", Aspects: Aspects{Type: "game piece"}, Traits: []*Node{trait}}
	unit := &Node{Name: "Unit", Included: []*Node{model}}
	root := &Node{Name: "Roster", Included: []*Node{unit}}

	tree, err := NewTree(root, 0)
	if err != nil {
		t.Fatalf("NewTree() error = %v", err)
	}

	if tree.HasParent(root) {
		t.Error("root should have no parent")
	}
	if p, ok := tree.Parent(trait); !ok || p != model {
		t.Errorf("Parent(trait) = %v, want model", p)
	}
	if p, _ := tree.Parent(unit); p != root {
		t.Error("Parent(unit) should be root")
	}
	if tree.MaxDepth() != DefaultMaxDepth {
		t.Errorf("MaxDepth() = %d, want %d", tree.MaxDepth(), DefaultMaxDepth)
	}

	var visited []string
	tree.Walk(func(n *Node) { visited = append(visited, n.Name) })
	want := []string{"Unit", "Model", "Ability"}
	if fmt.Sprint(visited) != fmt.Sprint(want) {
		t.Errorf("Walk() visited %v, want %v", visited, want)
	}
}

func TestNewTreeDepthLimit(t *testing.T) {
	if _, err := NewTree(chain(10), 10); err != nil {
		t.Errorf("NewTree(depth 10, limit 10) error = %v", err)
	}

	_, err := NewTree(chain(11), 10)
	var depthErr *DepthError
	if !errors.As(err, &depthErr) {
		t.Fatalf("NewTree(depth 11, limit 10) error = %v, want DepthError", err)
	}
	if depthErr.Limit != 10 {
		t.Errorf("Limit = %d, want 10", depthErr.Limit)
	}
	if len(depthErr.Path) != 12 {
		t.Errorf("Path length = %d, want 12", len(depthErr.Path))
	}
}

func TestNewTreeRejectsSharedNode(t *testing.T) {
	shared := &Node{Name: "Shared"}
	root := &Node{Name: "root", Traits: []*Node{shared}, Included: []*Node{shared}}
	if _, err := NewTree(root, 0); err == nil {
		t.Error("expected error for a node reachable twice")
	}

	loop := &Node{Name: "loop"}
	loop.Included = []*Node{loop}
	if _, err := NewTree(loop, 0); err == nil {
		t.Error("expected error for a self-referencing node")
	}
}

func TestNilRoot(t *testing.T) {
	if _, err := NewTree(nil, 0); err == nil {
		t.Error("expected error for nil root")
	}
}
