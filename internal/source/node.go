// Package source holds the format-independent tree that input adapters
// produce and the roster pipeline consumes.
package source

import (
	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
)

// Division names. They double as the labels of the catch-all buckets.
const (
	DivisionTraits   = "traits"
	DivisionIncluded = "included"
)

// Node is one asset in a source tree.
type Node struct {
	Name           string
	Designation    string
	Item           string
	Classification string
	Aspects        Aspects
	Allowed        Allowance
	Disallowed     Allowance
	Stats          []Stat
	Keywords       *roster.OrderedMap[[]string]
	Quantity       string
	Text           string
	Description    string
	Errors         []string
	Meta           *roster.OrderedMap[any]
	Traits         []*Node
	Included       []*Node
}

// Aspects are the display and grouping directives carried by a node.
type Aspects struct {
	Type            string
	Label           string
	GroupBy         string
	GroupIncludes   bool
	GroupTraits     bool
	OrderIncludesAZ bool
}

// Allowance lists the classifications and items a node accepts or rejects
// as children.
type Allowance struct {
	Classifications []string
	Items           []string
}

// Stat is a raw stat as it appears in the source document.
type Stat struct {
	Name       string
	Visibility string
	HasValue   bool
	Group      string
	GroupOrder float64
	StatOrder  float64
	StatType   string
	Format     string
	Numeric    *float64
	Rank       string
	Term       string
}

// Division is a named list of child nodes.
type Division struct {
	Name  string
	Nodes []*Node
}

// Divisions returns the node's children, traits first.
func (n *Node) Divisions() []Division {
	return []Division{
		{Name: DivisionTraits, Nodes: n.Traits},
		{Name: DivisionIncluded, Nodes: n.Included},
	}
}

// Children returns traits followed by included children.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.Traits)+len(n.Included))
	out = append(out, n.Traits...)
	return append(out, n.Included...)
}

// IsGamePiece reports whether the node declares itself a physical model.
func (n *Node) IsGamePiece() bool {
	return n.Aspects.Type == roster.TypeGamePiece
}

// PartOfGroup reports whether the node is flagged as a model within a
// larger unit.
func (n *Node) PartOfGroup() bool {
	return roster.Truthy(n.Meta, roster.MetaPartOfGroup)
}

// AddMeta stores a meta value.
func (n *Node) AddMeta(key string, value any) {
	if n.Meta == nil {
		n.Meta = roster.NewOrderedMap[any]()
	}
	n.Meta.Set(key, value)
}

// AddKeywords appends values to a keyword category.
func (n *Node) AddKeywords(category string, values ...string) {
	if n.Keywords == nil {
		n.Keywords = roster.NewOrderedMap[[]string]()
	}
	existing, _ := n.Keywords.Get(category)
	n.Keywords.Set(category, append(existing, values...))
}
