package normalize

import (
	"strings"

	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

// Member is a source node as it appears in one bucket, with the name,
// description and quantity that quantization may have rewritten.
type Member struct {
	Node        *source.Node
	Name        string
	Description string
	Quantity    int

	names []string
}

// NewMember wraps n with its own display name, description and quantity.
func NewMember(n *source.Node) Member {
	name := DisplayName(n)
	return Member{
		Node:        n,
		Name:        name,
		Description: n.Description,
		Quantity:    Quantity(n.Quantity),
		names:       []string{name},
	}
}

// Members wraps each node.
func Members(nodes []*source.Node) []Member {
	out := make([]Member, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NewMember(n))
	}
	return out
}

// Asset returns the normalized asset for the member, without children.
func (m Member) Asset() *roster.Asset {
	a := Asset(m.Node)
	a.Name = m.Name
	a.Description = m.Description
	a.Quantity = m.Quantity
	return a
}

// Quantize merges members that are identical apart from name, description
// and quantity. A merged member keeps the position of its first
// occurrence, sums the quantities, joins the distinct names with ", " and
// joins the non-empty descriptions, each prefixed by its member's name,
// with a blank line. Quantizing an already quantized list changes nothing.
func Quantize(members []Member) []Member {
	type merged struct {
		first  Member
		all    []Member
		assets []*roster.Asset
	}
	var out []*merged

	for _, m := range members {
		asset := m.Asset()
		var target *merged
		for _, candidate := range out {
			if Identical(candidate.first.Node, m.Node, candidate.assets[0], asset) {
				target = candidate
				break
			}
		}
		if target == nil {
			out = append(out, &merged{first: m, all: []Member{m}, assets: []*roster.Asset{asset}})
			continue
		}
		target.all = append(target.all, m)
		target.assets = append(target.assets, asset)
	}

	result := make([]Member, 0, len(out))
	for _, mg := range out {
		if len(mg.all) == 1 {
			result = append(result, mg.first)
			continue
		}
		result = append(result, combine(mg.all))
	}
	return result
}

func combine(all []Member) Member {
	m := all[0]
	m.Quantity = 0
	m.names = nil
	var descriptions []string
	for _, part := range all {
		m.Quantity += part.Quantity
		for _, name := range part.nameList() {
			if !contains(m.names, name) {
				m.names = append(m.names, name)
			}
		}
		if part.Description != "" {
			if part.Name != "" {
				descriptions = append(descriptions, part.Name+": "+part.Description)
			} else {
				descriptions = append(descriptions, part.Description)
			}
		}
	}
	m.Name = strings.Join(m.names, ", ")
	m.Description = strings.Join(descriptions, "\n\n")
	return m
}

func (m Member) nameList() []string {
	if len(m.names) > 0 {
		return m.names
	}
	return []string{m.Name}
}
