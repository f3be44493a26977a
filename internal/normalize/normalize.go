// Package normalize turns source nodes into roster assets and flattens
// their subtrees into the depth-tagged lists the tooltip renderer walks.
package normalize

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

const (
	ungrouped       = "ungrouped"
	hiddenStat      = "hidden"
	droppedKeywords = "Tags"
	maxQuantity     = math.MaxInt32
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Asset builds the normalized asset for n, without children.
func Asset(n *source.Node) *roster.Asset {
	typ := roster.TypeConceptual
	if n.IsGamePiece() {
		typ = roster.TypeGamePiece
	}
	a := roster.NewAsset(DisplayName(n), typ)
	a.Quantity = Quantity(n.Quantity)
	a.Keywords = Keywords(n)
	a.Stats = Stats(n)
	a.Text = n.Text
	a.Description = n.Description
	a.Errors = append([]string{}, n.Errors...)
	a.Meta = n.Meta.Clone()
	return a
}

// DisplayName returns "name (label)" when the node has a custom name that
// differs from its label, and the label otherwise. The label falls back to
// the designation.
func DisplayName(n *source.Node) string {
	label := n.Aspects.Label
	if label == "" {
		label = n.Designation
	}
	if n.Name != "" && n.Name != label {
		if label == "" {
			return n.Name
		}
		return n.Name + " (" + label + ")"
	}
	return label
}

// Quantity parses a raw quantity, returning 1 when it is absent, not a
// non-negative number, or too large to count.
func Quantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || math.IsNaN(f) || f > maxQuantity {
		return 1
	}
	return int(math.Round(f))
}

// Keywords copies the node's keyword categories, dropping the internal
// Tags category and any empty category.
func Keywords(n *source.Node) *roster.OrderedMap[[]string] {
	out := roster.NewOrderedMap[[]string]()
	n.Keywords.Each(func(category string, values []string) {
		if category == droppedKeywords || len(values) == 0 {
			return
		}
		out.Set(category, append([]string{}, values...))
	})
	return out
}

// Stats returns the node's displayable stats as name to value, ordered by
// group and then by stat order. Stats in no group come last.
func Stats(n *source.Node) *roster.OrderedMap[string] {
	allowed := statAllowlist(n)

	type statGroup struct {
		name  string
		order float64
		stats []source.Stat
	}
	var groups []*statGroup
	byName := make(map[string]*statGroup)

	for _, s := range n.Stats {
		if s.Visibility == hiddenStat {
			continue
		}
		value := StatValue(s)
		if !s.HasValue && value == "" {
			continue
		}
		if allowed != nil && !allowed[s.Name] {
			continue
		}
		name := s.Group
		if name == "" {
			name = ungrouped
		}
		g, ok := byName[name]
		if !ok {
			g = &statGroup{name: name}
			byName[name] = g
			groups = append(groups, g)
		}
		g.order = s.GroupOrder
		g.stats = append(g.stats, s)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if (a.name == ungrouped) != (b.name == ungrouped) {
			return b.name == ungrouped
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.name < b.name
	})

	out := roster.NewOrderedMap[string]()
	for _, g := range groups {
		sort.SliceStable(g.stats, func(i, j int) bool {
			a, b := g.stats[i], g.stats[j]
			if a.StatOrder != b.StatOrder {
				return a.StatOrder < b.StatOrder
			}
			return a.Name < b.Name
		})
		for _, s := range g.stats {
			out.Set(s.Name, StatValue(s))
		}
	}
	return out
}

// StatValue returns the display value of a stat: its formatted value with
// markup removed, or the processed value matching its stat type.
func StatValue(s source.Stat) string {
	if v := strings.TrimSpace(tagPattern.ReplaceAllString(s.Format, "")); v != "" {
		return v
	}
	switch s.StatType {
	case "numeric":
		if s.Numeric != nil {
			return strconv.FormatFloat(*s.Numeric, 'f', -1, 64)
		}
	case "rank":
		return s.Rank
	case "term":
		return s.Term
	}
	return ""
}

func statAllowlist(n *source.Node) map[string]bool {
	raw := roster.MetaText(n.Meta, roster.MetaStatDisplay)
	if raw == "" {
		return nil
	}
	allowed := make(map[string]bool)
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			allowed[name] = true
		}
	}
	return allowed
}
