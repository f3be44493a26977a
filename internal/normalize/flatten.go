package normalize

import (
	"sort"
	"strings"

	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

// itemSeparator splits an item reference into classification and designation.
const itemSeparator = "§"

// Build returns the normalized asset for n at depth, with its flattened
// subtree attached.
func Build(n *source.Node, depth int) *roster.Asset {
	a := Asset(n)
	a.AssetDepth = depth
	a.Assets = Flatten(n, depth)
	return a
}

// Flatten emits n and its descendants as a depth-tagged list. The first
// entry is a copy of n itself at depth. Children follow division by
// division, bucket by bucket; every bucket other than a division's
// catch-all is introduced by a header one level deeper than n. Identical
// siblings within a bucket are merged first.
func Flatten(n *source.Node, depth int) roster.Entries {
	return flatten(NewMember(n), depth)
}

func flatten(m Member, depth int) roster.Entries {
	self := m.Asset()
	self.AssetDepth = depth
	out := roster.Entries{self}

	traits, included := arrange(m.Node)
	for _, buckets := range [][]*bucket{traits, included} {
		for _, b := range buckets {
			members := Quantize(Members(b.nodes))
			if len(members) == 0 {
				continue
			}
			if !isCatchAll(b.label) {
				out = append(out, &roster.AssetGroup{Group: b.label, AssetDepth: depth + 1})
			}
			for _, child := range members {
				out = append(out, flatten(child, depth+1)...)
			}
		}
	}
	return out
}

type bucket struct {
	label string
	nodes []*source.Node
}

// buckets keeps labelled buckets in the order they were first seeded.
type buckets struct {
	list    []*bucket
	byLabel map[string]*bucket
}

func newBuckets() *buckets {
	return &buckets{byLabel: make(map[string]*bucket)}
}

func (b *buckets) seed(label string) *bucket {
	if existing, ok := b.byLabel[label]; ok {
		return existing
	}
	nb := &bucket{label: label}
	b.byLabel[label] = nb
	b.list = append(b.list, nb)
	return nb
}

func (b *buckets) add(label string, n *source.Node) {
	bk := b.seed(label)
	bk.nodes = append(bk.nodes, n)
}

func isCatchAll(label string) bool {
	return label == source.DivisionTraits || label == source.DivisionIncluded
}

// arrange sorts n's children into display buckets according to its
// grouping directives.
func arrange(n *source.Node) (traits, included []*bucket) {
	return arrangeTraits(n), arrangeIncluded(n)
}

func arrangeTraits(n *source.Node) []*bucket {
	out := newBuckets()
	for _, child := range n.Traits {
		if child == nil {
			continue
		}
		for _, label := range childLabels(n.Aspects.GroupTraits, child, source.DivisionTraits) {
			out.add(label, child)
		}
	}
	return out.list
}

func arrangeIncluded(n *source.Node) []*bucket {
	out := newBuckets()
	group := n.Aspects.GroupIncludes

	if group {
		for _, class := range n.Allowed.Classifications {
			if !contains(n.Disallowed.Classifications, class) {
				out.seed(class)
			}
		}
		for _, item := range n.Allowed.Items {
			class := itemClass(item)
			if !contains(n.Disallowed.Classifications, class) && !contains(n.Disallowed.Items, item) {
				out.seed(class)
			}
		}
	} else {
		// Ungrouped children are listed ahead of any keyed headers.
		out.seed(source.DivisionIncluded)
	}

	children := make([]*source.Node, 0, len(n.Included))
	for _, child := range n.Included {
		if child != nil {
			children = append(children, child)
		}
	}
	if n.Aspects.OrderIncludesAZ {
		sort.SliceStable(children, func(i, j int) bool {
			return designationKey(children[i]) < designationKey(children[j])
		})
	}

	if group {
		for _, child := range children {
			if child.Classification != "" {
				out.seed(child.Classification)
			}
		}
	} else {
		seedGroupByValues(out, children)
	}

	for _, child := range children {
		if disallowed(n, child) {
			continue
		}
		for _, label := range childLabels(group, child, source.DivisionIncluded) {
			out.add(label, child)
		}
	}
	return out.list
}

// seedGroupByValues orders group-by buckets by sorted value within each
// classification, classifications in order of appearance.
func seedGroupByValues(out *buckets, children []*source.Node) {
	var classes []string
	values := make(map[string][]string)
	for _, child := range children {
		if child.Aspects.GroupBy == "" {
			continue
		}
		if _, ok := values[child.Classification]; !ok {
			classes = append(classes, child.Classification)
			values[child.Classification] = nil
		}
		vals, _ := child.Keywords.Get(child.Aspects.GroupBy)
		for _, v := range vals {
			if !contains(values[child.Classification], v) {
				values[child.Classification] = append(values[child.Classification], v)
			}
		}
	}
	for _, class := range classes {
		vals := values[class]
		sort.Strings(vals)
		for _, v := range vals {
			out.seed(v)
		}
	}
}

// childLabels returns every bucket a child belongs in. A child grouped by
// a keyword category appears under each of its distinct values.
func childLabels(byClass bool, child *source.Node, catchAll string) []string {
	if byClass {
		if child.Classification == "" {
			return []string{catchAll}
		}
		return []string{child.Classification}
	}
	if child.Aspects.GroupBy == "" {
		return []string{catchAll}
	}
	vals, _ := child.Keywords.Get(child.Aspects.GroupBy)
	var labels []string
	for _, v := range vals {
		if v != "" && !contains(labels, v) {
			labels = append(labels, v)
		}
	}
	if len(labels) == 0 {
		return []string{catchAll}
	}
	return labels
}

func disallowed(parent, child *source.Node) bool {
	class := child.Classification
	if class == "" {
		class = itemClass(child.Item)
	}
	if class != "" && contains(parent.Disallowed.Classifications, class) {
		return true
	}
	return child.Item != "" && contains(parent.Disallowed.Items, child.Item)
}

func itemClass(item string) string {
	class, _, _ := strings.Cut(item, itemSeparator)
	return class
}

func designationKey(n *source.Node) string {
	if _, designation, ok := strings.Cut(n.Item, itemSeparator); ok && designation != "" {
		return strings.ToLower(designation)
	}
	return strings.ToLower(n.Designation)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
