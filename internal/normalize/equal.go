package normalize

import (
	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

// Identical reports whether two nodes would render identically apart from
// their top-level name, description and quantity. aa and ba are the
// nodes' normalized assets. Children are compared in full.
func Identical(a, b *source.Node, aa, ba *roster.Asset) bool {
	if a == b {
		return true
	}
	if !sameShape(a, b) || !equalAsset(aa, ba, false) {
		return false
	}
	return sameChildren(a.Traits, b.Traits) && sameChildren(a.Included, b.Included)
}

func sameShape(a, b *source.Node) bool {
	return a.Classification == b.Classification &&
		a.Aspects == b.Aspects &&
		len(a.Traits) == len(b.Traits) &&
		len(a.Included) == len(b.Included)
}

func sameChildren(a, b []*source.Node) bool {
	for i := range a {
		if a[i] == nil || b[i] == nil {
			if a[i] != b[i] {
				return false
			}
			continue
		}
		if !sameShape(a[i], b[i]) || !equalAsset(Asset(a[i]), Asset(b[i]), true) {
			return false
		}
		if !sameChildren(a[i].Traits, b[i].Traits) || !sameChildren(a[i].Included, b[i].Included) {
			return false
		}
	}
	return true
}

func equalAsset(a, b *roster.Asset, withIdentity bool) bool {
	if withIdentity && (a.Name != b.Name || a.Description != b.Description || a.Quantity != b.Quantity) {
		return false
	}
	if a.Type != b.Type || a.Text != b.Text {
		return false
	}
	if !equalStrings(a.Errors, b.Errors) {
		return false
	}
	if !equalMaps(a.Stats, b.Stats, func(x, y string) bool { return x == y }) {
		return false
	}
	if !equalMaps(a.Keywords, b.Keywords, equalStrings) {
		return false
	}
	return equalMaps(a.Meta, b.Meta, equalValues)
}

func equalMaps[V any](a, b *roster.OrderedMap[V], eq func(x, y V) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	ak, bk := a.Keys(), b.Keys()
	for i := range ak {
		if ak[i] != bk[i] {
			return false
		}
		av, _ := a.Get(ak[i])
		bv, _ := b.Get(bk[i])
		if !eq(av, bv) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// equalValues compares decoded meta values: scalars, lists, objects and
// ordered objects, recursively.
func equalValues(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !equalValues(v, w) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	case []string:
		bv, ok := b.([]string)
		return ok && equalStrings(av, bv)
	case *roster.OrderedMap[any]:
		bv, ok := b.(*roster.OrderedMap[any])
		return ok && equalMaps(av, bv, equalValues)
	case string, bool, float64, int, int64:
		return a == b
	}
	return false
}
