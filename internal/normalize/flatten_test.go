package normalize

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

// outline renders entries as "depth:name" or "depth:[header]".
func outline(entries roster.Entries) []string {
	var out []string
	for _, e := range entries {
		switch v := e.(type) {
		case *roster.AssetGroup:
			out = append(out, fmt.Sprintf("%d:[%s]", v.AssetDepth, v.Group))
		case *roster.Asset:
			out = append(out, fmt.Sprintf("%d:%s", v.AssetDepth, v.Name))
		}
	}
	return out
}

func weapon(name, strength string) *source.Node {
	return &source.Node{
		Name:           name,
		Classification: "Weapons",
		Stats:          []source.Stat{{Name: "S", HasValue: true, Format: strength}},
	}
}

func TestFlattenBuckets(t *testing.T) {
	unit := &source.Node{
		Name:    "Tactical Squad",
		Aspects: source.Aspects{GroupTraits: true},
		Traits: []*source.Node{
			{Name: "Bolter Drill", Classification: "Abilities", Text: "Re-roll hits."},
			weapon("Boltgun", "4"),
			{Name: "Oath of Moment", Classification: "Abilities", Text: "Select one enemy unit."},
		},
		Included: []*source.Node{
			{Name: "Marine", Aspects: source.Aspects{Type: "game piece"}, Traits: []*source.Node{weapon("Bolt pistol", "4")}},
			{Name: "Sergeant", Aspects: source.Aspects{Type: "game piece"}},
		},
	}

	got := outline(Flatten(unit, 0))
	want := []string{
		"0:Tactical Squad",
		"1:[Abilities]",
		"1:Bolter Drill",
		"1:Oath of Moment",
		"1:[Weapons]",
		"1:Boltgun",
		"1:Marine",
		"2:Bolt pistol",
		"1:Sergeant",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenSelfIsCopy(t *testing.T) {
	n := &source.Node{Name: "Captain", Traits: []*source.Node{{Name: "Rites"}}}
	a := Build(n, 2)
	if a.AssetDepth != 2 {
		t.Errorf("AssetDepth = %d, want 2", a.AssetDepth)
	}
	self, ok := a.Assets[0].(*roster.Asset)
	if !ok || self == a || self.Name != "Captain" || self.AssetDepth != 2 {
		t.Errorf("Assets[0] should be a distinct copy of the asset at its depth")
	}
	if len(self.Assets) != 0 {
		t.Error("self copy should carry no children")
	}
}

func TestFlattenGroupIncludes(t *testing.T) {
	detachment := &source.Node{
		Name:       "Detachment",
		Aspects:    source.Aspects{GroupIncludes: true},
		Allowed:    source.Allowance{Classifications: []string{"HQ", "Troops"}, Items: []string{"Elites§Dreadnought"}},
		Disallowed: source.Allowance{Classifications: []string{"Troops"}},
		Included: []*source.Node{
			{Name: "Dreadnought", Classification: "Elites"},
			{Name: "Captain", Classification: "HQ"},
			{Name: "Scouts", Classification: "Troops"},
			{Name: "Land Raider", Classification: "Heavy Support"},
		},
	}

	got := outline(Flatten(detachment, 0))
	want := []string{
		"0:Detachment",
		"1:[HQ]",
		"1:Captain",
		"1:[Elites]",
		"1:Dreadnought",
		"1:[Heavy Support]",
		"1:Land Raider",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenOrderIncludesAZ(t *testing.T) {
	n := &source.Node{
		Name:    "Wargear",
		Aspects: source.Aspects{OrderIncludesAZ: true},
		Included: []*source.Node{
			{Name: "Zeta", Item: "Wargear§Zeta", Text: "z"},
			{Name: "alpha", Item: "Wargear§alpha", Text: "a"},
			{Designation: "Mu", Text: "m"},
		},
	}

	got := outline(Flatten(n, 0))
	want := []string{"0:Wargear", "1:alpha", "1:Mu", "1:Zeta"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenGroupByFansOut(t *testing.T) {
	multi := &source.Node{Name: "Combi-weapon", Aspects: source.Aspects{GroupBy: "Role"}}
	multi.AddKeywords("Role", "Ranged", "Melee", "Ranged")
	single := &source.Node{Name: "Chainsword", Aspects: source.Aspects{GroupBy: "Role"}}
	single.AddKeywords("Role", "Melee")
	plain := &source.Node{Name: "Purity seal"}

	n := &source.Node{Name: "Loadout", Included: []*source.Node{multi, single, plain}}

	got := outline(Flatten(n, 0))
	want := []string{
		"0:Loadout",
		"1:Purity seal",
		"1:[Melee]",
		"1:Combi-weapon",
		"1:Chainsword",
		"1:[Ranged]",
		"1:Combi-weapon",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenUngroupedBeforeKeyedHeaders(t *testing.T) {
	keyed := &source.Node{Name: "Keyed", Aspects: source.Aspects{GroupBy: "Role"}}
	keyed.AddKeywords("Role", "Melee")
	n := &source.Node{Name: "Unit", Included: []*source.Node{keyed, {Name: "Plain"}}}

	want := []string{"0:Unit", "1:Plain", "1:[Melee]", "1:Keyed"}
	if diff := cmp.Diff(want, outline(Flatten(n, 0))); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenDepthsNeverSkipLevels(t *testing.T) {
	leaf := &source.Node{Name: "leaf"}
	mid := &source.Node{Name: "mid", Aspects: source.Aspects{GroupTraits: true}, Traits: []*source.Node{{Name: "t", Classification: "Rules"}}, Included: []*source.Node{leaf}}
	top := &source.Node{Name: "top", Included: []*source.Node{mid, {Name: "other"}}}

	entries := Flatten(top, 3)
	prev := entries[0].Depth()
	for i, e := range entries[1:] {
		if e.Depth() > prev+1 {
			t.Errorf("entry %d jumps from depth %d to %d", i+1, prev, e.Depth())
		}
		if e.Depth() <= 3 {
			t.Errorf("entry %d at depth %d, want deeper than the root", i+1, e.Depth())
		}
		prev = e.Depth()
	}
}

func TestFlattenMergesIdenticalSiblings(t *testing.T) {
	a := weapon("Bolt pistol", "4")
	a.Quantity = "2"
	b := weapon("Bolt pistol", "4")
	c := weapon("Plasma pistol", "7")
	n := &source.Node{Name: "Squad", Traits: []*source.Node{a, b, c}}

	entries := Flatten(n, 0)
	got := outline(entries)
	want := []string{"0:Squad", "1:Bolt pistol", "1:Plasma pistol"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Flatten() mismatch (-want +got):\n%s", diff)
	}
	if q := entries[1].(*roster.Asset).Quantity; q != 3 {
		t.Errorf("merged quantity = %d, want 3", q)
	}
}

func TestQuantizeJoinsNamesAndDescriptions(t *testing.T) {
	a := weapon("Boltgun", "4")
	a.Description = "Standard issue."
	b := weapon("Bolter", "4")
	b.Description = "Old pattern."
	c := weapon("Stalker bolter", "4")

	got := Quantize(Members([]*source.Node{a, b, c}))
	if len(got) != 1 {
		t.Fatalf("Quantize() returned %d members, want 1", len(got))
	}
	m := got[0]
	if m.Name != "Boltgun, Bolter, Stalker bolter" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.Quantity != 3 {
		t.Errorf("Quantity = %d, want 3", m.Quantity)
	}
	wantDesc := "Boltgun: Standard issue.\n\nBolter: Old pattern."
	if m.Description != wantDesc {
		t.Errorf("Description = %q, want %q", m.Description, wantDesc)
	}

	again := Quantize(got)
	if len(again) != 1 || again[0].Name != m.Name || again[0].Quantity != m.Quantity || again[0].Description != m.Description {
		t.Errorf("second Quantize() changed the result: %+v", again)
	}
}

func TestQuantizeKeepsDistinctChildren(t *testing.T) {
	a := weapon("Bolt rifle", "4")
	a.Traits = []*source.Node{{Name: "Assault"}}
	b := weapon("Bolt rifle", "4")
	b.Traits = []*source.Node{{Name: "Heavy"}}

	got := Quantize(Members([]*source.Node{a, b}))
	if len(got) != 2 {
		t.Errorf("Quantize() merged nodes with different children")
	}
}

func TestQuantizeComparesMeta(t *testing.T) {
	a := weapon("Bolt rifle", "4")
	a.AddMeta("tags", map[string]any{"x": []any{"1", true}})
	b := weapon("Bolt rifle", "4")
	b.AddMeta("tags", map[string]any{"x": []any{"1", true}})
	c := weapon("Bolt rifle", "4")
	c.AddMeta("tags", map[string]any{"x": []any{"1", false}})

	got := Quantize(Members([]*source.Node{a, b, c}))
	if len(got) != 2 || got[0].Quantity != 2 {
		t.Errorf("Quantize() = %d members, want 2 with the first holding 2", len(got))
	}
	if strings.Contains(got[0].Name, ",") {
		t.Errorf("identical names should not repeat: %q", got[0].Name)
	}
}
