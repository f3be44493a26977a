package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

func num(f float64) *float64 { return &f }

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		node source.Node
		want string
	}{
		{"custom name", source.Node{Name: "Brother Tarkus", Aspects: source.Aspects{Label: "Captain"}}, "Brother Tarkus (Captain)"},
		{"name equals label", source.Node{Name: "Captain", Aspects: source.Aspects{Label: "Captain"}}, "Captain"},
		{"designation fallback", source.Node{Designation: "Lieutenant"}, "Lieutenant"},
		{"name over designation", source.Node{Name: "Tarkus", Designation: "Lieutenant"}, "Tarkus (Lieutenant)"},
		{"name only", source.Node{Name: "Tarkus"}, "Tarkus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(&tt.node); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuantity(t *testing.T) {
	tests := map[string]int{"": 1, "3": 3, " 5 ": 5, "2.0": 2, "abc": 1, "-4": 1, "0": 0, "1e30": 1, "+Inf": 1, "NaN": 1}
	for raw, want := range tests {
		if got := Quantity(raw); got != want {
			t.Errorf("Quantity(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestKeywordsDropsTagsAndEmpty(t *testing.T) {
	n := &source.Node{}
	n.AddKeywords("Tags", "internal")
	n.AddKeywords("Faction", "Imperium")
	n.AddKeywords("Empty")
	n.AddKeywords("Keywords", "Infantry", "Character")

	got := Keywords(n)
	if diff := cmp.Diff([]string{"Faction", "Keywords"}, got.Keys()); diff != "" {
		t.Errorf("Keywords() categories mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsOrderingAndFiltering(t *testing.T) {
	n := &source.Node{Stats: []source.Stat{
		{Name: "Notes", HasValue: true, Format: "<b>see rules</b>"},
		{Name: "W", HasValue: true, Group: "Core", GroupOrder: 1, StatOrder: 3, Format: "2"},
		{Name: "M", HasValue: true, Group: "Core", GroupOrder: 1, StatOrder: 1, Format: "6\""},
		{Name: "Secret", HasValue: true, Group: "Core", Visibility: "hidden", Format: "x"},
		{Name: "Pts", StatType: "numeric", Numeric: num(85), Group: "Cost", GroupOrder: 0},
		{Name: "Empty", Group: "Cost"},
		{Name: "Rank", StatType: "rank", Rank: "Veteran", Group: "Core", GroupOrder: 1, StatOrder: 3},
	}}

	got := Stats(n)
	wantKeys := []string{"Pts", "M", "Rank", "W", "Notes"}
	if diff := cmp.Diff(wantKeys, got.Keys()); diff != "" {
		t.Errorf("Stats() order mismatch (-want +got):\n%s", diff)
	}
	if v, _ := got.Get("Notes"); v != "see rules" {
		t.Errorf("Notes = %q, want markup stripped", v)
	}
	if v, _ := got.Get("Pts"); v != "85" {
		t.Errorf("Pts = %q, want 85", v)
	}
}

func TestStatsGroupOrdering(t *testing.T) {
	n := &source.Node{Stats: []source.Stat{
		{Name: "Loose", HasValue: true, GroupOrder: -5, Format: "1"},
		{Name: "B1", HasValue: true, Group: "Beta", GroupOrder: 2, Format: "2"},
		{Name: "A1", HasValue: true, Group: "Alpha", GroupOrder: 2, Format: "3"},
		{Name: "First", HasValue: true, Group: "Zeta", GroupOrder: 1, Format: "4"},
	}}

	want := []string{"First", "A1", "B1", "Loose"}
	if diff := cmp.Diff(want, Stats(n).Keys()); diff != "" {
		t.Errorf("Stats() order mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsAllowlist(t *testing.T) {
	n := &source.Node{Stats: []source.Stat{
		{Name: "M", HasValue: true, Format: "6\"", StatOrder: 1},
		{Name: "T", HasValue: true, Format: "4", StatOrder: 2},
		{Name: "W", HasValue: true, Format: "2", StatOrder: 3},
	}}
	n.AddMeta(roster.MetaStatDisplay, "M, W")

	if diff := cmp.Diff([]string{"M", "W"}, Stats(n).Keys()); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssetType(t *testing.T) {
	piece := Asset(&source.Node{Name: "Marine", Aspects: source.Aspects{Type: "game piece"}, Quantity: "5"})
	if piece.Type != roster.TypeGamePiece || piece.Quantity != 5 {
		t.Errorf("Asset() = %s x%d, want game piece x5", piece.Type, piece.Quantity)
	}
	rule := Asset(&source.Node{Name: "Oath of Moment", Aspects: source.Aspects{Type: "Rule"}})
	if rule.Type != roster.TypeConceptual {
		t.Errorf("Asset().Type = %q, want conceptual", rule.Type)
	}
}
