package text

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"i", 1},
		{" ", 1},
		{"W", 3},
		{"mm", 6},
		{"Intercessor", 18},
		{"€", 1},
	}

	for _, tt := range tests {
		if got := Width(tt.in); got != tt.want {
			t.Errorf("Width(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCharWidthDefault(t *testing.T) {
	if got := CharWidth('☃'); got != defaultCharWidth {
		t.Errorf("CharWidth(unmapped) = %d, want %d", got, defaultCharWidth)
	}
	if got := CharWidth('M'); got != 29 {
		t.Errorf("CharWidth('M') = %d, want 29", got)
	}
}

func TestLayoutBoundary(t *testing.T) {
	tests := []struct {
		name     string
		second   int
		wantLine int
	}{
		{"one under budget stays", 34, 0},
		{"exactly at budget wraps", 35, 1},
		{"one over budget wraps", 36, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := []Span{{Need: 40, Advance: 40}, {Need: tt.second, Advance: tt.second}}
			lines := Layout(spans, 0, Budget)
			if lines[1] != tt.wantLine {
				t.Errorf("second span line = %d, want %d", lines[1], tt.wantLine)
			}
		})
	}
}

func TestLayoutStartOffset(t *testing.T) {
	spans := []Span{{Need: 70, Advance: 73}}
	lines := Layout(spans, 8, Budget)
	if lines[0] != 0 {
		t.Errorf("oversized first span moved to line %d, want 0", lines[0])
	}

	spans = []Span{{Need: 30, Advance: 33}, {Need: 30, Advance: 33}}
	lines = Layout(spans, 12, Budget)
	if lines[1] != 1 {
		t.Errorf("indent not counted: second span on line %d, want 1", lines[1])
	}
}

func TestGroup(t *testing.T) {
	items := []string{"a", "b", "c"}
	got := Group(items, []int{0, 0, 1})
	if len(got) != 2 || len(got[0]) != 2 || got[1][0] != "c" {
		t.Errorf("Group() = %v, want [[a b] [c]]", got)
	}
	if Group([]string{}, nil) != nil {
		t.Error("Group() of nothing should be nil")
	}
}

func TestHeaderColor(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		label string
		want  string
	}{
		{"Ranged Weapons", p.CombatHeader},
		{"Melee ATTACKS", p.CombatHeader},
		{"Combat Tactics", p.CombatHeader},
		{"Abilities", p.Header},
		{"Wargear", p.Header},
	}

	for _, tt := range tests {
		if got := p.HeaderColor(tt.label); got != tt.want {
			t.Errorf("HeaderColor(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestLoadPaletteMergesDefaults(t *testing.T) {
	content := `
list: "112233"
combat_words: ["psychic"]
`
	tmpFile := filepath.Join(t.TempDir(), "palette.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	p, err := LoadPalette(tmpFile)
	if err != nil {
		t.Fatalf("LoadPalette() error = %v", err)
	}

	if p.List != "112233" {
		t.Errorf("List = %q, want %q", p.List, "112233")
	}
	if p.StatValue != "ffaa00" {
		t.Errorf("StatValue = %q, want default ffaa00", p.StatValue)
	}
	if p.HeaderColor("Psychic Powers") != p.CombatHeader {
		t.Error("custom combat word not honoured")
	}
	if p.HeaderColor("Weapons") != p.Header {
		t.Error("combat words should be replaced, not merged")
	}
	if len(p.Separator()) != 48 {
		t.Errorf("Separator() length = %d, want 48", len(p.Separator()))
	}
}

func TestLoadPaletteMissingFile(t *testing.T) {
	if _, err := LoadPalette("/nonexistent/palette.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestInitializeEmptyPathKeepsDefaults(t *testing.T) {
	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize(\"\") error = %v", err)
	}
	if Current().Damage != "00ff33" {
		t.Errorf("Current().Damage = %q, want 00ff33", Current().Damage)
	}
}
