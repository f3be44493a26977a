package text

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Palette holds the BBCode colours used when rendering tooltips.
type Palette struct {
	List           string   `yaml:"list"`
	CombatHeader   string   `yaml:"combat_header"`
	Header         string   `yaml:"header"`
	StatBlock      string   `yaml:"stat_block"`
	StatValue      string   `yaml:"stat_value"`
	Damage         string   `yaml:"damage"`
	CombatWords    []string `yaml:"combat_words"`
	SeparatorWidth int      `yaml:"separator_width"`
}

// DefaultPalette returns the colours the tabletop script expects.
func DefaultPalette() Palette {
	return Palette{
		List:           "88ccaa",
		CombatHeader:   "ff6666",
		Header:         "ccaaff",
		StatBlock:      "cccccc",
		StatValue:      "ffaa00",
		Damage:         "00ff33",
		CombatWords:    []string{"combat", "attack", "weapon"},
		SeparatorWidth: 48,
	}
}

// HeaderColor picks the colour for a bucket header. Headers that name
// something combat related are drawn in the combat colour.
func (p Palette) HeaderColor(label string) string {
	lower := strings.ToLower(label)
	for _, word := range p.CombatWords {
		if word != "" && strings.Contains(lower, strings.ToLower(word)) {
			return p.CombatHeader
		}
	}
	return p.Header
}

// Separator returns the dashed rule drawn under each row of a stat table.
func (p Palette) Separator() string {
	return strings.Repeat("-", p.SeparatorWidth)
}

// LoadPalette reads a palette from a YAML file. Keys absent from the file
// keep their default values.
func LoadPalette(path string) (Palette, error) {
	p := DefaultPalette()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read palette file: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return DefaultPalette(), fmt.Errorf("failed to parse palette file: %w", err)
	}

	if p.SeparatorWidth <= 0 {
		p.SeparatorWidth = DefaultPalette().SeparatorWidth
	}
	return p, nil
}

var (
	current = DefaultPalette()
	mu      sync.RWMutex
)

// Current returns the palette in use by the process.
func Current() Palette {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Initialize loads the palette at path and makes it the process palette.
// An empty path leaves the defaults in place.
func Initialize(path string) error {
	if path == "" {
		return nil
	}
	p, err := LoadPalette(path)
	if err != nil {
		return err
	}
	mu.Lock()
	current = p
	mu.Unlock()
	return nil
}
