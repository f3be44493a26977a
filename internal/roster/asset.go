package roster

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Asset types.
const (
	TypeGamePiece  = "game piece"
	TypeConceptual = "conceptual"
	TypeGroup      = "group"
)

// Meta keys read by the tabletop script.
const (
	MetaPartOfGroup            = "ttsPartOfGroup"
	MetaStatDisplay            = "ttsStatDisplay"
	MetaAppendToParentNickname = "ttsAppendToParentNickname"
	MetaDamageStat             = "ttsDamageStat"
	MetaCoherency              = "ttsCoherency"
)

// Entry is one element of an asset's flattened child list: either an
// Asset or an AssetGroup header.
type Entry interface {
	Depth() int
}

// AssetGroup is a header that introduces a labelled bucket of assets.
type AssetGroup struct {
	Group      string `json:"group"`
	AssetDepth int    `json:"assetDepth"`
}

// Depth returns the nesting depth of the header.
func (g *AssetGroup) Depth() int { return g.AssetDepth }

// Asset is a normalized roster entity.
type Asset struct {
	Name           string                `json:"name"`
	Type           string                `json:"type"`
	AssetDepth     int                   `json:"assetDepth"`
	Meta           *OrderedMap[any]      `json:"meta"`
	Assets         Entries               `json:"assets"`
	Description    string                `json:"description"`
	Errors         []string              `json:"errors"`
	Keywords       *OrderedMap[[]string] `json:"keywords"`
	Quantity       int                   `json:"quantity"`
	Stats          *OrderedMap[string]   `json:"stats"`
	Text           string                `json:"text"`
	TTSDescription string                `json:"ttsDescription,omitempty"`
	TTSNickname    string                `json:"ttsNickname,omitempty"`
}

// NewAsset returns an empty asset of the given type with quantity 1.
func NewAsset(name, typ string) *Asset {
	if typ == "" {
		typ = TypeConceptual
	}
	return &Asset{
		Name:     name,
		Type:     typ,
		Meta:     NewOrderedMap[any](),
		Assets:   Entries{},
		Errors:   []string{},
		Keywords: NewOrderedMap[[]string](),
		Quantity: 1,
		Stats:    NewOrderedMap[string](),
	}
}

// Depth returns the nesting depth of the asset.
func (a *Asset) Depth() int { return a.AssetDepth }

// IsGamePiece reports whether the asset is a physical model.
func (a *Asset) IsGamePiece() bool { return a.Type == TypeGamePiece }

// HasStats reports whether the asset carries any stats.
func (a *Asset) HasStats() bool { return a.Stats.Len() > 0 }

// AddAsset appends an entry to the flattened child list.
func (a *Asset) AddAsset(e Entry) {
	a.Assets = append(a.Assets, e)
}

// AddMeta stores a meta value.
func (a *Asset) AddMeta(key string, value any) {
	if a.Meta == nil {
		a.Meta = NewOrderedMap[any]()
	}
	a.Meta.Set(key, value)
}

// AddError records a problem with the asset.
func (a *Asset) AddError(msg string) {
	a.Errors = append(a.Errors, msg)
}

// AddKeywords adds values to a keyword category, skipping values the
// category already holds.
func (a *Asset) AddKeywords(category string, values ...string) {
	if a.Keywords == nil {
		a.Keywords = NewOrderedMap[[]string]()
	}
	existing, _ := a.Keywords.Get(category)
	for _, v := range values {
		if !containsString(existing, v) {
			existing = append(existing, v)
		}
	}
	if existing == nil {
		existing = []string{}
	}
	a.Keywords.Set(category, existing)
}

// SetStat stores a stat's display value.
func (a *Asset) SetStat(name, value string) {
	if a.Stats == nil {
		a.Stats = NewOrderedMap[string]()
	}
	a.Stats.Set(name, value)
}

// MetaBool reports whether a meta key holds a truthy value.
func (a *Asset) MetaBool(key string) bool {
	return Truthy(a.Meta, key)
}

// MetaString returns a meta value as text, or "" when absent.
func (a *Asset) MetaString(key string) string {
	return MetaText(a.Meta, key)
}

// Truthy reports whether meta[key] is set to a value other than false,
// zero, the empty string or "false".
func Truthy(meta *OrderedMap[any], key string) bool {
	v, ok := meta.Get(key)
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && !strings.EqualFold(t, "false")
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return true
}

// MetaText returns meta[key] formatted as a string, or "" when absent.
func MetaText(meta *OrderedMap[any], key string) string {
	v, ok := meta.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Entries is an ordered list of assets and headers.
type Entries []Entry

// UnmarshalJSON decodes each element as an AssetGroup when it carries a
// "group" field and as an Asset otherwise.
func (e *Entries) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Entries, 0, len(raw))
	for i, r := range raw {
		var probe struct {
			Group *string `json:"group"`
		}
		if err := json.Unmarshal(r, &probe); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if probe.Group != nil {
			var g AssetGroup
			if err := json.Unmarshal(r, &g); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			out = append(out, &g)
			continue
		}
		var a Asset
		if err := json.Unmarshal(r, &a); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, &a)
	}
	*e = out
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
