// Package registry reads Rosterizer registry exports: a zip archive
// holding one JSON document whose root is itself an asset.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

// AppName is reported as the roster's producing application.
const AppName = "Rosterizer"

// ErrInvalidDocument is returned when the archive member is not JSON.
var ErrInvalidDocument = errors.New("uploaded file appears corrupt: registry is not valid JSON")

// Loader decodes zipped registry exports.
type Loader struct {
	// MaxDepth bounds asset nesting; zero selects source.DefaultMaxDepth.
	MaxDepth int
}

// Load extracts and decodes a registry archive.
func (l Loader) Load(data []byte) (*source.Document, error) {
	doc, err := Extract(data)
	if err != nil {
		return nil, err
	}
	return Decode(doc, l.MaxDepth)
}

// Decode converts a registry JSON document into a source document.
func Decode(doc []byte, maxDepth int) (*source.Document, error) {
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidDocument
	}
	if maxDepth <= 0 {
		maxDepth = source.DefaultMaxDepth
	}

	res := gjson.ParseBytes(doc)
	if !res.IsObject() {
		return nil, ErrInvalidDocument
	}

	root, err := decodeNode(res, 0, maxDepth, nil)
	if err != nil {
		return nil, err
	}
	// Document level errors are reported on the roster, not the root asset.
	root.Errors = nil

	info := res.Get("info")
	name := root.Name
	if name == "" {
		name = root.Designation
	}
	out := &source.Document{
		Info: source.Info{
			Name:       name,
			Game:       info.Get("game").String(),
			DataSet:    info.Get("name").String(),
			Edition:    edition(info.Get("rulebookVersion").String()),
			Version:    info.Get("rulebookVersion").String(),
			App:        AppName,
			AppVersion: info.Get("appVersion").String(),
			Hash:       info.Get("hash").String(),
		},
		Meta:   decodeMeta(res.Get("meta")),
		Errors: decodeErrors(res.Get("errors")),
		Root:   root,
	}
	return out, nil
}

// edition is the major part of a dotted rulebook version.
func edition(version string) string {
	major, _, _ := strings.Cut(version, ".")
	return major
}

func decodeNode(res gjson.Result, depth, maxDepth int, path []string) (*source.Node, error) {
	n := &source.Node{
		Name:           res.Get("name").String(),
		Designation:    res.Get("designation").String(),
		Item:           res.Get("item").String(),
		Classification: res.Get("classification").String(),
		Aspects:        decodeAspects(res.Get("aspects")),
		Allowed:        decodeAllowance(res.Get("allowed")),
		Disallowed:     decodeAllowance(res.Get("disallowed")),
		Stats:          decodeStats(res.Get("stats")),
		Keywords:       decodeKeywords(res.Get("keywords")),
		Text:           roster.NormalizeNewlines(res.Get("text").String()),
		Description:    roster.NormalizeNewlines(res.Get("description").String()),
		Errors:         decodeErrors(res.Get("errors")),
		Meta:           decodeMeta(res.Get("meta")),
	}
	if q := res.Get("quantity"); q.Exists() && q.Type != gjson.Null {
		n.Quantity = q.String()
	}

	path = append(path[:len(path):len(path)], nodeLabel(n))
	if depth > maxDepth {
		return nil, &source.DepthError{Limit: maxDepth, Path: path}
	}

	var err error
	if n.Traits, err = decodeChildren(res.Get("assets.traits"), depth, maxDepth, path); err != nil {
		return nil, err
	}
	if n.Included, err = decodeChildren(res.Get("assets.included"), depth, maxDepth, path); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeChildren(list gjson.Result, depth, maxDepth int, path []string) ([]*source.Node, error) {
	if !list.IsArray() {
		return nil, nil
	}
	var out []*source.Node
	var err error
	list.ForEach(func(_, child gjson.Result) bool {
		if !child.IsObject() {
			return true
		}
		var n *source.Node
		n, err = decodeNode(child, depth+1, maxDepth, path)
		if err != nil {
			return false
		}
		out = append(out, n)
		return true
	})
	return out, err
}

func decodeAspects(res gjson.Result) source.Aspects {
	var a source.Aspects
	res.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "Type", "type":
			a.Type = value.String()
		case "Label", "label":
			if a.Label == "" {
				a.Label = value.String()
			}
		case "Group By":
			a.GroupBy = value.String()
		case "Group Includes":
			a.GroupIncludes = value.Bool()
		case "Group Traits":
			a.GroupTraits = value.Bool()
		case "Order Includes A–Z", "Order Includes A-Z":
			a.OrderIncludesAZ = value.Bool()
		}
		return true
	})
	return a
}

func decodeAllowance(res gjson.Result) source.Allowance {
	return source.Allowance{
		Classifications: stringList(res.Get("classifications")),
		Items:           stringList(res.Get("items")),
	}
}

func decodeStats(res gjson.Result) []source.Stat {
	var out []source.Stat
	res.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			return true
		}
		v := value.Get("value")
		s := source.Stat{
			Name:       key.String(),
			Visibility: value.Get("visibility").String(),
			HasValue:   v.Exists() && v.Type != gjson.Null,
			Group:      value.Get("group").String(),
			GroupOrder: value.Get("groupOrder").Float(),
			StatOrder:  value.Get("statOrder").Float(),
			StatType:   value.Get("statType").String(),
			Format:     value.Get("processed.format.current").String(),
			Rank:       value.Get("processed.rank.current").String(),
			Term:       value.Get("processed.term.current").String(),
		}
		if num := value.Get("processed.numeric.current"); num.Type == gjson.Number {
			f := num.Float()
			s.Numeric = &f
		}
		out = append(out, s)
		return true
	})
	return out
}

func decodeKeywords(res gjson.Result) *roster.OrderedMap[[]string] {
	out := roster.NewOrderedMap[[]string]()
	res.ForEach(func(key, value gjson.Result) bool {
		out.Set(key.String(), stringList(value))
		return true
	})
	return out
}

func decodeMeta(res gjson.Result) *roster.OrderedMap[any] {
	out := roster.NewOrderedMap[any]()
	res.ForEach(func(key, value gjson.Result) bool {
		out.Set(key.String(), value.Value())
		return true
	})
	return out
}

// decodeErrors formats each error as "name: message". Plain string
// entries are kept as they are.
func decodeErrors(res gjson.Result) []string {
	var out []string
	res.ForEach(func(_, value gjson.Result) bool {
		if !value.IsObject() {
			out = append(out, value.String())
			return true
		}
		name := value.Get("name").String()
		msg := value.Get("message").String()
		if name == "" {
			out = append(out, msg)
		} else {
			out = append(out, fmt.Sprintf("%s: %s", name, msg))
		}
		return true
	})
	return out
}

func stringList(res gjson.Result) []string {
	if !res.IsArray() {
		if res.Type == gjson.String {
			return []string{res.String()}
		}
		return nil
	}
	var out []string
	res.ForEach(func(_, value gjson.Result) bool {
		out = append(out, value.String())
		return true
	})
	return out
}

func nodeLabel(n *source.Node) string {
	if n.Name != "" {
		return n.Name
	}
	if n.Designation != "" {
		return n.Designation
	}
	return "?"
}
