// Package describe renders the BBCode tooltip body and title that the
// tabletop client shows for a model.
package describe

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/text"
)

const indentWidth = 4

// Generator renders tooltips with a fixed palette and column budget.
type Generator struct {
	Palette text.Palette
	Budget  int
}

// New returns a generator using p and the standard column budget.
func New(p text.Palette) *Generator {
	return &Generator{Palette: p, Budget: text.Budget}
}

// Generate fills in a.TTSDescription and a.TTSNickname using the process
// palette. g is the group the asset belongs to and may be nil.
func Generate(a *roster.Asset, g *roster.Group) {
	New(text.Current()).Describe(a, g)
}

// Describe fills in a.TTSDescription and a.TTSNickname.
func (gen *Generator) Describe(a *roster.Asset, g *roster.Group) {
	var b strings.Builder
	gen.writeClusters(&b, clusters(a.Assets), a.MetaBool(roster.MetaPartOfGroup))

	if a.MetaBool(roster.MetaPartOfGroup) && g != nil && g.GroupAsset != nil {
		groupClusters := clusters(withoutGamePieces(g.GroupAsset.Assets))
		if len(groupClusters) > 0 {
			b.WriteString("\n\n[u]" + g.GroupClass + ":[/u]")
			gen.writeClusters(&b, groupClusters, false)
		}
	}

	a.TTSDescription = b.String()
	a.TTSNickname = gen.nickname(a, g)
}

func (gen *Generator) writeClusters(b *strings.Builder, cl [][]roster.Entry, fancyTop bool) {
	if len(cl) == 0 {
		return
	}
	initial := cl[0][0].Depth()
	for k, c := range cl {
		if len(c) == 1 && interesting(cl, k) {
			fancy := fancyTop && c[0].Depth() == initial
			b.WriteString(gen.entry(c[0], initial, fancy))
			continue
		}
		b.WriteString(gen.list(c, initial))
	}
}

func (gen *Generator) nickname(a *roster.Asset, g *roster.Group) string {
	nick := a.Name
	var appended []string
	for i, e := range a.Assets {
		child, ok := e.(*roster.Asset)
		if !ok || i == 0 {
			continue
		}
		if child.MetaBool(roster.MetaAppendToParentNickname) {
			appended = append(appended, child.Name)
		}
	}
	if len(appended) > 0 {
		nick += " w/ " + strings.Join(appended, ", ")
	}
	if stat := g.MetaString(roster.MetaDamageStat); stat != "" {
		if v, ok := a.Stats.Get(stat); ok {
			nick += fmt.Sprintf("\n[%s]%s/%s[-] ", gen.Palette.Damage, v, v)
		}
	}
	return nick
}

// entry renders a header or a named asset with its stat block.
func (gen *Generator) entry(e roster.Entry, initial int, fancy bool) string {
	switch v := e.(type) {
	case *roster.AssetGroup:
		return "\n" + lineStart(v.AssetDepth, initial) +
			"[i][" + gen.Palette.HeaderColor(v.Group) + "]" + v.Group + "[-][/i]"
	case *roster.Asset:
		if fancy && v.HasStats() {
			return gen.statBlock(v, initial, true)
		}
		s := lineStart(v.AssetDepth, initial)
		if v.Quantity > 1 {
			s += fmt.Sprintf("%d× ", v.Quantity)
		}
		s += "[b]" + v.Name + "[/b]"
		if v.HasStats() {
			s += gen.statBlock(v, initial, false)
		}
		return s
	}
	return ""
}

// list renders a cluster of plain names as a wrapped, comma separated list.
func (gen *Generator) list(c []roster.Entry, initial int) string {
	indent := spaces(displayDepth(c[0].Depth(), initial) * indentWidth)
	var names []string
	for _, e := range c {
		if a, ok := e.(*roster.Asset); ok {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}

	lines := text.Group(names, text.Layout(text.NameSpans(names), len(indent), gen.Budget))
	rendered := make([]string, len(lines))
	for i, line := range lines {
		colored := make([]string, len(line))
		for j, name := range line {
			colored[j] = "[" + gen.Palette.List + "]" + name + "[-]"
		}
		rendered[i] = strings.Join(colored, ", ")
	}
	return "\n" + indent + strings.Join(rendered, ",\n"+indent)
}

func lineStart(depth, initial int) string {
	return "\n" + spaces(displayDepth(depth, initial)*indentWidth)
}

// displayDepth maps an entry depth onto an indentation level. The first
// level below the initial depth is not indented, since headers already
// set it apart.
func displayDepth(depth, initial int) int {
	d := depth - initial
	if d <= 0 {
		return 0
	}
	return d - 1
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
