package describe

import (
	"strings"

	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/text"
)

type statPair struct {
	name  string
	value string
}

// displayStats returns the stats to show, honouring the asset's stat
// allowlist when it declares one. Allowlisted stats that are missing or
// empty are skipped.
func displayStats(a *roster.Asset) []statPair {
	var out []statPair
	allow := a.MetaString(roster.MetaStatDisplay)
	if allow == "" {
		a.Stats.Each(func(name, value string) {
			out = append(out, statPair{name, value})
		})
		return out
	}
	for _, name := range strings.Split(allow, ",") {
		name = strings.TrimSpace(name)
		if v, ok := a.Stats.Get(name); ok && v != "" {
			out = append(out, statPair{name, v})
		}
	}
	return out
}

// statBlock renders the asset's stats either as wrapped "name: value"
// pairs or, when fancy, as centred header and value rows separated by a
// dashed rule.
func (gen *Generator) statBlock(a *roster.Asset, initial int, fancy bool) string {
	stats := displayStats(a)
	var body string
	if fancy {
		body = gen.tableStats(stats)
	} else {
		body = gen.inlineStats(stats, displayDepth(a.AssetDepth, initial)*indentWidth)
	}
	return "[" + gen.Palette.StatBlock + "]" + body + "[-]"
}

func (gen *Generator) inlineStats(stats []statPair, indentLen int) string {
	indent := spaces(indentLen)
	spans := make([]text.Span, len(stats))
	cells := make([]string, len(stats))
	for i, s := range stats {
		w := text.Width(s.name + ": " + s.value)
		spans[i] = text.Span{Need: w, Advance: w + 3}
		cells[i] = s.name + ": [" + gen.Palette.StatValue + "]" + s.value + "[-]"
	}

	lines := text.Group(cells, text.Layout(spans, indentLen, gen.Budget))
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = strings.Join(line, "   ")
	}
	return "\n" + indent + strings.Join(rendered, "\n"+indent)
}

func (gen *Generator) tableStats(stats []statPair) string {
	type cell struct {
		head  string
		value string
	}
	spans := make([]text.Span, len(stats))
	cells := make([]cell, len(stats))
	for i, s := range stats {
		nameW := text.Width(s.name)
		valueW := text.Width(s.value)
		w := max(nameW, valueW)
		spans[i] = text.Span{Need: w, Advance: w + 3}
		cells[i] = cell{
			head:  center(s.name, w-nameW),
			value: "[" + gen.Palette.StatValue + "]" + center(s.value, w-valueW) + "[-]",
		}
	}

	var b strings.Builder
	for i, line := range text.Group(cells, text.Layout(spans, 0, gen.Budget)) {
		var heads, values strings.Builder
		for _, c := range line {
			heads.WriteString(c.head)
			values.WriteString(c.value)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimRight(heads.String(), " "))
		b.WriteString("\n" + strings.TrimRight(values.String(), " "))
		b.WriteString("\n" + gen.Palette.Separator())
	}
	return b.String()
}

// center pads s with slack spaces split around it, plus the three space
// column gap.
func center(s string, slack int) string {
	left := slack / 2
	right := slack - left
	return spaces(left) + s + spaces(right+3)
}
