package text

// Span describes one item to be laid out on a line. Need is the width the
// item must fit in; Advance is how far the line grows once it is placed,
// which includes any separator padding.
type Span struct {
	Need    int
	Advance int
}

// Layout assigns each span to a line and returns the line index per span.
// The first line starts start units in (its indentation). A span moves to
// a new line when placing it would bring the line to the budget or past it.
// A span never moves off an empty line, so an oversized span sits alone.
func Layout(spans []Span, start, budget int) []int {
	lines := make([]int, len(spans))
	line := 0
	width := start
	placed := 0
	for i, s := range spans {
		if placed > 0 && width+s.Need >= budget {
			line++
			width = 0
			placed = 0
		}
		lines[i] = line
		width += s.Advance
		placed++
	}
	return lines
}

// Group splits items into lines according to the line indices from Layout.
func Group[T any](items []T, lines []int) [][]T {
	if len(items) == 0 {
		return nil
	}
	out := [][]T{{}}
	for i, item := range items {
		for lines[i] >= len(out) {
			out = append(out, []T{})
		}
		out[lines[i]] = append(out[lines[i]], item)
	}
	return out
}

// NameSpans measures a list of names separated by ", " the way the
// tooltip renders them: each name reserves three extra units.
func NameSpans(names []string) []Span {
	spans := make([]Span, len(names))
	for i, name := range names {
		w := Width(name) + 3
		spans[i] = Span{Need: w, Advance: w}
	}
	return spans
}
