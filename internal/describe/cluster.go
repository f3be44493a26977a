package describe

import "github.com/lawnchairsociety/rosterforge/server/internal/roster"

// clusters partitions a flattened list into runs of plain names and
// single entries that render on their own.
func clusters(entries []roster.Entry) [][]roster.Entry {
	var out [][]roster.Entry
	var run []roster.Entry

	for i, e := range entries {
		next := at(entries, i+1)
		prev := at(entries, i-1)
		notDeeper := next == nil || e.Depth() >= next.Depth()

		if !isHeader(e) && !hasStats(e) && notDeeper {
			run = append(run, e)
			continue
		}

		joins := !isHeader(e) && !isGamePiece(e) &&
			(prev == nil || e.Depth() == prev.Depth()) && notDeeper
		if joins {
			run = append(run, e)
		}
		if len(run) > 0 {
			out = append(out, run)
			run = nil
		}
		if !joins {
			out = append(out, []roster.Entry{e})
		}
	}
	if len(run) > 0 {
		out = append(out, run)
	}
	return out
}

// interesting reports whether the singleton cluster at k renders as its
// own block: a header, a stat-bearing asset, or a parent of the next
// cluster.
func interesting(cl [][]roster.Entry, k int) bool {
	e := cl[k][0]
	if isHeader(e) || hasStats(e) {
		return true
	}
	return k+1 < len(cl) && e.Depth() < cl[k+1][0].Depth()
}

// withoutGamePieces drops the leading self entry, every game piece with
// everything nested under it, and headers that introduce a game piece.
func withoutGamePieces(entries []roster.Entry) []roster.Entry {
	var out []roster.Entry
	skipDepth := -1
	for i := 1; i < len(entries); i++ {
		e := entries[i]
		switch {
		case isHeader(e) && isGamePiece(at(entries, i+1)):
		case isGamePiece(e):
			skipDepth = e.Depth()
		case skipDepth < 0 || e.Depth() <= skipDepth:
			out = append(out, e)
			skipDepth = -1
		}
	}
	return out
}

func at(entries []roster.Entry, i int) roster.Entry {
	if i < 0 || i >= len(entries) {
		return nil
	}
	return entries[i]
}

func isHeader(e roster.Entry) bool {
	_, ok := e.(*roster.AssetGroup)
	return ok
}

func isGamePiece(e roster.Entry) bool {
	a, ok := e.(*roster.Asset)
	return ok && a.IsGamePiece()
}

func hasStats(e roster.Entry) bool {
	a, ok := e.(*roster.Asset)
	return ok && a.HasStats()
}
