package repl

import (
	"slices"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/duynguyendang/geoqa/pkg/normalize"
)

// Suggest returns up to limit names closest to arg by edit distance over
// normalized keys, nearest first. Exact matches and names too far off to be
// a typo are left out.
func Suggest(arg string, names []string, limit int) []string {
	key := normalize.Key(arg)
	if key == "" || limit <= 0 {
		return nil
	}
	maxDist := max(2, len([]rune(key))/3)

	type candidate struct {
		name string
		dist int
	}
	var cands []candidate
	for _, n := range names {
		d := levenshtein.Distance(key, normalize.Key(n), nil)
		if d > 0 && d <= maxDist {
			cands = append(cands, candidate{strings.ReplaceAll(n, "_", " "), d})
		}
	}
	slices.SortStableFunc(cands, func(a, b candidate) int { return a.dist - b.dist })

	out := make([]string, 0, min(limit, len(cands)))
	for _, c := range cands[:min(limit, len(cands))] {
		out = append(out, c.name)
	}
	return out
}
