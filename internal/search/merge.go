package search

import (
	"sort"

	"github.com/roach88/rchart/internal/model"
)

// Merge concatenates per-entity result groups, sorts them by ascending rank
// and truncates to limit. Ties keep group order, then in-group order.
// The result is never nil.
func Merge(limit int, groups ...[]model.SearchResult) []model.SearchResult {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]model.SearchResult, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
