package search

import "sort"

// DefaultRRFConstant is the fusion constant K used when none is configured.
const DefaultRRFConstant = 60

// FusedResult pairs an identifier with its Reciprocal Rank Fusion score.
type FusedResult struct {
	ID    int64
	Score float64
}

// Fuse combines ranked identifier lists via Reciprocal Rank Fusion:
//
//	fused(id) = Σ 1 / (K + rank(id))
//
// with rank zero-based per list (a list omits its term for ids it lacks).
// Output is ordered by fused score descending; ties break by the order an
// identifier was first seen across the input lists, which keeps a
// single-list input's relative order unchanged.
func Fuse(lists [][]int64, k int) []FusedResult {
	if k <= 0 {
		k = DefaultRRFConstant
	}

	scores := make(map[int64]float64)
	order := make([]int64, 0)
	seen := make(map[int64]bool)

	for _, list := range lists {
		for rank, id := range list {
			scores[id] += 1.0 / float64(k+rank)
			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
	}

	out := make([]FusedResult, len(order))
	for i, id := range order {
		out[i] = FusedResult{ID: id, Score: scores[id]}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
