package search

import (
	"math"
	"sort"

	"github.com/timbuchinger/context-cache/internal/store"
)

// VectorRanker computes exact cosine similarity between a query vector and
// every embedded Fragment. There is deliberately no approximate index: the
// corpus sizes this engine targets make a full scan fast enough, and an ANN
// structure would add a tuning surface with no proportional benefit.
type VectorRanker struct {
	st *store.Store
}

// NewVectorRanker wraps st.
func NewVectorRanker(st *store.Store) *VectorRanker {
	return &VectorRanker{st: st}
}

// Search returns up to limit (fragment id, similarity) pairs ordered
// descending by cosine similarity. Fragments with a zero-norm embedding are
// excluded since their similarity is undefined. Ties break by insertion
// order (ascending fragment id).
func (r *VectorRanker) Search(query []float32, limit int) ([]RankedID, error) {
	fragments, err := r.st.AllFragmentsWithEmbeddings()
	if err != nil {
		return nil, err
	}

	qnorm := norm(query)
	if qnorm == 0 {
		return nil, nil
	}

	scored := make([]RankedID, 0, len(fragments))
	for _, f := range fragments {
		vnorm := norm(f.Embedding)
		if vnorm == 0 {
			continue
		}
		sim := dot(query, f.Embedding) / (qnorm * vnorm)
		scored = append(scored, RankedID{ID: f.ID, Score: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	var sumSquares float64
	for _, f := range v {
		sumSquares += float64(f) * float64(f)
	}
	return math.Sqrt(sumSquares)
}
