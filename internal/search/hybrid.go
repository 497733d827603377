package search

import (
	"github.com/timbuchinger/context-cache/internal/store"
)

// Hit is a hydrated, display-ready search result.
type Hit struct {
	FragmentID int64
	FilePath   string
	Position   int
	Text       string
	Score      float64 // min-max normalized, 1.0 for the top result
}

// HybridSearcher orchestrates the lexical and vector rankers and fuses
// their output via Reciprocal Rank Fusion.
type HybridSearcher struct {
	st      *store.Store
	lexical *LexicalRanker
	vector  *VectorRanker
	rrfK    int
}

// NewHybridSearcher wires a lexical and vector ranker against st. rrfK is
// the fusion constant (DefaultRRFConstant if <= 0).
func NewHybridSearcher(st *store.Store, rrfK int) *HybridSearcher {
	return &HybridSearcher{
		st:      st,
		lexical: NewLexicalRanker(st),
		vector:  NewVectorRanker(st),
		rrfK:    rrfK,
	}
}

// Search runs the full hybrid pipeline: lexical and vector rankers each
// fetch 2*limit candidates, their identifier orderings are fused via RRF,
// the top limit entries are kept, display scores are min-max normalized
// across that retained prefix, and each surviving identifier is hydrated
// from the Store. A hydration miss (row deleted between ranking and
// hydration) is skipped, not reported as an error.
func (h *HybridSearcher) Search(query string, queryVector []float32, limit int) ([]Hit, error) {
	fetchLimit := limit * 2

	lexResults, err := h.lexical.Search(query, fetchLimit)
	if err != nil {
		return nil, err
	}
	vecResults, err := h.vector.Search(queryVector, fetchLimit)
	if err != nil {
		return nil, err
	}

	fused := Fuse([][]int64{toIDs(lexResults), toIDs(vecResults)}, h.rrfK)
	if len(fused) > limit {
		fused = fused[:limit]
	}

	scores := normalizeScores(fused)

	hits := make([]Hit, 0, len(fused))
	for i, f := range fused {
		frag, err := h.st.GetFragment(f.ID)
		if err != nil {
			return nil, err
		}
		if frag == nil {
			continue
		}
		file, err := h.st.GetFileByID(frag.FileID)
		if err != nil {
			return nil, err
		}
		path := ""
		if file != nil {
			path = file.Path
		}
		hits = append(hits, Hit{
			FragmentID: frag.ID,
			FilePath:   path,
			Position:   frag.Position,
			Text:       frag.Text,
			Score:      scores[i],
		})
	}
	return hits, nil
}

func toIDs(ranked []RankedID) []int64 {
	out := make([]int64, len(ranked))
	for i, r := range ranked {
		out[i] = r.ID
	}
	return out
}

// normalizeScores min-max normalizes fused scores across the retained
// prefix. Scores that are all equal map to 1.0, so the top result always
// receives 1.0.
func normalizeScores(fused []FusedResult) []float64 {
	out := make([]float64, len(fused))
	if len(fused) == 0 {
		return out
	}

	min, max := fused[0].Score, fused[0].Score
	for _, f := range fused {
		if f.Score < min {
			min = f.Score
		}
		if f.Score > max {
			max = f.Score
		}
	}

	if max == min {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}

	for i, f := range fused {
		out[i] = (f.Score - min) / (max - min)
	}
	return out
}
