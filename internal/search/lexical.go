// Package search implements the engine's two rankers (lexical, vector),
// their Reciprocal Rank Fusion, and the public hybrid and conversation
// search entry points.
package search

import (
	"strings"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
	"github.com/timbuchinger/context-cache/internal/store"
)

// RankedID pairs a Fragment identifier with its rank-producing score.
type RankedID struct {
	ID    int64
	Score float64
}

// LexicalRanker runs full-text queries against the store's native BM25
// implementation (FTS5).
type LexicalRanker struct {
	st *store.Store
}

// NewLexicalRanker wraps st.
func NewLexicalRanker(st *store.Store) *LexicalRanker {
	return &LexicalRanker{st: st}
}

// Search returns up to limit (fragment id, bm25 score) pairs ordered
// ascending by score (smaller is better, per FTS5's bm25() convention). It
// never raises on a query that matches nothing.
func (r *LexicalRanker) Search(query string, limit int) ([]RankedID, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	rows, err := r.st.QueryLexical(query, limit)
	if err != nil {
		return nil, ctxerrors.Schema("lexical search failed", err)
	}
	out := make([]RankedID, 0, len(rows))
	for _, row := range rows {
		out = append(out, RankedID{ID: row.DocID, Score: row.Score})
	}
	return out, nil
}
