package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbuchinger/context-cache/internal/store"
)

func TestVectorRanker_OrdersBySimilarityDescending(t *testing.T) {
	s := openTestStore(t)
	fileID, err := s.UpsertFile("a.md", "h1")
	require.NoError(t, err)

	require.NoError(t, s.WithTx(func(tx *store.Tx) error {
		if _, err := tx.InsertFragment(fileID, 0, "close", "", store.EncodeEmbedding([]float32{1, 0, 0})); err != nil {
			return err
		}
		_, err := tx.InsertFragment(fileID, 1, "far", "", store.EncodeEmbedding([]float32{0, 1, 0}))
		return err
	}))

	r := NewVectorRanker(s)
	results, err := r.Search([]float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestVectorRanker_ExcludesZeroNormEmbeddings(t *testing.T) {
	s := openTestStore(t)
	fileID, err := s.UpsertFile("a.md", "h1")
	require.NoError(t, err)

	require.NoError(t, s.WithTx(func(tx *store.Tx) error {
		_, err := tx.InsertFragment(fileID, 0, "zero", "", store.EncodeEmbedding([]float32{0, 0, 0}))
		return err
	}))

	r := NewVectorRanker(s)
	results, err := r.Search([]float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorRanker_ZeroQueryVectorYieldsNoResults(t *testing.T) {
	s := openTestStore(t)
	r := NewVectorRanker(s)
	results, err := r.Search([]float32{0, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
