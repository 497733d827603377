package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbuchinger/context-cache/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLexicalRanker_MatchesAndOrdersByBM25(t *testing.T) {
	s := openTestStore(t)
	fileID, err := s.UpsertFile("a.md", "h1")
	require.NoError(t, err)

	require.NoError(t, s.WithTx(func(tx *store.Tx) error {
		if _, err := tx.InsertFragment(fileID, 0, "the quick brown fox jumps", "", nil); err != nil {
			return err
		}
		_, err := tx.InsertFragment(fileID, 1, "an unrelated sentence about cats", "", nil)
		return err
	}))

	r := NewLexicalRanker(s)
	results, err := r.Search("fox", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestLexicalRanker_EmptyQueryReturnsNoResults(t *testing.T) {
	s := openTestStore(t)
	r := NewLexicalRanker(s)
	results, err := r.Search("   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalRanker_NoMatchReturnsEmptyNotError(t *testing.T) {
	s := openTestStore(t)
	fileID, err := s.UpsertFile("a.md", "h1")
	require.NoError(t, err)
	require.NoError(t, s.WithTx(func(tx *store.Tx) error {
		_, err := tx.InsertFragment(fileID, 0, "hello world", "", nil)
		return err
	}))

	r := NewLexicalRanker(s)
	results, err := r.Search("nonexistentterm", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
