package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertFile_InsertThenUpdate(t *testing.T) {
	s := openTestStore(t)

	id, err := s.UpsertFile("notes/a.md", "hash1")
	require.NoError(t, err)
	assert.NotZero(t, id)

	again, err := s.UpsertFile("notes/a.md", "hash2")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	f, err := s.GetFileByPath("notes/a.md")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "hash2", f.Fingerprint)
}

func TestGetFileByPath_MissingReturnsNilNotError(t *testing.T) {
	s := openTestStore(t)
	f, err := s.GetFileByPath("does/not/exist.md")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestDeleteFile_CascadesFragmentsAndShadowRows(t *testing.T) {
	s := openTestStore(t)

	fileID, err := s.UpsertFile("notes/a.md", "hash1")
	require.NoError(t, err)

	err = s.WithTx(func(tx *Tx) error {
		_, err := tx.InsertFragment(fileID, 0, "hello world", "hello world", nil)
		return err
	})
	require.NoError(t, err)

	count, err := s.FragmentShadowCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.DeleteFile(fileID))

	count, err = s.FragmentShadowCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	fragCount, err := s.FragmentCount()
	require.NoError(t, err)
	assert.Equal(t, 0, fragCount)
}

func TestInsertFragment_WithEmbeddingRoundTrips(t *testing.T) {
	s := openTestStore(t)

	fileID, err := s.UpsertFile("notes/a.md", "hash1")
	require.NoError(t, err)

	vec := []float32{0.1, 0.2, 0.3}
	var fragID int64
	err = s.WithTx(func(tx *Tx) error {
		id, err := tx.InsertFragment(fileID, 0, "text", "text", EncodeEmbedding(vec))
		fragID = id
		return err
	})
	require.NoError(t, err)

	frag, err := s.GetFragment(fragID)
	require.NoError(t, err)
	require.NotNil(t, frag)
	require.True(t, frag.HasEmbed)
	assert.InDeltaSlice(t, vec, frag.Embedding, 1e-6)
}

func TestFragmentWithoutEmbedding_RemainsVisibleButIneligibleForVector(t *testing.T) {
	s := openTestStore(t)

	fileID, err := s.UpsertFile("notes/a.md", "hash1")
	require.NoError(t, err)

	err = s.WithTx(func(tx *Tx) error {
		_, err := tx.InsertFragment(fileID, 0, "no embedding here", "no embedding here", nil)
		return err
	})
	require.NoError(t, err)

	frags, err := s.GetFragmentsByFile(fileID)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.False(t, frags[0].HasEmbed)

	embedded, err := s.AllFragmentsWithEmbeddings()
	require.NoError(t, err)
	assert.Empty(t, embedded)
}

func TestReset_ClearsAllTables(t *testing.T) {
	s := openTestStore(t)

	fileID, err := s.UpsertFile("notes/a.md", "hash1")
	require.NoError(t, err)
	require.NoError(t, s.WithTx(func(tx *Tx) error {
		_, err := tx.InsertFragment(fileID, 0, "text", "text", nil)
		return err
	}))
	require.NoError(t, s.UpsertConversation(&Conversation{ID: "conv-1", SourceTag: "claude-code"}))

	require.NoError(t, s.Reset())

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.FileCount)
	assert.Zero(t, stats.FragmentCount)
	assert.Zero(t, stats.ConversationCount)

	shadowCount, err := s.FragmentShadowCount()
	require.NoError(t, err)
	assert.Zero(t, shadowCount)
}
