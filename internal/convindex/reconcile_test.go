package convindex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbuchinger/context-cache/internal/store"
)

type fakeSource struct {
	tag       string
	artifacts []string
	byID      map[string]*ParsedConversation
}

func (f *fakeSource) SourceTag() string                  { return f.tag }
func (f *fakeSource) CurrentArtifacts() ([]string, error) { return f.artifacts, nil }
func (f *fakeSource) Parse(artifact string) (*ParsedConversation, error) {
	return f.byID[artifact], nil
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestReconcile_AddsNewConversation(t *testing.T) {
	s := openTestStore(t)
	src := &fakeSource{
		tag:       "claude-code",
		artifacts: []string{"conv-1"},
		byID: map[string]*ParsedConversation{
			"conv-1": {
				ID: "conv-1", SessionID: "conv-1", Timestamp: time.Now(),
				Exchanges: []ParsedExchange{{Position: 0, UserText: "hi", AssistantText: "hello"}},
			},
		},
	}

	idx := New(s, nil)
	sum, err := idx.Reconcile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Added)
	assert.Equal(t, 1, sum.NewExchanges)
}

func TestReconcile_SkipsUnchangedConversation(t *testing.T) {
	s := openTestStore(t)
	src := &fakeSource{
		tag:       "claude-code",
		artifacts: []string{"conv-1"},
		byID: map[string]*ParsedConversation{
			"conv-1": {
				ID: "conv-1", SessionID: "conv-1", Timestamp: time.Now(),
				Exchanges: []ParsedExchange{{Position: 0, UserText: "hi", AssistantText: "hello"}},
			},
		},
	}

	idx := New(s, nil)
	_, err := idx.Reconcile(context.Background(), src)
	require.NoError(t, err)

	sum, err := idx.Reconcile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.Zero(t, sum.Added)
}

func TestReconcile_ReplacesExchangesOnShrink(t *testing.T) {
	s := openTestStore(t)
	src := &fakeSource{
		tag:       "claude-code",
		artifacts: []string{"conv-1"},
		byID: map[string]*ParsedConversation{
			"conv-1": {
				ID: "conv-1", SessionID: "conv-1", Timestamp: time.Now(),
				Exchanges: []ParsedExchange{
					{Position: 0, UserText: "hi", AssistantText: "hello"},
					{Position: 1, UserText: "more", AssistantText: "stuff"},
					{Position: 2, UserText: "last", AssistantText: "one"},
				},
			},
		},
	}

	idx := New(s, nil)
	_, err := idx.Reconcile(context.Background(), src)
	require.NoError(t, err)

	src.byID["conv-1"].Exchanges = []ParsedExchange{{Position: 0, UserText: "only", AssistantText: "this"}}
	sum, err := idx.Reconcile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Updated)

	exchanges, err := s.GetExchangesByConversation("conv-1")
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, "only", exchanges[0].UserText)

	conv, err := s.GetConversationByID("conv-1")
	require.NoError(t, err)
	assert.Equal(t, 1, conv.ExchangeCount)
}

func TestReconcile_DeletesMissingConversation(t *testing.T) {
	s := openTestStore(t)
	src := &fakeSource{
		tag:       "claude-code",
		artifacts: []string{"conv-1"},
		byID: map[string]*ParsedConversation{
			"conv-1": {ID: "conv-1", SessionID: "conv-1", Timestamp: time.Now()},
		},
	}

	idx := New(s, nil)
	_, err := idx.Reconcile(context.Background(), src)
	require.NoError(t, err)

	src.artifacts = nil
	sum, err := idx.Reconcile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Deleted)

	conv, err := s.GetConversationByID("conv-1")
	require.NoError(t, err)
	assert.Nil(t, conv)
}
