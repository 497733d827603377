package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertConversation_InsertThenReplace(t *testing.T) {
	s := openTestStore(t)

	c := &Conversation{ID: "conv-1", SourceTag: "claude-code", IngestedAt: time.Now(), Fingerprint: "f1"}
	require.NoError(t, s.UpsertConversation(c))

	c.Fingerprint = "f2"
	require.NoError(t, s.UpsertConversation(c))

	got, err := s.GetConversationByID("conv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "f2", got.Fingerprint)
}

func TestDeleteConversation_CascadesExchanges(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpsertConversation(&Conversation{ID: "conv-1", SourceTag: "claude-code", IngestedAt: time.Now()}))
	require.NoError(t, s.InsertExchange(&Exchange{
		ID: ExchangeID("conv-1", 0), ConversationID: "conv-1", Position: 0,
		Timestamp: time.Now(), UserText: "hi", AssistantText: "hello",
	}))

	require.NoError(t, s.DeleteConversation("conv-1"))

	exchanges, err := s.GetExchangesByConversation("conv-1")
	require.NoError(t, err)
	assert.Empty(t, exchanges)
}

func TestListConversationsBySourceTag_FiltersAndOrders(t *testing.T) {
	s := openTestStore(t)

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	require.NoError(t, s.UpsertConversation(&Conversation{ID: "c1", SourceTag: "claude-code", IngestedAt: older}))
	require.NoError(t, s.UpsertConversation(&Conversation{ID: "c2", SourceTag: "claude-code", IngestedAt: newer}))
	require.NoError(t, s.UpsertConversation(&Conversation{ID: "c3", SourceTag: "opencode", IngestedAt: newer}))

	list, err := s.ListConversationsBySourceTag("claude-code")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
	assert.Equal(t, "c1", list[1].ID)
}

func TestExchangeID_IsDeterministic(t *testing.T) {
	assert.Equal(t, "conv-1#3", ExchangeID("conv-1", 3))
	assert.Equal(t, ExchangeID("conv-1", 3), ExchangeID("conv-1", 3))
}
