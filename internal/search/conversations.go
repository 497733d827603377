package search

import (
	"github.com/timbuchinger/context-cache/internal/store"
)

// ConversationHit is a hydrated conversation-search result row.
type ConversationHit struct {
	ConversationID string
	SessionID      string
	Timestamp      string
	SourceTag      string
	Position       int
	UserText       string
	AssistantText  string
	Score          float64 // always 1.0; this is a recall device, not a ranker
	ArchivePath    string
}

// ConversationQuery is the input to conversation search.
type ConversationQuery struct {
	Substring string
	After     string // ISO-8601, inclusive; empty means unbounded
	Before    string // ISO-8601, inclusive; empty means unbounded
	Limit     int
}

// SearchConversations is a recall device, not a relevance device: it finds
// every Exchange whose user or assistant text contains the query substring
// within the given timestamp bounds, ordered by Conversation recency and
// then Exchange position, and returns at most q.Limit of them. It is
// deliberately not fused with the hybrid rankers.
func SearchConversations(st *store.Store, q ConversationQuery) ([]ConversationHit, error) {
	rows, err := st.QueryConversations(q.Substring, q.After, q.Before, q.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]ConversationHit, len(rows))
	for i, r := range rows {
		out[i] = ConversationHit{
			ConversationID: r.ConversationID,
			SessionID:      r.SessionID,
			Timestamp:      r.Timestamp,
			SourceTag:      r.SourceTag,
			Position:       r.Position,
			UserText:       r.UserText,
			AssistantText:  r.AssistantText,
			Score:          1.0,
			ArchivePath:    r.ArchivePath,
		}
	}
	return out, nil
}
