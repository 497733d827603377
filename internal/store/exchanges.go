package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// InsertExchange inserts a single Exchange row. Exchanges are always
// inserted as part of a whole-Conversation reconciliation (delete-then-
// reinsert), so there is no upsert variant.
func (s *Store) InsertExchange(e *Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO exchanges
			(id, conversation_id, position, timestamp, user_text, assistant_text, tool_calls, parent_turn_id, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ConversationID, e.Position, e.Timestamp.Format(time.RFC3339),
		e.UserText, e.AssistantText, joinToolCalls(e.ToolCalls), e.ParentTurnID,
		EncodeEmbedding(e.Embedding),
	)
	if err != nil {
		return ctxerrors.Schema("failed to insert exchange", err)
	}
	return nil
}

func joinToolCalls(calls []string) string {
	return strings.Join(calls, "\x1f")
}

// DeleteExchangesByConversation removes every Exchange owned by
// conversationID.
func (s *Store) DeleteExchangesByConversation(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM exchanges WHERE conversation_id = ?`, conversationID); err != nil {
		return ctxerrors.Schema("failed to delete exchanges", err)
	}
	return nil
}

// GetExchangesByConversation returns every Exchange of conversationID,
// ordered by position.
func (s *Store) GetExchangesByConversation(conversationID string) ([]*Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, conversation_id, position, timestamp, user_text, assistant_text, tool_calls, parent_turn_id, embedding
		FROM exchanges WHERE conversation_id = ? ORDER BY position`,
		conversationID,
	)
	if err != nil {
		return nil, ctxerrors.Schema("failed to query exchanges", err)
	}
	defer rows.Close()

	var out []*Exchange
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AllExchangesWithEmbeddings returns every Exchange row whose embedding is
// present.
func (s *Store) AllExchangesWithEmbeddings() ([]*Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, conversation_id, position, timestamp, user_text, assistant_text, tool_calls, parent_turn_id, embedding
		FROM exchanges WHERE embedding IS NOT NULL`,
	)
	if err != nil {
		return nil, ctxerrors.Schema("failed to query embedded exchanges", err)
	}
	defer rows.Close()

	var out []*Exchange
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExchangeCount returns the number of Exchange rows.
func (s *Store) ExchangeCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM exchanges`).Scan(&n); err != nil {
		return 0, ctxerrors.Schema("failed to count exchanges", err)
	}
	return n, nil
}

func scanExchange(rows *sql.Rows) (*Exchange, error) {
	var e Exchange
	var ts string
	var toolCalls, parentTurnID sql.NullString
	var embedding []byte
	if err := rows.Scan(&e.ID, &e.ConversationID, &e.Position, &ts, &e.UserText, &e.AssistantText, &toolCalls, &parentTurnID, &embedding); err != nil {
		return nil, ctxerrors.Schema("failed to scan exchange row", err)
	}
	if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
		e.Timestamp = parsed
	}
	if toolCalls.String != "" {
		e.ToolCalls = strings.Split(toolCalls.String, "\x1f")
	}
	e.ParentTurnID = parentTurnID.String
	if embedding != nil {
		e.Embedding = bytesToFloat32s(embedding)
		e.HasEmbed = true
	}
	return &e, nil
}
