package store

import "github.com/timbuchinger/context-cache/internal/ctxerrors"

// ConversationSearchRow is one hydrated hit from QueryConversations.
type ConversationSearchRow struct {
	ConversationID string
	SessionID      string
	Timestamp      string
	SourceTag      string
	Position       int
	UserText       string
	AssistantText  string
	ArchivePath    string
}

// QueryConversations joins Exchanges to their Conversation and returns rows
// where either text column contains substring (case-sensitive) and the
// Conversation's timestamp falls within [after, before] (either bound may
// be empty to mean unbounded), ordered by Conversation timestamp descending
// then Exchange position ascending, capped at limit.
func (s *Store) QueryConversations(substring, after, before string, limit int) ([]ConversationSearchRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT c.id, c.session_id, c.timestamp, c.source_tag, e.position, e.user_text, e.assistant_text, c.archive_path
		FROM exchanges e
		JOIN conversations c ON c.id = e.conversation_id
		WHERE (instr(e.user_text, ?) > 0 OR instr(e.assistant_text, ?) > 0)`
	args := []any{substring, substring}

	if after != "" {
		query += ` AND c.timestamp >= ?`
		args = append(args, after)
	}
	if before != "" {
		query += ` AND c.timestamp <= ?`
		args = append(args, before)
	}
	query += ` ORDER BY c.timestamp DESC, e.position ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, ctxerrors.Schema("conversation search failed", err)
	}
	defer rows.Close()

	var out []ConversationSearchRow
	for rows.Next() {
		var r ConversationSearchRow
		if err := rows.Scan(&r.ConversationID, &r.SessionID, &r.Timestamp, &r.SourceTag, &r.Position, &r.UserText, &r.AssistantText, &r.ArchivePath); err != nil {
			return nil, ctxerrors.Schema("failed to scan conversation search row", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
