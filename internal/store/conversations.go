package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// UpsertConversation inserts or replaces a Conversation row by ID. Since
// Conversations are always re-ingested wholesale (their Exchanges deleted and
// reinserted as a set), a plain replace is sufficient; there is no partial
// update path.
func (s *Store) UpsertConversation(c *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO conversations
			(id, source_tag, session_id, timestamp, archive_path, exchange_count, fingerprint, last_indexed, client_version, working_directory)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_tag = excluded.source_tag,
			session_id = excluded.session_id,
			timestamp = excluded.timestamp,
			archive_path = excluded.archive_path,
			exchange_count = excluded.exchange_count,
			fingerprint = excluded.fingerprint,
			last_indexed = excluded.last_indexed,
			client_version = excluded.client_version,
			working_directory = excluded.working_directory`,
		c.ID, c.SourceTag, c.ID, c.IngestedAt.Format(time.RFC3339), c.ArchivePath,
		c.ExchangeCount, c.Fingerprint, time.Now().Unix(), c.ClientVersion, c.WorkingDir,
	)
	if err != nil {
		return ctxerrors.Schema("failed to upsert conversation", err)
	}
	return nil
}

// UpsertConversation inside an existing transaction; mirrors
// Store.UpsertConversation.
func (t *Tx) UpsertConversation(c *Conversation) error {
	_, err := t.tx.Exec(
		`INSERT INTO conversations
			(id, source_tag, session_id, timestamp, archive_path, exchange_count, fingerprint, last_indexed, client_version, working_directory)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_tag = excluded.source_tag,
			session_id = excluded.session_id,
			timestamp = excluded.timestamp,
			archive_path = excluded.archive_path,
			exchange_count = excluded.exchange_count,
			fingerprint = excluded.fingerprint,
			last_indexed = excluded.last_indexed,
			client_version = excluded.client_version,
			working_directory = excluded.working_directory`,
		c.ID, c.SourceTag, c.ID, c.IngestedAt.Format(time.RFC3339), c.ArchivePath,
		c.ExchangeCount, c.Fingerprint, time.Now().Unix(), c.ClientVersion, c.WorkingDir,
	)
	if err != nil {
		return ctxerrors.Schema("failed to upsert conversation", err)
	}
	return nil
}

// DeleteExchangesByConversation inside an existing transaction; mirrors
// Store.DeleteExchangesByConversation.
func (t *Tx) DeleteExchangesByConversation(conversationID string) error {
	if _, err := t.tx.Exec(`DELETE FROM exchanges WHERE conversation_id = ?`, conversationID); err != nil {
		return ctxerrors.Schema("failed to delete exchanges", err)
	}
	return nil
}

// InsertExchange inside an existing transaction; mirrors Store.InsertExchange.
func (t *Tx) InsertExchange(e *Exchange) error {
	_, err := t.tx.Exec(
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

// GetConversationByID returns the Conversation with id, or nil if absent.
func (s *Store) GetConversationByID(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, source_tag, timestamp, archive_path, exchange_count, fingerprint, client_version, working_directory
		FROM conversations WHERE id = ?`,
		id,
	)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, ctxerrors.Schema("failed to query conversation", err)
	}
	return c, nil
}

// ListConversationsBySourceTag returns every Conversation with the given
// source tag, newest first. An empty tag matches every Conversation.
func (s *Store) ListConversationsBySourceTag(tag string) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, source_tag, timestamp, archive_path, exchange_count, fingerprint, client_version, working_directory
		FROM conversations`
	args := []any{}
	if tag != "" {
		query += ` WHERE source_tag = ?`
		args = append(args, tag)
	}
	query += ` ORDER BY timestamp DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, ctxerrors.Schema("failed to list conversations", err)
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, ctxerrors.Schema("failed to scan conversation row", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteConversation removes a Conversation row. Its Exchanges cascade via
// the conversations→exchanges foreign key.
func (s *Store) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id); err != nil {
		return ctxerrors.Schema("failed to delete conversation", err)
	}
	return nil
}

// ConversationCount returns the number of Conversation rows.
func (s *Store) ConversationCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&n); err != nil {
		return 0, ctxerrors.Schema("failed to count conversations", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var c Conversation
	var ts string
	var clientVersion, workingDir sql.NullString
	if err := row.Scan(&c.ID, &c.SourceTag, &ts, &c.ArchivePath, &c.ExchangeCount, &c.Fingerprint, &clientVersion, &workingDir); err != nil {
		return nil, err
	}
	if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
		c.IngestedAt = parsed
	}
	c.ClientVersion = clientVersion.String
	c.WorkingDir = workingDir.String
	return &c, nil
}
