package convindex

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// ForeignDBSource reads conversations from a read-only sibling SQLite
// database exposing session/message/part tables (the shape an external
// agent client's own local store uses).
type ForeignDBSource struct {
	tag string
	db  *sql.DB
}

// NewForeignDBSource opens path read-only and returns a Source tagged tag
// (e.g. "opencode").
func NewForeignDBSource(tag, path string) (*ForeignDBSource, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, ctxerrors.IngestionItem("failed to open foreign conversation database", err)
	}
	return &ForeignDBSource{tag: tag, db: db}, nil
}

func (s *ForeignDBSource) Close() error { return s.db.Close() }

func (s *ForeignDBSource) SourceTag() string { return s.tag }

// CurrentArtifacts returns every session identifier in the foreign database.
func (s *ForeignDBSource) CurrentArtifacts() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM session`)
	if err != nil {
		return nil, ctxerrors.IngestionItem("failed to list foreign sessions", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, ctxerrors.IngestionItem("failed to scan session id", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type foreignMessagePayload struct {
	Role     string `json:"role"`
	ParentID string `json:"parentID"`
	Time     struct {
		Created int64 `json:"created"`
	} `json:"time"`
}

type foreignPartPayload struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Tool string `json:"tool"`
}

// Parse reads the messages of sessionID and their parts, and builds the
// canonical conversation. User parts concatenate into user text; assistant
// parts concatenate into assistant text; tool-call parts contribute tool
// names. An assistant turn with tool calls but no text is still a valid
// exchange. The session table is not read: the conversation timestamp is
// the first message's creation time, and a session id with no messages
// yields a conversation with no exchanges rather than an error.
func (s *ForeignDBSource) Parse(sessionID string) (*ParsedConversation, error) {
	rows, err := s.db.Query(
		`SELECT id, payload FROM message WHERE session_id = ? ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, ctxerrors.IngestionItem("failed to query foreign messages", err)
	}
	defer rows.Close()

	type message struct {
		id      string
		payload foreignMessagePayload
	}
	var messages []message
	for rows.Next() {
		var m message
		var raw string
		if err := rows.Scan(&m.id, &raw); err != nil {
			return nil, ctxerrors.IngestionItem("failed to scan foreign message", err)
		}
		if err := json.Unmarshal([]byte(raw), &m.payload); err != nil {
			return nil, ctxerrors.IngestionItem("failed to parse foreign message payload", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, ctxerrors.IngestionItem("failed to read foreign messages", err)
	}

	var exchanges []ParsedExchange
	var pendingUser string
	var startTime time.Time
	pos := 0

	for _, m := range messages {
		text, tools, err := s.partsFor(m.id)
		if err != nil {
			return nil, err
		}
		created := time.UnixMilli(m.payload.Time.Created)
		if startTime.IsZero() {
			startTime = created
		}

		switch m.payload.Role {
		case "user":
			pendingUser = text
		case "assistant":
			exchanges = append(exchanges, ParsedExchange{
				Position:      pos,
				Timestamp:     created,
				UserText:      pendingUser,
				AssistantText: text,
				ToolCalls:     tools,
				ParentTurnID:  m.payload.ParentID,
			})
			pos++
			pendingUser = ""
		}
	}

	return &ParsedConversation{
		ID:        sessionID,
		SessionID: sessionID,
		Timestamp: startTime,
		Exchanges: exchanges,
	}, nil
}

func (s *ForeignDBSource) partsFor(messageID string) (string, []string, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM part WHERE message_id = ? ORDER BY created_at`,
		messageID,
	)
	if err != nil {
		return "", nil, ctxerrors.IngestionItem("failed to query foreign parts", err)
	}
	defer rows.Close()

	var texts []string
	var tools []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return "", nil, ctxerrors.IngestionItem("failed to scan foreign part", err)
		}
		var p foreignPartPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return "", nil, ctxerrors.IngestionItem("failed to parse foreign part payload", err)
		}
		switch p.Type {
		case "tool-call":
			if p.Tool != "" {
				tools = append(tools, p.Tool)
			}
		default:
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return "", nil, ctxerrors.IngestionItem("failed to read foreign parts", err)
	}
	return strings.Join(texts, ""), tools, nil
}
