package store

import (
	"fmt"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

const baseSchema = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT UNIQUE NOT NULL,
	fingerprint TEXT NOT NULL,
	first_indexed TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS fragments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	processed_text TEXT NOT NULL,
	original_text TEXT NOT NULL,
	embedding BLOB,
	UNIQUE(file_id, position)
);

-- Lexical shadow: one row per Fragment, keyed by doc_id = fragment id.
-- doc_id is UNINDEXED (stored but not searchable); content is the BM25
-- corpus column. FTS5 doesn't expose external content rowids cheaply, so
-- doc_id is tracked as a plain column rather than the table's rowid.
CREATE VIRTUAL TABLE IF NOT EXISTS fragments_fts USING fts5(
	doc_id UNINDEXED,
	content,
	tokenize = 'unicode61'
);

CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	source_tag TEXT NOT NULL,
	session_id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	archive_path TEXT NOT NULL,
	exchange_count INTEGER NOT NULL DEFAULT 0,
	fingerprint TEXT NOT NULL,
	last_indexed INTEGER,
	client_version TEXT,
	working_directory TEXT
);

CREATE INDEX IF NOT EXISTS idx_conversations_timestamp ON conversations(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id);
CREATE INDEX IF NOT EXISTS idx_conversations_source ON conversations(source_tag);

CREATE TABLE IF NOT EXISTS exchanges (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	user_text TEXT NOT NULL,
	assistant_text TEXT NOT NULL,
	tool_calls TEXT,
	parent_turn_id TEXT,
	embedding BLOB,
	UNIQUE(conversation_id, position)
);

CREATE INDEX IF NOT EXISTS idx_exchanges_conversation ON exchanges(conversation_id);
CREATE INDEX IF NOT EXISTS idx_exchanges_timestamp ON exchanges(timestamp DESC);
`

// createSchema creates every table and index if absent. Schema creation is
// idempotent so repeated Open calls against an existing store are cheap
// no-ops beyond the CREATE IF NOT EXISTS checks.
func (s *Store) createSchema() error {
	if _, err := s.db.Exec(baseSchema); err != nil {
		return ctxerrors.Schema("failed to create schema", err)
	}
	return nil
}

// migrate detects and adds columns that earlier schema versions lacked.
// fingerprint/last_indexed/client_version/working_directory on conversations
// are the columns this engine has historically added after the fact; the
// same detect-and-ALTER pattern would apply to any future column.
func (s *Store) migrate() error {
	existing, err := s.columnSet("conversations")
	if err != nil {
		return ctxerrors.Schema("failed to inspect conversations schema", err)
	}

	wanted := map[string]string{
		"fingerprint":       "TEXT NOT NULL DEFAULT ''",
		"last_indexed":      "INTEGER",
		"client_version":    "TEXT",
		"working_directory": "TEXT",
	}

	for col, decl := range wanted {
		if existing[col] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE conversations ADD COLUMN %s %s", col, decl)
		if _, err := s.db.Exec(stmt); err != nil {
			return ctxerrors.Schema("failed to add column "+col, err)
		}
	}

	return nil
}

func (s *Store) columnSet(table string) (map[string]bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name       string
			ctype      string
			notNull    int
			dfltValue  any
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &primaryKey); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
