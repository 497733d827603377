package store

import "strings"

// LexicalRow is one hit from the lexical shadow table, paired with its raw
// bm25() score.
type LexicalRow struct {
	DocID int64
	Score float64
}

// QueryLexical runs a full-text MATCH query against the lexical shadow
// table and returns up to limit rows ordered by bm25() score ascending
// (smaller is better, FTS5's native convention). Queries that fail to
// parse as FTS5 MATCH syntax are treated as matching nothing, not an
// error, since arbitrary user queries may contain FTS5 operator characters.
func (s *Store) QueryLexical(query string, limit int) ([]LexicalRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT doc_id, bm25(fragments_fts) AS score
		FROM fragments_fts
		WHERE fragments_fts MATCH ?
		ORDER BY score
		LIMIT ?`,
		query, limit,
	)
	if err != nil {
		if strings.Contains(err.Error(), "fts5") || strings.Contains(err.Error(), "syntax error") {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var out []LexicalRow
	for rows.Next() {
		var row LexicalRow
		if err := rows.Scan(&row.DocID, &row.Score); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
