package store

import (
	"database/sql"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// Tx is a scoped transaction handle used by the indexers to make a parent's
// delete/update, its children's delete, and its children's insert atomic
// (spec §5 ordering guarantee).
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a single transaction. If fn returns an error the
// transaction is rolled back and the error is returned; otherwise it is
// committed. Use for the per-artifact parent+children write spec §5
// requires to be atomic.
func (s *Store) WithTx(fn func(*Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.Begin()
	if err != nil {
		return ctxerrors.Schema("failed to begin transaction", err)
	}

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return ctxerrors.Schema("failed to commit transaction", err)
	}
	return nil
}

// UpsertFile inside an existing transaction; mirrors Store.UpsertFile.
func (t *Tx) UpsertFile(path, fingerprint string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(`SELECT id FROM files WHERE path = ?`, path).Scan(&id)
	if err == sql.ErrNoRows {
		res, err := t.tx.Exec(`INSERT INTO files (path, fingerprint) VALUES (?, ?)`, path, fingerprint)
		if err != nil {
			return 0, ctxerrors.Schema("failed to insert file", err)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, ctxerrors.Schema("failed to query file", err)
	}
	if _, err := t.tx.Exec(`UPDATE files SET fingerprint = ?, last_updated = CURRENT_TIMESTAMP WHERE id = ?`, fingerprint, id); err != nil {
		return 0, ctxerrors.Schema("failed to update file", err)
	}
	return id, nil
}

// DeleteFragmentsByFile deletes every Fragment owned by fileID, and the
// matching lexical shadow rows, within the transaction.
func (t *Tx) DeleteFragmentsByFile(fileID int64) error {
	return deleteFragmentShadowRowsForFile(t.tx, fileID)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
}

func deleteFragmentShadowRowsForFile(e execer, fileID int64) error {
	rows, err := e.Query(`SELECT id FROM fragments WHERE file_id = ?`, fileID)
	if err != nil {
		return ctxerrors.Schema("failed to list fragments for deletion", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return ctxerrors.Schema("failed to scan fragment id", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ctxerrors.Schema("failed to iterate fragments", err)
	}

	for _, id := range ids {
		if _, err := e.Exec(`DELETE FROM fragments_fts WHERE doc_id = ?`, id); err != nil {
			return ctxerrors.Schema("failed to delete fragment shadow row", err)
		}
	}
	if _, err := e.Exec(`DELETE FROM fragments WHERE file_id = ?`, fileID); err != nil {
		return ctxerrors.Schema("failed to delete fragments", err)
	}
	return nil
}

// InsertFragment inserts a Fragment (with its embedding bytes, if any) and
// its lexical shadow row within the transaction, atomically.
func (t *Tx) InsertFragment(fileID int64, position int, text, rawText string, embedding []byte) (int64, error) {
	res, err := t.tx.Exec(
		`INSERT INTO fragments (file_id, position, processed_text, original_text, embedding) VALUES (?, ?, ?, ?, ?)`,
		fileID, position, text, rawText, embedding,
	)
	if err != nil {
		return 0, ctxerrors.Schema("failed to insert fragment", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, ctxerrors.Schema("failed to read inserted fragment id", err)
	}

	if _, err := t.tx.Exec(`INSERT INTO fragments_fts (doc_id, content) VALUES (?, ?)`, id, text); err != nil {
		return 0, ctxerrors.Schema("failed to insert fragment shadow row", err)
	}

	return id, nil
}

// GetFragmentsByFile returns every Fragment of fileID, ordered by position.
func (s *Store) GetFragmentsByFile(fileID int64) ([]*Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, file_id, position, processed_text, original_text, embedding FROM fragments WHERE file_id = ? ORDER BY position`,
		fileID,
	)
	if err != nil {
		return nil, ctxerrors.Schema("failed to query fragments", err)
	}
	defer rows.Close()

	var out []*Fragment
	for rows.Next() {
		f, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetFragment returns the Fragment with id, or nil if absent.
func (s *Store) GetFragment(id int64) (*Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, file_id, position, processed_text, original_text, embedding FROM fragments WHERE id = ?`,
		id,
	)
	var f Fragment
	var embedding []byte
	err := row.Scan(&f.ID, &f.FileID, &f.Position, &f.Text, &f.RawText, &embedding)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, ctxerrors.Schema("failed to query fragment", err)
	}
	if embedding != nil {
		f.Embedding = bytesToFloat32s(embedding)
		f.HasEmbed = true
	}
	return &f, nil
}

// AllFragmentsWithEmbeddings returns every Fragment row whose embedding is
// present, in insertion order.
func (s *Store) AllFragmentsWithEmbeddings() ([]*Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, file_id, position, processed_text, original_text, embedding FROM fragments WHERE embedding IS NOT NULL ORDER BY id`,
	)
	if err != nil {
		return nil, ctxerrors.Schema("failed to query embedded fragments", err)
	}
	defer rows.Close()

	var out []*Fragment
	for rows.Next() {
		f, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFragment(rows *sql.Rows) (*Fragment, error) {
	var f Fragment
	var embedding []byte
	if err := rows.Scan(&f.ID, &f.FileID, &f.Position, &f.Text, &f.RawText, &embedding); err != nil {
		return nil, ctxerrors.Schema("failed to scan fragment row", err)
	}
	if embedding != nil {
		f.Embedding = bytesToFloat32s(embedding)
		f.HasEmbed = true
	}
	return &f, nil
}

// FragmentShadowCount returns the number of rows in the lexical shadow
// table, used by consistency checks (testable property 4).
func (s *Store) FragmentShadowCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM fragments_fts`).Scan(&n); err != nil {
		return 0, ctxerrors.Schema("failed to count shadow rows", err)
	}
	return n, nil
}

// FragmentCount returns the number of Fragment rows.
func (s *Store) FragmentCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM fragments`).Scan(&n); err != nil {
		return 0, ctxerrors.Schema("failed to count fragments", err)
	}
	return n, nil
}
