package store

import (
	"database/sql"
	"errors"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// UpsertFile inserts a new File row or, if path already exists, replaces its
// fingerprint and bumps last_updated. Returns the row's identifier.
func (s *Store) UpsertFile(path, fingerprint string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getFileByPathLocked(path)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		_, err := s.db.Exec(
			`UPDATE files SET fingerprint = ?, last_updated = CURRENT_TIMESTAMP WHERE id = ?`,
			fingerprint, existing.ID,
		)
		if err != nil {
			return 0, ctxerrors.Schema("failed to update file fingerprint", err)
		}
		return existing.ID, nil
	}

	res, err := s.db.Exec(
		`INSERT INTO files (path, fingerprint) VALUES (?, ?)`,
		path, fingerprint,
	)
	if err != nil {
		return 0, ctxerrors.Schema("failed to insert file", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, ctxerrors.Schema("failed to read inserted file id", err)
	}
	return id, nil
}

// UpdateFileFingerprint sets a File's fingerprint and bumps last_updated.
func (s *Store) UpdateFileFingerprint(id int64, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`UPDATE files SET fingerprint = ?, last_updated = CURRENT_TIMESTAMP WHERE id = ?`,
		fingerprint, id,
	)
	if err != nil {
		return ctxerrors.Schema("failed to update file fingerprint", err)
	}
	return nil
}

// GetFileByPath returns the File at path, or nil if absent (NotFound is
// represented as a nil result, never an error).
func (s *Store) GetFileByPath(path string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getFileByPathLocked(path)
}

func (s *Store) getFileByPathLocked(path string) (*File, error) {
	row := s.db.QueryRow(
		`SELECT id, path, fingerprint, first_indexed, last_updated FROM files WHERE path = ?`,
		path,
	)
	var f File
	err := row.Scan(&f.ID, &f.Path, &f.Fingerprint, &f.FirstSeen, &f.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, ctxerrors.Schema("failed to query file by path", err)
	}
	return &f, nil
}

// GetFileByID returns the File with id, or nil if absent.
func (s *Store) GetFileByID(id int64) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, path, fingerprint, first_indexed, last_updated FROM files WHERE id = ?`,
		id,
	)
	var f File
	err := row.Scan(&f.ID, &f.Path, &f.Fingerprint, &f.FirstSeen, &f.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, ctxerrors.Schema("failed to query file by id", err)
	}
	return &f, nil
}

// ListFiles returns every File row, in no particular order.
func (s *Store) ListFiles() ([]*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, path, fingerprint, first_indexed, last_updated FROM files`)
	if err != nil {
		return nil, ctxerrors.Schema("failed to list files", err)
	}
	defer rows.Close()

	var out []*File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Path, &f.Fingerprint, &f.FirstSeen, &f.LastUpdated); err != nil {
			return nil, ctxerrors.Schema("failed to scan file row", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// DeleteFile removes a File row. Its Fragments cascade via the files→fragments
// foreign key; the lexical shadow rows for those Fragments have no FK
// relationship to the virtual FTS5 table, so they are removed explicitly in
// the same transaction (spec §3: "on Fragment deletion the [shadow] row is
// removed in the same transaction").
func (s *Store) DeleteFile(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return ctxerrors.Schema("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteFragmentShadowRowsForFile(tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE id = ?`, id); err != nil {
		return ctxerrors.Schema("failed to delete file", err)
	}

	if err := tx.Commit(); err != nil {
		return ctxerrors.Schema("failed to commit file delete", err)
	}
	return nil
}
