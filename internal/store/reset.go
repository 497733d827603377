package store

import "github.com/timbuchinger/context-cache/internal/ctxerrors"

// Reset truncates every content table, clears autoincrement counters, and
// reclaims space. The schema itself is left in place.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return ctxerrors.Schema("failed to begin reset transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`DELETE FROM fragments_fts`,
		`DELETE FROM exchanges`,
		`DELETE FROM conversations`,
		`DELETE FROM fragments`,
		`DELETE FROM files`,
		`DELETE FROM sqlite_sequence WHERE name IN ('files', 'fragments')`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return ctxerrors.Schema("failed to reset store", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ctxerrors.Schema("failed to commit reset", err)
	}

	if _, err := s.db.Exec(`VACUUM`); err != nil {
		return ctxerrors.Schema("failed to vacuum after reset", err)
	}
	return nil
}
