package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// Store is the durable embedded relational store backing the engine. A
// single process may hold a writing connection at a time; the advisory
// lock acquired in Open enforces that (see spec §5, §4.15).
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open opens (creating if absent) the store file at path, applies schema
// and migrations, and returns a ready Store. path == ":memory:" opens an
// in-memory store with no file lock, for tests.
func Open(path string) (*Store, error) {
	var lock *flock.Flock
	dsn := path

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, ctxerrors.Schema("failed to create store directory", err)
		}

		lock = flock.New(path + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return nil, ctxerrors.InvalidInput("failed to acquire store lock", err)
		}
		if !locked {
			return nil, ctxerrors.InvalidInput(fmt.Sprintf("store %s is already open for writing by another process", path), nil)
		}

		dsn = path + "?_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, ctxerrors.Schema("failed to open store", err)
	}

	// Single writer: SQLite + WAL does not need a pool here, and a pool of
	// size 1 avoids "database is locked" errors against modernc.org/sqlite.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			if lock != nil {
				_ = lock.Unlock()
			}
			return nil, ctxerrors.Schema("failed to set pragma: "+p, err)
		}
	}

	s := &Store{db: db, path: path, lock: lock}

	if err := s.createSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database handle and the writer lock, if any.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return err
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}
