// Package sqlite provides a SQLite-backed persistent store that snapshots the
// full in-memory state to a single bucket table after each successful
// transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ipstudio/internal/infra/persistence/memory"
	"ipstudio/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.PersistentStore = (*Store)(nil)

// Store persists state to SQLite while reusing the in-memory implementation
// for transactional semantics.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore constructs a snapshotting SQLite-backed persistent store and
// hydrates it from any existing snapshot at path.
func NewStore(path string, engine *domain.RulesEngine) (*Store, error) {
	if path == "" {
		path = "ipstudio.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	mem := memory.NewStore(engine)
	s := &Store{Store: mem, db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

var sqliteBuckets = []string{
	"orgs",
	"personas",
	"epochs",
	"evidences",
	"references",
	"contents",
	"leads",
	"inbox",
	"reports",
	"settings",
	"sessions",
}

func snapshotTargets(snapshot *memory.Snapshot) map[string]any {
	return map[string]any{
		"orgs":       &snapshot.Orgs,
		"personas":   &snapshot.Personas,
		"epochs":     &snapshot.Epochs,
		"evidences":  &snapshot.Evidences,
		"references": &snapshot.References,
		"contents":   &snapshot.Contents,
		"leads":      &snapshot.Leads,
		"inbox":      &snapshot.Inbox,
		"reports":    &snapshot.Reports,
		"settings":   &snapshot.Settings,
		"sessions":   &snapshot.Sessions,
	}
}

func snapshotSources(snapshot memory.Snapshot) map[string]any {
	return map[string]any{
		"orgs":       snapshot.Orgs,
		"personas":   snapshot.Personas,
		"epochs":     snapshot.Epochs,
		"evidences":  snapshot.Evidences,
		"references": snapshot.References,
		"contents":   snapshot.Contents,
		"leads":      snapshot.Leads,
		"inbox":      snapshot.Inbox,
		"reports":    snapshot.Reports,
		"settings":   snapshot.Settings,
		"sessions":   snapshot.Sessions,
	}
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	type raw struct {
		bucket  string
		payload []byte
	}
	var raws []raw
	for rows.Next() {
		var r raw
		if err := rows.Scan(&r.bucket, &r.payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if len(raws) == 0 {
		return nil
	}
	snapshot := memory.Snapshot{}
	targets := snapshotTargets(&snapshot)
	for _, r := range raws {
		target, ok := targets[r.bucket]
		if !ok || len(r.payload) == 0 {
			continue
		}
		if err := json.Unmarshal(r.payload, target); err != nil {
			return fmt.Errorf("decode %s: %w", r.bucket, err)
		}
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	sources := snapshotSources(snapshot)
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range sqliteBuckets {
		data, err := json.Marshal(sources[bucket])
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

// RunInTransaction applies the provided function within a transaction, then
// snapshots state to SQLite if successful.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(); pErr != nil {
		return res, pErr
	}
	return res, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
