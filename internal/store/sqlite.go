package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/order-incidents/internal/model"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func([]byte)
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:   db,
		subs: make(map[string]map[int]func([]byte)),
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading key %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set overwrites the value under key and notifies subscribers.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = kv.revision + 1,
			updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}

	s.notify(key, value)
	return nil
}

// Revision returns the write count of key.
func (s *SQLiteStore) Revision(ctx context.Context, key string) (int64, error) {
	var rev int64
	err := s.db.GetContext(ctx, &rev, "SELECT revision FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading revision of %s: %w", key, err)
	}
	return rev, nil
}

// Subscribe registers fn for writes to key made through this store.
func (s *SQLiteStore) Subscribe(key string, fn func(value []byte)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func([]byte))
	}
	s.subs[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[key], id)
	}
}

// notify calls the subscribers of key outside the lock, so a callback may
// itself subscribe or unsubscribe.
func (s *SQLiteStore) notify(key string, value []byte) {
	s.mu.Lock()
	fns := make([]func([]byte), 0, len(s.subs[key]))
	for _, fn := range s.subs[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// RecordBatch inserts an import batch record.
// If the batch has no ID, a new UUID is generated.
func (s *SQLiteStore) RecordBatch(ctx context.Context, b model.ImportBatch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO import_batches (
			id, kind, source, imported, duplicates, skipped, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.Kind), b.Source,
		b.Imported, b.Duplicates, b.Skipped,
		b.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording batch %s: %w", b.ID, err)
	}
	return nil
}

// GetBatches returns the most recent import batches, newest first.
// A limit of zero or less returns every batch.
func (s *SQLiteStore) GetBatches(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	query := `
		SELECT id, kind, source, imported, duplicates, skipped, created_at
		FROM import_batches
		ORDER BY created_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var batches []model.ImportBatch
	for rows.Next() {
		var (
			b    model.ImportBatch
			kind string
		)
		err := rows.Scan(
			&b.ID, &kind, &b.Source,
			&b.Imported, &b.Duplicates, &b.Skipped,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning batch row: %w", err)
		}
		b.Kind = model.ImportKind(kind)
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
