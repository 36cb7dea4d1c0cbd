// Package sqlitekv is a shared.Storage backed by a SQLite table, the persistent
// key-value store behind shared.NewAppStorage.
package sqlitekv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/shared"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS shared_values (
	key     TEXT PRIMARY KEY,
	value   BLOB NOT NULL,
	version INTEGER NOT NULL DEFAULT 1
);`

var _ shared.Storage = (*Store)(nil)

// Store keeps values in one table. Every save bumps the row version; subscriptions
// poll the version so writes by other processes are noticed.
type Store struct {
	db       *sql.DB
	interval time.Duration
	logger   *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Open creates or opens the database at path. Use ":memory:" for a private
// in-process database.
func Open(path string, pollInterval time.Duration, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, interval: pollInterval, logger: logger, stop: make(chan struct{})}, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM shared_values WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shared_values (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = version + 1`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Store) version(key string) (int64, error) {
	var v int64
	err := s.db.QueryRow(`SELECT version FROM shared_values WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

func (s *Store) Subscribe(key string, fn func()) func() {
	last, err := s.version(key)
	if err != nil {
		s.logger.Warn("failed to read version, watching from zero", zap.String("key", key), zap.Error(err))
	}
	done := make(chan struct{})
	var once sync.Once

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-done:
				return
			case <-ticker.C:
				v, err := s.version(key)
				if err != nil {
					s.logger.Debug("failed to poll version", zap.String("key", key), zap.Error(err))
					continue
				}
				if v != last {
					last = v
					fn()
				}
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

// Close stops every subscription and closes the database.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	return s.db.Close()
}
