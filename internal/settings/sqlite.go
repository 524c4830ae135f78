package settings

import (
	"context"
	"database/sql"
	"sync"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/wristrelay/internal/foundation/errors"
)

// SQLiteStore keeps settings in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens the settings database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategorySettings, ErrOpenFailed.Message()).
			WithContext("path", dbPath).Build()
	}
	// Every :memory: connection is a separate database.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.WrapError(err, errors.CategorySettings, ErrSchemaFailed.Message()).Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	);`)
	return err
}

// Get returns the stored value of name, or its default.
func (s *SQLiteStore) Get(ctx context.Context, name string) (int64, error) {
	def, ok := definitions[name]
	if !ok {
		return 0, ErrUnknownSetting.WithContext("name", name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var v int64
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE name = ?", name).Scan(&v)
	switch {
	case err == sql.ErrNoRows:
		return def.def, nil
	case err != nil:
		return 0, errors.WrapError(err, errors.CategorySettings, ErrQueryFailed.Message()).
			WithContext("name", name).Build()
	}
	return v, nil
}

// Set validates and stores value under name.
func (s *SQLiteStore) Set(ctx context.Context, name string, value int64) error {
	def, ok := definitions[name]
	if !ok {
		return ErrUnknownSetting.WithContext("name", name)
	}
	limit := def.max
	if def.boolean {
		limit = 1
	}
	if value < 0 || value > limit {
		return ErrInvalidValue.WithContext("name", name).WithContext("value", value).WithContext("max", limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (name, value, updated_at) VALUES (?, ?, strftime('%s','now'))
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value)
	if err != nil {
		return errors.WrapError(err, errors.CategorySettings, ErrWriteFailed.Message()).
			WithContext("name", name).Build()
	}
	return nil
}

// List returns every known setting with its effective value.
func (s *SQLiteStore) List(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT name, value FROM settings")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategorySettings, ErrQueryFailed.Message()).Build()
	}
	defer rows.Close()

	out := make(map[string]int64, len(definitions))
	for name, def := range definitions {
		out[name] = def.def
	}
	for rows.Next() {
		var name string
		var v int64
		if err := rows.Scan(&name, &v); err != nil {
			return nil, errors.WrapError(err, errors.CategorySettings, ErrQueryFailed.Message()).Build()
		}
		if _, known := definitions[name]; known {
			out[name] = v
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategorySettings, ErrQueryFailed.Message()).Build()
	}
	return out, nil
}

// Load returns the typed values read at screen entry.
func (s *SQLiteStore) Load(ctx context.Context) (Values, error) {
	m, err := s.List(ctx)
	if err != nil {
		return Values{}, err
	}
	return fromMap(m), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
