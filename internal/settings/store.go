// Package settings persists the user toggles that survive restarts: whether
// the radar is enabled and the keyword list.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"go-keyword-radar/internal/filter"

	_ "github.com/mattn/go-sqlite3"
)

const (
	KeyScraperEnabled = "scraperEnabled"
	KeyKeywords       = "keywords"

	dbFile = "radar.db"
)

type Store struct {
	db *sql.DB

	mu       sync.RWMutex
	defaults []string
}

// Open opens (or creates) the settings database under dataDir. On first
// creation the radar is switched on.
func Open(dataDir string, defaults []string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open settings db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to settings db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings table: %w", err)
	}

	s := &Store{db: db}
	s.SetDefaults(defaults)

	res, err := db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, KeyScraperEnabled, "true")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("🆕 Settings created at %s, radar enabled", path)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetDefaults replaces the keyword list used when the user saved none.
func (s *Store) SetDefaults(defaults []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(defaults) == 0 {
		defaults = filter.DefaultKeywords
	}
	s.defaults = append([]string(nil), defaults...)
}

func (s *Store) get(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Enabled reports whether the radar runs. Anything but an explicit false
// counts as enabled.
func (s *Store) Enabled(ctx context.Context) (bool, error) {
	enabled := true
	if _, err := s.get(ctx, KeyScraperEnabled, &enabled); err != nil {
		return true, err
	}
	return enabled, nil
}

func (s *Store) SetEnabled(ctx context.Context, enabled bool) error {
	return s.set(ctx, KeyScraperEnabled, enabled)
}

// Toggle flips the enabled flag and returns the new value.
func (s *Store) Toggle(ctx context.Context) (bool, error) {
	current, err := s.Enabled(ctx)
	if err != nil {
		return current, err
	}
	if err := s.SetEnabled(ctx, !current); err != nil {
		return current, err
	}
	return !current, nil
}

// StoredKeywords returns exactly what the user saved, possibly empty.
func (s *Store) StoredKeywords(ctx context.Context) ([]string, error) {
	var keywords []string
	if _, err := s.get(ctx, KeyKeywords, &keywords); err != nil {
		return nil, err
	}
	return keywords, nil
}

// Keywords returns the keywords in effect: the saved list, or the defaults
// when the saved list is missing or empty.
func (s *Store) Keywords(ctx context.Context) ([]string, error) {
	stored, err := s.StoredKeywords(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.Resolve(stored, s.defaults), err
}

func (s *Store) SetKeywords(ctx context.Context, keywords []string) error {
	if keywords == nil {
		keywords = []string{}
	}
	return s.set(ctx, KeyKeywords, keywords)
}
