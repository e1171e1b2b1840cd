// Package store is the offline sqlite database: cached book lists, cached
// chapter text, and a row per cached resource recording when it was saved.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "versemate")
	}
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "versemate")
	}
	return filepath.Join(home, ".local", "share", "versemate")
}

func DBPath() string {
	return filepath.Join(dataDir(), "offline.db")
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version == 0 {
		if err := s.createSchema(); err != nil {
			return err
		}
		version = 1
	}
	if version < 2 {
		if err := s.addBookmarks(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) createSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS offline_books (
    translation TEXT    NOT NULL,
    book_id     INTEGER NOT NULL,
    name        TEXT    NOT NULL,
    chapters    INTEGER NOT NULL,
    testament   TEXT    NOT NULL DEFAULT '',
    PRIMARY KEY (translation, book_id)
);

CREATE TABLE IF NOT EXISTS offline_verses (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    version_key    TEXT    NOT NULL,
    book_id        INTEGER NOT NULL,
    chapter_number INTEGER NOT NULL,
    verse_number   INTEGER NOT NULL,
    text           TEXT    NOT NULL,
    UNIQUE(version_key, book_id, chapter_number, verse_number)
);

CREATE INDEX IF NOT EXISTS idx_verses_lookup
    ON offline_verses(version_key, book_id, chapter_number);

CREATE TABLE IF NOT EXISTS offline_metadata (
    resource_key    TEXT PRIMARY KEY,
    last_updated_at TEXT NOT NULL,
    downloaded_at   TEXT NOT NULL,
    size_bytes      INTEGER NOT NULL
);

PRAGMA user_version = 1;
`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) addBookmarks() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS offline_bookmarks (
    favorite_id    INTEGER PRIMARY KEY,
    book_id        INTEGER NOT NULL,
    chapter_number INTEGER NOT NULL,
    created_at     TEXT    NOT NULL,
    UNIQUE(book_id, chapter_number)
);

PRAGMA user_version = 2;
`)
	return err
}

// Resource is the bookkeeping row for one cached resource, e.g. "books:KJV".
type Resource struct {
	Key           string
	LastUpdatedAt time.Time
	DownloadedAt  time.Time
	SizeBytes     int64
}

func booksKey(translation string) string {
	return "books:" + translation
}

func chapterKey(translation string, book, chapter int) string {
	return fmt.Sprintf("bible:%s:%d:%d", translation, book, chapter)
}

func (s *Store) touch(tx *sql.Tx, key string, size int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := tx.Exec(`
INSERT OR REPLACE INTO offline_metadata (resource_key, last_updated_at, downloaded_at, size_bytes)
VALUES (?, ?, ?, ?)`, key, now, now, size)
	return err
}

// Resource returns the bookkeeping row for key; ok is false if nothing was cached.
func (s *Store) Resource(key string) (Resource, bool, error) {
	var r Resource
	var updated, downloaded string
	err := s.db.QueryRow(`
SELECT resource_key, last_updated_at, downloaded_at, size_bytes
FROM offline_metadata WHERE resource_key = ?`, key).Scan(&r.Key, &updated, &downloaded, &r.SizeBytes)
	if err == sql.ErrNoRows {
		return Resource{}, false, nil
	}
	if err != nil {
		return Resource{}, false, err
	}
	r.LastUpdatedAt, _ = time.Parse(time.RFC3339, updated)
	r.DownloadedAt, _ = time.Parse(time.RFC3339, downloaded)
	return r, true, nil
}

// Reset drops every cached row and all bookmarks.
func (s *Store) Reset() error {
	for _, t := range []string{"offline_books", "offline_verses", "offline_metadata", "offline_bookmarks"} {
		if _, err := s.db.Exec("DELETE FROM " + t); err != nil {
			return err
		}
	}
	return nil
}
