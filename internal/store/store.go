package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matheuskafuri/tradewire/internal/news"
)

// ErrNoSnapshot is returned by Snapshot before the first refresh was saved.
var ErrNoSnapshot = errors.New("no snapshot saved yet")

// Store keeps the most recent refresh window on disk. It holds exactly one
// snapshot: every save replaces the previous one wholesale.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	s := &Store{writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}

	// Opened after init so the read-only handle never races schema creation.
	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	s.readDB = readDB
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS headlines (
			position  INTEGER PRIMARY KEY,
			title     TEXT NOT NULL,
			url       TEXT NOT NULL,
			source    TEXT NOT NULL DEFAULT '',
			published DATETIME
		);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

// ReplaceSnapshot overwrites the stored window with entry.
func (s *Store) ReplaceSnapshot(entry news.Entry) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM headlines"); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO headlines (position, title, url, source, published)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, h := range entry.Items {
		var published interface{}
		if !h.Published.IsZero() {
			published = h.Published.UTC()
		}
		if _, err := stmt.Exec(i, h.Title, h.URL, h.Source, published); err != nil {
			return fmt.Errorf("saving headline %d: %w", i, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO meta (key, value) VALUES ('fetched_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, entry.FetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving fetch time: %w", err)
	}

	return tx.Commit()
}

// Snapshot loads the stored window in its original order.
func (s *Store) Snapshot() (news.Entry, error) {
	var value string
	err := s.readDB.QueryRow("SELECT value FROM meta WHERE key = 'fetched_at'").Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return news.Entry{}, ErrNoSnapshot
	}
	if err != nil {
		return news.Entry{}, fmt.Errorf("reading fetch time: %w", err)
	}
	fetchedAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return news.Entry{}, fmt.Errorf("parsing fetch time %q: %w", value, err)
	}

	rows, err := s.readDB.Query("SELECT title, url, source, published FROM headlines ORDER BY position")
	if err != nil {
		return news.Entry{}, fmt.Errorf("querying snapshot: %w", err)
	}
	defer rows.Close()

	entry := news.Entry{FetchedAt: fetchedAt}
	for rows.Next() {
		var (
			h         news.Headline
			published sql.NullTime
		)
		if err := rows.Scan(&h.Title, &h.URL, &h.Source, &published); err != nil {
			return news.Entry{}, fmt.Errorf("scanning headline: %w", err)
		}
		if published.Valid {
			h.Published = published.Time
		}
		entry.Items = append(entry.Items, h)
	}
	return entry, rows.Err()
}

// Stats reports the number of stored headlines and the size of the database
// file at path.
func (s *Store) Stats(path string) (int, int64, error) {
	var count int
	if err := s.readDB.QueryRow("SELECT COUNT(*) FROM headlines").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting headlines: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return count, 0, fmt.Errorf("reading db size: %w", err)
	}
	return count, info.Size(), nil
}
