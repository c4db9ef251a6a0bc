package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Repo is the sqlite-backed proposal repository.
type Repo struct {
	db *sql.DB
}

// Open creates dataDir if needed and opens heartquest.db inside it.
func Open(dataDir string) (*Repo, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "heartquest.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	r := &Repo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return r, nil
}

func (r *Repo) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS proposals (
			id TEXT PRIMARY KEY,
			creator_id TEXT NOT NULL,
			partner_name TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			nebula_color TEXT NOT NULL,
			star_color TEXT NOT NULL,
			music_url TEXT NOT NULL DEFAULT '',
			music_start_time REAL NOT NULL DEFAULT 0,
			video_url TEXT NOT NULL DEFAULT '',
			proposal_text TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS proposals_creator ON proposals(creator_id)`,
		`CREATE TABLE IF NOT EXISTS memory_crystals (
			id TEXT PRIMARY KEY,
			proposal_id TEXT NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
			image_url TEXT NOT NULL DEFAULT '',
			caption_text TEXT NOT NULL,
			order_index INTEGER NOT NULL,
			collected INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS memory_crystals_proposal ON memory_crystals(proposal_id, order_index)`,
		`CREATE TABLE IF NOT EXISTS proposal_gallery (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			proposal_id TEXT NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
			image_url TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := r.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}

	return nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}
