package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"lyre-server/internal/app/repository"
)

// DB is the SQLite-backed store used for local development and tests.
// The schema is created on open so a fresh checkout works without a
// migration step.
type DB struct {
	db *sql.DB
}

var _ repository.Store = (*DB)(nil)

// Open opens (and if necessary creates) the database at path. Use
// ":memory:" for throwaway test databases.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite handles one writer at a time; keep a single connection to
	// avoid SQLITE_BUSY under concurrent pollers.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS folders (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		icon       TEXT NOT NULL DEFAULT 'folder',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tags (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS recordings (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		file_name   TEXT NOT NULL,
		oss_key     TEXT NOT NULL,
		file_size   INTEGER NOT NULL DEFAULT 0,
		duration    REAL NOT NULL DEFAULT 0,
		format      TEXT NOT NULL,
		sample_rate INTEGER NOT NULL DEFAULT 0,
		folder_id   TEXT REFERENCES folders(id) ON DELETE SET NULL,
		status      TEXT NOT NULL DEFAULT 'uploaded',
		ai_summary  TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS recording_tags (
		recording_id TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
		tag_id       TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (recording_id, tag_id)
	);

	CREATE TABLE IF NOT EXISTS transcription_jobs (
		id            TEXT PRIMARY KEY,
		recording_id  TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
		task_id       TEXT NOT NULL,
		request_id    TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'PENDING',
		submit_time   TIMESTAMP,
		end_time      TIMESTAMP,
		usage_seconds INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		result_url    TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON transcription_jobs(status);
	CREATE INDEX IF NOT EXISTS idx_jobs_recording ON transcription_jobs(recording_id);

	CREATE TABLE IF NOT EXISTS transcriptions (
		id           TEXT PRIMARY KEY,
		recording_id TEXT NOT NULL UNIQUE REFERENCES recordings(id) ON DELETE CASCADE,
		full_text    TEXT NOT NULL,
		language     TEXT NOT NULL DEFAULT '',
		sentences    TEXT NOT NULL DEFAULT '[]',
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		id              INTEGER PRIMARY KEY CHECK (id = 1),
		summary_enabled INTEGER NOT NULL DEFAULT 0,
		language_hint   TEXT NOT NULL DEFAULT ''
	);
	INSERT OR IGNORE INTO settings (id) VALUES (1);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (d *DB) Jobs() repository.JobDAO                     { return &jobDAO{db: d.db} }
func (d *DB) Transcriptions() repository.TranscriptionDAO { return &transcriptionDAO{db: d.db} }
func (d *DB) Recordings() repository.RecordingDAO         { return &recordingDAO{db: d.db} }
func (d *DB) Folders() repository.FolderDAO               { return &folderDAO{db: d.db} }
func (d *DB) Tags() repository.TagDAO                     { return &tagDAO{db: d.db} }
func (d *DB) Settings() repository.SettingsDAO            { return &settingsDAO{db: d.db} }

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}
