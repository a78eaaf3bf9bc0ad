package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"lyre-server/internal/app/repository"
)

// DB is the PostgreSQL-backed store used in deployments. Schema is managed
// by migrations shipped alongside the deployment manifests, not created
// here.
type DB struct {
	db *sql.DB
}

var _ repository.Store = (*DB)(nil)

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres database: %w", err)
	}
	return &DB{db: db}, nil
}

// NewWithDB wraps an existing connection; used by tests with sqlmock.
func NewWithDB(db *sql.DB) *DB {
	return &DB{db: db}
}

func (d *DB) Jobs() repository.JobDAO                     { return &jobDAO{db: d.db} }
func (d *DB) Transcriptions() repository.TranscriptionDAO { return &transcriptionDAO{db: d.db} }
func (d *DB) Recordings() repository.RecordingDAO         { return &recordingDAO{db: d.db} }
func (d *DB) Folders() repository.FolderDAO               { return &folderDAO{db: d.db} }
func (d *DB) Tags() repository.TagDAO                     { return &tagDAO{db: d.db} }
func (d *DB) Settings() repository.SettingsDAO            { return &settingsDAO{db: d.db} }

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}
