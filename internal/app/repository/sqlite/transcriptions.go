package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

type transcriptionDAO struct {
	db *sql.DB
}

func (d *transcriptionDAO) FindByRecordingID(ctx context.Context, recordingID string) (*model.Transcription, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, recording_id, full_text, language, sentences, created_at
		FROM transcriptions WHERE recording_id = ?`, recordingID)

	var t model.Transcription
	var sentencesJSON string
	err := row.Scan(&t.ID, &t.RecordingID, &t.FullText, &t.Language, &sentencesJSON, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find transcription: %w", err)
	}

	if err := json.Unmarshal([]byte(sentencesJSON), &t.Sentences); err != nil {
		return nil, fmt.Errorf("decode sentences: %w", err)
	}
	return &t, nil
}

// Replace enforces the one-transcription-per-recording invariant with a
// delete-then-insert inside a single transaction.
func (d *transcriptionDAO) Replace(ctx context.Context, t *model.Transcription) error {
	sentencesJSON, err := json.Marshal(t.Sentences)
	if err != nil {
		return fmt.Errorf("encode sentences: %w", err)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace transcription: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transcriptions WHERE recording_id = ?`, t.RecordingID); err != nil {
		return fmt.Errorf("delete prior transcription: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transcriptions (id, recording_id, full_text, language, sentences, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.RecordingID, t.FullText, t.Language, string(sentencesJSON), t.CreatedAt); err != nil {
		return fmt.Errorf("insert transcription: %w", err)
	}

	return tx.Commit()
}

func (d *transcriptionDAO) DeleteByRecordingID(ctx context.Context, recordingID string) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM transcriptions WHERE recording_id = ?`, recordingID)
	if err != nil {
		return fmt.Errorf("delete transcription: %w", err)
	}
	return nil
}
