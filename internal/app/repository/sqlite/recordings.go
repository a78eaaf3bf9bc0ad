package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

type recordingDAO struct {
	db *sql.DB
}

func (d *recordingDAO) Create(ctx context.Context, r *model.Recording) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = model.RecordingStatusUploaded
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create recording: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recordings
			(id, title, file_name, oss_key, file_size, duration, format,
			 sample_rate, folder_id, status, ai_summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.FileName, r.OssKey, r.FileSize, r.Duration, r.Format,
		r.SampleRate, nullIfEmpty(r.FolderID), r.Status, r.AISummary, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert recording: %w", err)
	}

	for _, tagID := range r.TagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recording_tags (recording_id, tag_id) VALUES (?, ?)`,
			r.ID, tagID); err != nil {
			return fmt.Errorf("attach tag %s: %w", tagID, err)
		}
	}

	return tx.Commit()
}

const recordingColumns = `id, title, file_name, oss_key, file_size, duration, format,
	sample_rate, COALESCE(folder_id, ''), status, ai_summary, created_at, updated_at`

func scanRecording(row interface{ Scan(...any) error }) (*model.Recording, error) {
	var r model.Recording
	err := row.Scan(&r.ID, &r.Title, &r.FileName, &r.OssKey, &r.FileSize,
		&r.Duration, &r.Format, &r.SampleRate, &r.FolderID, &r.Status,
		&r.AISummary, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (d *recordingDAO) FindByID(ctx context.Context, id string) (*model.Recording, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+recordingColumns+` FROM recordings WHERE id = ?`, id)
	r, err := scanRecording(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find recording: %w", err)
	}
	if err := d.loadTags(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (d *recordingDAO) List(ctx context.Context, filter repository.RecordingFilter) ([]model.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE 1=1`
	var args []any

	if filter.FolderID != "" {
		query += ` AND folder_id = ?`
		args = append(args, filter.FolderID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.TagID != "" {
		query += ` AND id IN (SELECT recording_id FROM recording_tags WHERE tag_id = ?)`
		args = append(args, filter.TagID)
	}
	if filter.Search != "" {
		query += ` AND title LIKE ?`
		args = append(args, "%"+filter.Search+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var recordings []model.Recording
	for rows.Next() {
		r, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		recordings = append(recordings, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recordings {
		if err := d.loadTags(ctx, &recordings[i]); err != nil {
			return nil, err
		}
	}
	return recordings, nil
}

func (d *recordingDAO) Update(ctx context.Context, id string, upd repository.RecordingUpdate) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update recording: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE recordings SET updated_at = ?`
	args := []any{time.Now().UTC()}
	if upd.Title != nil {
		query += `, title = ?`
		args = append(args, *upd.Title)
	}
	if upd.FolderID != nil {
		query += `, folder_id = ?`
		args = append(args, nullIfEmpty(*upd.FolderID))
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update recording: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}

	if upd.TagIDs != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recording_tags WHERE recording_id = ?`, id); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		for _, tagID := range *upd.TagIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recording_tags (recording_id, tag_id) VALUES (?, ?)`,
				id, tagID); err != nil {
				return fmt.Errorf("attach tag %s: %w", tagID, err)
			}
		}
	}

	return tx.Commit()
}

func (d *recordingDAO) UpdateStatus(ctx context.Context, id string, status model.RecordingStatus) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE recordings SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update recording status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (d *recordingDAO) UpdateSummary(ctx context.Context, id string, summary string) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE recordings SET ai_summary = ?, updated_at = ? WHERE id = ?`,
		summary, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update recording summary: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (d *recordingDAO) Delete(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (d *recordingDAO) loadTags(ctx context.Context, r *model.Recording) error {
	rows, err := d.db.QueryContext(ctx,
		`SELECT tag_id FROM recording_tags WHERE recording_id = ? ORDER BY tag_id`, r.ID)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	r.TagIDs = nil
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return fmt.Errorf("scan tag id: %w", err)
		}
		r.TagIDs = append(r.TagIDs, tagID)
	}
	return rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
