package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

type recordingDAO struct {
	db *sql.DB
}

const recordingColumns = `id, title, file_name, oss_key, file_size, duration, format,
	sample_rate, COALESCE(folder_id, ''), status, ai_summary, created_at, updated_at`

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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.ID, r.Title, r.FileName, r.OssKey, r.FileSize, r.Duration, r.Format,
		r.SampleRate, nullIfEmpty(r.FolderID), r.Status, r.AISummary, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert recording: %w", err)
	}

	for _, tagID := range r.TagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recording_tags (recording_id, tag_id) VALUES ($1, $2)`,
			r.ID, tagID); err != nil {
			return fmt.Errorf("attach tag %s: %w", tagID, err)
		}
	}

	return tx.Commit()
}

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
		`SELECT `+recordingColumns+` FROM recordings WHERE id = $1`, id)
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

	appendCond := func(cond string, value any) {
		args = append(args, value)
		query += " AND " + cond + " $" + strconv.Itoa(len(args))
	}
	if filter.FolderID != "" {
		appendCond("folder_id =", filter.FolderID)
	}
	if filter.Status != "" {
		appendCond("status =", filter.Status)
	}
	if filter.TagID != "" {
		appendCond("id IN (SELECT recording_id FROM recording_tags WHERE tag_id =", filter.TagID)
		query += ")"
	}
	if filter.Search != "" {
		appendCond("title ILIKE", "%"+filter.Search+"%")
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

	query := `UPDATE recordings SET updated_at = $1`
	args := []any{time.Now().UTC()}
	if upd.Title != nil {
		args = append(args, *upd.Title)
		query += `, title = $` + strconv.Itoa(len(args))
	}
	if upd.FolderID != nil {
		args = append(args, nullIfEmpty(*upd.FolderID))
		query += `, folder_id = $` + strconv.Itoa(len(args))
	}
	args = append(args, id)
	query += ` WHERE id = $` + strconv.Itoa(len(args))

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update recording: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}

	if upd.TagIDs != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recording_tags WHERE recording_id = $1`, id); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		for _, tagID := range *upd.TagIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recording_tags (recording_id, tag_id) VALUES ($1, $2)`,
				id, tagID); err != nil {
				return fmt.Errorf("attach tag %s: %w", tagID, err)
			}
		}
	}

	return tx.Commit()
}

func (d *recordingDAO) UpdateStatus(ctx context.Context, id string, status model.RecordingStatus) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE recordings SET status = $1, updated_at = $2 WHERE id = $3`,
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
		`UPDATE recordings SET ai_summary = $1, updated_at = $2 WHERE id = $3`,
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
	res, err := d.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = $1`, id)
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
		`SELECT tag_id FROM recording_tags WHERE recording_id = $1 ORDER BY tag_id`, r.ID)
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
