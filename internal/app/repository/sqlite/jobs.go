package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

type jobDAO struct {
	db *sql.DB
}

func (d *jobDAO) Create(ctx context.Context, job *model.TranscriptionJob) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO transcription_jobs
			(id, recording_id, task_id, request_id, status, submit_time, end_time,
			 usage_seconds, error_message, result_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.RecordingID, job.TaskID, job.RequestID, job.Status,
		job.SubmitTime, job.EndTime, job.UsageSeconds, job.ErrorMessage,
		job.ResultURL, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

const jobColumns = `id, recording_id, task_id, request_id, status, submit_time, end_time,
	usage_seconds, error_message, result_url, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*model.TranscriptionJob, error) {
	var job model.TranscriptionJob
	err := row.Scan(&job.ID, &job.RecordingID, &job.TaskID, &job.RequestID,
		&job.Status, &job.SubmitTime, &job.EndTime, &job.UsageSeconds,
		&job.ErrorMessage, &job.ResultURL, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (d *jobDAO) FindByID(ctx context.Context, id string) (*model.TranscriptionJob, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM transcription_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find job: %w", err)
	}
	return job, nil
}

func (d *jobDAO) FindActive(ctx context.Context) ([]model.TranscriptionJob, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM transcription_jobs
		WHERE status IN (?, ?)
		ORDER BY created_at`,
		model.JobStatusPending, model.JobStatusRunning)
	if err != nil {
		return nil, fmt.Errorf("query active jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.TranscriptionJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (d *jobDAO) Update(ctx context.Context, id string, upd model.JobUpdate) error {
	query := `UPDATE transcription_jobs SET updated_at = ?`
	args := []any{time.Now().UTC()}

	if upd.Status != nil {
		query += `, status = ?`
		args = append(args, *upd.Status)
	}
	if upd.SubmitTime != nil {
		query += `, submit_time = ?`
		args = append(args, *upd.SubmitTime)
	}
	if upd.EndTime != nil {
		query += `, end_time = ?`
		args = append(args, *upd.EndTime)
	}
	if upd.UsageSeconds != nil {
		query += `, usage_seconds = ?`
		args = append(args, *upd.UsageSeconds)
	}
	if upd.ErrorMessage != nil {
		query += `, error_message = ?`
		args = append(args, *upd.ErrorMessage)
	}
	if upd.ResultURL != nil {
		query += `, result_url = ?`
		args = append(args, *upd.ResultURL)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (d *jobDAO) DeleteByRecordingID(ctx context.Context, recordingID string) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM transcription_jobs WHERE recording_id = ?`, recordingID)
	if err != nil {
		return fmt.Errorf("delete jobs for recording: %w", err)
	}
	return nil
}
