package pg

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

func newMockStore(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

var jobRowColumns = []string{
	"id", "recording_id", "task_id", "request_id", "status", "submit_time",
	"end_time", "usage_seconds", "error_message", "result_url", "created_at", "updated_at",
}

func jobRow(id, status string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(jobRowColumns).
		AddRow(id, "rec-1", "task-1", "", status, nil, nil, 0, "", "", now, now)
}

func TestPGJobDAO_Create(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO transcription_jobs`).
		WithArgs("job-1", "rec-1", "task-1", "", string(model.JobStatusPending),
			nil, nil, 0, "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Jobs().Create(context.Background(), &model.TranscriptionJob{
		ID:          "job-1",
		RecordingID: "rec-1",
		TaskID:      "task-1",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGJobDAO_FindByID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM transcription_jobs WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(jobRow("job-1", "RUNNING"))

	job, err := store.Jobs().FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusRunning, job.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGJobDAO_FindByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM transcription_jobs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(jobRowColumns))

	_, err := store.Jobs().FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGJobDAO_FindActive(t *testing.T) {
	store, mock := newMockStore(t)

	rows := jobRow("job-1", "PENDING").
		AddRow("job-2", "rec-2", "task-2", "", "RUNNING", nil, nil, 0, "", "",
			time.Now().UTC(), time.Now().UTC())
	mock.ExpectQuery(`SELECT .+ FROM transcription_jobs\s+WHERE status IN \(\$1, \$2\)`).
		WithArgs(string(model.JobStatusPending), string(model.JobStatusRunning)).
		WillReturnRows(rows)

	jobs, err := store.Jobs().FindActive(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-2", jobs[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGJobDAO_PartialUpdateBuildsPlaceholders(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE transcription_jobs SET updated_at = \$1, status = \$2, error_message = \$3 WHERE id = \$4`).
		WithArgs(sqlmock.AnyArg(), string(model.JobStatusFailed), "boom", "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	status := model.JobStatusFailed
	msg := "boom"
	err := store.Jobs().Update(context.Background(), "job-1", model.JobUpdate{
		Status:       &status,
		ErrorMessage: &msg,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGJobDAO_UpdateMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE transcription_jobs SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	status := model.JobStatusFailed
	err := store.Jobs().Update(context.Background(), "missing", model.JobUpdate{Status: &status})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGJobDAO_DeleteByRecordingID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM transcription_jobs WHERE recording_id = \$1`).
		WithArgs("rec-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, store.Jobs().DeleteByRecordingID(context.Background(), "rec-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
