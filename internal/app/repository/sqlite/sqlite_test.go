package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedRecording(t *testing.T, db *DB, id string) {
	t.Helper()
	err := db.Recordings().Create(context.Background(), &model.Recording{
		ID:       id,
		Title:    "recording " + id,
		FileName: id + ".m4a",
		OssKey:   "uploads/" + id + "/audio.m4a",
		Format:   "m4a",
		Status:   model.RecordingStatusUploaded,
	})
	require.NoError(t, err)
}

func TestJobDAO_CreateAndFind(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedRecording(t, db, "rec-1")

	job := &model.TranscriptionJob{
		ID:          "job-1",
		RecordingID: "rec-1",
		TaskID:      "task-1",
		Status:      model.JobStatusPending,
	}
	require.NoError(t, db.Jobs().Create(ctx, job))

	got, err := db.Jobs().FindByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "task-1", got.TaskID)
	assert.Equal(t, model.JobStatusPending, got.Status)
	assert.Nil(t, got.SubmitTime)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestJobDAO_FindByIDNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Jobs().FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestJobDAO_FindActiveExcludesTerminal(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedRecording(t, db, "rec-1")

	for _, j := range []model.TranscriptionJob{
		{ID: "j-pending", RecordingID: "rec-1", TaskID: "t1", Status: model.JobStatusPending},
		{ID: "j-running", RecordingID: "rec-1", TaskID: "t2", Status: model.JobStatusRunning},
		{ID: "j-done", RecordingID: "rec-1", TaskID: "t3", Status: model.JobStatusSucceeded},
		{ID: "j-failed", RecordingID: "rec-1", TaskID: "t4", Status: model.JobStatusFailed},
	} {
		job := j
		require.NoError(t, db.Jobs().Create(ctx, &job))
	}

	active, err := db.Jobs().FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	ids := []string{active[0].ID, active[1].ID}
	assert.ElementsMatch(t, []string{"j-pending", "j-running"}, ids)
}

func TestJobDAO_PartialUpdate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedRecording(t, db, "rec-1")
	require.NoError(t, db.Jobs().Create(ctx, &model.TranscriptionJob{
		ID: "job-1", RecordingID: "rec-1", TaskID: "t1", Status: model.JobStatusPending,
	}))

	status := model.JobStatusSucceeded
	url := "https://asr.example.com/r/1"
	usage := 88
	require.NoError(t, db.Jobs().Update(ctx, "job-1", model.JobUpdate{
		Status:       &status,
		ResultURL:    &url,
		UsageSeconds: &usage,
	}))

	got, err := db.Jobs().FindByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusSucceeded, got.Status)
	assert.Equal(t, url, got.ResultURL)
	assert.Equal(t, 88, got.UsageSeconds)
	assert.Equal(t, "t1", got.TaskID, "untouched fields survive a partial update")
	assert.Empty(t, got.ErrorMessage)
}

func TestJobDAO_UpdateMissingRow(t *testing.T) {
	db := openTestDB(t)
	status := model.JobStatusFailed
	err := db.Jobs().Update(context.Background(), "missing", model.JobUpdate{Status: &status})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestJobDAO_DeleteByRecordingID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedRecording(t, db, "rec-1")
	seedRecording(t, db, "rec-2")
	require.NoError(t, db.Jobs().Create(ctx, &model.TranscriptionJob{ID: "j1", RecordingID: "rec-1", TaskID: "t1"}))
	require.NoError(t, db.Jobs().Create(ctx, &model.TranscriptionJob{ID: "j2", RecordingID: "rec-2", TaskID: "t2"}))

	require.NoError(t, db.Jobs().DeleteByRecordingID(ctx, "rec-1"))

	_, err := db.Jobs().FindByID(ctx, "j1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = db.Jobs().FindByID(ctx, "j2")
	assert.NoError(t, err)
}

func TestTranscriptionDAO_Replace(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedRecording(t, db, "rec-1")

	first := &model.Transcription{
		ID:          "tr-1",
		RecordingID: "rec-1",
		FullText:    "first version",
		Language:    "en",
		Sentences: []model.Sentence{
			{ID: 1, BeginTimeMs: 0, EndTimeMs: 1000, Text: "first version", Language: "en"},
		},
	}
	require.NoError(t, db.Transcriptions().Replace(ctx, first))

	second := &model.Transcription{
		ID:          "tr-2",
		RecordingID: "rec-1",
		FullText:    "second version",
		Language:    "en",
	}
	require.NoError(t, db.Transcriptions().Replace(ctx, second))

	got, err := db.Transcriptions().FindByRecordingID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "tr-2", got.ID)
	assert.Equal(t, "second version", got.FullText, "replace keeps exactly one transcription per recording")
}

func TestTranscriptionDAO_SentencesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedRecording(t, db, "rec-1")

	in := &model.Transcription{
		ID:          "tr-1",
		RecordingID: "rec-1",
		FullText:    "a b",
		Language:    "en",
		Sentences: []model.Sentence{
			{ID: 1, BeginTimeMs: 0, EndTimeMs: 700, Text: "a", Language: "en", Emotion: "neutral"},
			{ID: 2, BeginTimeMs: 700, EndTimeMs: 1500, Text: "b", Language: "en"},
		},
	}
	require.NoError(t, db.Transcriptions().Replace(ctx, in))

	got, err := db.Transcriptions().FindByRecordingID(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, got.Sentences, 2)
	assert.Equal(t, int64(700), got.Sentences[1].BeginTimeMs)
	assert.Equal(t, "neutral", got.Sentences[0].Emotion)
}

func TestTranscriptionDAO_NotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Transcriptions().FindByRecordingID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordingDAO_CRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Folders().Create(ctx, &model.Folder{ID: "f1", Name: "Meetings", Icon: "calendar"}))
	require.NoError(t, db.Tags().Create(ctx, &model.Tag{ID: "t1", Name: "work"}))
	require.NoError(t, db.Tags().Create(ctx, &model.Tag{ID: "t2", Name: "draft"}))

	rec := &model.Recording{
		ID:       "rec-1",
		Title:    "weekly sync",
		FileName: "sync.mp3",
		OssKey:   "uploads/rec-1/sync.mp3",
		FileSize: 1024,
		Format:   "mp3",
		FolderID: "f1",
		TagIDs:   []string{"t1"},
		Status:   model.RecordingStatusUploaded,
	}
	require.NoError(t, db.Recordings().Create(ctx, rec))

	got, err := db.Recordings().FindByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "weekly sync", got.Title)
	assert.Equal(t, "f1", got.FolderID)
	assert.Equal(t, []string{"t1"}, got.TagIDs)

	title := "renamed"
	tags := []string{"t1", "t2"}
	require.NoError(t, db.Recordings().Update(ctx, "rec-1", repository.RecordingUpdate{
		Title:  &title,
		TagIDs: &tags,
	}))

	got, err = db.Recordings().FindByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.ElementsMatch(t, []string{"t1", "t2"}, got.TagIDs)
	assert.Equal(t, "f1", got.FolderID, "folder untouched by partial update")

	require.NoError(t, db.Recordings().UpdateStatus(ctx, "rec-1", model.RecordingStatusCompleted))
	require.NoError(t, db.Recordings().UpdateSummary(ctx, "rec-1", "a recap"))

	got, err = db.Recordings().FindByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, model.RecordingStatusCompleted, got.Status)
	assert.Equal(t, "a recap", got.AISummary)

	require.NoError(t, db.Recordings().Delete(ctx, "rec-1"))
	_, err = db.Recordings().FindByID(ctx, "rec-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordingDAO_DeleteCascadesJobsAndTranscriptions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedRecording(t, db, "rec-1")
	require.NoError(t, db.Jobs().Create(ctx, &model.TranscriptionJob{ID: "j1", RecordingID: "rec-1", TaskID: "t1"}))
	require.NoError(t, db.Transcriptions().Replace(ctx, &model.Transcription{
		ID: "tr-1", RecordingID: "rec-1", FullText: "x",
	}))

	require.NoError(t, db.Recordings().Delete(ctx, "rec-1"))

	_, err := db.Jobs().FindByID(ctx, "j1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = db.Transcriptions().FindByRecordingID(ctx, "rec-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordingDAO_ListFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Folders().Create(ctx, &model.Folder{ID: "f1", Name: "A"}))
	require.NoError(t, db.Tags().Create(ctx, &model.Tag{ID: "t1", Name: "work"}))

	recs := []model.Recording{
		{ID: "r1", Title: "alpha talk", FileName: "a.mp3", OssKey: "k1", Format: "mp3", FolderID: "f1", TagIDs: []string{"t1"}, Status: model.RecordingStatusCompleted},
		{ID: "r2", Title: "beta notes", FileName: "b.mp3", OssKey: "k2", Format: "mp3", Status: model.RecordingStatusUploaded},
	}
	for i := range recs {
		require.NoError(t, db.Recordings().Create(ctx, &recs[i]))
	}

	byFolder, err := db.Recordings().List(ctx, repository.RecordingFilter{FolderID: "f1"})
	require.NoError(t, err)
	require.Len(t, byFolder, 1)
	assert.Equal(t, "r1", byFolder[0].ID)

	byTag, err := db.Recordings().List(ctx, repository.RecordingFilter{TagID: "t1"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "r1", byTag[0].ID)

	byStatus, err := db.Recordings().List(ctx, repository.RecordingFilter{Status: model.RecordingStatusUploaded})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "r2", byStatus[0].ID)

	bySearch, err := db.Recordings().List(ctx, repository.RecordingFilter{Search: "alpha"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "r1", bySearch[0].ID)

	all, err := db.Recordings().List(ctx, repository.RecordingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFolderAndTagDAO(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Folders().Create(ctx, &model.Folder{ID: "f1", Name: "Ideas", Icon: "bulb"}))
	require.NoError(t, db.Folders().Update(ctx, "f1", "Inbox", "tray"))

	folders, err := db.Folders().List(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Inbox", folders[0].Name)
	assert.Equal(t, "tray", folders[0].Icon)

	require.NoError(t, db.Folders().Delete(ctx, "f1"))
	folders, err = db.Folders().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, folders)

	require.NoError(t, db.Tags().Create(ctx, &model.Tag{ID: "t1", Name: "work"}))
	require.NoError(t, db.Tags().Update(ctx, "t1", "личное"))

	tags, err := db.Tags().List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "личное", tags[0].Name)
}

func TestSettingsDAO(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	settings, err := db.Settings().Get(ctx)
	require.NoError(t, err)
	assert.False(t, settings.SummaryEnabled)

	require.NoError(t, db.Settings().Update(ctx, &model.Settings{
		SummaryEnabled: true,
		LanguageHint:   "de",
	}))

	settings, err = db.Settings().Get(ctx)
	require.NoError(t, err)
	assert.True(t, settings.SummaryEnabled)
	assert.Equal(t, "de", settings.LanguageHint)
}
