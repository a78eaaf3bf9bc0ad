package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyre-server/internal/app/model"
)

func TestPGTranscriptionDAO_ReplaceIsTransactional(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM transcriptions WHERE recording_id = \$1`).
		WithArgs("rec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transcriptions`).
		WithArgs("tr-1", "rec-1", "hello", "en", []byte(`[]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Transcriptions().Replace(context.Background(), &model.Transcription{
		ID:          "tr-1",
		RecordingID: "rec-1",
		FullText:    "hello",
		Language:    "en",
		Sentences:   []model.Sentence{},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTranscriptionDAO_ReplaceRollsBackOnInsertFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM transcriptions WHERE recording_id = \$1`).
		WithArgs("rec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transcriptions`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Transcriptions().Replace(context.Background(), &model.Transcription{
		ID:          "tr-1",
		RecordingID: "rec-1",
		FullText:    "hello",
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTranscriptionDAO_FindByRecordingID(t *testing.T) {
	store, mock := newMockStore(t)

	sentences := `[{"id":1,"beginTimeMs":0,"endTimeMs":900,"text":"hi","language":"en"}]`
	rows := sqlmock.NewRows([]string{"id", "recording_id", "full_text", "language", "sentences", "created_at"}).
		AddRow("tr-1", "rec-1", "hi", "en", []byte(sentences), time.Now().UTC())
	mock.ExpectQuery(`SELECT .+ FROM transcriptions WHERE recording_id = \$1`).
		WithArgs("rec-1").
		WillReturnRows(rows)

	got, err := store.Transcriptions().FindByRecordingID(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "hi", got.FullText)
	require.Len(t, got.Sentences, 1)
	assert.Equal(t, int64(900), got.Sentences[0].EndTimeMs)
	require.NoError(t, mock.ExpectationsWereMet())
}
