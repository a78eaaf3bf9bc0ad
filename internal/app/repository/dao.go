package repository

import (
	"context"
	"errors"

	"lyre-server/internal/app/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// JobDAO persists transcription jobs. Updates are partial: nil fields of
// model.JobUpdate are left untouched.
type JobDAO interface {
	Create(ctx context.Context, job *model.TranscriptionJob) error
	FindByID(ctx context.Context, id string) (*model.TranscriptionJob, error)
	// FindActive returns all jobs in a non-terminal status.
	FindActive(ctx context.Context) ([]model.TranscriptionJob, error)
	Update(ctx context.Context, id string, upd model.JobUpdate) error
	DeleteByRecordingID(ctx context.Context, recordingID string) error
}

// TranscriptionDAO persists derived transcriptions, at most one per
// recording.
type TranscriptionDAO interface {
	FindByRecordingID(ctx context.Context, recordingID string) (*model.Transcription, error)
	// Replace deletes any prior transcription for the recording and inserts
	// the new one in a single transaction.
	Replace(ctx context.Context, t *model.Transcription) error
	DeleteByRecordingID(ctx context.Context, recordingID string) error
}

// RecordingFilter narrows List results.
type RecordingFilter struct {
	FolderID string
	TagID    string
	Status   model.RecordingStatus
	Search   string
}

// RecordingUpdate carries the user-editable recording fields. Nil means
// "leave unchanged".
type RecordingUpdate struct {
	Title    *string
	FolderID *string
	TagIDs   *[]string
}

// RecordingDAO persists recordings and their tag assignments.
type RecordingDAO interface {
	Create(ctx context.Context, r *model.Recording) error
	FindByID(ctx context.Context, id string) (*model.Recording, error)
	List(ctx context.Context, filter RecordingFilter) ([]model.Recording, error)
	Update(ctx context.Context, id string, upd RecordingUpdate) error
	UpdateStatus(ctx context.Context, id string, status model.RecordingStatus) error
	UpdateSummary(ctx context.Context, id string, summary string) error
	Delete(ctx context.Context, id string) error
}

// FolderDAO persists recording folders.
type FolderDAO interface {
	Create(ctx context.Context, f *model.Folder) error
	List(ctx context.Context) ([]model.Folder, error)
	Update(ctx context.Context, id, name, icon string) error
	Delete(ctx context.Context, id string) error
}

// TagDAO persists tags.
type TagDAO interface {
	Create(ctx context.Context, t *model.Tag) error
	List(ctx context.Context) ([]model.Tag, error)
	Update(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// SettingsDAO persists the single settings row.
type SettingsDAO interface {
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, s *model.Settings) error
}

// Store bundles every DAO a backend must provide.
type Store interface {
	Jobs() JobDAO
	Transcriptions() TranscriptionDAO
	Recordings() RecordingDAO
	Folders() FolderDAO
	Tags() TagDAO
	Settings() SettingsDAO
	Close() error
}
