package model

import "time"

// RecordingStatus reflects the outcome of the newest transcription job.
type RecordingStatus string

const (
	RecordingStatusUploaded     RecordingStatus = "uploaded"
	RecordingStatusTranscribing RecordingStatus = "transcribing"
	RecordingStatusCompleted    RecordingStatus = "completed"
	RecordingStatusFailed       RecordingStatus = "failed"
)

// Recording is an uploaded audio file and its metadata. The audio bytes
// themselves live in object storage under OssKey.
type Recording struct {
	ID         string          `json:"id" db:"id"`
	Title      string          `json:"title" db:"title"`
	FileName   string          `json:"fileName" db:"file_name"`
	OssKey     string          `json:"ossKey" db:"oss_key"`
	FileSize   int64           `json:"fileSize,omitempty" db:"file_size"`
	Duration   float64         `json:"duration,omitempty" db:"duration"`
	Format     string          `json:"format" db:"format"`
	SampleRate int             `json:"sampleRate,omitempty" db:"sample_rate"`
	FolderID   string          `json:"folderId,omitempty" db:"folder_id"`
	TagIDs     []string        `json:"tagIds,omitempty"`
	Status     RecordingStatus `json:"status" db:"status"`
	AISummary  string          `json:"aiSummary,omitempty" db:"ai_summary"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// Folder groups recordings in the client UI.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Icon      string    `json:"icon" db:"icon"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Tag is a free-form label attached to recordings.
type Tag struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Settings is the single per-deployment settings row.
type Settings struct {
	SummaryEnabled bool   `json:"summaryEnabled" db:"summary_enabled"`
	LanguageHint   string `json:"languageHint,omitempty" db:"language_hint"`
}
