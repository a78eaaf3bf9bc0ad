package model

import "time"

// Sentence is one time-aligned segment of a transcription. Order within a
// transcription is playback order and must be preserved.
type Sentence struct {
	ID          int    `json:"id"`
	BeginTimeMs int64  `json:"beginTimeMs"`
	EndTimeMs   int64  `json:"endTimeMs"`
	Text        string `json:"text"`
	Language    string `json:"language,omitempty"`
	Emotion     string `json:"emotion,omitempty"`
}

// Transcription is the derived artifact of a successful job. At most one row
// exists per recording; re-transcription replaces it.
type Transcription struct {
	ID          string     `json:"id" db:"id"`
	RecordingID string     `json:"recordingId" db:"recording_id"`
	FullText    string     `json:"fullText" db:"full_text"`
	Language    string     `json:"language" db:"language"`
	Sentences   []Sentence `json:"sentences"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}
