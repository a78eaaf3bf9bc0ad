package model

import "time"

// JobStatus is the lifecycle state of a transcription job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
)

// IsTerminal reports whether the status accepts no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// TranscriptionJob tracks one submitted ASR task. A recording can accumulate
// several job rows over its lifetime (one per re-transcribe), but only the
// newest one is ever non-terminal.
type TranscriptionJob struct {
	ID           string     `json:"id" db:"id"`
	RecordingID  string     `json:"recordingId" db:"recording_id"`
	TaskID       string     `json:"taskId" db:"task_id"`
	RequestID    string     `json:"requestId,omitempty" db:"request_id"`
	Status       JobStatus  `json:"status" db:"status"`
	SubmitTime   *time.Time `json:"submitTime,omitempty" db:"submit_time"`
	EndTime      *time.Time `json:"endTime,omitempty" db:"end_time"`
	UsageSeconds int        `json:"usageSeconds,omitempty" db:"usage_seconds"`
	ErrorMessage string     `json:"errorMessage,omitempty" db:"error_message"`
	ResultURL    string     `json:"resultUrl,omitempty" db:"result_url"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// JobUpdate carries the mutable fields persisted by the polling logic.
// Nil pointers mean "leave unchanged".
type JobUpdate struct {
	Status       *JobStatus
	SubmitTime   *time.Time
	EndTime      *time.Time
	UsageSeconds *int
	ErrorMessage *string
	ResultURL    *string
}

// JobEvent is broadcast once per observed status transition. It is ephemeral
// and never persisted.
type JobEvent struct {
	JobID          string    `json:"jobId"`
	RecordingID    string    `json:"recordingId"`
	Status         JobStatus `json:"status"`
	PreviousStatus JobStatus `json:"previousStatus"`
}
