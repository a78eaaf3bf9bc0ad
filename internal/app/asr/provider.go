package asr

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lyre-server/internal/app/model"
)

// Provider is the contract with the asynchronous speech-recognition service.
// Poll and FetchResult may fail with a *ProviderError for transient
// network/5xx conditions; callers swallow those and retry on the next cycle.
// A provider-reported FAILED status is a normal PollResult, not an error.
type Provider interface {
	// Submit starts a transcription task for an audio file reachable at
	// audioURL and returns the provider-assigned task id.
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error)

	// Poll returns the current remote state of a task.
	Poll(ctx context.Context, taskID string) (*PollResult, error)

	// FetchResult downloads the raw result payload of a succeeded task.
	// The payload is opaque here; ParseResult turns it into sentences.
	FetchResult(ctx context.Context, resultURL string) (json.RawMessage, error)
}

// SubmitRequest describes a new transcription task.
type SubmitRequest struct {
	RecordingID  string
	AudioURL     string
	Format       string
	LanguageHint string
}

// SubmitResult is the provider's acknowledgement of a new task.
type SubmitResult struct {
	TaskID    string
	RequestID string
}

// PollResult is the provider's view of a task. Optional fields are set as
// the provider makes them available.
type PollResult struct {
	Status       model.JobStatus
	RequestID    string
	SubmitTime   *time.Time
	EndTime      *time.Time
	UsageSeconds int
	ResultURL    string
	ErrorMessage string
}

// ProviderError marks a transient provider failure (network error, 5xx).
// Jobs are never failed because of one; the next tick retries.
type ProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return "asr provider: " + e.Op + ": " + e.Err.Error()
	}
	return "asr provider: " + e.Op
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err is a transient provider failure.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
