package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

// Archiver copies raw ASR result payloads into long-term object storage.
// Callers treat failures as log-only; archival never changes a job outcome.
type Archiver struct {
	store      ObjectStore
	httpClient *http.Client
	presignTTL time.Duration
}

// NewArchiver creates an archiver writing through the given store.
func NewArchiver(store ObjectStore) *Archiver {
	return &Archiver{
		store:      store,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		presignTTL: 15 * time.Minute,
	}
}

// Archive PUTs payload to a presigned URL for key. Any non-2xx response is
// an error.
func (a *Archiver) Archive(ctx context.Context, key string, payload []byte) error {
	uploadURL, err := a.store.PresignPut(ctx, key, "application/json", a.presignTTL)
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("archive %s: build request: %w", key, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(payload))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("archive %s: HTTP %d", key, resp.StatusCode)
	}
	return nil
}
