package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"lyre-server/internal/api/v1/dto"
	"lyre-server/internal/app/model"
)

// Client talks to a running lyre server the same way the desktop app does:
// presign, PUT the audio, register the recording, kick off transcription.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates an API client. token may be empty when the server runs with
// auth disabled.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		// Uploads of large audio files can take a while; no client timeout,
		// callers bound the whole operation via ctx.
		http: &http.Client{},
	}
}

// Presign asks the server for an upload slot.
func (c *Client) Presign(ctx context.Context, fileName string, fileSize int64) (*dto.PresignUploadResponse, error) {
	var resp dto.PresignUploadResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/upload/presign",
		dto.PresignUploadRequest{FileName: fileName, FileSize: fileSize}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upload PUTs the audio file to the presigned URL. progress, when non-nil,
// wraps the file reader so the caller can render a bar.
func (c *Client) Upload(ctx context.Context, uploadURL, path string, progress func(io.Reader, int64) io.Reader) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat audio file: %w", err)
	}

	var body io.Reader = f
	if progress != nil {
		body = progress(f, info.Size())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = info.Size()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload audio: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload audio: storage returned %s", resp.Status)
	}
	return nil
}

// CreateRecording registers the uploaded object as a recording.
func (c *Client) CreateRecording(ctx context.Context, req dto.CreateRecordingRequest) (*model.Recording, error) {
	var recording model.Recording
	if err := c.doJSON(ctx, http.MethodPost, "/api/recordings", req, &recording); err != nil {
		return nil, err
	}
	return &recording, nil
}

// StartTranscription submits the recording for transcription and returns the
// new job.
func (c *Client) StartTranscription(ctx context.Context, recordingID string) (*model.TranscriptionJob, error) {
	var job model.TranscriptionJob
	path := fmt.Sprintf("/api/recordings/%s/transcribe", recordingID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// PollJob forces a provider poll and returns the refreshed job row.
func (c *Client) PollJob(ctx context.Context, jobID string) (*model.TranscriptionJob, error) {
	var job model.TranscriptionJob
	path := fmt.Sprintf("/api/jobs/%s/poll", jobID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// WaitForJob polls until the job reaches a terminal state or ctx expires.
func (c *Client) WaitForJob(ctx context.Context, jobID string, interval time.Duration) (*model.TranscriptionJob, error) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := c.PollJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// UploadAndTranscribe runs the whole desktop flow for one local file.
func (c *Client) UploadAndTranscribe(ctx context.Context, path string, progress func(io.Reader, int64) io.Reader) (*model.Recording, *model.TranscriptionJob, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat audio file: %w", err)
	}
	fileName := filepath.Base(path)

	presigned, err := c.Presign(ctx, fileName, info.Size())
	if err != nil {
		return nil, nil, err
	}
	if err := c.Upload(ctx, presigned.UploadURL, path, progress); err != nil {
		return nil, nil, err
	}

	title := fileName[:len(fileName)-len(filepath.Ext(fileName))]
	recording, err := c.CreateRecording(ctx, dto.CreateRecordingRequest{
		ID:       presigned.RecordingID,
		Title:    title,
		FileName: fileName,
		OssKey:   presigned.OssKey,
		FileSize: info.Size(),
	})
	if err != nil {
		return nil, nil, err
	}

	job, err := c.StartTranscription(ctx, recording.ID)
	if err != nil {
		return recording, nil, err
	}
	return recording, job, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s %s: %s (%s)", method, path, apiErr.Message, resp.Status)
		}
		return fmt.Errorf("%s %s: server returned %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
