package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lyre-server/internal/app/model"
)

// RemoteProvider talks to the hosted ASR service over its JSON task API.
type RemoteProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteProvider creates a client for the remote ASR service.
func NewRemoteProvider(baseURL, apiKey string) *RemoteProvider {
	return &RemoteProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type remoteTaskRequest struct {
	FileURL  string `json:"fileUrl"`
	Format   string `json:"format,omitempty"`
	Language string `json:"language,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

type remoteTaskResponse struct {
	TaskID       string `json:"taskId"`
	RequestID    string `json:"requestId,omitempty"`
	Status       string `json:"status"`
	SubmitTime   string `json:"submitTime,omitempty"`
	EndTime      string `json:"endTime,omitempty"`
	UsageSeconds int    `json:"usageSeconds,omitempty"`
	ResultURL    string `json:"resultUrl,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Submit starts a remote transcription task.
func (p *RemoteProvider) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	body, err := json.Marshal(remoteTaskRequest{
		FileURL:  req.AudioURL,
		Format:   req.Format,
		Language: req.LanguageHint,
		Tag:      req.RecordingID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal submit request: %w", err)
	}

	var resp remoteTaskResponse
	if err := p.doJSON(ctx, http.MethodPost, p.baseURL+"/v1/tasks", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	if resp.TaskID == "" {
		return nil, &ProviderError{Op: "submit", Err: fmt.Errorf("response missing taskId")}
	}

	return &SubmitResult{TaskID: resp.TaskID, RequestID: resp.RequestID}, nil
}

// Poll queries the current state of a remote task.
func (p *RemoteProvider) Poll(ctx context.Context, taskID string) (*PollResult, error) {
	var resp remoteTaskResponse
	url := fmt.Sprintf("%s/v1/tasks/%s", p.baseURL, taskID)
	if err := p.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	status, err := mapRemoteStatus(resp.Status)
	if err != nil {
		return nil, &ProviderError{Op: "poll", Err: err}
	}

	result := &PollResult{
		Status:       status,
		RequestID:    resp.RequestID,
		UsageSeconds: resp.UsageSeconds,
		ResultURL:    resp.ResultURL,
		ErrorMessage: resp.ErrorMessage,
	}
	result.SubmitTime = parseRemoteTime(resp.SubmitTime)
	result.EndTime = parseRemoteTime(resp.EndTime)
	return result, nil
}

// FetchResult downloads the raw result payload for a succeeded task.
func (p *RemoteProvider) FetchResult(ctx context.Context, resultURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build result request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: "fetch result", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, &ProviderError{Op: "fetch result", StatusCode: resp.StatusCode,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch result: unexpected HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, &ProviderError{Op: "fetch result", Err: err}
	}
	return json.RawMessage(data), nil
}

func (p *RemoteProvider) doJSON(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Op: method + " " + url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &ProviderError{Op: method + " " + url, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: HTTP %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(text)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Op: "decode response", Err: err}
	}
	return nil
}

func mapRemoteStatus(s string) (model.JobStatus, error) {
	switch strings.ToUpper(s) {
	case "PENDING", "QUEUED", "ONGOING_QUEUED":
		return model.JobStatusPending, nil
	case "RUNNING", "ONGOING", "IN_PROGRESS":
		return model.JobStatusRunning, nil
	case "SUCCEEDED", "COMPLETED", "SUCCESS":
		return model.JobStatusSucceeded, nil
	case "FAILED", "ERROR":
		return model.JobStatusFailed, nil
	default:
		return "", fmt.Errorf("unknown remote task status %q", s)
	}
}

func parseRemoteTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
