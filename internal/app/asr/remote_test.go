package asr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyre-server/internal/app/model"
)

func TestRemoteProvider_Submit(t *testing.T) {
	var gotAuth string
	var gotReq remoteTaskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/tasks", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(remoteTaskResponse{
			TaskID:    "task-abc",
			RequestID: "req-1",
			Status:    "QUEUED",
		})
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, "secret-key")
	result, err := p.Submit(context.Background(), &SubmitRequest{
		RecordingID:  "rec-1",
		AudioURL:     "https://store.test/uploads/rec-1/a.m4a",
		Format:       "m4a",
		LanguageHint: "en",
	})

	require.NoError(t, err)
	assert.Equal(t, "task-abc", result.TaskID)
	assert.Equal(t, "req-1", result.RequestID)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "https://store.test/uploads/rec-1/a.m4a", gotReq.FileURL)
	assert.Equal(t, "rec-1", gotReq.Tag)
}

func TestRemoteProvider_PollSucceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tasks/task-abc", r.URL.Path)
		json.NewEncoder(w).Encode(remoteTaskResponse{
			TaskID:       "task-abc",
			Status:       "COMPLETED",
			SubmitTime:   "2026-08-25T10:00:00Z",
			EndTime:      "2026-08-25T10:04:10Z",
			UsageSeconds: 250,
			ResultURL:    "https://asr.example.com/r/abc",
		})
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, "k")
	result, err := p.Poll(context.Background(), "task-abc")

	require.NoError(t, err)
	assert.Equal(t, model.JobStatusSucceeded, result.Status)
	assert.Equal(t, 250, result.UsageSeconds)
	assert.Equal(t, "https://asr.example.com/r/abc", result.ResultURL)
	require.NotNil(t, result.SubmitTime)
	require.NotNil(t, result.EndTime)
}

func TestRemoteProvider_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, "k")
	_, err := p.Poll(context.Background(), "task-abc")

	require.Error(t, err)
	assert.True(t, IsProviderError(err), "5xx must map to a transient provider error")
}

func TestRemoteProvider_ClientErrorIsNotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such task", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, "k")
	_, err := p.Poll(context.Background(), "task-abc")

	require.Error(t, err)
	assert.False(t, IsProviderError(err), "a 404 is a real error, not a retryable blip")
}

func TestRemoteProvider_ConnectionRefusedIsTransient(t *testing.T) {
	p := NewRemoteProvider("http://127.0.0.1:1", "k")
	_, err := p.Poll(context.Background(), "task-abc")

	require.Error(t, err)
	assert.True(t, IsProviderError(err))
}

func TestRemoteProvider_FetchResult(t *testing.T) {
	payload := `{"result":{"fullText":"hi","language":"en","sentences":[]}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, "k")
	raw, err := p.FetchResult(context.Background(), srv.URL+"/r/abc")

	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))
}
