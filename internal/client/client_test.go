package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyre-server/internal/app/model"
)

func writeTempAudio(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUploadAndTranscribe(t *testing.T) {
	var uploaded []byte

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("POST /api/upload/presign", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer device-token", r.Header.Get("Authorization"))
		var req struct {
			FileName string `json:"fileName"`
			FileSize int64  `json:"fileSize"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "interview.m4a", req.FileName)

		json.NewEncoder(w).Encode(map[string]string{
			"uploadUrl":   srv.URL + "/put/audio",
			"ossKey":      "uploads/rec-1/abc.m4a",
			"recordingId": "rec-1",
		})
	})
	mux.HandleFunc("PUT /put/audio", func(w http.ResponseWriter, r *http.Request) {
		var err error
		uploaded, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/recordings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			OssKey string `json:"ossKey"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rec-1", req.ID)
		assert.Equal(t, "interview", req.Title)
		assert.Equal(t, "uploads/rec-1/abc.m4a", req.OssKey)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Recording{ID: req.ID, Title: req.Title, OssKey: req.OssKey})
	})
	mux.HandleFunc("POST /api/recordings/rec-1/transcribe", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(model.TranscriptionJob{
			ID: "job-1", RecordingID: "rec-1", Status: model.JobStatusPending,
		})
	})

	path := writeTempAudio(t, "interview.m4a", "fake audio bytes")
	c := New(srv.URL, "device-token")

	recording, job, err := c.UploadAndTranscribe(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "rec-1", recording.ID)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, "fake audio bytes", string(uploaded))
}

func TestUpload_StorageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	path := writeTempAudio(t, "a.mp3", "x")
	c := New(srv.URL, "")

	err := c.Upload(context.Background(), srv.URL+"/put", path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage returned")
}

func TestDoJSON_SurfacesAPIErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "unsupported audio format"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.Presign(context.Background(), "video.mp4", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")
}

func TestWaitForJob(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := model.JobStatusRunning
		if polls.Add(1) >= 3 {
			status = model.JobStatusSucceeded
		}
		json.NewEncoder(w).Encode(model.TranscriptionJob{ID: "job-1", Status: status})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	job, err := c.WaitForJob(ctx, "job-1", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusSucceeded, job.Status)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestUploadProgress_Disabled(t *testing.T) {
	p := NewUploadProgress(false, nil)
	r := io.LimitReader(nil, 0)
	assert.Equal(t, r, p.Reader(r, 0), "disabled progress must not wrap the reader")
	p.Wait()
}
