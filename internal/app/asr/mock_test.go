package asr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyre-server/internal/app/model"
)

func TestMockProvider_Lifecycle(t *testing.T) {
	ctx := context.Background()
	p := NewMockProvider(3)

	submitted, err := p.Submit(ctx, &SubmitRequest{RecordingID: "rec-1", AudioURL: "store://a"})
	require.NoError(t, err)
	require.NotEmpty(t, submitted.TaskID)

	// Poll 1: pending, poll 2: running, poll 3: succeeded.
	r, err := p.Poll(ctx, submitted.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, r.Status)
	assert.NotNil(t, r.SubmitTime)

	r, err = p.Poll(ctx, submitted.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusRunning, r.Status)

	r, err = p.Poll(ctx, submitted.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusSucceeded, r.Status)
	assert.Equal(t, "mock://results/"+submitted.TaskID, r.ResultURL)
	assert.Equal(t, 42, r.UsageSeconds)
	require.NotNil(t, r.EndTime)

	raw, err := p.FetchResult(ctx, r.ResultURL)
	require.NoError(t, err)

	parsed, err := ParseResult(raw)
	require.NoError(t, err)
	assert.Equal(t, "en", parsed.Language)
	assert.Len(t, parsed.Sentences, 2)
}

func TestMockProvider_ConfiguredFailure(t *testing.T) {
	ctx := context.Background()
	p := NewMockProvider(1)

	submitted, err := p.Submit(ctx, &SubmitRequest{RecordingID: "rec-1"})
	require.NoError(t, err)
	p.FailTasks[submitted.TaskID] = "simulated decode failure"

	r, err := p.Poll(ctx, submitted.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, r.Status)
	assert.Equal(t, "simulated decode failure", r.ErrorMessage)
}

func TestMockProvider_TransientErrorInjection(t *testing.T) {
	ctx := context.Background()
	p := NewMockProvider(1)

	submitted, err := p.Submit(ctx, &SubmitRequest{RecordingID: "rec-1"})
	require.NoError(t, err)
	p.TransientErrs[submitted.TaskID] = 2

	for i := 0; i < 2; i++ {
		_, err := p.Poll(ctx, submitted.TaskID)
		require.Error(t, err)
		assert.True(t, IsProviderError(err))
	}

	r, err := p.Poll(ctx, submitted.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusSucceeded, r.Status)
}

func TestMockProvider_UnknownTaskStaysPending(t *testing.T) {
	p := NewMockProvider(5)
	r, err := p.Poll(context.Background(), "task-from-before-restart")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, r.Status)
}
