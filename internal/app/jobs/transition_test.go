package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyre-server/internal/app/asr"
	"lyre-server/internal/app/model"
)

func pendingJob() *model.TranscriptionJob {
	return &model.TranscriptionJob{
		ID:          "job-1",
		RecordingID: "rec-1",
		TaskID:      "task-1",
		Status:      model.JobStatusPending,
	}
}

func TestApplyPoll_TerminalJobIsFrozen(t *testing.T) {
	for _, status := range []model.JobStatus{model.JobStatusSucceeded, model.JobStatusFailed} {
		job := pendingJob()
		job.Status = status

		out := ApplyPoll(job, &asr.PollResult{Status: model.JobStatusRunning})

		assert.False(t, out.Changed, "terminal job must not change on %s", status)
		assert.False(t, out.RunPipeline)
		assert.Nil(t, out.Event)
		assert.Equal(t, status, out.Job.Status)
	}
}

func TestApplyPoll_PendingToRunning(t *testing.T) {
	out := ApplyPoll(pendingJob(), &asr.PollResult{Status: model.JobStatusRunning})

	require.True(t, out.Changed)
	require.NotNil(t, out.Update.Status)
	assert.Equal(t, model.JobStatusRunning, *out.Update.Status)
	assert.False(t, out.RunPipeline)

	require.NotNil(t, out.Event)
	assert.Equal(t, model.JobStatusPending, out.Event.PreviousStatus)
	assert.Equal(t, model.JobStatusRunning, out.Event.Status)
	assert.Equal(t, "rec-1", out.Event.RecordingID)
}

func TestApplyPoll_RunningStaysRunning(t *testing.T) {
	job := pendingJob()
	job.Status = model.JobStatusRunning

	out := ApplyPoll(job, &asr.PollResult{Status: model.JobStatusRunning})

	assert.False(t, out.Changed)
	assert.Nil(t, out.Event)
}

func TestApplyPoll_PendingResultOnlyRecordsSubmitTime(t *testing.T) {
	submitted := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	out := ApplyPoll(pendingJob(), &asr.PollResult{
		Status:     model.JobStatusPending,
		SubmitTime: &submitted,
	})

	require.True(t, out.Changed)
	assert.Nil(t, out.Update.Status)
	require.NotNil(t, out.Update.SubmitTime)
	assert.Equal(t, submitted, *out.Update.SubmitTime)
	assert.Nil(t, out.Event, "no status change means no event")
}

func TestApplyPoll_SubmitTimeNotOverwritten(t *testing.T) {
	original := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	later := original.Add(time.Hour)
	job := pendingJob()
	job.SubmitTime = &original

	out := ApplyPoll(job, &asr.PollResult{
		Status:     model.JobStatusPending,
		SubmitTime: &later,
	})

	assert.False(t, out.Changed)
	assert.Nil(t, out.Update.SubmitTime)
}

func TestApplyPoll_Succeeded(t *testing.T) {
	ended := time.Date(2026, 8, 25, 11, 0, 0, 0, time.UTC)
	job := pendingJob()
	job.Status = model.JobStatusRunning

	out := ApplyPoll(job, &asr.PollResult{
		Status:       model.JobStatusSucceeded,
		ResultURL:    "https://asr.example.com/results/task-1",
		UsageSeconds: 613,
		EndTime:      &ended,
	})

	require.True(t, out.Changed)
	assert.True(t, out.RunPipeline)
	require.NotNil(t, out.Update.Status)
	assert.Equal(t, model.JobStatusSucceeded, *out.Update.Status)
	require.NotNil(t, out.Update.ResultURL)
	assert.Equal(t, "https://asr.example.com/results/task-1", *out.Update.ResultURL)
	require.NotNil(t, out.Update.UsageSeconds)
	assert.Equal(t, 613, *out.Update.UsageSeconds)
	require.NotNil(t, out.Update.EndTime)
	assert.Equal(t, ended, *out.Update.EndTime)

	require.NotNil(t, out.Event)
	assert.Equal(t, model.JobStatusRunning, out.Event.PreviousStatus)
}

func TestApplyPoll_SucceededStraightFromPending(t *testing.T) {
	// A fast task can finish between two polls; the intermediate RUNNING
	// state is simply never observed.
	out := ApplyPoll(pendingJob(), &asr.PollResult{
		Status:    model.JobStatusSucceeded,
		ResultURL: "https://asr.example.com/r/1",
	})

	require.True(t, out.Changed)
	assert.True(t, out.RunPipeline)
	require.NotNil(t, out.Event)
	assert.Equal(t, model.JobStatusPending, out.Event.PreviousStatus)
	assert.Equal(t, model.JobStatusSucceeded, out.Event.Status)
}

func TestApplyPoll_FailedWithMessage(t *testing.T) {
	out := ApplyPoll(pendingJob(), &asr.PollResult{
		Status:       model.JobStatusFailed,
		ErrorMessage: "audio format not supported",
	})

	require.True(t, out.Changed)
	assert.False(t, out.RunPipeline)
	require.NotNil(t, out.Update.ErrorMessage)
	assert.Equal(t, "audio format not supported", *out.Update.ErrorMessage)
	assert.Equal(t, model.JobStatusFailed, out.Job.Status)
}

func TestApplyPoll_FailedWithoutMessageGetsDefault(t *testing.T) {
	out := ApplyPoll(pendingJob(), &asr.PollResult{Status: model.JobStatusFailed})

	require.NotNil(t, out.Update.ErrorMessage)
	assert.Equal(t, "transcription failed", *out.Update.ErrorMessage)
}

func TestApplyPoll_DoesNotMutateInput(t *testing.T) {
	job := pendingJob()
	_ = ApplyPoll(job, &asr.PollResult{Status: model.JobStatusSucceeded, ResultURL: "u"})

	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Empty(t, job.ResultURL)
}

func TestOutcomeFail_DowngradesSuccess(t *testing.T) {
	out := ApplyPoll(pendingJob(), &asr.PollResult{
		Status:    model.JobStatusSucceeded,
		ResultURL: "https://asr.example.com/r/1",
	})
	require.True(t, out.RunPipeline)

	out.fail("result processing: parse transcript: unexpected end of JSON input")

	assert.Equal(t, model.JobStatusFailed, out.Job.Status)
	require.NotNil(t, out.Update.Status)
	assert.Equal(t, model.JobStatusFailed, *out.Update.Status)
	assert.False(t, out.RunPipeline)
	require.NotNil(t, out.Event)
	assert.Equal(t, model.JobStatusFailed, out.Event.Status)
	assert.Equal(t, model.JobStatusPending, out.Event.PreviousStatus)
}
