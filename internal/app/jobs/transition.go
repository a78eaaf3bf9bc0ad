package jobs

import (
	"lyre-server/internal/app/asr"
	"lyre-server/internal/app/model"
)

// Outcome is the result of applying one poll result to a job. The same
// transition logic backs both the timer tick and the on-demand poll
// endpoint, so the two paths can never drift apart.
type Outcome struct {
	// Job is the job with the update already applied.
	Job model.TranscriptionJob
	// Update holds exactly the fields that must be persisted.
	Update model.JobUpdate
	// Changed reports whether Update contains anything.
	Changed bool
	// RunPipeline is set when the job newly transitioned into SUCCEEDED;
	// the result pipeline must run before the terminal row is persisted.
	RunPipeline bool
	// Event is the transition notification to broadcast, nil when the
	// status did not change.
	Event *model.JobEvent
}

// ApplyPoll computes the state transition for one provider poll. Pure: no
// I/O, no clock reads, no mutation of the input job.
func ApplyPoll(job *model.TranscriptionJob, pr *asr.PollResult) Outcome {
	out := Outcome{Job: *job}

	// Terminal jobs are frozen; a poll is a no-op returning the stored row.
	if job.Status.IsTerminal() {
		return out
	}

	// Opportunistic fields, persisted as the provider reports them.
	if job.SubmitTime == nil && pr.SubmitTime != nil {
		t := *pr.SubmitTime
		out.Update.SubmitTime = &t
		out.Job.SubmitTime = &t
		out.Changed = true
	}

	setStatus := func(status model.JobStatus) {
		out.Update.Status = &status
		out.Job.Status = status
		out.Changed = true
		out.Event = &model.JobEvent{
			JobID:          job.ID,
			RecordingID:    job.RecordingID,
			Status:         status,
			PreviousStatus: job.Status,
		}
	}

	switch pr.Status {
	case model.JobStatusPending:
		// Still queued remotely; nothing beyond opportunistic fields.

	case model.JobStatusRunning:
		if job.Status == model.JobStatusPending {
			setStatus(model.JobStatusRunning)
		}

	case model.JobStatusSucceeded:
		setStatus(model.JobStatusSucceeded)
		out.RunPipeline = true
		if pr.ResultURL != "" {
			url := pr.ResultURL
			out.Update.ResultURL = &url
			out.Job.ResultURL = url
		}
		if pr.UsageSeconds > 0 {
			usage := pr.UsageSeconds
			out.Update.UsageSeconds = &usage
			out.Job.UsageSeconds = usage
		}
		if pr.EndTime != nil {
			t := *pr.EndTime
			out.Update.EndTime = &t
			out.Job.EndTime = &t
		}

	case model.JobStatusFailed:
		setStatus(model.JobStatusFailed)
		msg := pr.ErrorMessage
		if msg == "" {
			msg = "transcription failed"
		}
		out.Update.ErrorMessage = &msg
		out.Job.ErrorMessage = msg
		if pr.EndTime != nil {
			t := *pr.EndTime
			out.Update.EndTime = &t
			out.Job.EndTime = &t
		}
	}

	return out
}

// fail downgrades the outcome to FAILED, preserving the original
// previousStatus in the event. Used when the result pipeline fails after the
// provider reported success.
func (out *Outcome) fail(message string) {
	status := model.JobStatusFailed
	out.Update.Status = &status
	out.Update.ErrorMessage = &message
	out.Job.Status = status
	out.Job.ErrorMessage = message
	out.Changed = true
	out.RunPipeline = false
	if out.Event != nil {
		out.Event.Status = status
	}
}
