package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"lyre-server/internal/app/asr"
	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

// Manager is the process-wide scheduler for outstanding transcription jobs.
// A recurring tick polls every non-terminal job through the ASR provider,
// applies transitions, persists them, runs the result pipeline on success
// and broadcasts events to the hub. The on-demand poll path (PollNow) shares
// the exact same per-job logic.
type Manager struct {
	provider   asr.Provider
	jobs       repository.JobDAO
	recordings repository.RecordingDAO
	pipeline   *Pipeline
	hub        *Hub
	logger     *zap.Logger

	interval    time.Duration
	maxFailures int

	mu             sync.Mutex
	started        bool
	cancel         context.CancelFunc
	done           chan struct{}
	pollWG         sync.WaitGroup
	inFlight       map[string]struct{}
	transientFails map[string]int
}

// NewManager creates a stopped manager.
func NewManager(
	provider asr.Provider,
	jobDAO repository.JobDAO,
	recordingDAO repository.RecordingDAO,
	pipeline *Pipeline,
	hub *Hub,
	interval time.Duration,
	maxFailures int,
	logger *zap.Logger,
) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxFailures <= 0 {
		maxFailures = 240
	}
	return &Manager{
		provider:       provider,
		jobs:           jobDAO,
		recordings:     recordingDAO,
		pipeline:       pipeline,
		hub:            hub,
		logger:         logger,
		interval:       interval,
		maxFailures:    maxFailures,
		inFlight:       make(map[string]struct{}),
		transientFails: make(map[string]int),
	}
}

// Start launches the polling loop. Starting an already-started manager is a
// no-op. The manager is typically started lazily: on the first live
// subscriber or the first transcription submission.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.started = true

	go m.run(ctx)
	m.logger.Info("job manager started", zap.Duration("interval", m.interval))
}

// Stop cancels the timer, waits for the loop to exit and then for in-flight
// polls to finish. The polls complete or fail naturally; they are not
// aborted. Stopping a stopped manager is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done
	m.pollWG.Wait()
	m.logger.Info("job manager stopped")
}

// Started reports whether the polling loop is running.
func (m *Manager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick polls every active job. Jobs are processed in their own goroutines so
// one slow provider call cannot delay the others; the in-flight guard keeps
// overlapping ticks from double-processing a job.
func (m *Manager) tick(ctx context.Context) {
	active, err := m.jobs.FindActive(ctx)
	if err != nil {
		m.logger.Error("listing active jobs failed", zap.Error(err))
		return
	}

	// Stop only cancels the timer; an in-flight provider call keeps its
	// context so it can finish and persist naturally.
	pollCtx := context.WithoutCancel(ctx)
	for _, job := range active {
		jobID := job.ID
		m.pollWG.Add(1)
		go func() {
			defer m.pollWG.Done()
			if _, err := m.PollNow(pollCtx, jobID); err != nil {
				m.logger.Error("poll failed",
					zap.String("job_id", jobID), zap.Error(err))
			}
		}()
	}
}

// PollNow runs one poll-and-transition cycle for a single job and returns
// the resulting row. Terminal jobs are returned unchanged without any store
// write or event. When another poller already holds the job, the current
// stored row is returned instead of polling twice.
func (m *Manager) PollNow(ctx context.Context, jobID string) (*model.TranscriptionJob, error) {
	if !m.acquire(jobID) {
		return m.jobs.FindByID(ctx, jobID)
	}
	defer m.release(jobID)

	job, err := m.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		jobPolls.WithLabelValues("terminal").Inc()
		return job, nil
	}

	pr, err := m.provider.Poll(ctx, job.TaskID)
	if err != nil {
		if asr.IsProviderError(err) {
			return m.handleTransientFailure(ctx, job, err)
		}
		return nil, err
	}
	m.mu.Lock()
	delete(m.transientFails, job.ID)
	m.mu.Unlock()

	out := ApplyPoll(job, pr)
	if out.RunPipeline {
		if perr := m.pipeline.Process(ctx, &out.Job); perr != nil {
			m.logger.Warn("result pipeline failed, marking job failed",
				zap.String("job_id", job.ID), zap.Error(perr))
			out.fail(perr.Error())
		}
	}

	if !out.Changed {
		jobPolls.WithLabelValues("no_change").Inc()
		return job, nil
	}

	if err := m.jobs.Update(ctx, job.ID, out.Update); err != nil {
		return nil, fmt.Errorf("persist job transition: %w", err)
	}
	m.propagateRecordingStatus(ctx, &out.Job)

	if out.Event != nil {
		jobTransitions.WithLabelValues(string(out.Event.Status)).Inc()
		m.hub.Broadcast(*out.Event)
	}
	jobPolls.WithLabelValues("transition").Inc()
	return &out.Job, nil
}

// handleTransientFailure counts consecutive provider errors for a job and
// force-fails it once the bounded retry budget is exhausted. Below the
// budget the error is swallowed and the stored row returned unchanged, so
// callers just see the current state.
func (m *Manager) handleTransientFailure(ctx context.Context, job *model.TranscriptionJob, cause error) (*model.TranscriptionJob, error) {
	m.mu.Lock()
	m.transientFails[job.ID]++
	n := m.transientFails[job.ID]
	m.mu.Unlock()

	jobPolls.WithLabelValues("transient_error").Inc()
	if n < m.maxFailures {
		m.logger.Warn("transient provider error, will retry",
			zap.String("job_id", job.ID),
			zap.Int("consecutive_failures", n),
			zap.Error(cause))
		return job, nil
	}

	m.logger.Error("provider unreachable beyond retry budget, failing job",
		zap.String("job_id", job.ID),
		zap.Int("consecutive_failures", n))

	status := model.JobStatusFailed
	msg := fmt.Sprintf("provider unreachable after %d consecutive polls: %v", n, cause)
	update := model.JobUpdate{Status: &status, ErrorMessage: &msg}
	if err := m.jobs.Update(ctx, job.ID, update); err != nil {
		return nil, fmt.Errorf("persist forced failure: %w", err)
	}

	previous := job.Status
	job.Status = status
	job.ErrorMessage = msg
	m.propagateRecordingStatus(ctx, job)

	m.mu.Lock()
	delete(m.transientFails, job.ID)
	m.mu.Unlock()

	jobTransitions.WithLabelValues(string(status)).Inc()
	m.hub.Broadcast(model.JobEvent{
		JobID:          job.ID,
		RecordingID:    job.RecordingID,
		Status:         status,
		PreviousStatus: previous,
	})
	return job, nil
}

// propagateRecordingStatus mirrors the job outcome onto the owning
// recording. The SUCCEEDED case is handled inside the pipeline so the
// recording flips to completed only after its transcription is stored.
func (m *Manager) propagateRecordingStatus(ctx context.Context, job *model.TranscriptionJob) {
	var status model.RecordingStatus
	switch job.Status {
	case model.JobStatusRunning:
		status = model.RecordingStatusTranscribing
	case model.JobStatusFailed:
		status = model.RecordingStatusFailed
	default:
		return
	}

	if err := m.recordings.UpdateStatus(ctx, job.RecordingID, status); err != nil {
		m.logger.Error("updating recording status failed",
			zap.String("recording_id", job.RecordingID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

func (m *Manager) acquire(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inFlight[jobID]; busy {
		return false
	}
	m.inFlight[jobID] = struct{}{}
	return true
}

func (m *Manager) release(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, jobID)
}

// defaultManager is the process-wide singleton installed by the serve
// command and torn down in tests via ResetDefault.
var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// SetDefault installs the process-wide manager.
func SetDefault(m *Manager) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = m
}

// Default returns the process-wide manager, or nil before SetDefault.
func Default() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultManager
}

// ResetDefault stops and clears the process-wide manager. Test isolation
// hook.
func ResetDefault() {
	defaultMu.Lock()
	m := defaultManager
	defaultManager = nil
	defaultMu.Unlock()
	if m != nil {
		m.Stop()
	}
}
