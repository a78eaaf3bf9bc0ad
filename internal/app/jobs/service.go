package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lyre-server/internal/app/asr"
	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
	"lyre-server/internal/app/storage"
)

// audioURLTTL bounds how long the provider can fetch the audio after submit.
const audioURLTTL = 4 * time.Hour

// Service owns job creation: submitting a recording to the ASR provider and
// tracking the new job. Polling is the Manager's business.
type Service struct {
	provider    asr.Provider
	jobs        repository.JobDAO
	recordings  repository.RecordingDAO
	settings    repository.SettingsDAO
	objectStore storage.ObjectStore
	manager     *Manager
	logger      *zap.Logger
}

// NewService wires the submission service. objectStore may be nil when the
// mock provider is in use (it never fetches the audio).
func NewService(
	provider asr.Provider,
	jobDAO repository.JobDAO,
	recordingDAO repository.RecordingDAO,
	settingsDAO repository.SettingsDAO,
	objectStore storage.ObjectStore,
	manager *Manager,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:    provider,
		jobs:        jobDAO,
		recordings:  recordingDAO,
		settings:    settingsDAO,
		objectStore: objectStore,
		manager:     manager,
		logger:      logger,
	}
}

// StartTranscription submits the recording's audio to the provider and
// creates a fresh PENDING job row. Any previous jobs for the recording are
// superseded. The manager is started lazily so the new job gets polled.
func (s *Service) StartTranscription(ctx context.Context, recordingID string) (*model.TranscriptionJob, error) {
	recording, err := s.recordings.FindByID(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	audioURL := "store://" + recording.OssKey
	if s.objectStore != nil {
		audioURL, err = s.objectStore.PresignGet(ctx, recording.OssKey, audioURLTTL)
		if err != nil {
			return nil, fmt.Errorf("presign audio for provider: %w", err)
		}
	}

	var languageHint string
	if s.settings != nil {
		if settings, err := s.settings.Get(ctx); err == nil {
			languageHint = settings.LanguageHint
		}
	}

	submitted, err := s.provider.Submit(ctx, &asr.SubmitRequest{
		RecordingID:  recording.ID,
		AudioURL:     audioURL,
		Format:       recording.Format,
		LanguageHint: languageHint,
	})
	if err != nil {
		return nil, fmt.Errorf("submit transcription task: %w", err)
	}

	// A re-transcribe supersedes earlier attempts; their rows go away with
	// the new submission rather than lingering as stale terminal state.
	if err := s.jobs.DeleteByRecordingID(ctx, recording.ID); err != nil {
		return nil, err
	}

	job := &model.TranscriptionJob{
		ID:          uuid.New().String(),
		RecordingID: recording.ID,
		TaskID:      submitted.TaskID,
		RequestID:   submitted.RequestID,
		Status:      model.JobStatusPending,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	if err := s.recordings.UpdateStatus(ctx, recording.ID, model.RecordingStatusTranscribing); err != nil {
		s.logger.Error("marking recording transcribing failed",
			zap.String("recording_id", recording.ID), zap.Error(err))
	}

	s.logger.Info("transcription job created",
		zap.String("job_id", job.ID),
		zap.String("recording_id", recording.ID),
		zap.String("task_id", job.TaskID))

	s.manager.Start()
	return job, nil
}

// GetJob returns a job row by id.
func (s *Service) GetJob(ctx context.Context, jobID string) (*model.TranscriptionJob, error) {
	return s.jobs.FindByID(ctx, jobID)
}
