package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lyre-server/internal/app/asr"
	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
	"lyre-server/internal/app/storage"
	"lyre-server/internal/app/summary"
)

// pipelineErrPrefix distinguishes "we failed to process the provider's
// success" from a provider-reported failure in job error messages.
const pipelineErrPrefix = "result processing: "

// Pipeline runs the side-effect chain for a job that newly succeeded:
// fetch raw result, parse, replace the recording's transcription, mark the
// recording completed, then best-effort archival and summarization.
type Pipeline struct {
	provider       asr.Provider
	transcriptions repository.TranscriptionDAO
	recordings     repository.RecordingDAO
	settings       repository.SettingsDAO
	archiver       *storage.Archiver
	summarizer     summary.Summarizer
	logger         *zap.Logger
}

// NewPipeline wires the result-processing pipeline. archiver and summarizer
// may be nil; the corresponding best-effort step is then skipped.
func NewPipeline(
	provider asr.Provider,
	transcriptions repository.TranscriptionDAO,
	recordings repository.RecordingDAO,
	settings repository.SettingsDAO,
	archiver *storage.Archiver,
	summarizer summary.Summarizer,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		provider:       provider,
		transcriptions: transcriptions,
		recordings:     recordings,
		settings:       settings,
		archiver:       archiver,
		summarizer:     summarizer,
		logger:         logger,
	}
}

// Process executes the pipeline for a job whose poll result just reported
// success. A non-nil error means the job must be downgraded to FAILED; the
// pipeline never leaves a job silently stuck in RUNNING.
func (p *Pipeline) Process(ctx context.Context, job *model.TranscriptionJob) error {
	raw, err := p.provider.FetchResult(ctx, job.ResultURL)
	if err != nil {
		pipelineRuns.WithLabelValues("failure").Inc()
		return fmt.Errorf(pipelineErrPrefix+"fetch result: %w", err)
	}

	parsed, err := asr.ParseResult(raw)
	if err != nil {
		pipelineRuns.WithLabelValues("failure").Inc()
		return fmt.Errorf(pipelineErrPrefix+"%w", err)
	}

	transcription := &model.Transcription{
		ID:          uuid.New().String(),
		RecordingID: job.RecordingID,
		FullText:    parsed.FullText,
		Language:    parsed.Language,
		Sentences:   parsed.Sentences,
	}
	if err := p.transcriptions.Replace(ctx, transcription); err != nil {
		pipelineRuns.WithLabelValues("failure").Inc()
		return fmt.Errorf(pipelineErrPrefix+"store transcription: %w", err)
	}

	if err := p.recordings.UpdateStatus(ctx, job.RecordingID, model.RecordingStatusCompleted); err != nil {
		pipelineRuns.WithLabelValues("failure").Inc()
		return fmt.Errorf(pipelineErrPrefix+"update recording status: %w", err)
	}

	// Everything below is best-effort and must never revert the success
	// outcome.
	p.archiveResult(ctx, job, raw)
	p.summarize(ctx, job, parsed.FullText)

	pipelineRuns.WithLabelValues("success").Inc()
	return nil
}

func (p *Pipeline) archiveResult(ctx context.Context, job *model.TranscriptionJob, raw []byte) {
	if p.archiver == nil {
		return
	}
	key := storage.ResultKey(job.RecordingID, job.ID)
	if err := p.archiver.Archive(ctx, key, raw); err != nil {
		p.logger.Warn("raw result archival failed",
			zap.String("job_id", job.ID),
			zap.String("key", key),
			zap.Error(err))
	}
}

func (p *Pipeline) summarize(ctx context.Context, job *model.TranscriptionJob, fullText string) {
	if p.summarizer == nil || p.settings == nil {
		return
	}

	settings, err := p.settings.Get(ctx)
	if err != nil {
		p.logger.Warn("settings lookup failed, skipping summarization",
			zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	if !settings.SummaryEnabled {
		return
	}

	recording, err := p.recordings.FindByID(ctx, job.RecordingID)
	if err != nil {
		p.logger.Warn("recording lookup failed, skipping summarization",
			zap.String("job_id", job.ID), zap.Error(err))
		return
	}

	text, err := p.summarizer.Generate(ctx, summary.BuildPrompt(recording.Title, fullText))
	if err != nil {
		p.logger.Warn("summarization failed",
			zap.String("job_id", job.ID),
			zap.String("recording_id", job.RecordingID),
			zap.Error(err))
		return
	}

	if err := p.recordings.UpdateSummary(ctx, job.RecordingID, text); err != nil {
		p.logger.Warn("storing summary failed",
			zap.String("recording_id", job.RecordingID), zap.Error(err))
	}
}
