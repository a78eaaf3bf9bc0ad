// Package testutil provides in-memory fakes shared by unit tests: a full
// repository.Store backed by maps and a scriptable ASR provider.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

// Store is an in-memory repository.Store. Safe for concurrent use.
type Store struct {
	mu             sync.Mutex
	jobs           map[string]model.TranscriptionJob
	transcriptions map[string]model.Transcription // keyed by recording id
	recordings     map[string]model.Recording
	folders        map[string]model.Folder
	tags           map[string]model.Tag
	settings       model.Settings
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		jobs:           make(map[string]model.TranscriptionJob),
		transcriptions: make(map[string]model.Transcription),
		recordings:     make(map[string]model.Recording),
		folders:        make(map[string]model.Folder),
		tags:           make(map[string]model.Tag),
	}
}

func (s *Store) Jobs() repository.JobDAO                     { return (*jobDAO)(s) }
func (s *Store) Transcriptions() repository.TranscriptionDAO { return (*transcriptionDAO)(s) }
func (s *Store) Recordings() repository.RecordingDAO         { return (*recordingDAO)(s) }
func (s *Store) Folders() repository.FolderDAO               { return (*folderDAO)(s) }
func (s *Store) Tags() repository.TagDAO                     { return (*tagDAO)(s) }
func (s *Store) Settings() repository.SettingsDAO            { return (*settingsDAO)(s) }
func (s *Store) Close() error                                { return nil }

// SeedJob inserts a job directly, bypassing Create bookkeeping.
func (s *Store) SeedJob(job model.TranscriptionJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// SeedRecording inserts a recording directly.
func (s *Store) SeedRecording(r model.Recording) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordings[r.ID] = r
}

// SetSettings replaces the settings row.
func (s *Store) SetSettings(settings model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Job returns a copy of the stored job, or false when absent.
func (s *Store) Job(id string) (model.TranscriptionJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

// Recording returns a copy of the stored recording, or false when absent.
func (s *Store) Recording(id string) (model.Recording, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recordings[id]
	return r, ok
}

// Transcription returns the stored transcription for a recording, or false.
func (s *Store) Transcription(recordingID string) (model.Transcription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcriptions[recordingID]
	return t, ok
}

type jobDAO Store

func (d *jobDAO) Create(_ context.Context, job *model.TranscriptionJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	d.jobs[job.ID] = *job
	return nil
}

func (d *jobDAO) FindByID(_ context.Context, id string) (*model.TranscriptionJob, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	job, ok := d.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &job, nil
}

func (d *jobDAO) FindActive(_ context.Context) ([]model.TranscriptionJob, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var active []model.TranscriptionJob
	for _, job := range d.jobs {
		if !job.Status.IsTerminal() {
			active = append(active, job)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

func (d *jobDAO) Update(_ context.Context, id string, upd model.JobUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	job, ok := d.jobs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.Status != nil {
		job.Status = *upd.Status
	}
	if upd.SubmitTime != nil {
		job.SubmitTime = upd.SubmitTime
	}
	if upd.EndTime != nil {
		job.EndTime = upd.EndTime
	}
	if upd.UsageSeconds != nil {
		job.UsageSeconds = *upd.UsageSeconds
	}
	if upd.ErrorMessage != nil {
		job.ErrorMessage = *upd.ErrorMessage
	}
	if upd.ResultURL != nil {
		job.ResultURL = *upd.ResultURL
	}
	job.UpdatedAt = time.Now()
	d.jobs[id] = job
	return nil
}

func (d *jobDAO) DeleteByRecordingID(_ context.Context, recordingID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, job := range d.jobs {
		if job.RecordingID == recordingID {
			delete(d.jobs, id)
		}
	}
	return nil
}

type transcriptionDAO Store

func (d *transcriptionDAO) FindByRecordingID(_ context.Context, recordingID string) (*model.Transcription, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.transcriptions[recordingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (d *transcriptionDAO) Replace(_ context.Context, t *model.Transcription) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t.CreatedAt = time.Now()
	d.transcriptions[t.RecordingID] = *t
	return nil
}

func (d *transcriptionDAO) DeleteByRecordingID(_ context.Context, recordingID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.transcriptions, recordingID)
	return nil
}

type recordingDAO Store

func (d *recordingDAO) Create(_ context.Context, r *model.Recording) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	d.recordings[r.ID] = *r
	return nil
}

func (d *recordingDAO) FindByID(_ context.Context, id string) (*model.Recording, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.recordings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (d *recordingDAO) List(_ context.Context, filter repository.RecordingFilter) ([]model.Recording, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.Recording
	for _, r := range d.recordings {
		if filter.FolderID != "" && r.FolderID != filter.FolderID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.TagID != "" && !lo.Contains(r.TagIDs, filter.TagID) {
			continue
		}
		// LIKE in the real backends is case-insensitive.
		if filter.Search != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *recordingDAO) Update(_ context.Context, id string, upd repository.RecordingUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.recordings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.Title != nil {
		r.Title = *upd.Title
	}
	if upd.FolderID != nil {
		r.FolderID = *upd.FolderID
	}
	if upd.TagIDs != nil {
		r.TagIDs = *upd.TagIDs
	}
	r.UpdatedAt = time.Now()
	d.recordings[id] = r
	return nil
}

func (d *recordingDAO) UpdateStatus(_ context.Context, id string, status model.RecordingStatus) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.recordings[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	d.recordings[id] = r
	return nil
}

func (d *recordingDAO) UpdateSummary(_ context.Context, id string, summary string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.recordings[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.AISummary = summary
	r.UpdatedAt = time.Now()
	d.recordings[id] = r
	return nil
}

func (d *recordingDAO) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.recordings, id)
	return nil
}

type folderDAO Store

func (d *folderDAO) Create(_ context.Context, f *model.Folder) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f.CreatedAt = time.Now()
	d.folders[f.ID] = *f
	return nil
}

func (d *folderDAO) List(_ context.Context) ([]model.Folder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Folder, 0, len(d.folders))
	for _, f := range d.folders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *folderDAO) Update(_ context.Context, id, name, icon string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.folders[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.Name = name
	f.Icon = icon
	d.folders[id] = f
	return nil
}

func (d *folderDAO) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.folders, id)
	return nil
}

type tagDAO Store

func (d *tagDAO) Create(_ context.Context, t *model.Tag) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t.CreatedAt = time.Now()
	d.tags[t.ID] = *t
	return nil
}

func (d *tagDAO) List(_ context.Context) ([]model.Tag, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Tag, 0, len(d.tags))
	for _, t := range d.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *tagDAO) Update(_ context.Context, id, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tags[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Name = name
	d.tags[id] = t
	return nil
}

func (d *tagDAO) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.tags, id)
	return nil
}

type settingsDAO Store

func (d *settingsDAO) Get(_ context.Context) (*model.Settings, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.settings
	return &s, nil
}

func (d *settingsDAO) Update(_ context.Context, s *model.Settings) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings = *s
	return nil
}
