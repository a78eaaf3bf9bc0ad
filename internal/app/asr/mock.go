package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"lyre-server/internal/app/model"
)

// MockProvider is a deterministic in-memory provider for local development
// and tests. Every task runs for a configurable number of polls and then
// succeeds with a canned two-sentence result.
type MockProvider struct {
	mu          sync.Mutex
	pollsToDone int
	tasks       map[string]*mockTask

	// FailTask makes a task report terminal failure instead of success.
	FailTasks map[string]string
	// TransientErrs makes the next N polls of a task return a ProviderError.
	TransientErrs map[string]int
}

type mockTask struct {
	polls      int
	submitTime time.Time
}

// NewMockProvider creates a mock that succeeds after pollsToDone polls.
func NewMockProvider(pollsToDone int) *MockProvider {
	if pollsToDone < 1 {
		pollsToDone = 1
	}
	return &MockProvider{
		pollsToDone:   pollsToDone,
		tasks:         make(map[string]*mockTask),
		FailTasks:     make(map[string]string),
		TransientErrs: make(map[string]int),
	}
}

// Submit registers a new mock task.
func (p *MockProvider) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	taskID := "mock-" + uuid.New().String()
	p.tasks[taskID] = &mockTask{submitTime: time.Now().UTC()}
	return &SubmitResult{TaskID: taskID, RequestID: uuid.New().String()}, nil
}

// Poll advances the task one step: pending on the first poll, running until
// pollsToDone is reached, then succeeded (or failed when so configured).
func (p *MockProvider) Poll(ctx context.Context, taskID string) (*PollResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := p.TransientErrs[taskID]; n > 0 {
		p.TransientErrs[taskID] = n - 1
		return nil, &ProviderError{Op: "poll", Err: fmt.Errorf("injected transient error")}
	}

	task, ok := p.tasks[taskID]
	if !ok {
		// Tasks created before a restart: treat as still pending so the
		// poller keeps the job alive rather than failing it.
		task = &mockTask{submitTime: time.Now().UTC()}
		p.tasks[taskID] = task
	}
	task.polls++

	result := &PollResult{SubmitTime: &task.submitTime}
	switch {
	case task.polls < p.pollsToDone:
		if task.polls == 1 {
			result.Status = model.JobStatusPending
		} else {
			result.Status = model.JobStatusRunning
		}
	case p.FailTasks[taskID] != "":
		result.Status = model.JobStatusFailed
		result.ErrorMessage = p.FailTasks[taskID]
		end := time.Now().UTC()
		result.EndTime = &end
	default:
		result.Status = model.JobStatusSucceeded
		result.ResultURL = "mock://results/" + taskID
		result.UsageSeconds = 42
		end := time.Now().UTC()
		result.EndTime = &end
	}
	return result, nil
}

// FetchResult returns a canned raw payload for any mock result URL.
func (p *MockProvider) FetchResult(ctx context.Context, resultURL string) (json.RawMessage, error) {
	payload := map[string]any{
		"taskId": resultURL,
		"result": map[string]any{
			"fullText": "Hello from the mock transcriber. This recording was processed locally.",
			"language": "en",
			"sentences": []map[string]any{
				{
					"sentenceId": 1,
					"beginTime":  0,
					"endTime":    2400,
					"text":       "Hello from the mock transcriber.",
					"language":   "en",
				},
				{
					"sentenceId": 2,
					"beginTime":  2400,
					"endTime":    5200,
					"text":       "This recording was processed locally.",
					"language":   "en",
				},
			},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal mock result: %w", err)
	}
	return data, nil
}
