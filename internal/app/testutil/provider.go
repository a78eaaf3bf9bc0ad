package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"lyre-server/internal/app/asr"
	"lyre-server/internal/app/model"
)

// ScriptedProvider replays a fixed sequence of poll results per task id.
// Once a task's script is exhausted the last entry repeats. Thread-safe and
// counts calls so tests can assert how often the provider was hit.
type ScriptedProvider struct {
	mu         sync.Mutex
	scripts    map[string][]PollStep
	cursors    map[string]int
	results    map[string]json.RawMessage
	resultErrs map[string]error
	PollCalls  int
}

// PollStep is one scripted poll response. Err, when set, is returned instead
// of the result.
type PollStep struct {
	Result *asr.PollResult
	Err    error
}

// NewScriptedProvider returns an empty provider; add scripts with Script.
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{
		scripts:    make(map[string][]PollStep),
		cursors:    make(map[string]int),
		results:    make(map[string]json.RawMessage),
		resultErrs: make(map[string]error),
	}
}

// Script sets the poll sequence for a task.
func (p *ScriptedProvider) Script(taskID string, steps ...PollStep) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts[taskID] = steps
	p.cursors[taskID] = 0
}

// SetResult registers the raw payload served for a result URL.
func (p *ScriptedProvider) SetResult(resultURL string, payload json.RawMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results[resultURL] = payload
}

func (p *ScriptedProvider) Submit(_ context.Context, req *asr.SubmitRequest) (*asr.SubmitResult, error) {
	return &asr.SubmitResult{TaskID: "task-" + req.RecordingID}, nil
}

func (p *ScriptedProvider) Poll(_ context.Context, taskID string) (*asr.PollResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PollCalls++

	steps, ok := p.scripts[taskID]
	if !ok || len(steps) == 0 {
		return &asr.PollResult{Status: model.JobStatusPending}, nil
	}

	i := p.cursors[taskID]
	if i >= len(steps) {
		i = len(steps) - 1
	} else {
		p.cursors[taskID]++
	}

	step := steps[i]
	if step.Err != nil {
		return nil, step.Err
	}
	result := *step.Result
	return &result, nil
}

// SetResultErr makes FetchResult fail for a result URL.
func (p *ScriptedProvider) SetResultErr(resultURL string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resultErrs[resultURL] = err
}

func (p *ScriptedProvider) FetchResult(_ context.Context, resultURL string) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.resultErrs[resultURL]; ok {
		return nil, err
	}
	if payload, ok := p.results[resultURL]; ok {
		return payload, nil
	}
	return json.RawMessage(`{"fullText":"scripted result","language":"en","sentences":[]}`), nil
}

// Succeeded builds the canonical succeeded poll step.
func Succeeded(resultURL string, usageSeconds int) PollStep {
	return PollStep{Result: &asr.PollResult{
		Status:       model.JobStatusSucceeded,
		ResultURL:    resultURL,
		UsageSeconds: usageSeconds,
	}}
}

// Running builds a running poll step.
func Running() PollStep {
	return PollStep{Result: &asr.PollResult{Status: model.JobStatusRunning}}
}

// Pending builds a pending poll step.
func Pending() PollStep {
	return PollStep{Result: &asr.PollResult{Status: model.JobStatusPending}}
}

// Failed builds a provider-reported failure step.
func Failed(message string) PollStep {
	return PollStep{Result: &asr.PollResult{
		Status:       model.JobStatusFailed,
		ErrorMessage: message,
	}}
}

// Transient builds a transient provider-error step.
func Transient(op string) PollStep {
	return PollStep{Err: &asr.ProviderError{Op: op, StatusCode: 503}}
}
