// internal/dashboard/orchestrator.go

// Package dashboard owns the evaluation dashboard state: the active model
// configuration, the loaded test results and the loading flags. All mutation
// goes through the named commands on Orchestrator; views read Snapshots.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mwiater/evalboard/internal/backend"
	"github.com/mwiater/evalboard/internal/evaluation"
	"github.com/mwiater/evalboard/internal/logging"
)

// Notice messages shown to the user after an operation completes.
const (
	MsgRerunSuccess     = "Evaluations re-run successfully"
	MsgRerunFailure     = "Failed to re-run evaluations"
	MsgSyntheticSuccess = "Synthetic tests generated and evaluated successfully"
	MsgSyntheticFailure = "Failed to generate and run synthetic tests"
	MsgUploadFailure    = "Failed to parse run report"
)

// ErrBusy is returned by the Try and Start variants when a run is already in
// flight.
var ErrBusy = errors.New("an evaluation run is already in progress")

// Backend is the part of the evaluation service the dashboard depends on.
type Backend interface {
	Rerun(ctx context.Context, req backend.RerunRequest) ([]evaluation.TestResult, error)
	GenerateSynthetic(ctx context.Context, req backend.SyntheticRequest) ([]evaluation.Scenario, error)
}

// NoticeLevel classifies a Notice.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is the last user-facing outcome message.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// State is a point-in-time copy of the dashboard state.
type State struct {
	Config             evaluation.ModelConfig  `json:"config"`
	TestResults        []evaluation.TestResult `json:"test_results"`
	IsLoading          bool                    `json:"is_loading"`
	IsSyntheticLoading bool                    `json:"is_synthetic_loading"`
	Generation         uint64                  `json:"generation"`
	Notice             *Notice                 `json:"notice,omitempty"`
}

// Busy reports whether either run is in flight.
func (s State) Busy() bool { return s.IsLoading || s.IsSyntheticLoading }

// Orchestrator holds the dashboard state. The mutex guards state only and is
// never held across a backend call. The loading flags are advisory: callers
// that must not overlap runs use the Try variants.
type Orchestrator struct {
	backend Backend

	mu                 sync.Mutex
	config             evaluation.ModelConfig
	results            []evaluation.TestResult
	isLoading          bool
	isSyntheticLoading bool
	generation         uint64
	notice             *Notice
}

// New returns an Orchestrator with the default configuration and no results.
func New(b Backend) *Orchestrator {
	return &Orchestrator{
		backend: b,
		config:  evaluation.DefaultModelConfig(),
		results: []evaluation.TestResult{},
	}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	var notice *Notice
	if o.notice != nil {
		n := *o.notice
		notice = &n
	}
	return State{
		Config:             o.config,
		TestResults:        evaluation.CloneResults(o.results),
		IsLoading:          o.isLoading,
		IsSyntheticLoading: o.isSyntheticLoading,
		Generation:         o.generation,
		Notice:             notice,
	}
}

// Generation returns the result-set counter without cloning results.
func (o *Orchestrator) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation
}

// Config returns the active configuration.
func (o *Orchestrator) Config() evaluation.ModelConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config
}

// Busy reports whether either run is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isLoading || o.isSyntheticLoading
}

// SetConfig replaces the active configuration without validation.
func (o *Orchestrator) SetConfig(cfg evaluation.ModelConfig) {
	o.mu.Lock()
	o.config = cfg
	o.mu.Unlock()
}

// Save traces the active configuration. Persistence is not implemented; Save
// does not change state.
func (o *Orchestrator) Save() {
	logging.LogEvent("Saving configuration: %+v", o.Config())
}

// ClearNotice drops the current notice.
func (o *Orchestrator) ClearNotice() {
	o.mu.Lock()
	o.notice = nil
	o.mu.Unlock()
}

// Rerun re-evaluates the loaded results against the active configuration.
// Results are replaced only on success; isLoading is cleared either way.
func (o *Orchestrator) Rerun(ctx context.Context) error {
	o.mu.Lock()
	o.isLoading = true
	req := backend.RerunRequest{Config: o.config, TestResults: evaluation.CloneResults(o.results)}
	o.mu.Unlock()
	return o.rerun(ctx, req)
}

// TryRerun is Rerun guarded by the loading flags: it returns ErrBusy instead
// of starting while a run is in flight.
func (o *Orchestrator) TryRerun(ctx context.Context) error {
	done, err := o.StartRerun(ctx)
	if err != nil {
		return err
	}
	return <-done
}

// StartRerun marks a re-run as in flight before returning and performs it in
// the background. The returned channel yields the outcome once. It returns
// ErrBusy without starting while a run is in flight.
func (o *Orchestrator) StartRerun(ctx context.Context) (<-chan error, error) {
	o.mu.Lock()
	if o.isLoading || o.isSyntheticLoading {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.isLoading = true
	req := backend.RerunRequest{Config: o.config, TestResults: evaluation.CloneResults(o.results)}
	o.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- o.rerun(ctx, req) }()
	return done, nil
}

func (o *Orchestrator) rerun(ctx context.Context, req backend.RerunRequest) error {
	defer func() {
		o.mu.Lock()
		o.isLoading = false
		o.mu.Unlock()
	}()

	results, err := o.backend.Rerun(ctx, req)
	if err != nil {
		logging.LogEvent("Error re-running evaluations: %v", err)
		o.setNotice(NoticeError, MsgRerunFailure)
		return fmt.Errorf("rerun: %w", err)
	}

	o.mu.Lock()
	o.replaceResultsLocked(results)
	o.notice = &Notice{Level: NoticeInfo, Message: MsgRerunSuccess}
	o.mu.Unlock()
	logging.LogEvent("Re-run complete: %d results", len(results))
	return nil
}

// GenerateSyntheticAndRun asks the backend for numTests synthetic scenarios,
// turns them into tests and re-runs those. Results are replaced only when both
// calls succeed; isSyntheticLoading is cleared either way.
func (o *Orchestrator) GenerateSyntheticAndRun(ctx context.Context, numTests, maxThreads int) error {
	o.mu.Lock()
	o.isSyntheticLoading = true
	cfg, template := o.config, o.evaluationTemplateLocked()
	o.mu.Unlock()
	return o.generateSyntheticAndRun(ctx, cfg, template, numTests, maxThreads)
}

// TryGenerateSyntheticAndRun is GenerateSyntheticAndRun guarded by the loading
// flags: it returns ErrBusy instead of starting while a run is in flight.
func (o *Orchestrator) TryGenerateSyntheticAndRun(ctx context.Context, numTests, maxThreads int) error {
	done, err := o.StartGenerateSyntheticAndRun(ctx, numTests, maxThreads)
	if err != nil {
		return err
	}
	return <-done
}

// StartGenerateSyntheticAndRun is the background form of
// TryGenerateSyntheticAndRun, with the same contract as StartRerun.
func (o *Orchestrator) StartGenerateSyntheticAndRun(ctx context.Context, numTests, maxThreads int) (<-chan error, error) {
	o.mu.Lock()
	if o.isLoading || o.isSyntheticLoading {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.isSyntheticLoading = true
	cfg, template := o.config, o.evaluationTemplateLocked()
	o.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- o.generateSyntheticAndRun(ctx, cfg, template, numTests, maxThreads) }()
	return done, nil
}

func (o *Orchestrator) generateSyntheticAndRun(ctx context.Context, cfg evaluation.ModelConfig, template []evaluation.EvaluationResult, numTests, maxThreads int) error {
	defer func() {
		o.mu.Lock()
		o.isSyntheticLoading = false
		o.mu.Unlock()
	}()

	scenarios, err := o.backend.GenerateSynthetic(ctx, backend.SyntheticRequest{
		ServicePrompt: cfg.SystemPrompt,
		Model:         cfg.Params.Model,
		NumTests:      numTests,
		MaxThreads:    maxThreads,
		Temperature:   cfg.Params.Temperature,
	})
	if err != nil {
		logging.LogEvent("Error generating synthetic scenarios: %v", err)
		o.setNotice(NoticeError, MsgSyntheticFailure)
		return fmt.Errorf("generate synthetic: %w", err)
	}
	logging.LogEvent("Generated %d synthetic scenarios", len(scenarios))

	tests := SyntheticTests(cfg, scenarios, template)
	results, err := o.backend.Rerun(ctx, backend.RerunRequest{Config: cfg, TestResults: tests})
	if err != nil {
		logging.LogEvent("Error running synthetic tests: %v", err)
		o.setNotice(NoticeError, MsgSyntheticFailure)
		return fmt.Errorf("run synthetic tests: %w", err)
	}

	o.mu.Lock()
	o.replaceResultsLocked(results)
	o.notice = &Notice{Level: NoticeInfo, Message: MsgSyntheticSuccess}
	o.mu.Unlock()
	return nil
}

// UploadReport parses data as a run report. On success the first test's
// service configuration becomes active and the results are replaced by the
// report's tests in document order. On failure nothing but the notice changes.
func (o *Orchestrator) UploadReport(data []byte) error {
	report, err := evaluation.ParseRunReport(data)
	if err != nil {
		logging.LogEvent("Error parsing JSON: %v", err)
		o.setNotice(NoticeError, MsgUploadFailure)
		return err
	}

	o.mu.Lock()
	if cfg, ok := report.FirstServiceConfig(); ok {
		o.config = cfg
	}
	o.replaceResultsLocked(report.Tests.Results())
	o.notice = nil
	o.mu.Unlock()
	logging.LogEvent("Loaded run report %q with %d tests", report.Timestamp, len(report.Tests))
	return nil
}

func (o *Orchestrator) replaceResultsLocked(results []evaluation.TestResult) {
	if results == nil {
		results = []evaluation.TestResult{}
	}
	o.results = results
	o.generation++
}

// evaluationTemplateLocked returns the evaluators of the first loaded result,
// or an empty slice.
func (o *Orchestrator) evaluationTemplateLocked() []evaluation.EvaluationResult {
	if len(o.results) == 0 || len(o.results[0].EvaluationResults) == 0 {
		return []evaluation.EvaluationResult{}
	}
	template := make([]evaluation.EvaluationResult, len(o.results[0].EvaluationResults))
	copy(template, o.results[0].EvaluationResults)
	return template
}

func (o *Orchestrator) setNotice(level NoticeLevel, msg string) {
	o.mu.Lock()
	o.notice = &Notice{Level: level, Message: msg}
	o.mu.Unlock()
}
