// internal/dashboard/synthetic.go
package dashboard

import (
	"fmt"

	"github.com/mwiater/evalboard/internal/evaluation"
)

// SyntheticTranscript is the opening transcript of a synthesized test.
func SyntheticTranscript(callType, firstMessage string) string {
	return fmt.Sprintf("Starting %s conversation\n\ncustomer_agent: %s", callType, firstMessage)
}

// SyntheticTests turns scenarios into re-runnable tests numbered from 1. Each
// test gets its own copy of template as its evaluators.
func SyntheticTests(cfg evaluation.ModelConfig, scenarios []evaluation.Scenario, template []evaluation.EvaluationResult) []evaluation.TestResult {
	tests := make([]evaluation.TestResult, 0, len(scenarios))
	for i, sc := range scenarios {
		evals := make([]evaluation.EvaluationResult, len(template))
		copy(evals, template)
		tests = append(tests, evaluation.TestResult{
			TestID:            i + 1,
			CallType:          sc.Type,
			Transcript:        SyntheticTranscript(sc.Type, sc.FirstMessage),
			EvaluationResults: evals,
			ServiceConfig:     cfg,
			CustomerConfig: evaluation.ModelConfig{
				Params: evaluation.Params{
					Model:       cfg.Params.Model,
					Temperature: evaluation.CustomerTemperature,
					MaxTokens:   cfg.Params.MaxTokens,
				},
				SystemPrompt:   sc.CustomerPrompt,
				EndCallEnabled: true,
			},
		})
	}
	return tests
}
