// internal/evaluation/types.go

// Package evaluation defines the data exchanged between the dashboard and the
// evaluation backend: model configurations, test results and run reports.
package evaluation

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

const (
	// DefaultTemperature is the sampling temperature a fresh dashboard starts with.
	DefaultTemperature = 0.7
	// DefaultMaxTokens is the token limit a fresh dashboard starts with.
	DefaultMaxTokens = 10000
	// CustomerTemperature is the fixed temperature used for synthesized customer agents.
	CustomerTemperature = 0.7
)

// Float is a number that may hold NaN. NaN and infinities are encoded as JSON
// null, which is what a browser sends for them, and null decodes back to NaN.
type Float float64

// NaN returns a Float holding NaN.
func NaN() Float { return Float(math.NaN()) }

// IsNaN reports whether f is NaN.
func (f Float) IsNaN() bool { return math.IsNaN(float64(f)) }

// String formats f with the fewest digits needed, or "NaN".
func (f Float) String() string {
	if f.IsNaN() {
		return "NaN"
	}
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = NaN()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Params holds the invocation parameters of the evaluated model.
type Params struct {
	Model       string `json:"model" yaml:"model"`
	Temperature Float  `json:"temperature" yaml:"temperature"`
	MaxTokens   Float  `json:"max_tokens" yaml:"max_tokens"`
}

// ModelConfig describes one simulated agent. Values are treated as immutable
// snapshots: the With helpers return modified copies.
type ModelConfig struct {
	Params         Params `json:"params" yaml:"params"`
	SystemPrompt   string `json:"system_prompt" yaml:"system_prompt"`
	EndCallEnabled bool   `json:"end_call_enabled" yaml:"end_call_enabled"`
}

// DefaultModelConfig returns the configuration a fresh dashboard starts with.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Params: Params{
			Model:       "",
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		SystemPrompt:   "",
		EndCallEnabled: true,
	}
}

// WithModel returns a copy of c using the given model name.
func (c ModelConfig) WithModel(model string) ModelConfig {
	c.Params.Model = model
	return c
}

// WithTemperature returns a copy of c using the given temperature.
func (c ModelConfig) WithTemperature(t Float) ModelConfig {
	c.Params.Temperature = t
	return c
}

// WithMaxTokens returns a copy of c using the given token limit.
func (c ModelConfig) WithMaxTokens(n Float) ModelConfig {
	c.Params.MaxTokens = n
	return c
}

// WithSystemPrompt returns a copy of c using the given system prompt.
func (c ModelConfig) WithSystemPrompt(prompt string) ModelConfig {
	c.SystemPrompt = prompt
	return c
}

// EvaluationResult is the outcome of one named evaluator on one conversation.
type EvaluationResult struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Score  Float  `json:"score" yaml:"score"`
	Reason string `json:"reason" yaml:"reason"`
}

// TestResult is one evaluated conversation.
type TestResult struct {
	TestID            int                `json:"test_id" yaml:"test_id"`
	CallType          string             `json:"call_type" yaml:"call_type"`
	Transcript        string             `json:"transcript" yaml:"transcript"`
	EvaluationResults []EvaluationResult `json:"evaluation_results" yaml:"evaluation_results"`
	ServiceConfig     ModelConfig        `json:"service_config" yaml:"service_config"`
	CustomerConfig    ModelConfig        `json:"customer_config" yaml:"customer_config"`
}

// Scenario is a backend-generated conversation seed.
type Scenario struct {
	Type           string `json:"type"`
	FirstMessage   string `json:"first_message"`
	CustomerPrompt string `json:"customer_prompt"`
	Description    string `json:"description,omitempty"`
}

// CloneResults returns a copy of results whose evaluation slices are not
// shared with the input. Nil and empty slices are kept as they are.
func CloneResults(results []TestResult) []TestResult {
	out := make([]TestResult, len(results))
	for i, r := range results {
		if r.EvaluationResults != nil {
			evals := make([]EvaluationResult, len(r.EvaluationResults))
			copy(evals, r.EvaluationResults)
			r.EvaluationResults = evals
		}
		out[i] = r
	}
	return out
}
