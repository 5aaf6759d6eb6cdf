// internal/form/form.go

// Package form binds editable fields to a ModelConfig. Numeric input is passed
// through the way a browser number field would pass it: anything that does
// not parse becomes NaN rather than being rejected or clamped.
package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mwiater/evalboard/internal/evaluation"
)

// Field names used by the web form and the terminal inputs.
const (
	FieldModel        = "model"
	FieldTemperature  = "temperature"
	FieldMaxTokens    = "max_tokens"
	FieldSystemPrompt = "system_prompt"
	FieldNumTests     = "num_tests"
	FieldMaxThreads   = "max_threads"
)

// ConfigFields lists the ModelConfig fields in display order.
var ConfigFields = []string{FieldModel, FieldTemperature, FieldMaxTokens, FieldSystemPrompt}

const (
	// DefaultNumTests is the initial number of synthetic tests to generate.
	DefaultNumTests = 5
	// DefaultMaxThreads is the initial generation concurrency.
	DefaultMaxThreads = 5
)

// ParseFloat parses a temperature-style field. Failures yield NaN.
func ParseFloat(raw string) evaluation.Float {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return evaluation.NaN()
	}
	return evaluation.Float(v)
}

// ParseInt parses an integer field, keeping the integer part of a decimal
// ("12.7" is 12). Failures yield NaN.
func ParseInt(raw string) evaluation.Float {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return evaluation.NaN()
	}
	return evaluation.Float(math.Trunc(v))
}

// Apply returns a copy of cfg with one field replaced by raw user input.
func Apply(cfg evaluation.ModelConfig, field, raw string) (evaluation.ModelConfig, error) {
	switch field {
	case FieldModel:
		return cfg.WithModel(raw), nil
	case FieldTemperature:
		return cfg.WithTemperature(ParseFloat(raw)), nil
	case FieldMaxTokens:
		return cfg.WithMaxTokens(ParseInt(raw)), nil
	case FieldSystemPrompt:
		return cfg.WithSystemPrompt(raw), nil
	default:
		return cfg, fmt.Errorf("unknown config field %q", field)
	}
}

// Values is a read-only view of submitted field values, such as url.Values.
type Values interface {
	Has(key string) bool
	Get(key string) string
}

// ApplyValues applies every config field present in values, in display order.
func ApplyValues(cfg evaluation.ModelConfig, values Values) evaluation.ModelConfig {
	for _, field := range ConfigFields {
		if !values.Has(field) {
			continue
		}
		cfg, _ = Apply(cfg, field, values.Get(field))
	}
	return cfg
}

// Display formats a number for an input field. NaN shows as an empty field.
func Display(f evaluation.Float) string {
	if f.IsNaN() {
		return ""
	}
	return f.String()
}

// Value returns the display text of one config field.
func Value(cfg evaluation.ModelConfig, field string) string {
	switch field {
	case FieldModel:
		return cfg.Params.Model
	case FieldTemperature:
		return Display(cfg.Params.Temperature)
	case FieldMaxTokens:
		return Display(cfg.Params.MaxTokens)
	case FieldSystemPrompt:
		return cfg.SystemPrompt
	default:
		return ""
	}
}

// Label returns the human label of a field.
func Label(field string) string {
	switch field {
	case FieldModel:
		return "Model Name"
	case FieldTemperature:
		return "Temperature"
	case FieldMaxTokens:
		return "Max Tokens"
	case FieldSystemPrompt:
		return "System Prompt"
	case FieldNumTests:
		return "Number of Tests"
	case FieldMaxThreads:
		return "Max Threads"
	default:
		return field
	}
}

// Synthetic holds the synthetic-generation inputs. It is local UI state and
// not part of the ModelConfig.
type Synthetic struct {
	NumTests   int
	MaxThreads int
}

// DefaultSynthetic returns the initial synthetic-generation inputs.
func DefaultSynthetic() Synthetic {
	return Synthetic{NumTests: DefaultNumTests, MaxThreads: DefaultMaxThreads}
}

// ParseCount parses a synthetic count field. Input that does not parse keeps
// the previous value.
func ParseCount(raw string, previous int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return previous
	}
	return v
}

// ApplySynthetic updates s from submitted values.
func (s Synthetic) ApplySynthetic(values Values) Synthetic {
	if values.Has(FieldNumTests) {
		s.NumTests = ParseCount(values.Get(FieldNumTests), s.NumTests)
	}
	if values.Has(FieldMaxThreads) {
		s.MaxThreads = ParseCount(values.Get(FieldMaxThreads), s.MaxThreads)
	}
	return s
}
