// internal/evaluation/report.go
package evaluation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
	"go.yaml.in/yaml/v3"
)

// ErrMalformedReport is returned when an uploaded report is not valid JSON or
// does not have the run report shape.
var ErrMalformedReport = errors.New("malformed run report")

// ReportEntry is one keyed test of a TestMap.
type ReportEntry struct {
	Key  string     `json:"key" yaml:"key"`
	Test TestResult `json:"test" yaml:"test"`
}

// TestMap is a JSON object of test results whose keys keep the order they
// had in the document.
type TestMap []ReportEntry

// UnmarshalJSON decodes a JSON object, keeping the document order of its keys.
func (m *TestMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	obj := gjson.ParseBytes(data)
	if !obj.IsObject() {
		return fmt.Errorf("expected a JSON object of tests, got %s", obj.Type)
	}
	entries := TestMap{}
	var decodeErr error
	obj.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			decodeErr = fmt.Errorf("test %q: expected an object, got %s", key.String(), value.Type)
			return false
		}
		var tr TestResult
		if err := json.Unmarshal([]byte(value.Raw), &tr); err != nil {
			decodeErr = fmt.Errorf("test %q: %w", key.String(), err)
			return false
		}
		entries = append(entries, ReportEntry{Key: key.String(), Test: tr})
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}
	*m = entries
	return nil
}

// MarshalJSON encodes m as a JSON object in entry order.
func (m TestMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Test)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Results returns the test results in entry order. The slice is never nil.
func (m TestMap) Results() []TestResult {
	out := make([]TestResult, 0, len(m))
	for _, entry := range m {
		out = append(out, entry.Test)
	}
	return out
}

// MarshalYAML encodes m as a YAML mapping in entry order.
func (m TestMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, entry := range m {
		var value yaml.Node
		if err := value.Encode(entry.Test); err != nil {
			return nil, fmt.Errorf("test %q: %w", entry.Key, err)
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Key}
		node.Content = append(node.Content, key, &value)
	}
	return node, nil
}

// RunReport is the uploaded/exported file format.
type RunReport struct {
	Timestamp string  `json:"timestamp" yaml:"timestamp"`
	Tests     TestMap `json:"tests" yaml:"tests"`
}

// FirstServiceConfig returns the service configuration of the first test, if any.
func (r RunReport) FirstServiceConfig() (ModelConfig, bool) {
	if len(r.Tests) == 0 {
		return ModelConfig{}, false
	}
	return r.Tests[0].Test.ServiceConfig, true
}

// NewRunReport builds a report keyed by test id, in result order. A repeated
// id gets a "#n" suffix so no entry is lost.
func NewRunReport(timestamp string, results []TestResult) RunReport {
	seen := make(map[int]int, len(results))
	tests := make(TestMap, 0, len(results))
	for _, r := range results {
		seen[r.TestID]++
		key := strconv.Itoa(r.TestID)
		if n := seen[r.TestID]; n > 1 {
			key = fmt.Sprintf("%s#%d", key, n)
		}
		tests = append(tests, ReportEntry{Key: key, Test: r})
	}
	return RunReport{Timestamp: timestamp, Tests: tests}
}

// ParseRunReport validates data against the run report schema and decodes it.
// Every failure wraps ErrMalformedReport.
func ParseRunReport(data []byte) (RunReport, error) {
	if !gjson.ValidBytes(data) {
		return RunReport{}, fmt.Errorf("%w: invalid JSON", ErrMalformedReport)
	}
	if err := ValidateRunReport(data); err != nil {
		return RunReport{}, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return RunReport{}, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	return report, nil
}

// ValidateRunReport checks data against the run report JSON schema.
func ValidateRunReport(data []byte) error {
	result, err := gojsonschema.Validate(runReportSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("run report validation failed: %s", strings.Join(errs, ", "))
}

var runReportSchema = gojsonschema.NewStringLoader(`{
  "type": "object",
  "required": ["tests"],
  "properties": {
    "timestamp": {"type": "string"},
    "tests": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/test"}
    }
  },
  "definitions": {
    "number": {"type": ["number", "null"]},
    "config": {
      "type": "object",
      "properties": {
        "params": {
          "type": "object",
          "properties": {
            "model": {"type": "string"},
            "temperature": {"$ref": "#/definitions/number"},
            "max_tokens": {"$ref": "#/definitions/number"}
          }
        },
        "system_prompt": {"type": "string"},
        "end_call_enabled": {"type": "boolean"}
      }
    },
    "evaluation": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string"},
        "passed": {"type": "boolean"},
        "score": {"$ref": "#/definitions/number"},
        "reason": {"type": "string"}
      }
    },
    "test": {
      "type": "object",
      "required": ["test_id"],
      "properties": {
        "test_id": {"type": "integer"},
        "call_type": {"type": "string"},
        "transcript": {"type": "string"},
        "evaluation_results": {"type": "array", "items": {"$ref": "#/definitions/evaluation"}},
        "service_config": {"$ref": "#/definitions/config"},
        "customer_config": {"$ref": "#/definitions/config"}
      }
    }
  }
}`)
