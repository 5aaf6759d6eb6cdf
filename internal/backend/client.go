// internal/backend/client.go
// Package backend is the HTTP client for the evaluation service that re-runs
// tests and generates synthetic scenarios.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/mwiater/evalboard/internal/appconfig"
	"github.com/mwiater/evalboard/internal/evaluation"
	"github.com/mwiater/evalboard/internal/logging"
)

const (
	// RerunPath re-evaluates a set of tests against a configuration.
	RerunPath = "/api/rerun"
	// GenerateSyntheticPath produces synthetic conversation scenarios.
	GenerateSyntheticPath = "/api/generate-synthetic"

	// maxResponseBytes bounds how much of a backend response is read.
	maxResponseBytes = 64 << 20
)

// ErrStatus is wrapped by errors caused by a non-2xx backend response.
var ErrStatus = errors.New("unexpected backend status")

// RerunRequest is the body of a re-run call.
type RerunRequest struct {
	Config      evaluation.ModelConfig  `json:"config"`
	TestResults []evaluation.TestResult `json:"test_results"`
}

// SyntheticRequest is the body of a synthetic generation call.
type SyntheticRequest struct {
	ServicePrompt string           `json:"service_prompt"`
	Model         string           `json:"model"`
	NumTests      int              `json:"num_tests"`
	MaxThreads    int              `json:"max_threads"`
	Temperature   evaluation.Float `json:"temperature"`
}

type rerunResponse struct {
	Results evaluation.TestMap `json:"results"`
}

type syntheticResponse struct {
	Scenarios []evaluation.Scenario `json:"scenarios"`
}

// Client talks to the evaluation backend. Each call is a single attempt.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// New constructs a Client for the configured backend URL and request timeout.
func New(cfg *appconfig.Config) *Client {
	timeout := cfg.RequestTimeout()
	return &Client{
		baseURL: cfg.BackendBaseURL(),
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: timeout,
	}
}

// BaseURL returns the backend URL requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Rerun posts req to /api/rerun and returns the results in response order.
func (c *Client) Rerun(ctx context.Context, req RerunRequest) ([]evaluation.TestResult, error) {
	if req.TestResults == nil {
		req.TestResults = []evaluation.TestResult{}
	}
	body, err := c.post(ctx, RerunPath, req.Config.Params.Model, req)
	if err != nil {
		return nil, err
	}
	if !gjson.GetBytes(body, "results").IsObject() {
		return nil, fmt.Errorf("backend: %s response missing results object", RerunPath)
	}
	var parsed rerunResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("backend: decode %s response: %w", RerunPath, err)
	}
	return parsed.Results.Results(), nil
}

// GenerateSynthetic posts req to /api/generate-synthetic and returns the scenarios.
func (c *Client) GenerateSynthetic(ctx context.Context, req SyntheticRequest) ([]evaluation.Scenario, error) {
	body, err := c.post(ctx, GenerateSyntheticPath, req.Model, req)
	if err != nil {
		return nil, err
	}
	if !gjson.GetBytes(body, "scenarios").IsArray() {
		return nil, fmt.Errorf("backend: %s response missing scenarios", GenerateSyntheticPath)
	}
	var parsed syntheticResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("backend: decode %s response: %w", GenerateSyntheticPath, err)
	}
	return parsed.Scenarios, nil
}

func (c *Client) post(ctx context.Context, path, model string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("backend: encode %s request: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	host := hostIdentifier(c.baseURL)
	logging.LogRequest("EVALBOARD->BACKEND", host, model, path+" id="+requestID, body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("backend: %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("backend: read %s response: %w", path, err)
	}
	logging.LogRequest("BACKEND->EVALBOARD", host, model, path+" id="+requestID, respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("backend: %s returned %s: %s: %w", path, resp.Status, strings.TrimSpace(string(respBody)), ErrStatus)
	}
	return respBody, nil
}

func hostIdentifier(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Host
}
