// internal/web/server_test.go
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/evalboard/internal/appconfig"
	"github.com/mwiater/evalboard/internal/backend"
	"github.com/mwiater/evalboard/internal/dashboard"
	"github.com/mwiater/evalboard/internal/table"
)

const reportJSON = `{
  "timestamp": "2025-01-01T00:00:00Z",
  "tests": {
    "b": {
      "test_id": 3,
      "call_type": "inbound",
      "transcript": "line1\nline2\nline3\nline4\nline5\nline6\nline7",
      "evaluation_results": [{"name": "accuracy", "passed": true, "score": 0.5, "reason": "ok"}],
      "service_config": {"params": {"model": "svc-model", "temperature": 0.2, "max_tokens": 256}, "system_prompt": "be helpful", "end_call_enabled": true},
      "customer_config": {"params": {"model": "svc-model", "temperature": 0.7, "max_tokens": 256}, "system_prompt": "impatient caller", "end_call_enabled": true}
    },
    "a": {
      "test_id": 1,
      "call_type": "outbound",
      "transcript": "short",
      "evaluation_results": [{"name": "tone", "passed": false, "score": 0.25, "reason": "rude"}],
      "service_config": {"params": {"model": "other", "temperature": 1, "max_tokens": 1}, "system_prompt": "", "end_call_enabled": false},
      "customer_config": {"params": {"model": "other", "temperature": 0.7, "max_tokens": 1}, "system_prompt": "polite caller", "end_call_enabled": true}
    }
  }
}`

const rerunResponse = `{"results": {"x": {"test_id": 9, "call_type": "inbound", "transcript": "rerun transcript", "evaluation_results": [{"name": "accuracy", "passed": true, "score": 1, "reason": ""}], "service_config": {"params": {"model": "m", "temperature": 0.1, "max_tokens": 5}, "system_prompt": "", "end_call_enabled": true}, "customer_config": {"params": {"model": "m", "temperature": 0.7, "max_tokens": 5}, "system_prompt": "rerun prompt", "end_call_enabled": true}}}}`

type fakeEvalServer struct {
	srv        *httptest.Server
	rerunCalls atomic.Int32
	status     int

	release     chan struct{}
	releaseOnce sync.Once
}

// newFakeEvalServer stands in for the evaluation backend. When block is set,
// rerun requests wait until Release is called.
func newFakeEvalServer(t *testing.T, block bool) *fakeEvalServer {
	t.Helper()
	f := &fakeEvalServer{status: http.StatusOK}
	var release chan struct{}
	if block {
		release = make(chan struct{})
		f.release = release
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case backend.RerunPath:
			f.rerunCalls.Add(1)
			if release != nil {
				<-release
			}
			if f.status != http.StatusOK {
				http.Error(w, "boom", f.status)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(rerunResponse))
		case backend.GenerateSyntheticPath:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"scenarios": [{"type": "inbound", "first_message": "hello", "customer_prompt": "p1"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)
	t.Cleanup(f.Release)
	return f
}

func (f *fakeEvalServer) Release() {
	if f.release == nil {
		return
	}
	f.releaseOnce.Do(func() { close(f.release) })
}

func newTestServer(t *testing.T, eval *fakeEvalServer) (*Server, *dashboard.Orchestrator) {
	t.Helper()
	cfg := appconfig.Default()
	cfg.BackendURL = eval.srv.URL
	cfg.TimeoutSeconds = 5
	orch := dashboard.New(backend.New(&cfg))
	return New(context.Background(), orch, &cfg), orch
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func getPage(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func postForm(s *Server, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(s, req)
}

func uploadFile(t *testing.T, s *Server, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("report", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(s, req)
}

func TestIndexShowsEmptyState(t *testing.T) {
	s, _ := newTestServer(t, newFakeEvalServer(t, false))

	page := getPage(t, s)
	assert.Contains(t, page, table.EmptyMessage)
	assert.Contains(t, page, `colspan="4"`)
	assert.Contains(t, page, "<th>Transcript</th>")
	assert.Contains(t, page, `value="0.7"`)
	assert.Contains(t, page, `value="10000"`)
	assert.NotContains(t, page, "http-equiv=\"refresh\"")
}

func TestConfigPostUpdatesOrchestrator(t *testing.T) {
	s, orch := newTestServer(t, newFakeEvalServer(t, false))

	req := httptest.NewRequest(http.MethodPost, "/config", strings.NewReader(url.Values{
		"model":         {"gpt-test"},
		"temperature":   {"abc"},
		"max_tokens":    {"12.9"},
		"system_prompt": {"be brief"},
	}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(fetchHeader, "fetch")
	rec := do(s, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	cfg := orch.Config()
	assert.Equal(t, "gpt-test", cfg.Params.Model)
	assert.True(t, cfg.Params.Temperature.IsNaN())
	assert.EqualValues(t, 12, cfg.Params.MaxTokens)
	assert.Equal(t, "be brief", cfg.SystemPrompt)
	assert.True(t, cfg.EndCallEnabled)

	// A plain form post redirects back to the page.
	rec = postForm(s, "/config", url.Values{"model": {"second"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "second", orch.Config().Params.Model)
	assert.Equal(t, "be brief", orch.Config().SystemPrompt)
}

func TestConfigPostDropsStaleSeq(t *testing.T) {
	s, orch := newTestServer(t, newFakeEvalServer(t, false))

	post := func(seq, model string) int {
		req := httptest.NewRequest(http.MethodPost, "/config", strings.NewReader(url.Values{
			"model": {model},
			"seq":   {seq},
		}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set(fetchHeader, "fetch")
		return do(s, req).Code
	}

	require.Equal(t, http.StatusNoContent, post("2", "newer"))
	require.Equal(t, http.StatusNoContent, post("1", "older"))
	assert.Equal(t, "newer", orch.Config().Params.Model)

	require.Equal(t, http.StatusNoContent, post("2", "repeat"))
	assert.Equal(t, "newer", orch.Config().Params.Model)

	require.Equal(t, http.StatusNoContent, post("3", "latest"))
	assert.Equal(t, "latest", orch.Config().Params.Model)

	// Posts without a seq always apply.
	rec := postForm(s, "/config", url.Values{"model": {"plain"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "plain", orch.Config().Params.Model)
}

func TestUploadRejectsNonJSONName(t *testing.T) {
	s, orch := newTestServer(t, newFakeEvalServer(t, false))

	rec := uploadFile(t, s, "report.txt", reportJSON)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, orch.Snapshot().TestResults)
	assert.Contains(t, getPage(t, s), table.UploadErrorMessage)

	// A valid name clears the error.
	uploadFile(t, s, "report.json", reportJSON)
	assert.NotContains(t, getPage(t, s), table.UploadErrorMessage)
}

func TestUploadRendersRowsInDocumentOrder(t *testing.T) {
	s, orch := newTestServer(t, newFakeEvalServer(t, false))

	uploadFile(t, s, "run.json", reportJSON)
	st := orch.Snapshot()
	require.Len(t, st.TestResults, 2)
	assert.Equal(t, 3, st.TestResults[0].TestID)
	assert.Equal(t, "svc-model", st.Config.Params.Model)

	page := getPage(t, s)
	assert.Less(t, strings.Index(page, "impatient caller"), strings.Index(page, "polite caller"))
	assert.Contains(t, page, "<th>accuracy Score</th>")
	assert.Contains(t, page, "<th>tone Score</th>")
	assert.Contains(t, page, "0.50")
	assert.Contains(t, page, "0.25")
	assert.Contains(t, page, `class="missing">-</td>`)
	assert.Contains(t, page, table.ExpandHint)
	assert.NotContains(t, page, "line7")

	// The config form shows the adopted service config.
	assert.Contains(t, page, `value="svc-model"`)
	assert.Contains(t, page, `value="256"`)
	assert.Contains(t, page, ">be helpful</textarea>")
}

func TestUploadMalformedSetsNotice(t *testing.T) {
	s, orch := newTestServer(t, newFakeEvalServer(t, false))
	uploadFile(t, s, "run.json", reportJSON)

	uploadFile(t, s, "broken.json", `{"tests": `)
	st := orch.Snapshot()
	assert.Len(t, st.TestResults, 2)
	require.NotNil(t, st.Notice)
	assert.Equal(t, dashboard.MsgUploadFailure, st.Notice.Message)
	assert.Contains(t, getPage(t, s), dashboard.MsgUploadFailure)

	postForm(s, "/notice/dismiss", nil)
	assert.Nil(t, orch.Snapshot().Notice)
}

func TestToggleExpandsTranscript(t *testing.T) {
	s, orch := newTestServer(t, newFakeEvalServer(t, false))
	uploadFile(t, s, "run.json", reportJSON)
	gen := orch.Snapshot().Generation

	// Stale generations are ignored.
	rec := postForm(s, "/transcripts/999/3/toggle", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotContains(t, getPage(t, s), "line7")

	postForm(s, "/transcripts/"+strconv.FormatUint(gen, 10)+"/3/toggle", nil)
	page := getPage(t, s)
	assert.Contains(t, page, "line7")
	assert.NotContains(t, page, table.ExpandHint)

	// A new result set collapses everything again.
	uploadFile(t, s, "run.json", reportJSON)
	assert.NotContains(t, getPage(t, s), "line7")
}

func TestRerunReplacesResults(t *testing.T) {
	eval := newFakeEvalServer(t, false)
	s, orch := newTestServer(t, eval)
	uploadFile(t, s, "run.json", reportJSON)

	rec := postForm(s, "/rerun", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	s.Wait()

	st := orch.Snapshot()
	require.Len(t, st.TestResults, 1)
	assert.Equal(t, 9, st.TestResults[0].TestID)
	require.NotNil(t, st.Notice)
	assert.Equal(t, dashboard.MsgRerunSuccess, st.Notice.Message)
	assert.Contains(t, getPage(t, s), "rerun prompt")
}

func TestRerunFailureKeepsResults(t *testing.T) {
	eval := newFakeEvalServer(t, false)
	eval.status = http.StatusInternalServerError
	s, orch := newTestServer(t, eval)
	uploadFile(t, s, "run.json", reportJSON)

	postForm(s, "/rerun", nil)
	s.Wait()

	st := orch.Snapshot()
	assert.Len(t, st.TestResults, 2)
	require.NotNil(t, st.Notice)
	assert.Equal(t, dashboard.NoticeError, st.Notice.Level)
	assert.Equal(t, dashboard.MsgRerunFailure, st.Notice.Message)
}

func TestRerunWhileBusyIsRefused(t *testing.T) {
	eval := newFakeEvalServer(t, true)
	s, orch := newTestServer(t, eval)

	postForm(s, "/rerun", nil)
	require.True(t, orch.Busy())

	page := getPage(t, s)
	assert.Contains(t, page, "Running...")
	assert.Contains(t, page, " disabled>")
	assert.Contains(t, page, "http-equiv=\"refresh\"")

	require.Eventually(t, func() bool { return eval.rerunCalls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	postForm(s, "/rerun", nil)
	postForm(s, "/generate", url.Values{"num_tests": {"2"}})

	eval.Release()
	s.Wait()

	assert.EqualValues(t, 1, eval.rerunCalls.Load())
	assert.False(t, orch.Busy())
}

func TestGenerateRunsSyntheticTests(t *testing.T) {
	eval := newFakeEvalServer(t, false)
	s, orch := newTestServer(t, eval)

	rec := postForm(s, "/generate", url.Values{"num_tests": {"1"}, "max_threads": {"2"}, "system_prompt": {"serve"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	s.Wait()

	st := orch.Snapshot()
	require.NotNil(t, st.Notice)
	assert.Equal(t, dashboard.MsgSyntheticSuccess, st.Notice.Message)
	assert.Equal(t, "serve", st.Config.SystemPrompt)
	assert.Len(t, st.TestResults, 1)
	assert.Contains(t, getPage(t, s), `name="max_threads" type="number" min="1" value="2"`)
}

func TestStateAndHealth(t *testing.T) {
	s, _ := newTestServer(t, newFakeEvalServer(t, false))
	postForm(s, "/config", url.Values{"temperature": {""}})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	params := st["config"].(map[string]any)["params"].(map[string]any)
	assert.Nil(t, params["temperature"])
	assert.Equal(t, false, st["is_loading"])
	assert.Equal(t, []any{}, st["test_results"])

	rec = do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, newFakeEvalServer(t, false))

	req := httptest.NewRequest(http.MethodOptions, "/config", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := do(s, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/config", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = do(s, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
