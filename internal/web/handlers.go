// internal/web/handlers.go

package web

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mwiater/evalboard/internal/dashboard"
	"github.com/mwiater/evalboard/internal/form"
	"github.com/mwiater/evalboard/internal/logging"
	"github.com/mwiater/evalboard/internal/table"
)

// fetchHeader marks config posts sent by the page script; those get 204
// instead of a redirect.
const fetchHeader = "X-Requested-With"

type inputField struct {
	Name  string
	Label string
	Type  string
	Step  string
	Value string
}

type pageData struct {
	Fields             []inputField
	SystemPrompt       string
	Synthetic          form.Synthetic
	IsLoading          bool
	IsSyntheticLoading bool
	Busy               bool
	Notice             *dashboard.Notice
	UploadError        string
	Table              table.View
}

func (s *Server) page() pageData {
	state := s.orch.Snapshot()

	s.view.mu.Lock()
	uploadErr := s.view.uploadError
	synthetic := s.view.synthetic
	s.view.mu.Unlock()

	cfg := state.Config
	return pageData{
		Fields: []inputField{
			{Name: form.FieldModel, Label: form.Label(form.FieldModel), Type: "text", Value: form.Value(cfg, form.FieldModel)},
			{Name: form.FieldTemperature, Label: form.Label(form.FieldTemperature), Type: "number", Step: "0.1", Value: form.Value(cfg, form.FieldTemperature)},
			{Name: form.FieldMaxTokens, Label: form.Label(form.FieldMaxTokens), Type: "number", Step: "1", Value: form.Value(cfg, form.FieldMaxTokens)},
		},
		SystemPrompt:       cfg.SystemPrompt,
		Synthetic:          synthetic,
		IsLoading:          state.IsLoading,
		IsSyntheticLoading: state.IsSyntheticLoading,
		Busy:               state.Busy(),
		Notice:             state.Notice,
		UploadError:        uploadErr,
		Table:              table.Build(state.TestResults, state.Generation, s.view.expansion),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, s.page()); err != nil {
		logging.LogEvent("Template error: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.applyConfig(r)
	s.rememberSynthetic(r)
	s.finish(w, r)
}

// applyConfig merges the posted fields into the active config. Posts carrying
// a seq older than one already applied are dropped so a slow request cannot
// overwrite a newer edit.
func (s *Server) applyConfig(r *http.Request) {
	s.view.mu.Lock()
	defer s.view.mu.Unlock()
	if raw := r.PostForm.Get("seq"); raw != "" {
		seq, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return
		}
		if seq <= s.view.configSeq {
			logging.LogEvent("Dropping stale config post seq %d", seq)
			return
		}
		s.view.configSeq = seq
	}
	s.orch.SetConfig(form.ApplyValues(s.orch.Config(), r.PostForm))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		s.orch.SetConfig(form.ApplyValues(s.orch.Config(), r.PostForm))
	}
	s.orch.Save()
	s.redirectHome(w, r)
}

func (s *Server) handleRerun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		s.orch.SetConfig(form.ApplyValues(s.orch.Config(), r.PostForm))
	}
	done, err := s.orch.StartRerun(s.ctx)
	if err != nil {
		logging.LogEvent("rerun not started: %v", err)
		s.redirectHome(w, r)
		return
	}
	s.track("rerun", done)
	s.redirectHome(w, r)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		s.orch.SetConfig(form.ApplyValues(s.orch.Config(), r.PostForm))
	}
	synthetic := s.rememberSynthetic(r)
	done, err := s.orch.StartGenerateSyntheticAndRun(s.ctx, synthetic.NumTests, synthetic.MaxThreads)
	if err != nil {
		logging.LogEvent("synthetic generation not started: %v", err)
		s.redirectHome(w, r)
		return
	}
	s.track("synthetic generation", done)
	s.redirectHome(w, r)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.UploadLimit()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("report")
	if err != nil {
		// No file selected: nothing happens.
		s.redirectHome(w, r)
		return
	}
	defer file.Close()

	if err := table.CheckUploadName(header.Filename); err != nil {
		s.setUploadError(table.UploadErrorMessage)
		s.redirectHome(w, r)
		return
	}
	s.setUploadError("")

	data, err := io.ReadAll(file)
	if err != nil {
		logging.LogEvent("Error reading uploaded file %s: %v", header.Filename, err)
		http.Error(w, "could not read upload", http.StatusBadRequest)
		return
	}
	if err := s.orch.UploadReport(data); err != nil {
		logging.LogEvent("upload %s rejected: %v", header.Filename, err)
	}
	s.redirectHome(w, r)
}

func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request) {
	s.orch.ClearNotice()
	s.redirectHome(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	generation, err := strconv.ParseUint(vars["generation"], 10, 64)
	if err != nil {
		http.Error(w, "invalid generation", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid test id", http.StatusBadRequest)
		return
	}
	// A toggle from a stale page is ignored.
	if generation == s.orch.Generation() {
		s.view.expansion.Toggle(generation, id)
	}
	s.redirectHome(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.Snapshot())
}

// rememberSynthetic stores any submitted synthetic inputs and returns the
// current values.
func (s *Server) rememberSynthetic(r *http.Request) form.Synthetic {
	s.view.mu.Lock()
	defer s.view.mu.Unlock()
	s.view.synthetic = s.view.synthetic.ApplySynthetic(r.PostForm)
	return s.view.synthetic
}

func (s *Server) setUploadError(msg string) {
	s.view.mu.Lock()
	s.view.uploadError = msg
	s.view.mu.Unlock()
}

func (s *Server) finish(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(fetchHeader) != "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.redirectHome(w, r)
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// scoreClass picks the cell style for a score.
func scoreClass(sc table.Score) string {
	switch {
	case !sc.Present:
		return "missing"
	case sc.Passed:
		return "pass"
	default:
		return "fail"
	}
}
