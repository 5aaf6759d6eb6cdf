// internal/web/server.go

// Package web serves the browser dashboard: a server-rendered page over the
// dashboard Orchestrator plus a small JSON state endpoint.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mwiater/evalboard/internal/appconfig"
	"github.com/mwiater/evalboard/internal/dashboard"
	"github.com/mwiater/evalboard/internal/form"
	"github.com/mwiater/evalboard/internal/logging"
	"github.com/mwiater/evalboard/internal/table"
)

// viewState is the browser-side state the page keeps between requests: which
// transcripts are open, the upload error and the synthetic inputs.
type viewState struct {
	mu          sync.Mutex
	expansion   *table.Expansion
	uploadError string
	synthetic   form.Synthetic
	// configSeq is the highest seq seen on a script config post.
	configSeq uint64
}

// Server renders the dashboard and routes form posts to the Orchestrator.
type Server struct {
	ctx    context.Context
	orch   *dashboard.Orchestrator
	cfg    *appconfig.Config
	router *mux.Router
	view   viewState
	runs   sync.WaitGroup
}

// New creates a dashboard server. Background runs started from the page use
// ctx, so cancelling it aborts in-flight backend calls.
func New(ctx context.Context, orch *dashboard.Orchestrator, cfg *appconfig.Config) *Server {
	s := &Server{
		ctx:    ctx,
		orch:   orch,
		cfg:    cfg,
		router: mux.NewRouter(),
		view: viewState{
			expansion: table.NewExpansion(),
			synthetic: form.DefaultSynthetic(),
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/config", s.handleConfig).Methods(http.MethodPost)
	s.router.HandleFunc("/save", s.handleSave).Methods(http.MethodPost)
	s.router.HandleFunc("/rerun", s.handleRerun).Methods(http.MethodPost)
	s.router.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	s.router.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	s.router.HandleFunc("/notice/dismiss", s.handleDismissNotice).Methods(http.MethodPost)
	s.router.HandleFunc("/transcripts/{generation:[0-9]+}/{id:-?[0-9]+}/toggle", s.handleToggle).Methods(http.MethodPost)
	s.router.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
}

// Handler returns the routes wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"Content-Length", "Content-Type"},
	})
	return c.Handler(s.router)
}

// ListenAndServe serves until ctx is cancelled, then shuts down and waits for
// background runs to finish.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.LogEvent("evalboard dashboard listening on http://%s (backend %s)", srv.Addr, s.cfg.BackendBaseURL())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.Wait()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Wait()
	logging.LogEvent("evalboard dashboard stopped")
	return err
}

// Wait blocks until every background run started from the page has finished.
func (s *Server) Wait() {
	s.runs.Wait()
}

// track waits for a background run and traces its outcome.
func (s *Server) track(name string, done <-chan error) {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if err := <-done; err != nil {
			logging.LogEvent("%s failed: %v", name, err)
			return
		}
		logging.LogEvent("%s finished", name)
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
