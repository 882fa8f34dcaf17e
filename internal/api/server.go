package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
)

// Server exposes the queue over HTTP.
type Server struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger

	listener net.Listener
	server   *http.Server
}

// NewServer builds the HTTP server around the shared store. It does not
// listen until Start is called.
func NewServer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/workers", s.handleWorkers)
	mux.HandleFunc("/api/jobs", s.handleJobs)
	mux.HandleFunc("/api/jobs/", s.handleJob)

	s.server = &http.Server{
		Handler:           authMiddleware(cfg.Paths.APIToken, mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the configured HTTP handler, for tests that drive the mux
// without a listener.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving on the configured bind address and shuts the server
// down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Paths.APIBind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound address, once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down without waiting for ctx.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	counts := make(map[string]int, len(stats))
	for status, count := range stats {
		counts[string(status)] = count
	}
	heartbeats, err := s.store.ListWorkerHeartbeats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, StatusResponse{
		QueueDBPath: s.store.Path(),
		Queue:       counts,
		Workers:     len(heartbeats),
	})
}

func (s *Server) handleWorkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	heartbeats, err := s.store.ListWorkerHeartbeats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cutoff := s.staleCutoff()
	now := time.Now()
	views := make([]WorkerView, 0, len(heartbeats))
	for _, hb := range heartbeats {
		views = append(views, WorkerView{
			Name:     hb.WorkerName,
			Stage:    string(hb.Stage),
			PID:      hb.PID,
			Hostname: hb.Hostname,
			LastSeen: hb.LastSeen,
			Stale:    hb.Stale(cutoff, now),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string][]WorkerView{"workers": views})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listJobs(w, r)
	case http.MethodPost:
		s.submitJob(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		parsed, ok := queue.ParseStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", value))
			return
		}
		statuses = append(statuses, parsed)
	}
	jobs, err := s.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, FromJob(job))
	}
	s.writeJSON(w, http.StatusOK, map[string][]JobView{"jobs": views})
}

func (s *Server) submitJob(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		s.writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	meta := queue.Metadata{
		ActionNeeded: queue.StageScript.Action(),
		Privacy:      strings.TrimSpace(req.Privacy),
	}
	if req.Chain {
		meta.ActionNeeded = queue.ActionRunAll
		meta.OriginalAction = queue.ActionRunAll
	}
	job, err := s.store.NewJob(r.Context(), req.Topic, meta)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, FromJob(job))
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if rest == "" {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if id, ok := strings.CutSuffix(rest, "/trigger"); ok {
		s.triggerJob(w, r, id)
		return
	}
	if strings.Contains(rest, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	job, err := s.store.GetByID(r.Context(), rest)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, FromJob(job))
}

func (s *Server) triggerJob(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	stg, ok := queue.ParseStage(req.Stage)
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", req.Stage))
		return
	}
	routed, err := s.store.RequestStage(r.Context(), id, stg, req.Regenerate)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	job, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if !routed {
		s.writeError(w, http.StatusConflict, "job is not idle")
		return
	}
	s.writeJSON(w, http.StatusOK, FromJob(job))
}

// staleCutoff marks a worker stale after three missed heartbeats.
func (s *Server) staleCutoff() time.Duration {
	interval := time.Duration(s.cfg.Workflow.HeartbeatInterval) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return 3 * interval
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
