package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"tasks-api/internal/metrics"
	"tasks-api/pkg/task"
)

// Tasks is the task service the API serves.
type Tasks interface {
	List(ctx context.Context, opts task.ListOptions) ([]task.Task, error)
	Get(ctx context.Context, id int) (*task.Task, error)
	Create(ctx context.Context, f task.Fields) (*task.Task, error)
	Update(ctx context.Context, id int, p task.Patch) (*task.Task, error)
	Delete(ctx context.Context, id int) error
	ByPriority(ctx context.Context, level task.Priority) ([]task.Task, error)
	Summarize(ctx context.Context) (*task.Summary, error)
}

// Server is the HTTP API server.
type Server struct {
	tasks   Tasks
	logger  *log.Logger
	metrics *metrics.Metrics
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a new Server. A nil metrics disables /metrics and request
// instrumentation.
func New(tasks Tasks, logger *log.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		tasks:   tasks,
		logger:  logger,
		metrics: m,
		mux:     http.NewServeMux(),
	}
	s.routes()
	s.handler = s.withRequestLog(s.mux)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Tasks
	s.mux.HandleFunc("GET /tasks", s.handleTaskList)
	s.mux.HandleFunc("GET /tasks/{$}", s.handleTaskList)
	s.mux.HandleFunc("POST /tasks", s.handleTaskCreate)
	s.mux.HandleFunc("POST /tasks/{$}", s.handleTaskCreate)
	s.mux.HandleFunc("GET /tasks/{id}", s.handleTaskGet)
	s.mux.HandleFunc("PUT /tasks/{id}", s.handleTaskUpdate)
	s.mux.HandleFunc("DELETE /tasks/{id}", s.handleTaskDelete)
	s.mux.HandleFunc("GET /tasks/priority/{level}", s.handleTaskByPriority)

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write json", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeTaskError maps a task error kind to a status code. Storage and
// unclassified failures are logged and reported generically.
func (s *Server) writeTaskError(w http.ResponseWriter, r *http.Request, err error) {
	switch task.KindOf(err) {
	case task.KindValidation:
		s.writeError(w, http.StatusBadRequest, err.Error())
	case task.KindNotFound:
		s.writeError(w, http.StatusNotFound, "Task not found")
	default:
		s.logger.Error("task operation failed",
			"method", r.Method, "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
		s.writeError(w, http.StatusInternalServerError, "Server Error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sum, err := s.tasks.Summarize(r.Context())
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}
