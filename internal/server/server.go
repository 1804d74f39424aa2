// Package server exposes the unfolding pipeline over HTTP.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/foldlab/cyclefold/pkg/errors"
	"github.com/foldlab/cyclefold/pkg/pipeline"
)

// maxBodyBytes bounds the size of an uploaded graph description.
const maxBodyBytes = 4 << 20

// Server handles HTTP requests by delegating to a pipeline Runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server around the given runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/v1/unfold", s.handleUnfold)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// handleUnfold unfolds the graph text in the request body.
//
// Query parameters: k (required positive integer), policy (label|constraint),
// separator, format (dot|json). The response body is the encoded unfolded
// graph in the requested format.
func (s *Server) handleUnfold(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// strconv.Atoi rejects non-integer factors like "1.5" here, before the
	// engine ever sees them.
	k, err := strconv.Atoi(q.Get("k"))
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFactor,
			"unfolding factor must be a positive integer, got %q", q.Get("k")))
		return
	}

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatDOT
	}
	if format != pipeline.FormatDOT && format != pipeline.FormatJSON {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (API supports: dot, json)", format))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "read request body"))
		return
	}
	if len(body) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeParse, "empty request body"))
		return
	}

	opts := pipeline.Options{
		K:         k,
		Policy:    q.Get("policy"),
		Separator: q.Get("separator"),
		Formats:   []string{format},
		Refresh:   q.Get("refresh") == "true",
		Logger:    s.logger,
	}

	result, err := s.runner.Execute(r.Context(), body, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch format {
	case pipeline.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	}
	w.Header().Set("X-Cache-Hit", strconv.FormatBool(result.CacheHit))
	_, _ = w.Write(result.Artifacts[format])
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// writeError maps pipeline errors to HTTP statuses: client input problems
// are 400, structural invariant violations are 422, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidFactor, errors.ErrCodeInvalidPolicy,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidSeparator,
		errors.ErrCodeInvalidLabel, errors.ErrCodeNegativeDelta,
		errors.ErrCodeParse:
		status = http.StatusBadRequest
	case errors.ErrCodeInvariant:
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", RequestID(r.Context()), "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:  string(errors.GetCode(err)),
		Error: errors.UserMessage(err),
	})
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
