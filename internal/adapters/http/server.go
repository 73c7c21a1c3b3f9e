package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/polyglotter"
	"github.com/aretw0/polyglotter/pkg/grammar"
)

// Engine defines the evaluation core served over HTTP.
type Engine interface {
	Transforms() []grammar.Identifier
	Evaluate(ctx context.Context, id grammar.Identifier) (*grammar.Report, error)
	Mermaid(ctx context.Context, id grammar.Identifier) (string, error)
	Refresh(ctx context.Context) (int, error)
	Watch(ctx context.Context) (<-chan int, error)
}

var _ Engine = (*polyglotter.Engine)(nil)

// Server serves read-only evaluation results.
type Server struct {
	Engine   Engine
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithGatherer exposes the given metrics on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// TransformSummary is one entry of GET /transforms.
type TransformSummary struct {
	ID         grammar.Identifier `json:"id"`
	Name       string             `json:"name"`
	Operations int                `json:"operations"`
	Valid      bool               `json:"valid"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/transforms", s.ListTransforms)
	r.Get("/transforms/{id}", s.GetTransform)
	r.Get("/transforms/{id}/graph", s.GetGraph)
	r.Get("/transforms/{id}/operations/{op}", s.GetOperation)
	r.Post("/refresh", s.Refresh)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "polyglotter-http",
		"version": strings.TrimSpace(polyglotter.Version),
	})
}

// ListTransforms handles the GET /transforms request.
func (s *Server) ListTransforms(w http.ResponseWriter, r *http.Request) {
	ids := s.Engine.Transforms()
	out := make([]TransformSummary, 0, len(ids))
	for _, id := range ids {
		report, err := s.Engine.Evaluate(r.Context(), id)
		if err != nil {
			continue
		}
		out = append(out, TransformSummary{
			ID:         report.TransformID,
			Name:       report.Name,
			Operations: len(report.Operations),
			Valid:      !report.HasErrors(),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetTransform handles the GET /transforms/{id} request.
func (s *Server) GetTransform(w http.ResponseWriter, r *http.Request) {
	report, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// GetOperation handles the GET /transforms/{id}/operations/{op} request.
func (s *Server) GetOperation(w http.ResponseWriter, r *http.Request) {
	report, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	opID, err := parseIdentifier(r, "op")
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid operation id: %v", err), http.StatusBadRequest)
		return
	}
	op, found := report.Operation(opID)
	if !found {
		http.Error(w, fmt.Sprintf("Operation %s not found", opID), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, op)
}

// GetGraph handles the GET /transforms/{id}/graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := s.transformID(w, r)
	if !ok {
		return
	}
	chart, err := s.Engine.Mermaid(r.Context(), id)
	if err != nil {
		s.engineError(w, r, "Graph", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, chart)
}

// Refresh handles the POST /refresh request.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	n, err := s.Engine.Refresh(r.Context())
	if err != nil {
		s.engineError(w, r, "Refresh", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"changed": n})
}

// SubscribeEvents handles the GET /events request (SSE). Every term source
// refresh is pushed as an event carrying the number of changed terms.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		if errors.Is(err, polyglotter.ErrNotWatchable) {
			http.Error(w, err.Error(), http.StatusNotImplemented)
			return
		}
		s.engineError(w, r, "Watch", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected")
			return
		case n, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: refresh\ndata: {\"changed\":%d}\n\n", n)
			flusher.Flush()
		}
	}
}

func (s *Server) transformID(w http.ResponseWriter, r *http.Request) (grammar.Identifier, bool) {
	id, err := parseIdentifier(r, "id")
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid transform id: %v", err), http.StatusBadRequest)
		return grammar.Identifier{}, false
	}
	return id, true
}

// parseIdentifier reads a path parameter holding "local", "poly:local" or an
// escaped "{namespace}local".
func parseIdentifier(r *http.Request, name string) (grammar.Identifier, error) {
	raw, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		return grammar.Identifier{}, err
	}
	return grammar.ParseIdentifier(raw)
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) (*grammar.Report, bool) {
	id, ok := s.transformID(w, r)
	if !ok {
		return nil, false
	}
	report, err := s.Engine.Evaluate(r.Context(), id)
	if err != nil {
		s.engineError(w, r, "Evaluate", err)
		return nil, false
	}
	return report, true
}

func (s *Server) engineError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, polyglotter.ErrUnknownTransform) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.ErrorContext(r.Context(), op+" failed", "error", err)
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
}

// writeJSON encodes before writing the header so an encode failure still
// yields a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
		http.Error(w, fmt.Sprintf("Encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
